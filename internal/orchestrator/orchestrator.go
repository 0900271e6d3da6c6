// Package orchestrator drives one user's onboarding through the pipeline:
// per-substep progress transitions, dependency guards, sequential execution
// and persistence of the record after every transition.
package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/createdbygabi/Blocks-sub001/internal/config"
	"github.com/createdbygabi/Blocks-sub001/internal/dispatch"
	"github.com/createdbygabi/Blocks-sub001/internal/log"
	"github.com/createdbygabi/Blocks-sub001/internal/state"
)

type (
	// Orchestrator owns the onboarding record of a single user. All methods
	// are safe for concurrent use; at most one substep is in flight.
	Orchestrator struct {
		Config     *config.Config
		Record     *state.Record
		Store      state.Store
		Dispatcher dispatch.Dispatcher
		Logger     *slog.Logger
		OnProgress ProgressFunc

		// Gate, when set, is asked before Run enters a deferrable step
		Gate func(ctx context.Context, step config.Step) (dispatch.GateAnswer, error)

		mu       sync.Mutex
		inFlight map[string]bool
		expanded state.StepSet
		pending  []Change
		now      func() time.Time
	}

	// Change describes one applied transition
	Change struct {
		UserID    string              `json:"userId"`
		Event     EventType           `json:"event"`
		StepID    string              `json:"stepId"`
		SubstepID string              `json:"substepId,omitempty"`
		Status    state.SubstepStatus `json:"status,omitempty"`
		Data      state.Envelope      `json:"data,omitzero"`
		Error     string              `json:"error,omitempty"`
		Duration  string              `json:"duration,omitempty"`
		At        time.Time           `json:"at"`
	}

	// ProgressFunc receives every applied transition
	ProgressFunc func(Change)
)

// New wraps rec for cfg. Store and Dispatcher may be nil for pure state
// manipulation; Execute requires a Dispatcher.
func New(cfg *config.Config, rec *state.Record, store state.Store, d dispatch.Dispatcher) *Orchestrator {
	o := &Orchestrator{
		Config:     cfg,
		Record:     rec,
		Store:      store,
		Dispatcher: d,
		Logger:     slog.Default(),
		inFlight:   map[string]bool{},
		now:        time.Now,
	}
	o.expanded = o.initialExpanded()
	return o
}

// UpdateProgress overwrites the entry for substepID. A completed status adds
// the parent step to the completed set once all of its substeps are
// completed, records the step as last active and recomputes the expanded
// steps. An error status halts the onboarding at substepID. Applying the same
// update twice leaves the state unchanged.
func (o *Orchestrator) UpdateProgress(substepID string, status state.SubstepStatus, data state.Payload) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.updateProgress(substepID, status, data)
}

func (o *Orchestrator) updateProgress(substepID string, status state.SubstepStatus, data state.Payload) error {
	stepID, ok := o.Config.ParentOf(substepID)
	if !ok {
		return unknownSubstep(substepID)
	}
	if !status.Valid() {
		return transitionErrorf(substepID, o.Record.Progress.Status(substepID), string(status))
	}
	o.Record.Progress[substepID] = state.ProgressEntry{Status: status, Data: data}

	switch status {
	case state.SubstepCompleted:
		if data != nil {
			data.Apply(&o.Record.Business)
		}
		if o.isStepCompleted(stepID) {
			o.Record.Onboarding.Complete(stepID)
		}
		o.Record.Onboarding.SetLastStep(stepID)
		if o.Record.Error == substepID {
			o.clearError()
		}
		o.recomputeExpanded(stepID)
		if o.finished() {
			o.Record.Status = state.StatusCompleted
		}
	case state.SubstepError:
		o.Record.Error = substepID
		o.Record.Status = state.StatusFailed
		o.Record.Onboarding.SetLastStep(stepID)
	}
	return nil
}

// CanExpand reports whether stepID is first in order or its immediate
// predecessor is completed.
func (o *Orchestrator) CanExpand(stepID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.canExpand(stepID)
}

func (o *Orchestrator) canExpand(stepID string) bool {
	if o.Config.StepIndex(stepID) < 0 {
		return false
	}
	prev, ok := o.Config.PreviousStep(stepID)
	if !ok {
		return true
	}
	return o.Record.Onboarding.CompletedSteps.Has(prev)
}

// NextStep returns the substep that follows substepID in pipeline order.
func (o *Orchestrator) NextStep(substepID string) (string, bool) {
	return o.Config.NextSubstep(substepID)
}

// IsStepCompleted reports whether every substep of stepID is completed.
func (o *Orchestrator) IsStepCompleted(stepID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.isStepCompleted(stepID)
}

func (o *Orchestrator) isStepCompleted(stepID string) bool {
	step, ok := o.Config.Step(stepID)
	if !ok {
		return false
	}
	for _, sub := range step.Substeps {
		if o.Record.Progress.Status(sub.ID) != state.SubstepCompleted {
			return false
		}
	}
	return true
}

// Expanded returns the steps currently shown open.
func (o *Orchestrator) Expanded() state.StepSet {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.expanded.Clone()
}

// Finished reports whether every required step is completed and every other
// step is completed or deferred.
func (o *Orchestrator) Finished() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.finished()
}

func (o *Orchestrator) finished() bool {
	ob := &o.Record.Onboarding
	for _, step := range o.Config.Steps {
		if ob.CompletedSteps.Has(step.ID) {
			continue
		}
		if step.Required || !ob.DeferredSteps.Has(step.ID) {
			return false
		}
	}
	return true
}

// Begin records the business idea for a fresh onboarding.
func (o *Orchestrator) Begin(ctx context.Context, idea, audience string) error {
	if idea == "" {
		return ErrMissingIdea
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.started() {
		return ErrAlreadyStarted
	}
	o.Record.Business.Idea = idea
	o.Record.Business.Audience = audience
	o.Record.Status = state.StatusRunning
	return o.persist(ctx)
}

func (o *Orchestrator) started() bool {
	for _, e := range o.Record.Progress {
		if e.Status != state.SubstepPending && e.Status != "" {
			return true
		}
	}
	return false
}

func (o *Orchestrator) recomputeExpanded(stepID string) {
	o.expanded = o.expandedAfter(stepID)
}

// expandedAfter is stepID plus the next step when it is eligible
func (o *Orchestrator) expandedAfter(stepID string) state.StepSet {
	s := state.NewStepSet(stepID)
	if next, ok := o.Config.NextStep(stepID); ok && o.canExpand(next) {
		s.Add(next)
	}
	return s
}

func (o *Orchestrator) initialExpanded() state.StepSet {
	if last := o.Record.Onboarding.LastStep; last != nil && o.Config.StepIndex(*last) >= 0 {
		return o.expandedAfter(*last)
	}
	ids := o.Config.StepIDs()
	if len(ids) == 0 {
		return state.StepSet{}
	}
	return state.NewStepSet(ids[0])
}

func (o *Orchestrator) clearError() {
	o.Record.Error = ""
	o.Record.ErrorMessage = ""
	if o.Record.Status == state.StatusFailed || o.Record.Status == state.StatusInterrupted {
		o.Record.Status = state.StatusRunning
	}
}

// persist saves the record. Callers hold o.mu.
func (o *Orchestrator) persist(ctx context.Context) error {
	if o.Store == nil {
		return nil
	}
	if err := o.Store.Save(ctx, o.Record); err != nil {
		o.Logger.Error("Failed to save record",
			log.UserID(o.Record.UserID),
			log.Error(err))
		return err
	}
	return nil
}

// queue holds c until the transition behind it is persisted. Callers hold
// o.mu.
func (o *Orchestrator) queue(c Change) {
	c.UserID = o.Record.UserID
	c.At = o.now().UTC()
	o.pending = append(o.pending, c)
}

// flush delivers queued changes to OnProgress.
func (o *Orchestrator) flush() {
	pending := o.pending
	o.pending = nil
	if o.OnProgress == nil {
		return
	}
	for _, c := range pending {
		o.OnProgress(c)
	}
}

// discard drops queued changes of a transition that was rolled back.
func (o *Orchestrator) discard() {
	o.pending = nil
}
