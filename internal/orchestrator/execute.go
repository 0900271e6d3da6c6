package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/createdbygabi/Blocks-sub001/internal/config"
	"github.com/createdbygabi/Blocks-sub001/internal/dispatch"
	"github.com/createdbygabi/Blocks-sub001/internal/log"
	"github.com/createdbygabi/Blocks-sub001/internal/state"
)

// Execute runs the handler for substepID. It is rejected before any handler
// is invoked when the substep is unknown, a substep is already in flight,
// the onboarding has no business idea, another substep has halted it, or its
// dependencies are not met. Otherwise the substep is started and persisted, the handler runs
// without the lock held, and the outcome is applied and persisted.
func (o *Orchestrator) Execute(ctx context.Context, substepID string) (state.Payload, error) {
	o.mu.Lock()
	sub, ok := o.Config.Substep(substepID)
	if !ok {
		o.mu.Unlock()
		return nil, unknownSubstep(substepID)
	}
	if err := o.checkRunnable(substepID); err != nil {
		o.mu.Unlock()
		return nil, err
	}
	if o.Dispatcher == nil {
		o.mu.Unlock()
		return nil, fmt.Errorf("%w: no dispatcher", dispatch.ErrNoHandler)
	}

	snapshot := o.Record.Clone()
	if err := o.advance(Event{Type: EventStart, ID: substepID}); err != nil {
		o.mu.Unlock()
		return nil, err
	}
	if err := o.persist(ctx); err != nil {
		o.Record = snapshot
		o.discard()
		o.mu.Unlock()
		return nil, err
	}
	o.flush()
	o.inFlight[substepID] = true
	in := o.input(*sub)
	o.mu.Unlock()

	logger := o.Logger.With(log.UserID(in.UserID), log.StepID(in.StepID), log.SubstepID(substepID))
	logger.Info("Substep started", log.Handler(sub.Handler))

	payload, herr := o.Dispatcher.Dispatch(ctx, in)

	o.mu.Lock()
	defer o.mu.Unlock()
	defer o.flush()
	delete(o.inFlight, substepID)

	// the outcome is recorded even when the caller's context is gone
	saveCtx := context.WithoutCancel(ctx)

	if herr != nil {
		if err := o.advance(Event{Type: EventFail, ID: substepID, Err: herr}); err != nil {
			return nil, err
		}
		if ctx.Err() != nil {
			o.Record.Status = state.StatusInterrupted
		}
		logger.Warn("Substep failed", log.Error(herr))
		if err := o.persist(saveCtx); err != nil {
			return nil, errors.Join(herr, err)
		}
		return nil, &FailureError{Substep: substepID, Err: herr}
	}

	if err := o.advance(Event{Type: EventComplete, ID: substepID, Data: payload}); err != nil {
		return nil, err
	}
	if d, ok := o.Record.LastDuration(substepID); ok {
		logger.Info("Substep completed", slog.String("duration", d))
	}
	if err := o.persist(saveCtx); err != nil {
		return nil, err
	}
	return payload, nil
}

// checkRunnable applies the in-flight, started, halt and dependency guards.
func (o *Orchestrator) checkRunnable(substepID string) error {
	if o.inFlight[substepID] {
		return fmt.Errorf("%w: %s", ErrInFlight, substepID)
	}
	for id := range o.inFlight {
		return fmt.Errorf("%w: %s is running", ErrInFlight, id)
	}
	if o.Record.Business.Idea == "" {
		return fmt.Errorf("%w: start the onboarding first", ErrMissingIdea)
	}
	if o.Record.Halted() && o.Record.Error != substepID {
		return fmt.Errorf("%w: %s", ErrHalted, o.Record.Error)
	}
	return o.checkDependencies(substepID)
}

func (o *Orchestrator) checkDependencies(substepID string) error {
	stepID, _ := o.Config.ParentOf(substepID)
	step, _ := o.Config.Step(stepID)

	depErr := &DependencyError{Substep: substepID}
	for _, dep := range step.DependsOn {
		if !o.Record.Onboarding.Satisfied(dep) {
			depErr.Steps = append(depErr.Steps, dep)
		}
	}
	for _, sub := range step.Substeps {
		if sub.ID == substepID {
			break
		}
		if o.Record.Progress.Status(sub.ID) != state.SubstepCompleted {
			depErr.Substeps = append(depErr.Substeps, sub.ID)
		}
	}
	if len(depErr.Steps) > 0 || len(depErr.Substeps) > 0 {
		return depErr
	}
	return nil
}

// supersededBy reports whether rec is a later save of the record than the
// one held, with no substep in flight.
func (o *Orchestrator) supersededBy(rec *state.Record) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return rec.Version > o.Record.Version && len(o.inFlight) == 0
}

// InFlight reports whether substepID is currently executing.
func (o *Orchestrator) InFlight(substepID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inFlight[substepID]
}

func (o *Orchestrator) input(sub config.Substep) dispatch.Input {
	stepID, _ := o.Config.ParentOf(sub.ID)
	return dispatch.Input{
		UserID:   o.Record.UserID,
		RunID:    o.Record.RunID,
		StepID:   stepID,
		Substep:  sub,
		Business: o.Record.Business.Clone(),
	}
}

// Reset returns substepID to pending, clearing a halt it caused. It is the
// manual way out of an error or of a loading state left by a crash.
func (o *Orchestrator) Reset(ctx context.Context, substepID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inFlight[substepID] {
		return fmt.Errorf("%w: %s", ErrInFlight, substepID)
	}
	return o.applyAndPersist(ctx, Event{Type: EventReset, ID: substepID})
}

// Defer marks a deferrable step as skipped for now.
func (o *Orchestrator) Defer(ctx context.Context, stepID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.applyAndPersist(ctx, Event{Type: EventDefer, ID: stepID})
}

// Resume clears a deferral.
func (o *Orchestrator) Resume(ctx context.Context, stepID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.applyAndPersist(ctx, Event{Type: EventResume, ID: stepID})
}

func (o *Orchestrator) applyAndPersist(ctx context.Context, ev Event) error {
	snapshot := o.Record.Clone()
	expanded := o.expanded.Clone()
	if err := o.advance(ev); err != nil {
		return err
	}
	if err := o.persist(ctx); err != nil {
		o.Record = snapshot
		o.expanded = expanded
		o.discard()
		return err
	}
	o.flush()
	return nil
}
