package orchestrator

import (
	"fmt"

	"github.com/createdbygabi/Blocks-sub001/internal/state"
)

// EventType names an input to the onboarding state machine.
type EventType string

const (
	EventStart    EventType = "start"
	EventComplete EventType = "complete"
	EventFail     EventType = "fail"
	EventReset    EventType = "reset"
	EventDefer    EventType = "defer"
	EventResume   EventType = "resume"
)

// Event is applied through Advance. ID is a substep id for Start, Complete,
// Fail and Reset, and a step id for Defer and Resume.
type Event struct {
	Type EventType
	ID   string
	Data state.Payload
	Err  error
}

// transitions lists, per event, the substep statuses it may leave from
var transitions = map[EventType]map[state.SubstepStatus]state.SubstepStatus{
	EventStart: {
		state.SubstepPending:   state.SubstepLoading,
		state.SubstepError:     state.SubstepLoading,
		state.SubstepCompleted: state.SubstepLoading,
	},
	EventComplete: {
		state.SubstepLoading: state.SubstepCompleted,
	},
	EventFail: {
		state.SubstepLoading: state.SubstepError,
	},
	EventReset: {
		state.SubstepPending:   state.SubstepPending,
		state.SubstepLoading:   state.SubstepPending,
		state.SubstepCompleted: state.SubstepPending,
		state.SubstepError:     state.SubstepPending,
	},
}

// Advance is the single entry point for state changes. It applies ev to the
// in-memory record and notifies the progress callback; persisting is left to
// the caller.
func (o *Orchestrator) Advance(ev Event) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.advance(ev); err != nil {
		o.discard()
		return err
	}
	o.flush()
	return nil
}

func (o *Orchestrator) advance(ev Event) error {
	switch ev.Type {
	case EventDefer:
		return o.deferStep(ev.ID)
	case EventResume:
		return o.resumeStep(ev.ID)
	}

	table, ok := transitions[ev.Type]
	if !ok {
		return fmt.Errorf("%w: unknown event %q", ErrInvalidTransition, ev.Type)
	}
	stepID, ok := o.Config.ParentOf(ev.ID)
	if !ok {
		return unknownSubstep(ev.ID)
	}
	from := o.Record.Progress.Status(ev.ID)
	to, ok := table[from]
	if !ok {
		return transitionErrorf(ev.ID, from, string(ev.Type))
	}

	now := o.now().UTC()
	change := Change{Event: ev.Type, StepID: stepID, SubstepID: ev.ID, Status: to}

	switch ev.Type {
	case EventStart:
		if o.Record.Error == ev.ID {
			o.clearError()
		}
		if !o.Record.Halted() {
			o.Record.Status = state.StatusRunning
		}
		o.Record.Progress[ev.ID] = state.ProgressEntry{Status: to}
		o.Record.Onboarding.SetLastStep(stepID)
		o.Record.AddStart(ev.ID, now)
	case EventComplete:
		o.Record.AddEnd(ev.ID, now)
		if err := o.updateProgress(ev.ID, to, ev.Data); err != nil {
			return err
		}
		change.Data = state.Envelope{Payload: ev.Data}
		change.Duration, _ = o.Record.LastDuration(ev.ID)
	case EventFail:
		o.Record.AddEnd(ev.ID, now)
		if err := o.updateProgress(ev.ID, to, nil); err != nil {
			return err
		}
		if ev.Err != nil {
			o.Record.ErrorMessage = ev.Err.Error()
			change.Error = ev.Err.Error()
		}
		change.Duration, _ = o.Record.LastDuration(ev.ID)
	case EventReset:
		o.Record.Progress[ev.ID] = state.ProgressEntry{Status: to}
		if o.Record.Error == ev.ID {
			o.clearError()
		}
		o.Record.AddEnd(ev.ID, now)
	}
	o.queue(change)
	return nil
}

func (o *Orchestrator) deferStep(stepID string) error {
	step, ok := o.Config.Step(stepID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownStep, stepID)
	}
	if !step.Deferrable {
		return fmt.Errorf("%w: %s", ErrNotDeferrable, stepID)
	}
	if err := o.Record.Onboarding.Defer(stepID); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidTransition, stepID, err)
	}
	o.recomputeExpanded(stepID)
	if o.finished() {
		o.Record.Status = state.StatusCompleted
	}
	o.queue(Change{Event: EventDefer, StepID: stepID})
	return nil
}

func (o *Orchestrator) resumeStep(stepID string) error {
	if _, ok := o.Config.Step(stepID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownStep, stepID)
	}
	o.Record.Onboarding.Resume(stepID)
	if o.Record.Status == state.StatusCompleted && !o.finished() {
		o.Record.Status = state.StatusRunning
	}
	o.queue(Change{Event: EventResume, StepID: stepID})
	return nil
}

func unknownSubstep(id string) error {
	return fmt.Errorf("%w: %s", ErrUnknownSubstep, id)
}

func transitionErrorf(id string, from state.SubstepStatus, to string) error {
	return fmt.Errorf("%w: %s %s -> %s", ErrInvalidTransition, id, from, to)
}
