package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/createdbygabi/Blocks-sub001/internal/dispatch"
	"github.com/createdbygabi/Blocks-sub001/internal/log"
	"github.com/createdbygabi/Blocks-sub001/internal/state"
)

// ErrStopped is returned by Run when the gate asks to stop.
var ErrStopped = errors.New("run stopped at gate")

// Run executes the remaining substeps in pipeline order, one at a time,
// skipping deferred steps and stopping at the first failure. A halted
// onboarding is not retried; reset or execute the failed substep first.
func (o *Orchestrator) Run(ctx context.Context) error {
	if err := o.Ready(); err != nil {
		return err
	}

	for {
		if ctx.Err() != nil {
			return o.interrupt(ctx.Err())
		}

		o.mu.Lock()
		next, ok := o.nextRunnable()
		stepID, _ := o.Config.ParentOf(next)
		step, _ := o.Config.Step(stepID)
		askGate := ok && o.Gate != nil && step != nil && step.Deferrable && o.stepUntouched(stepID)
		o.mu.Unlock()
		if !ok {
			break
		}

		if askGate {
			answer, err := o.Gate(ctx, *step)
			if err != nil {
				if ctx.Err() != nil {
					return o.interrupt(ctx.Err())
				}
				return err
			}
			switch answer {
			case dispatch.GateDefer:
				if err := o.Defer(ctx, stepID); err != nil {
					return err
				}
				continue
			case dispatch.GateStop:
				return ErrStopped
			}
		}

		if _, err := o.Execute(ctx, next); err != nil {
			return err
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.finished() {
		return nil
	}
	if o.Record.Status != state.StatusCompleted {
		o.Record.Status = state.StatusCompleted
		if err := o.persist(ctx); err != nil {
			return fmt.Errorf("saving final state: %w", err)
		}
	}
	o.Logger.Info("Onboarding completed", log.UserID(o.Record.UserID), log.RunID(o.Record.RunID))
	return nil
}

// Ready reports why Run would refuse to start: the onboarding has no
// business idea or a failed substep halts it.
func (o *Orchestrator) Ready() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.Record.Business.Idea == "" {
		return fmt.Errorf("%w: start the onboarding first", ErrMissingIdea)
	}
	if o.Record.Halted() {
		return fmt.Errorf("%w: %s", ErrHalted, o.Record.Error)
	}
	return nil
}

// nextRunnable is the first substep in order that is not completed and
// whose step is not deferred.
func (o *Orchestrator) nextRunnable() (string, bool) {
	for _, id := range o.Config.SubstepOrder() {
		stepID, _ := o.Config.ParentOf(id)
		if o.Record.Onboarding.DeferredSteps.Has(stepID) {
			continue
		}
		if o.Record.Progress.Status(id) != state.SubstepCompleted {
			return id, true
		}
	}
	return "", false
}

// Next returns the substep Run would execute next.
func (o *Orchestrator) Next() (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.nextRunnable()
}

func (o *Orchestrator) stepUntouched(stepID string) bool {
	step, ok := o.Config.Step(stepID)
	if !ok {
		return false
	}
	for _, sub := range step.Substeps {
		if o.Record.Progress.Status(sub.ID) != state.SubstepPending {
			return false
		}
	}
	return true
}

// interrupt marks the record interrupted and saves it, warning on failure.
func (o *Orchestrator) interrupt(cause error) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.Record.Status != state.StatusFailed {
		o.Record.Status = state.StatusInterrupted
	}
	if err := o.persist(context.Background()); err != nil {
		o.Logger.Warn("Failed to save interrupted state", log.Error(err))
	}
	return cause
}
