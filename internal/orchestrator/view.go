package orchestrator

import (
	"github.com/createdbygabi/Blocks-sub001/internal/state"
)

type (
	// View is the read model of one onboarding, shared by the CLI and API
	View struct {
		UserID       string         `json:"userId"`
		RunID        string         `json:"runId"`
		Version      int64          `json:"version"`
		Status       string         `json:"status"`
		Error        string         `json:"error,omitempty"`
		ErrorMessage string         `json:"errorMessage,omitempty"`
		LastStep     string         `json:"lastStep,omitempty"`
		Next         string         `json:"next,omitempty"`
		Finished     bool           `json:"finished"`
		Business     state.Business `json:"business"`
		Steps        []StepView     `json:"steps"`
	}

	StepView struct {
		ID          string        `json:"id"`
		Title       string        `json:"title"`
		Description string        `json:"description,omitempty"`
		Required    bool          `json:"required"`
		Deferrable  bool          `json:"deferrable"`
		Completed   bool          `json:"completed"`
		Deferred    bool          `json:"deferred"`
		CanExpand   bool          `json:"canExpand"`
		Expanded    bool          `json:"expanded"`
		Substeps    []SubstepView `json:"substeps"`
	}

	SubstepView struct {
		ID          string              `json:"id"`
		Title       string              `json:"title"`
		LoadingText string              `json:"loadingText,omitempty"`
		Status      state.SubstepStatus `json:"status"`
		Data        state.Envelope      `json:"data,omitzero"`
		Duration    string              `json:"duration,omitempty"`
		InFlight    bool                `json:"inFlight"`
	}
)

// View snapshots the onboarding for display.
func (o *Orchestrator) View() View {
	o.mu.Lock()
	defer o.mu.Unlock()

	r := o.Record
	v := View{
		UserID:       r.UserID,
		RunID:        r.RunID,
		Version:      r.Version,
		Status:       r.Status,
		Error:        r.Error,
		ErrorMessage: r.ErrorMessage,
		Finished:     o.finished(),
		Business:     r.Business.Clone(),
	}
	if r.Onboarding.LastStep != nil {
		v.LastStep = *r.Onboarding.LastStep
	}
	if next, ok := o.nextRunnable(); ok {
		v.Next = next
	}

	for _, step := range o.Config.Steps {
		sv := StepView{
			ID:          step.ID,
			Title:       step.Title,
			Description: step.Description,
			Required:    step.Required,
			Deferrable:  step.Deferrable,
			Completed:   r.Onboarding.CompletedSteps.Has(step.ID),
			Deferred:    r.Onboarding.DeferredSteps.Has(step.ID),
			CanExpand:   o.canExpand(step.ID),
			Expanded:    o.expanded.Has(step.ID),
		}
		for _, sub := range step.Substeps {
			entry := r.Progress[sub.ID]
			d, _ := r.LastDuration(sub.ID)
			sv.Substeps = append(sv.Substeps, SubstepView{
				ID:          sub.ID,
				Title:       sub.Title,
				LoadingText: sub.LoadingText,
				Status:      r.Progress.Status(sub.ID),
				Data:        state.Envelope{Payload: entry.Data},
				Duration:    d,
				InFlight:    o.inFlight[sub.ID],
			})
		}
		v.Steps = append(v.Steps, sv)
	}
	return v
}
