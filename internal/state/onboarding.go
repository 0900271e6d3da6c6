package state

import "errors"

// ErrDeferCompleted is returned when deferring a step that is already done.
var ErrDeferCompleted = errors.New("completed steps cannot be deferred")

// Onboarding is the persisted record of which steps are completed or deferred
// and which was last active. A step is never in both sets.
type Onboarding struct {
	CompletedSteps StepSet `json:"completedSteps"`
	DeferredSteps  StepSet `json:"deferredSteps"`
	LastStep       *string `json:"lastStep"`
}

// NewOnboarding returns an empty onboarding state.
func NewOnboarding() Onboarding {
	return Onboarding{
		CompletedSteps: StepSet{},
		DeferredSteps:  StepSet{},
	}
}

// Complete marks stepID completed, clearing any deferral.
func (o *Onboarding) Complete(stepID string) {
	o.ensure()
	o.DeferredSteps.Remove(stepID)
	o.CompletedSteps.Add(stepID)
}

// Defer marks stepID deferred.
func (o *Onboarding) Defer(stepID string) error {
	o.ensure()
	if o.CompletedSteps.Has(stepID) {
		return ErrDeferCompleted
	}
	o.DeferredSteps.Add(stepID)
	return nil
}

// Resume clears a deferral.
func (o *Onboarding) Resume(stepID string) {
	o.ensure()
	o.DeferredSteps.Remove(stepID)
}

// SetLastStep records the most recently active step.
func (o *Onboarding) SetLastStep(stepID string) {
	id := stepID
	o.LastStep = &id
}

// Satisfied reports whether stepID no longer blocks its dependents.
func (o *Onboarding) Satisfied(stepID string) bool {
	return o.CompletedSteps.Has(stepID) || o.DeferredSteps.Has(stepID)
}

func (o Onboarding) Clone() Onboarding {
	c := Onboarding{
		CompletedSteps: o.CompletedSteps.Clone(),
		DeferredSteps:  o.DeferredSteps.Clone(),
	}
	if o.LastStep != nil {
		c.SetLastStep(*o.LastStep)
	}
	return c
}

// Equal compares set membership and the last step.
func (o Onboarding) Equal(other Onboarding) bool {
	if !o.CompletedSteps.Equal(other.CompletedSteps) || !o.DeferredSteps.Equal(other.DeferredSteps) {
		return false
	}
	if (o.LastStep == nil) != (other.LastStep == nil) {
		return false
	}
	return o.LastStep == nil || *o.LastStep == *other.LastStep
}

func (o *Onboarding) ensure() {
	if o.CompletedSteps == nil {
		o.CompletedSteps = StepSet{}
	}
	if o.DeferredSteps == nil {
		o.DeferredSteps = StepSet{}
	}
}
