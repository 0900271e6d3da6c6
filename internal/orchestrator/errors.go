package orchestrator

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownSubstep    = errors.New("unknown substep")
	ErrUnknownStep       = errors.New("unknown step")
	ErrInFlight          = errors.New("substep already in flight")
	ErrHalted            = errors.New("onboarding halted by a failed substep")
	ErrDependencyNotMet  = errors.New("dependency not met")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrNotDeferrable     = errors.New("step is not deferrable")
	ErrAlreadyStarted    = errors.New("onboarding already started")
	ErrMissingIdea       = errors.New("business idea is required")
	ErrSubstepFailed     = errors.New("substep failed")
)

// DependencyError lists what must complete before Substep can run.
type DependencyError struct {
	Substep  string
	Steps    []string
	Substeps []string
}

func (e *DependencyError) Error() string {
	var parts []string
	if len(e.Steps) > 0 {
		parts = append(parts, "steps "+strings.Join(e.Steps, ", "))
	}
	if len(e.Substeps) > 0 {
		parts = append(parts, "substeps "+strings.Join(e.Substeps, ", "))
	}
	return fmt.Sprintf("%s: %q requires %s", ErrDependencyNotMet, e.Substep, strings.Join(parts, " and "))
}

func (e *DependencyError) Is(target error) bool {
	return target == ErrDependencyNotMet
}

// FailureError is returned when a substep handler fails. The substep is left
// in error and the onboarding is halted.
type FailureError struct {
	Substep string
	Err     error
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("substep %q failed: %v", e.Substep, e.Err)
}

func (e *FailureError) Unwrap() []error {
	return []error{ErrSubstepFailed, e.Err}
}
