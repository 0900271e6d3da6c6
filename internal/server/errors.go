package server

import (
	"errors"
	"net/http"

	"github.com/createdbygabi/Blocks-sub001/internal/orchestrator"
	"github.com/createdbygabi/Blocks-sub001/internal/state"
)

// ErrorResponse is the body of every failed request. View is included when
// the onboarding could be loaded.
type ErrorResponse struct {
	Error  string             `json:"error"`
	Status int                `json:"status"`
	View   *orchestrator.View `json:"view,omitempty"`
}

// ErrRunActive is returned when a background run is already going for the
// user.
var ErrRunActive = errors.New("a run is already active")

// statusFor maps orchestrator and store errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, state.ErrInvalidUserID):
		return http.StatusBadRequest
	case errors.Is(err, orchestrator.ErrUnknownSubstep),
		errors.Is(err, orchestrator.ErrUnknownStep):
		return http.StatusNotFound
	case errors.Is(err, orchestrator.ErrInFlight),
		errors.Is(err, orchestrator.ErrHalted),
		errors.Is(err, orchestrator.ErrDependencyNotMet),
		errors.Is(err, orchestrator.ErrAlreadyStarted),
		errors.Is(err, state.ErrStaleRecord),
		errors.Is(err, ErrRunActive):
		return http.StatusConflict
	case errors.Is(err, orchestrator.ErrInvalidTransition),
		errors.Is(err, orchestrator.ErrNotDeferrable),
		errors.Is(err, orchestrator.ErrMissingIdea),
		errors.Is(err, state.ErrDeferCompleted):
		return http.StatusUnprocessableEntity
	case errors.Is(err, orchestrator.ErrSubstepFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
