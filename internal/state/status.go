package state

// SubstepStatus is the lifecycle position of a single substep.
type SubstepStatus string

const (
	SubstepPending   SubstepStatus = "pending"
	SubstepLoading   SubstepStatus = "loading"
	SubstepCompleted SubstepStatus = "completed"
	SubstepError     SubstepStatus = "error"
)

// Record statuses.
const (
	StatusRunning     = "running"
	StatusCompleted   = "completed"
	StatusFailed      = "failed"
	StatusInterrupted = "interrupted"
)

func (s SubstepStatus) Valid() bool {
	switch s {
	case SubstepPending, SubstepLoading, SubstepCompleted, SubstepError:
		return true
	}
	return false
}

func (s SubstepStatus) String() string {
	return string(s)
}
