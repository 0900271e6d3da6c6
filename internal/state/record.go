package state

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Record is the persisted onboarding row for one user. Version is the
// optimistic lock token: it is the version the record was loaded at and is
// bumped by the store on every successful save.
type Record struct {
	UserID       string        `json:"userId"`
	RunID        string        `json:"runId"`
	Version      int64         `json:"version"`
	Status       string        `json:"status"`
	Error        string        `json:"error,omitempty"`
	ErrorMessage string        `json:"errorMessage,omitempty"`
	Onboarding   Onboarding    `json:"onboarding"`
	Progress     Progress      `json:"progress"`
	Business     Business      `json:"business"`
	Timings      []TimingEntry `json:"timings,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// NewRecord returns a fresh, never saved record for userID.
func NewRecord(userID string) *Record {
	return &Record{
		UserID:     userID,
		RunID:      uuid.NewString(),
		Status:     StatusRunning,
		Onboarding: NewOnboarding(),
		Progress:   Progress{},
		CreatedAt:  time.Now().UTC(),
	}
}

// Halted reports whether a substep error is blocking forward progress.
func (r *Record) Halted() bool {
	return r.Error != ""
}

// Clone returns a deep copy.
func (r *Record) Clone() *Record {
	c := *r
	c.Onboarding = r.Onboarding.Clone()
	c.Progress = r.Progress.Clone()
	c.Business = r.Business.Clone()
	c.Timings = append([]TimingEntry(nil), r.Timings...)
	return &c
}

// Encode serializes the record as stored by every backend.
func Encode(r *Record) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Decode parses a stored record, filling nil collections.
func Decode(data []byte) (*Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	r.Onboarding.ensure()
	if r.Progress == nil {
		r.Progress = Progress{}
	}
	return &r, nil
}

// Stamped returns a shallow copy of r prepared for writing: version bumped
// and UpdatedAt set. Stores persist the copy and, on success, Commit it back.
func (r *Record) Stamped(now time.Time) *Record {
	c := *r
	c.Version = r.Version + 1
	c.UpdatedAt = now.UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = c.UpdatedAt
	}
	return &c
}

// Commit copies the write metadata of a successfully stored stamp into r.
func (r *Record) Commit(stamped *Record) {
	r.Version = stamped.Version
	r.UpdatedAt = stamped.UpdatedAt
	r.CreatedAt = stamped.CreatedAt
}
