package state

import (
	"fmt"
	"time"
)

type TimingEntry struct {
	Substep  string    `json:"substep"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end,omitzero"`
	Duration string    `json:"duration,omitempty"`
}

// AddStart appends a new timing entry for the given substep.
func (r *Record) AddStart(substepID string, now time.Time) {
	r.Timings = append(r.Timings, TimingEntry{
		Substep: substepID,
		Start:   now,
	})
}

// AddEnd records the end time for the most recent open entry of substepID.
func (r *Record) AddEnd(substepID string, now time.Time) {
	for i := len(r.Timings) - 1; i >= 0; i-- {
		if r.Timings[i].Substep == substepID && r.Timings[i].End.IsZero() {
			r.Timings[i].End = now
			r.Timings[i].Duration = FormatDuration(now.Sub(r.Timings[i].Start))
			break
		}
	}
}

// LastDuration returns the duration of the latest finished run of substepID.
func (r *Record) LastDuration(substepID string) (string, bool) {
	for i := len(r.Timings) - 1; i >= 0; i-- {
		if r.Timings[i].Substep == substepID && !r.Timings[i].End.IsZero() {
			return r.Timings[i].Duration, true
		}
	}
	return "", false
}

func FormatDuration(d time.Duration) string {
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %02ds", m, s)
}
