package state

import (
	"encoding/json"
	"sort"
)

// StepSet is a set of step ids. It serializes as a sorted JSON array so the
// persisted form is stable regardless of insertion order.
type StepSet map[string]struct{}

// NewStepSet returns a set holding ids.
func NewStepSet(ids ...string) StepSet {
	s := make(StepSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s StepSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s StepSet) Add(id string) {
	s[id] = struct{}{}
}

func (s StepSet) Remove(id string) {
	delete(s, id)
}

// Sorted returns the members in lexical order.
func (s StepSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s StepSet) Clone() StepSet {
	c := make(StepSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// Equal reports set membership equality.
func (s StepSet) Equal(o StepSet) bool {
	if len(s) != len(o) {
		return false
	}
	for id := range s {
		if !o.Has(id) {
			return false
		}
	}
	return true
}

func (s StepSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *StepSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewStepSet(ids...)
	return nil
}
