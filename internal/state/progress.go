package state

import "encoding/json"

// ProgressEntry is the state of one substep.
type ProgressEntry struct {
	Status SubstepStatus
	Data   Payload
}

// Progress maps substep ids to their entries. Missing entries are pending.
type Progress map[string]ProgressEntry

type entryJSON struct {
	Status SubstepStatus   `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func (e ProgressEntry) MarshalJSON() ([]byte, error) {
	data, err := EncodePayload(e.Data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(entryJSON{Status: e.Status, Data: data})
}

func (e *ProgressEntry) UnmarshalJSON(data []byte) error {
	var raw entryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p, err := DecodePayload(raw.Data)
	if err != nil {
		return err
	}
	e.Status = raw.Status
	e.Data = p
	return nil
}

// Status returns the status of substepID, pending if it was never touched.
func (p Progress) Status(substepID string) SubstepStatus {
	if e, ok := p[substepID]; ok && e.Status != "" {
		return e.Status
	}
	return SubstepPending
}

func (p Progress) Clone() Progress {
	c := make(Progress, len(p))
	for k, v := range p {
		c[k] = v
	}
	return c
}
