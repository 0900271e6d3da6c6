package config

type index struct {
	stepPos    map[string]int
	substepPos map[string]int
	parent     map[string]string
	order      []string
}

func buildIndex(cfg *Config) *index {
	idx := &index{
		stepPos:    make(map[string]int, len(cfg.Steps)),
		substepPos: make(map[string]int),
		parent:     make(map[string]string),
	}
	for i, s := range cfg.Steps {
		idx.stepPos[s.ID] = i
		for _, sub := range s.Substeps {
			idx.substepPos[sub.ID] = len(idx.order)
			idx.parent[sub.ID] = s.ID
			idx.order = append(idx.order, sub.ID)
		}
	}
	return idx
}

// lookup returns the derived tables, building them for configs constructed
// in code without going through Validate.
func (c *Config) lookup() *index {
	if c.idx == nil {
		c.idx = buildIndex(c)
	}
	return c.idx
}

// StepIDs returns the step ids in execution order.
func (c *Config) StepIDs() []string {
	ids := make([]string, len(c.Steps))
	for i, s := range c.Steps {
		ids[i] = s.ID
	}
	return ids
}

// StepIndex returns the position of the step, or -1 if not found.
func (c *Config) StepIndex(id string) int {
	if i, ok := c.lookup().stepPos[id]; ok {
		return i
	}
	return -1
}

// Step returns the step with the given id.
func (c *Config) Step(id string) (*Step, bool) {
	i := c.StepIndex(id)
	if i < 0 {
		return nil, false
	}
	return &c.Steps[i], true
}

// Substep returns the substep with the given id.
func (c *Config) Substep(id string) (*Substep, bool) {
	parent, ok := c.ParentOf(id)
	if !ok {
		return nil, false
	}
	step, _ := c.Step(parent)
	for i := range step.Substeps {
		if step.Substeps[i].ID == id {
			return &step.Substeps[i], true
		}
	}
	return nil, false
}

// ParentOf returns the id of the step owning substepID.
func (c *Config) ParentOf(substepID string) (string, bool) {
	p, ok := c.lookup().parent[substepID]
	return p, ok
}

// SubstepOrder returns every substep id in execution order.
func (c *Config) SubstepOrder() []string {
	order := c.lookup().order
	out := make([]string, len(order))
	copy(out, order)
	return out
}

// FirstSubstep returns the substep the pipeline starts with.
func (c *Config) FirstSubstep() string {
	order := c.lookup().order
	if len(order) == 0 {
		return ""
	}
	return order[0]
}

// NextSubstep returns the sequential successor of substepID. The boolean is
// false when substepID is terminal or unknown.
func (c *Config) NextSubstep(substepID string) (string, bool) {
	idx := c.lookup()
	i, ok := idx.substepPos[substepID]
	if !ok || i+1 >= len(idx.order) {
		return "", false
	}
	return idx.order[i+1], true
}

// SubstepIndex returns the position of substepID in the flattened order, or -1.
func (c *Config) SubstepIndex(substepID string) int {
	if i, ok := c.lookup().substepPos[substepID]; ok {
		return i
	}
	return -1
}

// PreviousStep returns the step immediately before stepID in registry order.
func (c *Config) PreviousStep(stepID string) (string, bool) {
	i := c.StepIndex(stepID)
	if i <= 0 {
		return "", false
	}
	return c.Steps[i-1].ID, true
}

// NextStep returns the step immediately after stepID in registry order.
func (c *Config) NextStep(stepID string) (string, bool) {
	i := c.StepIndex(stepID)
	if i < 0 || i+1 >= len(c.Steps) {
		return "", false
	}
	return c.Steps[i+1].ID, true
}

// Handlers returns the distinct handler names referenced by the registry.
func (c *Config) Handlers() []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range c.Steps {
		for _, sub := range s.Substeps {
			h := sub.Handler
			if h == "" {
				h = sub.ID
			}
			if !seen[h] {
				seen[h] = true
				out = append(out, h)
			}
		}
	}
	return out
}
