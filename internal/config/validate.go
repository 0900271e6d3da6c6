package config

import (
	"fmt"
	"regexp"
)

var idRe = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// Validate checks the registry for authoring errors, sets defaults and builds
// the derived lookup tables.
func Validate(cfg *Config) error {
	if cfg.Name == "" {
		return fmt.Errorf("config: 'name' is required")
	}
	if len(cfg.Steps) == 0 {
		return fmt.Errorf("config: at least one step is required")
	}

	seenSteps := make(map[string]int)
	seenSubsteps := make(map[string]string)
	for i := range cfg.Steps {
		s := &cfg.Steps[i]

		if s.ID == "" {
			return fmt.Errorf("config: step %d: 'id' is required", i+1)
		}
		if !idRe.MatchString(s.ID) {
			return fmt.Errorf("config: step %q: id must match %s", s.ID, idRe)
		}
		if _, dup := seenSteps[s.ID]; dup {
			return fmt.Errorf("config: duplicate step id %q", s.ID)
		}
		if len(s.Substeps) == 0 {
			return fmt.Errorf("config: step %q: at least one substep is required", s.ID)
		}
		if s.Title == "" {
			s.Title = s.ID
		}

		for _, dep := range s.DependsOn {
			if dep == s.ID {
				return fmt.Errorf("config: step %q: cannot depend on itself", s.ID)
			}
			if _, ok := seenSteps[dep]; !ok {
				return fmt.Errorf("config: step %q: depends-on %q must reference an earlier step", s.ID, dep)
			}
		}
		seenSteps[s.ID] = i

		for j := range s.Substeps {
			sub := &s.Substeps[j]
			if sub.ID == "" {
				return fmt.Errorf("config: step %q: substep %d: 'id' is required", s.ID, j+1)
			}
			if !idRe.MatchString(sub.ID) {
				return fmt.Errorf("config: substep %q: id must match %s", sub.ID, idRe)
			}
			if owner, dup := seenSubsteps[sub.ID]; dup {
				return fmt.Errorf("config: duplicate substep id %q (steps %q and %q)", sub.ID, owner, s.ID)
			}
			if _, clash := seenSteps[sub.ID]; clash || sub.ID == s.ID {
				return fmt.Errorf("config: substep %q collides with a step id", sub.ID)
			}
			seenSubsteps[sub.ID] = s.ID

			if sub.Handler == "" {
				sub.Handler = sub.ID
			}
			if sub.Title == "" {
				sub.Title = sub.ID
			}
			if sub.Timeout < 0 {
				return fmt.Errorf("config: substep %q: timeout must be >= 0", sub.ID)
			}
		}
	}

	cfg.idx = buildIndex(cfg)
	return nil
}
