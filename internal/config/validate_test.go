package config

import (
	"strings"
	"testing"
)

func minimalConfig(steps ...Step) *Config {
	return &Config{Name: "test", Steps: steps}
}

func simpleStep(id string, substeps ...string) Step {
	s := Step{ID: id}
	for _, sub := range substeps {
		s.Substeps = append(s.Substeps, Substep{ID: sub})
	}
	return s
}

func TestValidate_NameRequired(t *testing.T) {
	cfg := &Config{Steps: []Step{simpleStep("a", "a1")}}
	if err := Validate(cfg); err == nil || !strings.Contains(err.Error(), "'name' is required") {
		t.Fatalf("expected name required error, got %v", err)
	}
}

func TestValidate_NoStepsError(t *testing.T) {
	cfg := &Config{Name: "test"}
	if err := Validate(cfg); err == nil || !strings.Contains(err.Error(), "at least one step") {
		t.Fatalf("expected steps error, got %v", err)
	}
}

func TestValidate_StepIDRequired(t *testing.T) {
	cfg := minimalConfig(Step{Substeps: []Substep{{ID: "x"}}})
	if err := Validate(cfg); err == nil || !strings.Contains(err.Error(), "'id' is required") {
		t.Fatalf("got %v", err)
	}
}

func TestValidate_InvalidID(t *testing.T) {
	cfg := minimalConfig(simpleStep("Bad ID", "x"))
	if err := Validate(cfg); err == nil || !strings.Contains(err.Error(), "id must match") {
		t.Fatalf("got %v", err)
	}
}

func TestValidate_DuplicateStepIDs(t *testing.T) {
	cfg := minimalConfig(simpleStep("dup", "a"), simpleStep("dup", "b"))
	if err := Validate(cfg); err == nil || !strings.Contains(err.Error(), "duplicate step") {
		t.Fatalf("got %v", err)
	}
}

func TestValidate_DuplicateSubstepAcrossSteps(t *testing.T) {
	cfg := minimalConfig(simpleStep("a", "x"), simpleStep("b", "x"))
	if err := Validate(cfg); err == nil || !strings.Contains(err.Error(), "duplicate substep") {
		t.Fatalf("got %v", err)
	}
}

func TestValidate_SubstepCollidesWithStep(t *testing.T) {
	cfg := minimalConfig(simpleStep("a", "a1"), simpleStep("b", "a"))
	if err := Validate(cfg); err == nil || !strings.Contains(err.Error(), "collides") {
		t.Fatalf("got %v", err)
	}
}

func TestValidate_StepNeedsSubsteps(t *testing.T) {
	cfg := minimalConfig(Step{ID: "a"})
	if err := Validate(cfg); err == nil || !strings.Contains(err.Error(), "at least one substep") {
		t.Fatalf("got %v", err)
	}
}

func TestValidate_DependsOnMustBeEarlier(t *testing.T) {
	a := simpleStep("a", "a1")
	a.DependsOn = []string{"b"}
	cfg := minimalConfig(a, simpleStep("b", "b1"))
	if err := Validate(cfg); err == nil || !strings.Contains(err.Error(), "must reference an earlier step") {
		t.Fatalf("got %v", err)
	}
}

func TestValidate_DependsOnSelf(t *testing.T) {
	a := simpleStep("a", "a1")
	a.DependsOn = []string{"a"}
	cfg := minimalConfig(a)
	if err := Validate(cfg); err == nil || !strings.Contains(err.Error(), "itself") {
		t.Fatalf("got %v", err)
	}
}

func TestValidate_NegativeTimeout(t *testing.T) {
	cfg := minimalConfig(Step{ID: "a", Substeps: []Substep{{ID: "a1", Timeout: -1}}})
	if err := Validate(cfg); err == nil || !strings.Contains(err.Error(), "timeout must be >= 0") {
		t.Fatalf("got %v", err)
	}
}

func TestValidate_Defaults(t *testing.T) {
	cfg := minimalConfig(simpleStep("a", "a1"))
	if err := Validate(cfg); err != nil {
		t.Fatal(err)
	}
	sub := cfg.Steps[0].Substeps[0]
	if sub.Handler != "a1" {
		t.Fatalf("Handler = %q, want a1", sub.Handler)
	}
	if sub.Title != "a1" || cfg.Steps[0].Title != "a" {
		t.Fatalf("titles not defaulted: %q %q", sub.Title, cfg.Steps[0].Title)
	}
}

func TestParse_Default(t *testing.T) {
	cfg, err := Parse([]byte(DefaultPipeline))
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Steps) != 6 {
		t.Fatalf("steps = %d, want 6", len(cfg.Steps))
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("steps: [")); err == nil {
		t.Fatal("expected yaml error")
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(t.TempDir() + "/missing.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "blocks" {
		t.Fatalf("Name = %q", cfg.Name)
	}
}
