package dispatch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/createdbygabi/Blocks-sub001/internal/config"
	"github.com/createdbygabi/Blocks-sub001/internal/state"
)

var (
	ErrNoHandler   = errors.New("no handler registered")
	ErrEmptyResult = errors.New("handler returned no result")
	ErrWrongKind   = errors.New("handler returned the wrong payload kind")
)

// Input is everything a handler sees for one substep execution.
type Input struct {
	UserID   string
	RunID    string
	StepID   string
	Substep  config.Substep
	Business state.Business
}

// Vars returns the variable substitution map for prompts and commands.
func (in Input) Vars() map[string]string {
	b := in.Business
	return map[string]string{
		"USER_ID":     in.UserID,
		"RUN_ID":      in.RunID,
		"STEP_ID":     in.StepID,
		"SUBSTEP_ID":  in.Substep.ID,
		"IDEA":        b.Idea,
		"AUDIENCE":    b.Audience,
		"NAME":        b.Name,
		"SLUG":        b.Slug(),
		"DOMAIN":      b.Domain,
		"LOGO_URL":    b.LogoURL,
		"SITE_URL":    b.SiteURL,
		"PREVIEW_URL": b.PreviewURL,
	}
}

// Prompt returns the substep's prompt with variables expanded, or fallback
// expanded when the substep declares none.
func (in Input) Prompt(fallback string) string {
	tmpl := in.Substep.Prompt
	if tmpl == "" {
		tmpl = fallback
	}
	return ExpandVars(tmpl, in.Vars())
}

// BuildEnv returns the environment for child processes: the current
// environment plus a BLOCKS_ variable for every entry of Vars.
func BuildEnv(in Input) []string {
	vars := in.Vars()
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	base := os.Environ()
	result := make([]string, len(base), len(base)+len(keys))
	copy(result, base)
	for _, k := range keys {
		result = append(result, envPrefix+k+"="+vars[k])
	}
	return result
}

// Handler performs the external call behind one substep.
type Handler interface {
	Handle(ctx context.Context, in Input) (state.Payload, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, in Input) (state.Payload, error)

func (f HandlerFunc) Handle(ctx context.Context, in Input) (state.Payload, error) {
	return f(ctx, in)
}

// Dispatcher is the interface for dispatching substeps. Tests can
// substitute a mock.
type Dispatcher interface {
	Dispatch(ctx context.Context, in Input) (state.Payload, error)
}

// Registry routes substeps to handlers by the substep's handler name.
type Registry struct {
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: map[string]Handler{}}
}

// Register binds name to h, replacing any previous binding.
func (r *Registry) Register(name string, h Handler) {
	r.handlers[name] = h
}

func (r *Registry) Has(name string) bool {
	_, ok := r.handlers[name]
	return ok
}

// Names returns the registered handler names in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for n := range r.handlers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs the handler for in.Substep, bounded by the substep timeout
// when one is declared. The payload must be of the kind the handler name
// stands for, or, for a generic handler, the kind named by the substep id.
func (r *Registry) Dispatch(ctx context.Context, in Input) (state.Payload, error) {
	name := in.Substep.Handler
	if name == "" {
		name = in.Substep.ID
	}
	h, ok := r.handlers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoHandler, name)
	}
	if in.Substep.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(in.Substep.Timeout)*time.Second)
		defer cancel()
	}

	p, err := h.Handle(ctx, in)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && in.Substep.Timeout > 0 {
			return nil, fmt.Errorf("substep %q timed out after %ds: %w", in.Substep.ID, in.Substep.Timeout, err)
		}
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrEmptyResult, name)
	}
	if want := expectedKind(name, in.Substep.ID); want != "" && p.Kind() != want {
		return nil, fmt.Errorf("%w: %s returned %q, want %q", ErrWrongKind, name, p.Kind(), want)
	}
	return p, nil
}

func expectedKind(handler, substepID string) string {
	switch {
	case state.KnownKind(handler):
		return handler
	case state.KnownKind(substepID):
		return substepID
	}
	return ""
}

// Describe renders a one-line summary of a substep's routing for dry runs.
func Describe(sub config.Substep) string {
	parts := []string{"handler: " + sub.Handler}
	if sub.Timeout > 0 {
		parts = append(parts, fmt.Sprintf("timeout: %ds", sub.Timeout))
	}
	if sub.Prompt != "" {
		parts = append(parts, "custom prompt")
	}
	return strings.Join(parts, ", ")
}
