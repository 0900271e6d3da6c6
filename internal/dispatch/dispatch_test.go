package dispatch

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/createdbygabi/Blocks-sub001/internal/config"
	"github.com/createdbygabi/Blocks-sub001/internal/state"
)

func substep(id string) config.Substep {
	return config.Substep{ID: id, Title: id, Handler: id}
}

func businessFixture() state.Business {
	return state.Business{
		Idea:     "meal kits",
		Audience: "busy parents",
		Name:     "Plate Co",
		Domain:   "plate.co",
	}
}

func TestRegistry_DispatchRoutesByHandler(t *testing.T) {
	r := NewRegistry()
	var got string
	r.Register("llm", HandlerFunc(func(ctx context.Context, in Input) (state.Payload, error) {
		got = in.Substep.ID
		return state.LogoResult{URL: "x"}, nil
	}))

	sub := substep("logo")
	sub.Handler = "llm"
	p, err := r.Dispatch(context.Background(), Input{Substep: sub})
	if err != nil {
		t.Fatal(err)
	}
	if got != "logo" {
		t.Fatalf("handler saw substep %q", got)
	}
	if p.Kind() != state.KindLogo {
		t.Fatalf("kind = %q", p.Kind())
	}
}

func TestRegistry_NoHandler(t *testing.T) {
	_, err := NewRegistry().Dispatch(context.Background(), Input{Substep: substep("logo")})
	if !errors.Is(err, ErrNoHandler) {
		t.Fatalf("err = %v, want ErrNoHandler", err)
	}
}

func TestRegistry_NilPayloadIsError(t *testing.T) {
	r := NewRegistry()
	r.Register("logo", HandlerFunc(func(ctx context.Context, in Input) (state.Payload, error) {
		return nil, nil
	}))
	_, err := r.Dispatch(context.Background(), Input{Substep: substep("logo")})
	if !errors.Is(err, ErrEmptyResult) {
		t.Fatalf("err = %v, want ErrEmptyResult", err)
	}
}

func TestRegistry_WrongKindIsError(t *testing.T) {
	r := NewRegistry()
	r.Register("logo", HandlerFunc(func(ctx context.Context, in Input) (state.Payload, error) {
		return state.DeployResult{URL: "https://x.test"}, nil
	}))
	_, err := r.Dispatch(context.Background(), Input{Substep: substep("logo")})
	if !errors.Is(err, ErrWrongKind) {
		t.Fatalf("err = %v, want ErrWrongKind", err)
	}

	// a generic handler is held to the kind of the substep it serves
	r.Register("llm", HandlerFunc(func(ctx context.Context, in Input) (state.Payload, error) {
		return state.DeployResult{URL: "https://x.test"}, nil
	}))
	sub := substep("names")
	sub.Handler = "llm"
	if _, err := r.Dispatch(context.Background(), Input{Substep: sub}); !errors.Is(err, ErrWrongKind) {
		t.Fatalf("err = %v, want ErrWrongKind", err)
	}
	sub = substep("custom")
	sub.Handler = "llm"
	if _, err := r.Dispatch(context.Background(), Input{Substep: sub}); err != nil {
		t.Fatalf("unkeyed substep: %v", err)
	}
}

func TestRegistry_Timeout(t *testing.T) {
	r := NewRegistry()
	r.Register("deploy", HandlerFunc(func(ctx context.Context, in Input) (state.Payload, error) {
		dl, ok := ctx.Deadline()
		if !ok {
			t.Fatal("expected a deadline")
		}
		if time.Until(dl) > 2*time.Second {
			t.Fatalf("deadline too far: %v", time.Until(dl))
		}
		return nil, context.DeadlineExceeded
	}))
	sub := substep("deploy")
	sub.Timeout = 1
	_, err := r.Dispatch(context.Background(), Input{Substep: sub})
	if err == nil || !strings.Contains(err.Error(), "timed out after 1s") {
		t.Fatalf("err = %v", err)
	}
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry()
	r.Register("names", HandlerFunc(nil))
	r.Register("logo", HandlerFunc(nil))
	got := r.Names()
	if len(got) != 2 || got[0] != "logo" || got[1] != "names" {
		t.Fatalf("Names = %v", got)
	}
}

func TestBuildEnv_BlocksVars(t *testing.T) {
	in := Input{UserID: "u1", RunID: "r1", StepID: "landing", Substep: substep("deploy"), Business: businessFixture()}
	env := BuildEnv(in)

	find := func(key string) string {
		for _, e := range env {
			if strings.HasPrefix(e, key+"=") {
				return strings.TrimPrefix(e, key+"=")
			}
		}
		return ""
	}
	if v := find("BLOCKS_SLUG"); v != "plate-co" {
		t.Fatalf("BLOCKS_SLUG = %q", v)
	}
	if v := find("BLOCKS_USER_ID"); v != "u1" {
		t.Fatalf("BLOCKS_USER_ID = %q", v)
	}
	if v := find("BLOCKS_SUBSTEP_ID"); v != "deploy" {
		t.Fatalf("BLOCKS_SUBSTEP_ID = %q", v)
	}
}

func TestPreflight_MissingHandler(t *testing.T) {
	cfg := config.Default()
	r := NewRegistry()
	r.Register("logo", HandlerFunc(nil))
	err := Preflight(cfg, r)
	if !errors.Is(err, ErrNoHandler) || !strings.Contains(err.Error(), "names") {
		t.Fatalf("err = %v", err)
	}
}

func TestPreflight_AllRegistered(t *testing.T) {
	cfg := config.Default()
	r := NewRegistry()
	for _, h := range cfg.Handlers() {
		r.Register(h, HandlerFunc(nil))
	}
	if err := Preflight(cfg, r, "bash"); err != nil {
		t.Fatalf("expected bash to be found, got: %v", err)
	}
}

func TestPreflight_MissingBinary(t *testing.T) {
	cfg := &config.Config{Name: "x"}
	err := Preflight(cfg, NewRegistry(), "definitely-not-a-binary-123")
	if err == nil || !strings.Contains(err.Error(), "definitely-not-a-binary-123") {
		t.Fatalf("err = %v", err)
	}
}
