package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/createdbygabi/Blocks-sub001/internal/config"
	"github.com/createdbygabi/Blocks-sub001/internal/dispatch"
	"github.com/createdbygabi/Blocks-sub001/internal/state"
)

func TestRun_AllSubstepsSucceed(t *testing.T) {
	mock := newMock()
	o := newTestOrchestrator(t, mock)

	if err := o.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if o.Record.Status != state.StatusCompleted {
		t.Fatalf("status = %q", o.Record.Status)
	}
	calls := mock.callNames()
	if fmt.Sprint(calls) != fmt.Sprint(o.Config.SubstepOrder()) {
		t.Fatalf("calls = %v", calls)
	}
	if len(o.Record.Onboarding.CompletedSteps) != 6 {
		t.Fatalf("completed = %v", o.Record.Onboarding.CompletedSteps.Sorted())
	}
	if o.Record.Onboarding.LastStep == nil || *o.Record.Onboarding.LastStep != "marketing" {
		t.Fatalf("lastStep = %v", o.Record.Onboarding.LastStep)
	}
	b := o.Record.Business
	if b.Name != "Acme" || b.SiteURL == "" || b.Stripe == nil || b.Marketing == nil {
		t.Fatalf("business = %+v", b)
	}
}

func TestRun_FailStopsPipeline(t *testing.T) {
	mock := newMock()
	mock.errors["deploy"] = errors.New("vercel: unauthorized")
	o := newTestOrchestrator(t, mock)

	err := o.Run(context.Background())
	if err == nil {
		t.Fatal("expected deploy failure")
	}
	for _, c := range mock.callNames() {
		if c == "copywriting" {
			t.Fatal("copywriting should not have been called")
		}
	}
	if o.Record.Status != state.StatusFailed || o.Record.Error != "deploy" {
		t.Fatalf("status = %q, error = %q", o.Record.Status, o.Record.Error)
	}

	// no automatic retry
	if err := o.Run(context.Background()); !errors.Is(err, ErrHalted) {
		t.Fatalf("second run err = %v, want ErrHalted", err)
	}

	delete(mock.errors, "deploy")
	if err := o.Reset(context.Background(), "deploy"); err != nil {
		t.Fatal(err)
	}
	if err := o.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if o.Record.Status != state.StatusCompleted {
		t.Fatalf("status = %q", o.Record.Status)
	}
}

func TestRun_ResumesFromPersistedState(t *testing.T) {
	ctx := context.Background()
	mock := newMock()
	mock.errors["pricing_plan"] = errors.New("boom")
	o := newTestOrchestrator(t, mock)
	_ = o.Run(ctx)

	rec, err := o.Store.Load(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	mock2 := newMock()
	o2 := New(config.Default(), rec, o.Store, mock2)
	if err := o2.Reset(ctx, "pricing_plan"); err != nil {
		t.Fatal(err)
	}
	if err := o2.Run(ctx); err != nil {
		t.Fatal(err)
	}
	calls := mock2.callNames()
	if len(calls) == 0 || calls[0] != "pricing_plan" {
		t.Fatalf("resumed calls = %v", calls)
	}
	for _, c := range calls {
		if c == "logo" || c == "names" {
			t.Fatalf("completed substep %q re-ran", c)
		}
	}
}

func TestRun_SkipsDeferredSteps(t *testing.T) {
	ctx := context.Background()
	mock := newMock()
	o := newTestOrchestrator(t, mock)
	if err := o.Defer(ctx, "payments"); err != nil {
		t.Fatal(err)
	}
	if err := o.Run(ctx); err != nil {
		t.Fatal(err)
	}
	for _, c := range mock.callNames() {
		if c == "stripe" {
			t.Fatal("deferred step ran")
		}
	}
	if o.Record.Status != state.StatusCompleted || !o.Finished() {
		t.Fatalf("status = %q", o.Record.Status)
	}
}

func TestRun_GateDefersAndStops(t *testing.T) {
	ctx := context.Background()
	mock := newMock()
	o := newTestOrchestrator(t, mock)
	var asked []string
	o.Gate = func(ctx context.Context, step config.Step) (dispatch.GateAnswer, error) {
		asked = append(asked, step.ID)
		if step.ID == "payments" {
			return dispatch.GateDefer, nil
		}
		return dispatch.GateStop, nil
	}

	if err := o.Run(ctx); !errors.Is(err, ErrStopped) {
		t.Fatalf("err = %v, want ErrStopped", err)
	}
	if fmt.Sprint(asked) != "[payments marketing]" {
		t.Fatalf("asked = %v", asked)
	}
	if !o.Record.Onboarding.DeferredSteps.Has("payments") {
		t.Fatal("payments should be deferred")
	}
	if o.Record.Status == state.StatusCompleted {
		t.Fatal("marketing not done")
	}
}

func TestRun_GateNotAskedForRequiredSteps(t *testing.T) {
	mock := newMock()
	o := newTestOrchestrator(t, mock)
	var asked []string
	o.Gate = func(ctx context.Context, step config.Step) (dispatch.GateAnswer, error) {
		asked = append(asked, step.ID)
		return dispatch.GateDefer, nil
	}

	if err := o.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(asked) != "[payments marketing]" {
		t.Fatalf("asked = %v", asked)
	}
	if !o.Finished() || o.Record.Onboarding.CompletedSteps.Has("payments") {
		t.Fatalf("completed = %v", o.Record.Onboarding.CompletedSteps.Sorted())
	}
}

func TestRun_RequiresIdea(t *testing.T) {
	mock := newMock()
	o := newTestOrchestrator(t, mock)
	o.Record.Business.Idea = ""

	if err := o.Run(context.Background()); !errors.Is(err, ErrMissingIdea) {
		t.Fatalf("err = %v, want ErrMissingIdea", err)
	}
	if calls := mock.callNames(); len(calls) != 0 {
		t.Fatalf("calls = %v, want none", calls)
	}
	if o.Record.Status == state.StatusCompleted || o.Record.Version != 0 {
		t.Fatalf("status = %q, version = %d", o.Record.Status, o.Record.Version)
	}
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	o := newTestOrchestrator(t, newMock())
	if err := o.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if o.Record.Status != state.StatusInterrupted {
		t.Fatalf("status = %q", o.Record.Status)
	}
}

func TestRun_StuckLoadingNeedsReset(t *testing.T) {
	ctx := context.Background()
	o := newTestOrchestrator(t, newMock())
	o.Record.Progress["logo"] = state.ProgressEntry{Status: state.SubstepLoading}

	if err := o.Run(ctx); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
	if err := o.Reset(ctx, "logo"); err != nil {
		t.Fatal(err)
	}
	if err := o.Run(ctx); err != nil {
		t.Fatal(err)
	}
}
