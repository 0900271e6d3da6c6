package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/createdbygabi/Blocks-sub001/internal/config"
	"github.com/createdbygabi/Blocks-sub001/internal/state"
)

func newTestManager(t *testing.T) (*Manager, *mockDispatcher) {
	t.Helper()
	store, err := state.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	mock := newMock()
	return NewManager(config.Default(), store, mock, nil), mock
}

func TestManager_StartAndExecute(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	v, err := m.Start(ctx, "u1", "meal kits", "parents")
	if err != nil {
		t.Fatal(err)
	}
	if v.Business.Idea != "meal kits" || v.Version != 1 {
		t.Fatalf("view = %+v", v)
	}
	if _, err := m.Start(ctx, "u1", "", ""); !errors.Is(err, ErrMissingIdea) {
		t.Fatalf("err = %v", err)
	}

	v, err = m.Execute(ctx, "u1", "logo")
	if err != nil {
		t.Fatal(err)
	}
	if v.Steps[0].Substeps[0].Status != state.SubstepCompleted {
		t.Fatalf("logo = %+v", v.Steps[0].Substeps[0])
	}
	if _, err := m.Start(ctx, "u1", "other", ""); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("err = %v, want ErrAlreadyStarted", err)
	}

	a, _ := m.Get(ctx, "u1")
	b, _ := m.Get(ctx, "u1")
	if a != b {
		t.Fatal("sessions should be cached")
	}
}

func TestManager_ReloadsRecordChangedElsewhere(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	if _, err := m.Start(ctx, "u1", "meal kits", ""); err != nil {
		t.Fatal(err)
	}
	cached, _ := m.Get(ctx, "u1")

	// another process writes behind the cached session
	rec, _ := m.Store.Load(ctx, "u1")
	rec.Business.Audience = "students"
	if err := m.Store.Save(ctx, rec); err != nil {
		t.Fatal(err)
	}

	v, err := m.View(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if v.Business.Audience != "students" {
		t.Fatalf("view = %+v", v.Business)
	}
	fresh, _ := m.Get(ctx, "u1")
	if fresh == cached {
		t.Fatal("changed session should have been reloaded")
	}
	if _, err := m.Defer(ctx, "u1", "payments"); err != nil {
		t.Fatalf("defer after reload: %v", err)
	}
}

func TestManager_DropsStaleSession(t *testing.T) {
	ctx := context.Background()
	m, mock := newTestManager(t)
	release := make(chan struct{})
	mock.block["logo"] = release
	if _, err := m.Start(ctx, "u1", "meal kits", ""); err != nil {
		t.Fatal(err)
	}
	cached, _ := m.Get(ctx, "u1")

	done := make(chan error, 1)
	go func() {
		_, err := m.Execute(ctx, "u1", "logo")
		done <- err
	}()
	<-mock.started

	// another process writes while logo is in flight
	rec, _ := m.Store.Load(ctx, "u1")
	rec.Business.Audience = "students"
	if err := m.Store.Save(ctx, rec); err != nil {
		t.Fatal(err)
	}
	if o, _ := m.Get(ctx, "u1"); o != cached {
		t.Fatal("session with a substep in flight must be kept")
	}

	close(release)
	if err := <-done; !errors.Is(err, state.ErrStaleRecord) {
		t.Fatalf("err = %v, want ErrStaleRecord", err)
	}
	fresh, _ := m.Get(ctx, "u1")
	if fresh == cached {
		t.Fatal("stale session should have been dropped")
	}
	if fresh.Record.Business.Audience != "students" {
		t.Fatalf("reloaded record = %+v", fresh.Record.Business)
	}
}

func TestManager_View(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	v, err := m.View(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Steps) != 6 || v.Next != "logo" || v.Finished {
		t.Fatalf("view = %+v", v)
	}
	if !v.Steps[0].CanExpand || !v.Steps[0].Expanded || v.Steps[1].CanExpand {
		t.Fatalf("expansion = %+v", v.Steps[:2])
	}
	if _, err := m.View(ctx, "../x"); !errors.Is(err, state.ErrInvalidUserID) {
		t.Fatalf("err = %v", err)
	}
}
