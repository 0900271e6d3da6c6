package state

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStore_LoadUnknownUser(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r, err := s.Load(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if r.Version != 0 || r.Status != StatusRunning || r.RunID == "" {
		t.Fatalf("fresh record = %+v", r)
	}
	if len(r.Onboarding.CompletedSteps) != 0 || r.Onboarding.LastStep != nil {
		t.Fatalf("fresh onboarding = %+v", r.Onboarding)
	}
}

func TestFileStore_SaveAndLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRecord("u1")
	r.Onboarding.Complete("revenue")
	r.Onboarding.Complete("branding")
	if err := r.Onboarding.Defer("payments"); err != nil {
		t.Fatal(err)
	}
	r.Onboarding.SetLastStep("revenue")
	r.Progress["logo"] = ProgressEntry{Status: SubstepCompleted, Data: LogoResult{URL: "x"}}
	r.Business.Name = "Acme"

	if err := s.Save(ctx, r); err != nil {
		t.Fatal(err)
	}
	if r.Version != 1 {
		t.Fatalf("Version = %d, want 1", r.Version)
	}

	loaded, err := s.Load(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if !loaded.Onboarding.Equal(r.Onboarding) {
		t.Fatalf("onboarding = %+v, want %+v", loaded.Onboarding, r.Onboarding)
	}
	if loaded.Version != 1 || loaded.Business.Name != "Acme" || loaded.RunID != r.RunID {
		t.Fatalf("loaded = %+v", loaded)
	}
	if lr, ok := loaded.Progress["logo"].Data.(LogoResult); !ok || lr.URL != "x" {
		t.Fatalf("logo payload = %#v", loaded.Progress["logo"].Data)
	}
}

func TestFileStore_StaleWriterRejected(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	base := NewRecord("u1")
	if err := s.Save(ctx, base); err != nil {
		t.Fatal(err)
	}

	first, _ := s.Load(ctx, "u1")
	second, _ := s.Load(ctx, "u1")

	first.Onboarding.Complete("branding")
	if err := s.Save(ctx, first); err != nil {
		t.Fatal(err)
	}
	second.Onboarding.Complete("revenue")
	err = s.Save(ctx, second)
	if !errors.Is(err, ErrStaleRecord) {
		t.Fatalf("err = %v, want ErrStaleRecord", err)
	}
	if second.Version != 1 {
		t.Fatalf("rejected save changed version to %d", second.Version)
	}

	final, _ := s.Load(ctx, "u1")
	if !final.Onboarding.Equal(first.Onboarding) {
		t.Fatalf("persisted %+v, want first writer's %+v", final.Onboarding, first.Onboarding)
	}
}

func TestFileStore_InvalidUserID(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"", "../etc", "a/b", ".hidden"} {
		if _, err := s.Load(context.Background(), id); !errors.Is(err, ErrInvalidUserID) {
			t.Fatalf("Load(%q) err = %v", id, err)
		}
	}
}

func TestFileStore_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Save(context.Background(), NewRecord("u1")); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "u1.json" {
		t.Fatalf("dir entries = %v", entries)
	}
}

func TestFileStore_CorruptRecord(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "u1.json"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	s, _ := NewFileStore(dir)
	if _, err := s.Load(context.Background(), "u1"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestRecord_Timings(t *testing.T) {
	r := NewRecord("u1")
	start := r.CreatedAt
	r.AddStart("logo", start)
	r.AddEnd("logo", start.Add(75e9))
	d, ok := r.LastDuration("logo")
	if !ok || d != "1m 15s" {
		t.Fatalf("LastDuration = %q, %v", d, ok)
	}
	if _, ok := r.LastDuration("names"); ok {
		t.Fatal("names never ran")
	}
}

func TestRecord_CloneIndependent(t *testing.T) {
	r := NewRecord("u1")
	r.Business.Plans = []Plan{{Name: "Pro", Features: []string{"a"}}}
	c := r.Clone()
	c.Business.Plans[0].Features[0] = "b"
	c.Progress["logo"] = ProgressEntry{Status: SubstepLoading}
	if r.Business.Plans[0].Features[0] != "a" || len(r.Progress) != 0 {
		t.Fatal("clone shares state with original")
	}
}
