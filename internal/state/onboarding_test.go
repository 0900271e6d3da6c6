package state

import (
	"encoding/json"
	"testing"
)

func TestStepSet_MarshalSorted(t *testing.T) {
	s := NewStepSet("revenue", "branding", "landing")
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `["branding","landing","revenue"]` {
		t.Fatalf("got %s", data)
	}
}

func TestStepSet_NilMarshalsEmpty(t *testing.T) {
	var s StepSet
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `[]` {
		t.Fatalf("got %s, want []", data)
	}
}

func TestOnboarding_JSONShape(t *testing.T) {
	data, err := json.Marshal(NewOnboarding())
	if err != nil {
		t.Fatal(err)
	}
	want := `{"completedSteps":[],"deferredSteps":[],"lastStep":null}`
	if string(data) != want {
		t.Fatalf("got %s, want %s", data, want)
	}
}

func TestOnboarding_RoundTripIgnoresOrder(t *testing.T) {
	in := `{"completedSteps":["revenue","branding"],"deferredSteps":["payments"],"lastStep":"revenue"}`
	var o Onboarding
	if err := json.Unmarshal([]byte(in), &o); err != nil {
		t.Fatal(err)
	}
	want := NewOnboarding()
	want.Complete("branding")
	want.Complete("revenue")
	if err := want.Defer("payments"); err != nil {
		t.Fatal(err)
	}
	want.SetLastStep("revenue")
	if !o.Equal(want) {
		t.Fatalf("decoded %+v, want %+v", o, want)
	}
}

func TestOnboarding_CompleteClearsDeferral(t *testing.T) {
	o := NewOnboarding()
	if err := o.Defer("payments"); err != nil {
		t.Fatal(err)
	}
	o.Complete("payments")
	if o.DeferredSteps.Has("payments") {
		t.Fatal("completed step must not stay deferred")
	}
	if !o.CompletedSteps.Has("payments") {
		t.Fatal("payments should be completed")
	}
}

func TestOnboarding_DeferCompletedRejected(t *testing.T) {
	o := NewOnboarding()
	o.Complete("branding")
	if err := o.Defer("branding"); err != ErrDeferCompleted {
		t.Fatalf("err = %v, want ErrDeferCompleted", err)
	}
}

func TestOnboarding_ZeroValueUsable(t *testing.T) {
	var o Onboarding
	o.Complete("branding")
	o.Resume("payments")
	if !o.Satisfied("branding") || o.Satisfied("payments") {
		t.Fatalf("unexpected state %+v", o)
	}
}

func TestOnboarding_CloneIndependent(t *testing.T) {
	o := NewOnboarding()
	o.SetLastStep("branding")
	c := o.Clone()
	c.Complete("revenue")
	c.SetLastStep("revenue")
	if o.CompletedSteps.Has("revenue") || *o.LastStep != "branding" {
		t.Fatal("clone shares state with original")
	}
}
