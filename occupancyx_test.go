package occupancyx

import (
	"testing"
	"time"
)

var now0 = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func TestNewEngine_RejectsCycle(t *testing.T) {
	a := LocationConfig{ID: "a", ParentID: "b", Kind: AREA, ContributesToParent: true}
	b := LocationConfig{ID: "b", ParentID: "a", Kind: AREA, ContributesToParent: true}
	if _, err := NewEngine([]*LocationConfig{&a, &b}); err == nil {
		t.Fatal("expected a cycle to be rejected")
	}
}

func TestEngine_EndToEnd(t *testing.T) {
	kitchen := LocationConfig{ID: "kitchen", Kind: AREA, ContributesToParent: true}
	e, err := NewEngine([]*LocationConfig{&kitchen})
	if err != nil {
		t.Fatal(err)
	}

	ev := NewEvent("kitchen", Momentary, "motion", "pir1", now0).WithDuration(5 * time.Minute)
	res, err := e.HandleEvent(ev, now0)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Transitions) != 1 || res.Transitions[0].Kind != Occupied {
		t.Fatalf("expected one OCCUPIED transition, got %+v", res.Transitions)
	}

	st, err := e.State("kitchen")
	if err != nil {
		t.Fatal(err)
	}
	if !st.IsOccupied {
		t.Fatal("expected kitchen to be occupied")
	}

	snap := e.ExportState()
	if _, ok := snap["kitchen"]; !ok {
		t.Fatal("expected kitchen in the exported snapshot")
	}

	after := now0.Add(5 * time.Minute)
	sweepRes := e.CheckTimeouts(after)
	if len(sweepRes.Transitions) != 1 {
		t.Fatalf("expected a VACATED transition on sweep, got %+v", sweepRes.Transitions)
	}
}

func TestValidateHierarchy(t *testing.T) {
	ok := LocationConfig{ID: "a", Kind: AREA, ContributesToParent: true}
	if err := ValidateHierarchy([]*LocationConfig{&ok}); err != nil {
		t.Fatalf("expected valid hierarchy, got %v", err)
	}

	dangling := LocationConfig{ID: "b", ParentID: "missing", Kind: AREA, ContributesToParent: true}
	if err := ValidateHierarchy([]*LocationConfig{&dangling}); err == nil {
		t.Fatal("expected a dangling parent to be rejected")
	}
}

type recordingObserver struct {
	transitions int
}

func (r *recordingObserver) OnTransition(Transition)         { r.transitions++ }
func (r *recordingObserver) OnUnknownLocation(string)         {}
func (r *recordingObserver) OnRestoreWarning(RestoreWarning) {}

func TestEngine_ObserverReceivesTransitions(t *testing.T) {
	kitchen := LocationConfig{ID: "kitchen", Kind: AREA, ContributesToParent: true}
	obs := &recordingObserver{}
	e, err := NewEngine([]*LocationConfig{&kitchen}, WithObserver(obs))
	if err != nil {
		t.Fatal(err)
	}
	ev := NewEvent("kitchen", Momentary, "motion", "pir1", now0).WithDuration(time.Minute)
	if _, err := e.HandleEvent(ev, now0); err != nil {
		t.Fatal(err)
	}
	if obs.transitions != 1 {
		t.Fatalf("expected the observer to see 1 transition, got %d", obs.transitions)
	}
}

func TestEngine_UnknownLocationError(t *testing.T) {
	kitchen := LocationConfig{ID: "kitchen", Kind: AREA, ContributesToParent: true}
	e, err := NewEngine([]*LocationConfig{&kitchen})
	if err != nil {
		t.Fatal(err)
	}
	ev := NewEvent("nope", Momentary, "motion", "pir1", now0)
	if _, err := e.HandleEvent(ev, now0); err == nil {
		t.Fatal("expected an UnknownLocation error")
	}
}
