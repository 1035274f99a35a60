package core

import (
	"testing"
	"time"

	"github.com/comalice/occupancyx/internal/primitives"
)

var now0 = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func kitchenCfg(timeouts map[string]int) *primitives.LocationConfig {
	c := primitives.NewLocationConfig("kitchen", primitives.AREA)
	c.Timeouts = timeouts
	return c
}

// Scenario 1: motion pulse starts a timer.
func TestKernel_MotionPulseStartsTimer(t *testing.T) {
	cfg := kitchenCfg(map[string]int{"motion": 10})
	state := primitives.DefaultRuntimeState()
	ev := primitives.NewEvent("kitchen", primitives.Momentary, "motion", "pir1", now0)

	next, tr := ApplyKernel(state, ev, now0, cfg)

	if !next.IsOccupied {
		t.Fatal("expected occupied")
	}
	want := now0.Add(10 * time.Minute)
	if next.OccupiedUntil == nil || !next.OccupiedUntil.Equal(want) {
		t.Fatalf("occupied_until = %v, want %v", next.OccupiedUntil, want)
	}
	if tr == nil || tr.Kind != primitives.Occupied {
		t.Fatalf("transition = %+v, want OCCUPIED", tr)
	}
}

// Scenario 2: timer never shortens.
func TestKernel_TimerNeverShortens(t *testing.T) {
	cfg := kitchenCfg(map[string]int{"motion": 10})
	state := primitives.DefaultRuntimeState()
	ev1 := primitives.NewEvent("kitchen", primitives.Momentary, "motion", "pir1", now0)
	state, _ = ApplyKernel(state, ev1, now0, cfg)

	laterNow := now0.Add(5 * time.Minute)
	dur := 3 * time.Minute
	ev2 := primitives.NewEvent("kitchen", primitives.Momentary, "motion", "pir1", laterNow).WithDuration(dur)
	next, _ := ApplyKernel(state, ev2, laterNow, cfg)

	want := now0.Add(10 * time.Minute)
	if !next.OccupiedUntil.Equal(want) {
		t.Fatalf("occupied_until = %v, want unchanged %v", next.OccupiedUntil, want)
	}
}

// Scenario 3: hold release uses fudge factor.
func TestKernel_HoldReleaseFudgeFactor(t *testing.T) {
	cfg := kitchenCfg(map[string]int{"presence": 2})
	state := primitives.DefaultRuntimeState()

	start := primitives.NewEvent("kitchen", primitives.HoldStart, "presence", "radar", now0)
	state, tr := ApplyKernel(state, start, now0, cfg)
	if tr == nil || tr.Kind != primitives.Occupied {
		t.Fatalf("expected OCCUPIED on hold start, got %+v", tr)
	}
	if _, ok := state.ActiveHolds["radar"]; !ok {
		t.Fatal("expected radar in active holds")
	}
	if state.OccupiedUntil != nil {
		t.Fatalf("expected indefinite, got %v", state.OccupiedUntil)
	}

	releaseAt := time.Date(2025, 1, 1, 12, 30, 0, 0, time.UTC)
	end := primitives.NewEvent("kitchen", primitives.HoldEnd, "presence", "radar", releaseAt)
	next, tr2 := ApplyKernel(state, end, releaseAt, cfg)

	if len(next.ActiveHolds) != 0 {
		t.Fatalf("expected empty holds, got %v", next.ActiveHolds)
	}
	want := releaseAt.Add(2 * time.Minute)
	if next.OccupiedUntil == nil || !next.OccupiedUntil.Equal(want) {
		t.Fatalf("occupied_until = %v, want %v", next.OccupiedUntil, want)
	}
	if tr2 == nil || tr2.Kind != primitives.Extended {
		t.Fatalf("transition kind = %+v, want EXTENDED (occupied_until gained)", tr2)
	}
}

// Scenario 4: Ghost Mike — identity does not survive vacancy.
func TestKernel_GhostMike(t *testing.T) {
	cfg := kitchenCfg(map[string]int{"motion": 10})
	state := primitives.DefaultRuntimeState()
	ev := primitives.NewEvent("kitchen", primitives.Momentary, "motion", "pir1", now0).WithOccupant("Mike")
	state, _ = ApplyKernel(state, ev, now0, cfg)
	if _, ok := state.ActiveOccupants["Mike"]; !ok {
		t.Fatal("expected Mike present")
	}

	vacated := VacancyCleanup(state)
	if vacated.IsOccupied || len(vacated.ActiveOccupants) != 0 || len(vacated.ActiveHolds) != 0 || vacated.OccupiedUntil != nil {
		t.Fatalf("expected fully default vacant state, got %+v", vacated)
	}
}

// Scenario 5: individual departure — one identity leaves, others remain indefinitely held.
func TestKernel_IndividualDeparture(t *testing.T) {
	cfg := kitchenCfg(nil)
	state := primitives.DefaultRuntimeState()

	mike := primitives.NewEvent("kitchen", primitives.HoldStart, "presence", "ble_mike", now0).WithOccupant("Mike")
	state, _ = ApplyKernel(state, mike, now0, cfg)
	marla := primitives.NewEvent("kitchen", primitives.HoldStart, "presence", "ble_marla", now0).WithOccupant("Marla")
	state, _ = ApplyKernel(state, marla, now0, cfg)

	departAt := time.Date(2025, 1, 1, 12, 5, 0, 0, time.UTC)
	depart := primitives.NewEvent("kitchen", primitives.HoldEnd, "presence", "ble_mike", departAt).WithOccupant("Mike")
	next, tr := ApplyKernel(state, depart, departAt, cfg)

	if _, ok := next.ActiveOccupants["Marla"]; !ok {
		t.Fatalf("expected Marla to remain, got %v", next.ActiveOccupants)
	}
	if _, ok := next.ActiveOccupants["Mike"]; ok {
		t.Fatalf("expected Mike removed, got %v", next.ActiveOccupants)
	}
	if _, ok := next.ActiveHolds["ble_marla"]; !ok {
		t.Fatalf("expected ble_marla hold to remain, got %v", next.ActiveHolds)
	}
	if !next.IsOccupied || next.OccupiedUntil != nil {
		t.Fatalf("expected still indefinitely occupied, got %+v", next)
	}
	if tr == nil || tr.Kind != primitives.IdentityChanged {
		t.Fatalf("transition kind = %+v, want IDENTITY_CHANGED", tr)
	}
}

// Scenario 7: lock gate.
func TestKernel_LockGate(t *testing.T) {
	cfg := kitchenCfg(map[string]int{"motion": 10})
	state := primitives.DefaultRuntimeState()
	state.LockState = primitives.LockedFrozen

	motion := primitives.NewEvent("kitchen", primitives.Momentary, "motion", "pir1", now0)
	next, tr := ApplyKernel(state, motion, now0, cfg)
	if tr != nil {
		t.Fatalf("expected no transition while locked, got %+v", tr)
	}
	if next.IsOccupied {
		t.Fatal("expected unchanged vacant state")
	}

	occupiedLocked := state.Clone()
	occupiedLocked.IsOccupied = true
	fv := false
	vacate := primitives.NewEvent("kitchen", primitives.Manual, "", "", now0)
	vacate.ForceState = &fv
	next2, tr2 := ApplyKernel(occupiedLocked, vacate, now0, cfg)
	if tr2 == nil {
		t.Fatal("expected manual force-vacant to proceed through the lock gate")
	}
	if next2.IsOccupied {
		t.Fatal("expected vacant after manual force-vacant")
	}

	unlock := primitives.NewEvent("kitchen", primitives.LockChange, "", "", now0)
	unlock.TargetLock = primitives.Unlocked
	next3, tr3 := ApplyKernel(next2, unlock, now0, cfg)
	if tr3 == nil || tr3.Kind != primitives.LockChanged {
		t.Fatalf("expected LOCK_CHANGED, got %+v", tr3)
	}
	if next3.LockState != primitives.Unlocked {
		t.Fatal("expected unlocked")
	}

	next4, tr4 := ApplyKernel(next3, motion, now0, cfg)
	if tr4 == nil || tr4.Kind != primitives.Occupied || !next4.IsOccupied {
		t.Fatalf("expected normal motion handling after unlock, got state=%+v tr=%+v", next4, tr4)
	}
}

func TestKernel_ManualForceTrueIndefinite(t *testing.T) {
	cfg := kitchenCfg(nil)
	state := primitives.DefaultRuntimeState()
	force := true
	ev := primitives.NewEvent("kitchen", primitives.Manual, "", "", now0)
	ev.ForceState = &force
	next, tr := ApplyKernel(state, ev, now0, cfg)
	if tr == nil || tr.Kind != primitives.Occupied {
		t.Fatalf("expected OCCUPIED, got %+v", tr)
	}
	if next.OccupiedUntil != nil {
		t.Fatalf("expected indefinite, got %v", next.OccupiedUntil)
	}
}

func TestKernel_HoldEndUnknownSourceIsNoOp(t *testing.T) {
	cfg := kitchenCfg(nil)
	state := primitives.DefaultRuntimeState()
	ev := primitives.NewEvent("kitchen", primitives.HoldEnd, "presence", "ghost-sensor", now0)
	next, tr := ApplyKernel(state, ev, now0, cfg)
	if tr != nil {
		t.Fatalf("expected no-op, got %+v", tr)
	}
	if next.IsOccupied {
		t.Fatal("expected still vacant")
	}
}

// §4.5's HELD row has MANUAL force-vacant -> VACANT unconditionally: a
// manual force-vacant always runs Vacancy Cleanup, clearing ActiveHolds too.
func TestKernel_ManualForceVacantClearsAnActiveHold(t *testing.T) {
	cfg := kitchenCfg(nil)
	state := primitives.DefaultRuntimeState()
	hold := primitives.NewEvent("kitchen", primitives.HoldStart, "presence", "radar", now0)
	held, tr := ApplyKernel(state, hold, now0, cfg)
	if tr == nil || tr.Kind != primitives.Occupied {
		t.Fatalf("expected OCCUPIED from hold start, got %+v", tr)
	}

	force := false
	vacate := primitives.NewEvent("kitchen", primitives.Manual, "", "", now0)
	vacate.ForceState = &force
	next, tr2 := ApplyKernel(held, vacate, now0, cfg)
	if tr2 == nil || tr2.Kind != primitives.Vacated {
		t.Fatalf("expected VACATED, got %+v", tr2)
	}
	if next.IsOccupied {
		t.Fatal("expected kitchen to be vacant")
	}
	if len(next.ActiveHolds) != 0 {
		t.Fatalf("expected the hold to be cleared, got %+v", next.ActiveHolds)
	}
}
