// Package core implements the runtime tiers of the occupancy engine: the
// per-location Transition Kernel, the ancestor Propagation Driver, the
// Timeout Sweep, the Scheduler Oracle, snapshot export/restore, and the
// versioned Registry. Everything here is pure with respect to time and I/O
// except where a pluggable adapter (Registry, Persister) is explicitly
// invoked by a host — grounded on the teacher engine's layered
// primitives -> core -> extensibility -> production design, generalized
// from a single-root statechart tree to an occupancy location forest.
package core

import (
	"time"

	"github.com/comalice/occupancyx/internal/primitives"
)

// ApplyKernel is the Transition Kernel: apply(state, event, now, config) ->
// (new_state, transition?). Pure; no side effects. Phases run in the fixed
// precedence order documented in spec §4.1: lock gate, lock change, manual
// override, identity update, hold-set update, expiration computation,
// transition-kind determination.
func ApplyKernel(state primitives.RuntimeState, event primitives.OccupancyEvent, now time.Time, cfg *primitives.LocationConfig) (primitives.RuntimeState, *primitives.Transition) {
	old := state

	// Phase 1: lock gate. A PROPAGATED event is discarded here too, since it
	// is never in the {MANUAL, LOCK_CHANGE} allow-list.
	if state.LockState == primitives.LockedFrozen &&
		event.EventType != primitives.Manual && event.EventType != primitives.LockChange {
		return state, nil
	}

	working := state.Clone()

	// Phase 2: lock change. Touches nothing else.
	if event.EventType == primitives.LockChange {
		working.LockState = event.TargetLock
		return finalize(old, working)
	}

	// Phase 3: manual override.
	if event.EventType == primitives.Manual {
		if event.ForceState != nil {
			if *event.ForceState {
				working.IsOccupied = true
				if event.Duration != nil {
					until := now.Add(*event.Duration)
					working.OccupiedUntil = &until
				} else {
					working.OccupiedUntil = nil
				}
				// Open question (a): holds dominate a manual finite override.
				if len(working.ActiveHolds) > 0 {
					working.OccupiedUntil = nil
				}
			} else {
				working = VacancyCleanup(working)
			}
			return finalize(old, working)
		}
		// ForceState absent: fall through and process like a pulse.
	}

	// Phase 4: identity update.
	if event.OccupantID != "" {
		switch event.EventType {
		case primitives.HoldStart, primitives.Momentary:
			working.ActiveOccupants[event.OccupantID] = struct{}{}
		case primitives.HoldEnd:
			delete(working.ActiveOccupants, event.OccupantID)
		}
	}

	// Phase 5: hold-set update.
	switch {
	case event.EventType == primitives.HoldStart:
		working.ActiveHolds[event.SourceID] = struct{}{}
	case event.EventType == primitives.HoldEnd:
		delete(working.ActiveHolds, event.SourceID)
	case event.EventType == primitives.Propagated && event.HeldChild && !event.Release:
		working.ActiveHolds[event.SourceID] = struct{}{}
	case event.EventType == primitives.Propagated && event.Release:
		delete(working.ActiveHolds, event.SourceID)
	}

	// A HOLD_END (or release) naming a source or occupant that is not present
	// removes nothing and so starts no trailing timer.
	released := len(working.ActiveHolds) < len(old.ActiveHolds) ||
		len(working.ActiveOccupants) < len(old.ActiveOccupants)
	applyExpiration(&working, event, now, cfg, released)

	return finalize(old, working)
}

// VacancyCleanup clears a snapshot to the fully-default vacant state. Shared
// by the manual force-vacant path and the Timeout Sweep.
func VacancyCleanup(state primitives.RuntimeState) primitives.RuntimeState {
	return state.Vacate()
}

// applyExpiration resolves phase 6: the indefinite case, the pulse case, and
// the hold-release (fudge factor) case, in that order of precedence.
func applyExpiration(working *primitives.RuntimeState, event primitives.OccupancyEvent, now time.Time, cfg *primitives.LocationConfig, released bool) {
	holdStarted := event.EventType == primitives.HoldStart ||
		(event.EventType == primitives.Propagated && event.HeldChild && !event.Release)

	indefinite := len(working.ActiveHolds) > 0 ||
		(len(working.ActiveOccupants) > 0 && holdStarted)

	if indefinite {
		working.OccupiedUntil = nil
		working.IsOccupied = true
		return
	}

	// A MANUAL event only reaches this phase when ForceState is absent.
	isPulse := event.EventType == primitives.Momentary || event.EventType == primitives.Manual ||
		(event.EventType == primitives.Propagated && !event.HeldChild && !event.Release)

	holdReleased := released && (event.EventType == primitives.HoldEnd ||
		(event.EventType == primitives.Propagated && event.Release)) &&
		len(working.ActiveHolds) == 0 && len(working.ActiveOccupants) == 0

	switch {
	case isPulse:
		duration := resolveDuration(event, cfg, primitives.DefaultPulseTimeoutMinutes)
		newExpiry := event.Timestamp.Add(duration)
		working.IsOccupied = true
		if working.OccupiedUntil != nil {
			if newExpiry.After(*working.OccupiedUntil) {
				working.OccupiedUntil = &newExpiry
			}
		} else {
			working.OccupiedUntil = &newExpiry
		}
	case holdReleased:
		duration := resolveDuration(event, cfg, primitives.DefaultTrailingTimeoutMinutes)
		until := now.Add(duration)
		working.OccupiedUntil = &until
		working.IsOccupied = true
	}
}

// resolveDuration implements: event.duration if present, else
// config.timeouts[event.category], else the supplied engine default minutes.
func resolveDuration(event primitives.OccupancyEvent, cfg *primitives.LocationConfig, defaultMinutes int) time.Duration {
	if event.Duration != nil {
		return *event.Duration
	}
	minutes := defaultMinutes
	if cfg != nil {
		minutes = cfg.TimeoutMinutes(event.Category, defaultMinutes)
	}
	return time.Duration(minutes) * time.Minute
}

// finalize (phase 8) classifies the observable change between old and new,
// returning the new state and, if anything observably changed, a Transition.
func finalize(old, new_ primitives.RuntimeState) (primitives.RuntimeState, *primitives.Transition) {
	kind, changed := classify(old, new_)
	if !changed {
		return new_, nil
	}
	return new_, &primitives.Transition{Old: old, New: new_, Kind: kind}
}

func classify(old, new_ primitives.RuntimeState) (primitives.TransitionKind, bool) {
	if old.LockState != new_.LockState {
		return primitives.LockChanged, true
	}
	if !old.IsOccupied && new_.IsOccupied {
		return primitives.Occupied, true
	}
	if old.IsOccupied && !new_.IsOccupied {
		return primitives.Vacated, true
	}
	if old.Equal(new_) {
		return "", false
	}
	// occupied -> occupied, something changed.
	oldUntil, newUntil := old.OccupiedUntil, new_.OccupiedUntil
	extended := (oldUntil == nil) != (newUntil == nil)
	if !extended && oldUntil != nil && newUntil != nil && !oldUntil.Equal(*newUntil) {
		extended = true
	}
	if extended {
		return primitives.Extended, true
	}
	if !setEqualPublic(old.ActiveHolds, new_.ActiveHolds) {
		return primitives.HoldChanged, true
	}
	if !setEqualPublic(old.ActiveOccupants, new_.ActiveOccupants) {
		return primitives.IdentityChanged, true
	}
	return "", false
}

func setEqualPublic(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
