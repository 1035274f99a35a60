package core

import (
	"time"

	"github.com/comalice/occupancyx/internal/primitives"
)

// LocationSnapshot is the typed, in-memory form of one entry of the
// JSON-equivalent wire snapshot described in spec §6. Lenient parsing of the
// wire format (malformed timestamps, unknown fields) is the production
// layer's job (internal/production.SnapshotLoader); by the time a Snapshot reaches
// the Engine its fields are already well-typed.
type LocationSnapshot struct {
	IsOccupied      bool                 `json:"is_occupied" yaml:"is_occupied"`
	OccupiedUntil   *time.Time           `json:"occupied_until,omitempty" yaml:"occupied_until,omitempty"`
	ActiveOccupants []string             `json:"active_occupants,omitempty" yaml:"active_occupants,omitempty"`
	ActiveHolds     []string             `json:"active_holds,omitempty" yaml:"active_holds,omitempty"`
	LockState       primitives.LockState `json:"lock_state,omitempty" yaml:"lock_state,omitempty"`
}

// Snapshot is the full export/restore payload, keyed by location id.
// Locations that are fully default (vacant, unlocked, no timer) may be
// omitted — ExportState omits them.
type Snapshot map[string]LocationSnapshot

// ExportState produces a Snapshot of every non-default location.
func (e *Engine) ExportState() Snapshot {
	out := make(Snapshot)
	for _, id := range e.idx.AllIDs() {
		st := e.states[id]
		if isDefault(st) {
			continue
		}
		out[id] = toLocationSnapshot(st)
	}
	return out
}

func isDefault(st primitives.RuntimeState) bool {
	return !st.IsOccupied && st.OccupiedUntil == nil &&
		len(st.ActiveOccupants) == 0 && len(st.ActiveHolds) == 0 &&
		st.LockState == primitives.Unlocked
}

func toLocationSnapshot(st primitives.RuntimeState) LocationSnapshot {
	ls := LocationSnapshot{
		IsOccupied:    st.IsOccupied,
		OccupiedUntil: st.OccupiedUntil,
		LockState:     st.LockState,
	}
	for id := range st.ActiveOccupants {
		ls.ActiveOccupants = append(ls.ActiveOccupants, id)
	}
	for id := range st.ActiveHolds {
		ls.ActiveHolds = append(ls.ActiveHolds, id)
	}
	return ls
}

// RestoreState applies the stale-data protection rules of spec §6 to every
// entry, skipping locations that are not in the current configuration.
// Locations absent from the snapshot are reset to the default vacant state. The
// host is expected to call CheckTimeouts(now) immediately afterward.
func (e *Engine) RestoreState(snap Snapshot, now time.Time) primitives.EngineResult {
	for _, id := range e.idx.AllIDs() {
		if _, ok := snap[id]; !ok {
			e.states[id] = primitives.DefaultRuntimeState()
		}
	}
	for id, entry := range snap {
		if _, ok := e.idx.Config(id); !ok {
			continue // stale-data protection: silently skip unconfigured locations
		}
		e.states[id] = resolveRestore(entry, now)
	}
	return primitives.EngineResult{
		NextExpiration: nextExpiration(e.states),
	}
}

func resolveRestore(entry LocationSnapshot, now time.Time) primitives.RuntimeState {
	st := primitives.RuntimeState{
		IsOccupied:    entry.IsOccupied,
		OccupiedUntil: entry.OccupiedUntil,
		LockState:     entry.LockState,
	}
	st.ActiveOccupants = toSet(entry.ActiveOccupants)
	st.ActiveHolds = toSet(entry.ActiveHolds)

	if st.LockState == primitives.LockedFrozen {
		return st // rule 1: locks are timeless, restore verbatim
	}
	if len(st.ActiveOccupants) > 0 || len(st.ActiveHolds) > 0 {
		return st // rule 2: live presence outweighs an expired timer
	}
	if st.OccupiedUntil != nil && !st.OccupiedUntil.After(now) {
		return st.Vacate() // rule 3: stale timer, restore vacant
	}
	return st // rule 4
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
