package primitives

import "time"

// LockState is whether a location is frozen against ordinary sensor events.
type LockState string

const (
	Unlocked      LockState = "UNLOCKED"
	LockedFrozen  LockState = "LOCKED_FROZEN"
)

// RuntimeState is the immutable snapshot of one location at a point in time.
// Transitions never mutate a RuntimeState in place; they produce a new one.
type RuntimeState struct {
	IsOccupied      bool
	OccupiedUntil   *time.Time
	ActiveOccupants map[string]struct{}
	ActiveHolds     map[string]struct{}
	LockState       LockState
}

// DefaultRuntimeState is the vacant, unlocked state every location starts in.
func DefaultRuntimeState() RuntimeState {
	return RuntimeState{
		ActiveOccupants: map[string]struct{}{},
		ActiveHolds:     map[string]struct{}{},
		LockState:       Unlocked,
	}
}

// Clone returns a deep copy so callers may mutate the result freely while
// building the next snapshot without disturbing the original.
func (s RuntimeState) Clone() RuntimeState {
	next := RuntimeState{
		IsOccupied: s.IsOccupied,
		LockState:  s.LockState,
	}
	if s.OccupiedUntil != nil {
		t := *s.OccupiedUntil
		next.OccupiedUntil = &t
	}
	next.ActiveOccupants = make(map[string]struct{}, len(s.ActiveOccupants))
	for k := range s.ActiveOccupants {
		next.ActiveOccupants[k] = struct{}{}
	}
	next.ActiveHolds = make(map[string]struct{}, len(s.ActiveHolds))
	for k := range s.ActiveHolds {
		next.ActiveHolds[k] = struct{}{}
	}
	return next
}

// Equal reports whether two snapshots are observably identical.
func (s RuntimeState) Equal(o RuntimeState) bool {
	if s.IsOccupied != o.IsOccupied || s.LockState != o.LockState {
		return false
	}
	if (s.OccupiedUntil == nil) != (o.OccupiedUntil == nil) {
		return false
	}
	if s.OccupiedUntil != nil && !s.OccupiedUntil.Equal(*o.OccupiedUntil) {
		return false
	}
	if !setEqual(s.ActiveOccupants, o.ActiveOccupants) {
		return false
	}
	if !setEqual(s.ActiveHolds, o.ActiveHolds) {
		return false
	}
	return true
}

func setEqual(a, b map[string]struct{}) bool {
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

// Vacate clears a snapshot to the fully-default vacant state ("Ghost Mike"
// fix: identity and holds never survive a vacancy transition).
func (s RuntimeState) Vacate() RuntimeState {
	return RuntimeState{
		IsOccupied:      false,
		OccupiedUntil:   nil,
		ActiveOccupants: map[string]struct{}{},
		ActiveHolds:     map[string]struct{}{},
		LockState:       s.LockState,
	}
}
