package core

import (
	"time"

	"github.com/comalice/occupancyx/internal/hierarchy"
	"github.com/comalice/occupancyx/internal/primitives"
)

// Engine is the internal runtime: a validated hierarchy index plus the
// in-memory state map keyed by location id, the only shared resource (spec
// §5). Every mutation (the kernel, the timeout sweep, restore) replaces whole
// snapshots; the Engine itself performs no I/O and reads no clock.
type Engine struct {
	idx    *hierarchy.Index
	states map[string]primitives.RuntimeState
}

// New validates configs into a hierarchy and initializes every location to
// the default vacant snapshot.
func New(configs []*primitives.LocationConfig) (*Engine, error) {
	idx, err := hierarchy.Build(configs)
	if err != nil {
		return nil, err
	}
	states := make(map[string]primitives.RuntimeState, len(configs))
	for _, id := range idx.AllIDs() {
		states[id] = primitives.DefaultRuntimeState()
	}
	return &Engine{idx: idx, states: states}, nil
}

func (e *Engine) propagator() *propagator {
	return &propagator{idx: e.idx, states: e.states}
}

// HandleEvent runs the kernel on the targeted location, propagates the
// result up the ancestor chain, and recomputes the scheduler oracle.
func (e *Engine) HandleEvent(event primitives.OccupancyEvent, now time.Time) (primitives.EngineResult, error) {
	cfg, ok := e.idx.Config(event.LocationID)
	if !ok {
		return primitives.EngineResult{}, &primitives.UnknownLocationError{LocationID: event.LocationID}
	}

	state := e.states[event.LocationID]
	newState, tr := ApplyKernel(state, event, now, cfg)
	e.states[event.LocationID] = newState

	var transitions []primitives.Transition
	if tr != nil {
		tr.LocationID = event.LocationID
		transitions = append(transitions, *tr)
		if tr.Kind != primitives.LockChanged {
			// propagateFrom itself enforces the vacancy asymmetry rule; a
			// VACATED child still needs to run through it in case it was
			// the parent's last contributing hold (the fudge-factor release).
			transitions = append(transitions, e.propagator().propagateFrom(event.LocationID, now)...)
		}
	}

	return primitives.EngineResult{
		Transitions:    transitions,
		NextExpiration: nextExpiration(e.states),
	}, nil
}

// CheckTimeouts sweeps every location at now, then recomputes the oracle.
func (e *Engine) CheckTimeouts(now time.Time) primitives.EngineResult {
	transitions := e.propagator().sweep(now)
	return primitives.EngineResult{
		Transitions:    transitions,
		NextExpiration: nextExpiration(e.states),
	}
}

// State returns the query-time effective snapshot for locationID: a
// FOLLOW_PARENT location reports occupied as long as its nearest ancestor
// is (effectively) occupied, without its own occupied_until being touched.
func (e *Engine) State(locationID string) (primitives.RuntimeState, error) {
	if _, ok := e.idx.Config(locationID); !ok {
		return primitives.RuntimeState{}, &primitives.UnknownLocationError{LocationID: locationID}
	}
	return e.effectiveState(locationID, make(map[string]bool)), nil
}

func (e *Engine) effectiveState(locationID string, visiting map[string]bool) primitives.RuntimeState {
	st := e.states[locationID]
	if visiting[locationID] {
		return st // cycle guard; hierarchy.Build already rejects real cycles
	}
	visiting[locationID] = true

	cfg, ok := e.idx.Config(locationID)
	if !ok || cfg.Strategy() != primitives.FollowParent {
		return st
	}
	parentID := e.idx.Parent(locationID)
	if parentID == "" {
		return st
	}
	if parentState := e.effectiveState(parentID, visiting); parentState.IsOccupied {
		st.IsOccupied = true
	}
	return st
}

// RawState returns the location's own stored snapshot, without the
// FOLLOW_PARENT query-time overlay. Used by the serializer.
func (e *Engine) RawState(locationID string) (primitives.RuntimeState, bool) {
	st, ok := e.states[locationID]
	return st, ok
}

// SetState overwrites a location's stored snapshot directly. Used by restore.
func (e *Engine) SetState(locationID string, state primitives.RuntimeState) {
	e.states[locationID] = state
}

// LocationIDs returns every configured location id in deterministic order.
func (e *Engine) LocationIDs() []string {
	return e.idx.AllIDs()
}

// Config exposes a location's static config, for adapters (persisters,
// visualizers) that need it.
func (e *Engine) Config(locationID string) (*primitives.LocationConfig, bool) {
	return e.idx.Config(locationID)
}

// NextExpiration recomputes the Scheduler Oracle without mutating anything.
func (e *Engine) NextExpiration() *time.Time {
	return nextExpiration(e.states)
}
