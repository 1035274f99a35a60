// Package occupancyx is a pure, deterministic, hierarchical occupancy
// engine: given a location hierarchy and a stream of sensor/manual/lock
// events, it tracks whether each location is occupied and for how long,
// propagating state up the hierarchy according to fixed rules. The engine
// never reads a clock or spawns a goroutine; every operation takes the
// current time as an explicit argument and returns, alongside any observable
// transitions, the next instant the host must call back in
// (NextExpiration) — the host owns the wall clock and the wake-up loop.
package occupancyx

import (
	"time"

	"github.com/comalice/occupancyx/internal/core"
	"github.com/comalice/occupancyx/internal/extensibility"
	"github.com/comalice/occupancyx/internal/hierarchy"
	"github.com/comalice/occupancyx/internal/primitives"
)

// Re-exported primitive types, so a caller never has to import internal/*.
type (
	LocationConfig    = primitives.LocationConfig
	Kind              = primitives.Kind
	OccupancyStrategy = primitives.OccupancyStrategy
	OccupancyEvent    = primitives.OccupancyEvent
	EventType         = primitives.EventType
	LockState         = primitives.LockState
	RuntimeState      = primitives.RuntimeState
	Transition        = primitives.Transition
	TransitionKind    = primitives.TransitionKind
	EngineResult      = primitives.EngineResult
	RestoreWarning    = primitives.RestoreWarning

	Snapshot         = core.Snapshot
	LocationSnapshot = core.LocationSnapshot
	Registry         = core.Registry
	VersionedSnapshot = core.VersionedSnapshot

	TransitionObserver = extensibility.TransitionObserver
)

const (
	AREA    = primitives.AREA
	VIRTUAL = primitives.VIRTUAL

	Independent  = primitives.INDEPENDENT
	FollowParent = primitives.FollowParent

	Momentary  = primitives.Momentary
	HoldStart  = primitives.HoldStart
	HoldEnd    = primitives.HoldEnd
	Manual     = primitives.Manual
	LockChange = primitives.LockChange

	Unlocked     = primitives.Unlocked
	LockedFrozen = primitives.LockedFrozen

	Occupied        = primitives.Occupied
	Extended        = primitives.Extended
	Vacated         = primitives.Vacated
	IdentityChanged = primitives.IdentityChanged
	HoldChanged     = primitives.HoldChanged
	LockChanged     = primitives.LockChanged
)

var NewEvent = primitives.NewEvent

// Engine is the public handle to one running occupancy engine: a validated
// location hierarchy plus its in-memory runtime state. All operations are
// pure functions of (state, event, now); the only mutation is replacing the
// Engine's own internal snapshot map.
type Engine struct {
	inner    *core.Engine
	observer extensibility.TransitionObserver
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithObserver attaches a TransitionObserver that is notified of every
// Transition, UnknownLocation event, and RestoreWarning the engine produces.
// Without one, observations are silently discarded (extensibility.NoopObserver).
func WithObserver(obs extensibility.TransitionObserver) Option {
	return func(e *Engine) { e.observer = obs }
}

// NewEngine validates configs into a hierarchy (unique ids, no dangling
// parent_id, no cycles) and returns an Engine with every location
// initialized to the default vacant snapshot.
func NewEngine(configs []*LocationConfig, opts ...Option) (*Engine, error) {
	inner, err := core.New(configs)
	if err != nil {
		return nil, err
	}
	e := &Engine{inner: inner, observer: extensibility.NoopObserver{}}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// HandleEvent runs the Transition Kernel on the event's target location,
// propagates the result up the ancestor chain per the hierarchy rules, and
// returns every observable Transition plus the recomputed next wake-up time.
func (e *Engine) HandleEvent(event OccupancyEvent, now time.Time) (EngineResult, error) {
	res, err := e.inner.HandleEvent(event, now)
	if err != nil {
		if _, ok := err.(*primitives.UnknownLocationError); ok {
			e.observer.OnUnknownLocation(event.LocationID)
		}
		return res, err
	}
	for _, tr := range res.Transitions {
		e.observer.OnTransition(tr)
	}
	return res, nil
}

// CheckTimeouts sweeps every location whose stored occupied_until has
// elapsed by now, vacating it, and recomputes the next wake-up time. It
// never propagates vacancy to an ancestor (vacancy asymmetry, §4.3).
func (e *Engine) CheckTimeouts(now time.Time) EngineResult {
	res := e.inner.CheckTimeouts(now)
	for _, tr := range res.Transitions {
		e.observer.OnTransition(tr)
	}
	return res
}

// State returns the query-time effective occupancy of locationID: for a
// FOLLOW_PARENT location this inherits "occupied" from its nearest ancestor
// without ever touching the location's own stored occupied_until.
func (e *Engine) State(locationID string) (RuntimeState, error) {
	return e.inner.State(locationID)
}

// ExportState returns a Snapshot of every location whose stored state
// differs from the default vacant snapshot, suitable for persisting across
// a restart.
func (e *Engine) ExportState() Snapshot {
	return e.inner.ExportState()
}

// RestoreState applies a previously exported Snapshot, following the
// stale-data protection rules of §6 (locks are timeless, live presence
// outweighs an expired timer, an elapsed timer restores vacant). The caller
// should call CheckTimeouts(now) immediately afterward.
func (e *Engine) RestoreState(snap Snapshot, now time.Time) EngineResult {
	return e.inner.RestoreState(snap, now)
}

// NextExpiration reports the earliest occupied_until across every location
// with no active hold (locked or not), or nil if nothing is scheduled to
// expire.
func (e *Engine) NextExpiration() *time.Time {
	return e.inner.NextExpiration()
}

// LocationIDs returns every configured location id in deterministic order.
func (e *Engine) LocationIDs() []string {
	return e.inner.LocationIDs()
}

// Config exposes a location's static configuration.
func (e *Engine) Config(locationID string) (*LocationConfig, bool) {
	return e.inner.Config(locationID)
}

// ValidateHierarchy re-validates a candidate config set the way NewEngine
// does, without constructing an Engine. Useful for a CLI's `validate`
// subcommand.
func ValidateHierarchy(configs []*LocationConfig) error {
	_, err := hierarchy.Build(configs)
	return err
}
