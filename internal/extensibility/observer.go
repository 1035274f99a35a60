// Package extensibility holds the pluggable interfaces a host wires into the
// engine's surrounding layer: the engine itself never logs or emits metrics
// (it is pure and I/O-free), so every observable side effect lives here.
package extensibility

import (
	"github.com/rs/zerolog"

	"github.com/comalice/occupancyx/internal/primitives"
)

// TransitionObserver is notified of every Transition the engine produces, and
// of the non-fatal warning conditions a host may want surfaced (an event
// targeting an unknown location, a snapshot field degraded to a default on
// restore). Implementations must not block or panic; the engine calls
// observers synchronously from HandleEvent/CheckTimeouts. RestoreState calls
// no observer; OnRestoreWarning is for hosts that report the warnings a
// snapshot loader returns.
type TransitionObserver interface {
	OnTransition(tr primitives.Transition)
	OnUnknownLocation(locationID string)
	OnRestoreWarning(w primitives.RestoreWarning)
}

// NoopObserver discards everything. It is the Engine's effective default
// when a host wires nothing in.
type NoopObserver struct{}

func (NoopObserver) OnTransition(primitives.Transition)        {}
func (NoopObserver) OnUnknownLocation(string)                  {}
func (NoopObserver) OnRestoreWarning(primitives.RestoreWarning) {}

// ZerologObserver logs every Transition as a structured event and surfaces
// warning conditions at warn level. Transitions that merely extend an
// already-occupied timer are logged at debug; occupied/vacated/lock changes
// at info, since those are the events a human watching logs actually cares
// about.
type ZerologObserver struct {
	Log zerolog.Logger
}

// NewZerologObserver returns a ZerologObserver writing through the given
// logger, tagged with a fixed component field.
func NewZerologObserver(logger zerolog.Logger) *ZerologObserver {
	return &ZerologObserver{Log: logger.With().Str("component", "occupancy_engine").Logger()}
}

func (o *ZerologObserver) OnTransition(tr primitives.Transition) {
	ev := o.Log.Debug()
	switch tr.Kind {
	case primitives.Occupied, primitives.Vacated, primitives.LockChanged:
		ev = o.Log.Info()
	}
	ev.Str("location_id", tr.LocationID).
		Str("kind", string(tr.Kind)).
		Bool("old_occupied", tr.Old.IsOccupied).
		Bool("new_occupied", tr.New.IsOccupied).
		Msg("transition")
}

func (o *ZerologObserver) OnUnknownLocation(locationID string) {
	o.Log.Warn().Str("location_id", locationID).Msg("event targeted an unknown location")
}

func (o *ZerologObserver) OnRestoreWarning(w primitives.RestoreWarning) {
	o.Log.Warn().
		Str("location_id", w.LocationID).
		Str("field", w.Field).
		Str("reason", w.Reason).
		Msg("restore warning")
}
