// OccupancyEvent is the immutable input primitive the engine consumes.
//
// Events are value types: once constructed they are never mutated. PROPAGATED
// events are synthetic and are produced only by the propagation driver, never
// by a sensor.
package primitives

import "time"

// EventType is the tagged variant the Transition Kernel switches over.
type EventType string

const (
	Momentary  EventType = "MOMENTARY" // a.k.a. MOTION
	HoldStart  EventType = "HOLD_START"
	HoldEnd    EventType = "HOLD_END"
	Manual     EventType = "MANUAL"
	LockChange EventType = "LOCK_CHANGE"
	Propagated EventType = "PROPAGATED"
)

// OccupancyEvent is an immutable occupancy input.
type OccupancyEvent struct {
	LocationID string
	EventType  EventType
	Category   string
	SourceID   string
	Timestamp  time.Time
	OccupantID string // optional, "" means absent

	// Duration overrides the config timeout lookup when non-nil.
	Duration *time.Duration

	// ForceState is only meaningful for MANUAL events: nil means "process as
	// an ordinary event", non-nil true/false forces occupied/vacant.
	ForceState *bool

	// TargetLock is only meaningful for LOCK_CHANGE events.
	TargetLock LockState

	// HeldChild and Release are set exclusively by the propagation driver
	// when constructing a synthetic PROPAGATED event; sensors never
	// populate these. HeldChild true means the contributing child is
	// indefinitely held (treat like a HOLD_START keyed by SourceID).
	// Release true means the child's contribution is ending (treat like a
	// HOLD_END keyed by SourceID).
	HeldChild bool
	Release   bool
}

// NewEvent constructs an OccupancyEvent with the required fields.
func NewEvent(locationID string, eventType EventType, category, sourceID string, ts time.Time) OccupancyEvent {
	return OccupancyEvent{
		LocationID: locationID,
		EventType:  eventType,
		Category:   category,
		SourceID:   sourceID,
		Timestamp:  ts,
	}
}

// WithOccupant returns a copy of the event carrying the given identity.
func (e OccupancyEvent) WithOccupant(occupantID string) OccupancyEvent {
	e.OccupantID = occupantID
	return e
}

// WithDuration returns a copy of the event carrying an explicit duration override.
func (e OccupancyEvent) WithDuration(d time.Duration) OccupancyEvent {
	e.Duration = &d
	return e
}

// WithForceState returns a copy of a MANUAL event carrying a forced occupancy value.
func (e OccupancyEvent) WithForceState(force bool) OccupancyEvent {
	e.ForceState = &force
	return e
}
