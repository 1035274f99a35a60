// Package primitives defines the foundational, dependency-free value types for the
// occupancy engine: location configuration, runtime state snapshots, events,
// transitions, and the small error taxonomy the engine returns.
//
// Everything here is a plain value type. Nothing in this package performs I/O,
// reads a clock, or spawns a goroutine.
package primitives
