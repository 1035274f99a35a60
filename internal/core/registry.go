package core

import (
	"context"
	"errors"
	"time"
)

// Registry manages versioned snapshot history for a running engine. This is
// a host/production concern, supplemented beyond spec.md's single
// ExportState/RestoreState pair (see SPEC_FULL.md) — grounded on the
// teacher engine's internal/core/registry.go Registry interface.
type Registry interface {
	// Register saves the current snapshot, stamped with a version.
	Register(ctx context.Context, engineID string, snapshot Snapshot, version string) error
	// Latest returns the most recently registered snapshot.
	Latest(ctx context.Context, engineID string) (VersionedSnapshot, error)
	// Version returns a specific prior snapshot.
	Version(ctx context.Context, engineID, version string) (VersionedSnapshot, error)
	// ListVersions returns versions newest first.
	ListVersions(ctx context.Context, engineID string) ([]string, error)
}

var (
	ErrNotFound = errors.New("version or engine not found")
)

// VersionedSnapshot annotates a Snapshot with its version and capture time.
type VersionedSnapshot struct {
	Snapshot  Snapshot
	Version   string
	Timestamp time.Time
}
