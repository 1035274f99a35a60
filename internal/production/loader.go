package production

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/comalice/occupancyx/internal/core"
	"github.com/comalice/occupancyx/internal/primitives"
)

// ConfigLoader reads a location hierarchy from a YAML or JSON file, chosen by
// the file extension, and validates each entry before returning it. The
// per-location Validate check is field-local only; internal/hierarchy.Build
// (invoked by core.New) still has to check the cross-location invariants.
type ConfigLoader struct{}

// Load reads path and returns the decoded location configs.
func (ConfigLoader) Load(path string) ([]*primitives.LocationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var configs []*primitives.LocationConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &configs); err != nil {
			return nil, fmt.Errorf("yaml unmarshal %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &configs); err != nil {
			return nil, fmt.Errorf("json unmarshal %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%s: unsupported config extension %q", path, ext)
	}

	for _, c := range configs {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return configs, nil
}

// wireSnapshot is the lenient, loosely-typed mirror of core.LocationSnapshot
// used when decoding an externally-authored snapshot file: a malformed or
// missing occupied_until is tolerated (treated as "no timer") rather than
// failing the whole load, since a single bad sensor record should not block
// a restore of everything else.
type wireSnapshot struct {
	IsOccupied      bool     `json:"is_occupied" yaml:"is_occupied"`
	OccupiedUntil   string   `json:"occupied_until,omitempty" yaml:"occupied_until,omitempty"`
	ActiveOccupants []string `json:"active_occupants,omitempty" yaml:"active_occupants,omitempty"`
	ActiveHolds     []string `json:"active_holds,omitempty" yaml:"active_holds,omitempty"`
	LockState       string   `json:"lock_state,omitempty" yaml:"lock_state,omitempty"`
}

// SnapshotLoader reads a spec §6 wire-format snapshot file leniently: a
// malformed timestamp or lock_state value degrades that one field to its
// zero value instead of aborting the whole restore, and the caller is
// handed back which locations/fields were degraded so it can log them via a
// TransitionObserver.
type SnapshotLoader struct{}

// Load decodes path into a core.Snapshot plus the list of fields it had to
// default because of malformed input.
func (SnapshotLoader) Load(path string) (core.Snapshot, []primitives.RestoreWarning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}

	var wire map[string]wireSnapshot
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &wire); err != nil {
			return nil, nil, fmt.Errorf("yaml unmarshal %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &wire); err != nil {
			return nil, nil, fmt.Errorf("json unmarshal %s: %w", path, err)
		}
	}

	snap := make(core.Snapshot, len(wire))
	var warnings []primitives.RestoreWarning
	for id, entry := range wire {
		ls := core.LocationSnapshot{
			IsOccupied:      entry.IsOccupied,
			ActiveOccupants: entry.ActiveOccupants,
			ActiveHolds:     entry.ActiveHolds,
		}
		if entry.OccupiedUntil != "" {
			if t, err := time.Parse(time.RFC3339, entry.OccupiedUntil); err == nil {
				ls.OccupiedUntil = &t
			} else {
				warnings = append(warnings, primitives.RestoreWarning{
					LocationID: id, Field: "occupied_until", Reason: "malformed timestamp, treated as absent",
				})
			}
		}
		switch entry.LockState {
		case "", string(primitives.Unlocked):
			ls.LockState = primitives.Unlocked
		case string(primitives.LockedFrozen):
			ls.LockState = primitives.LockedFrozen
		default:
			ls.LockState = primitives.Unlocked
			warnings = append(warnings, primitives.RestoreWarning{
				LocationID: id, Field: "lock_state", Reason: "unrecognized value, treated as UNLOCKED",
			})
		}
		snap[id] = ls
	}
	return snap, warnings, nil
}
