// Package production provides host-facing integrations for the engine:
// persistence, pub/sub fan-out, visualization, and config loading. Everything
// here is an adapter around internal/core's pure types; none of it is
// reachable from the engine itself.
package production

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"

	"github.com/comalice/occupancyx/internal/core"
)

// Persister saves and loads a named engine's Snapshot. Unlike the teacher's
// Persister, there is no context/queued-events to round-trip: a Snapshot is
// already the complete, self-contained unit spec §6 defines.
type Persister interface {
	Save(engineID string, snapshot core.Snapshot) error
	Load(engineID string) (core.Snapshot, error)
}

// JSONPersister is a file-based Persister using JSON serialization, with
// renameio atomic writes so a crash mid-save never leaves a truncated file
// (the teacher used a plain os.WriteFile; renameio is carried from the
// reference pack's own persistence layer).
type JSONPersister struct {
	dir string
}

// NewJSONPersister creates a JSONPersister, ensuring the directory exists.
func NewJSONPersister(dir string) (*JSONPersister, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &JSONPersister{dir: dir}, nil
}

func (p *JSONPersister) Save(engineID string, snapshot core.Snapshot) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	fn := filepath.Join(p.dir, engineID+".json")
	if err := renameio.WriteFile(fn, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", fn, err)
	}
	return nil
}

func (p *JSONPersister) Load(engineID string) (core.Snapshot, error) {
	fn := filepath.Join(p.dir, engineID+".json")
	data, err := os.ReadFile(fn)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("engine %q: %w", engineID, os.ErrNotExist)
		}
		return nil, fmt.Errorf("read %s: %w", fn, err)
	}
	var snapshot core.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	return snapshot, nil
}

// YAMLPersister is a file-based Persister using YAML serialization, the
// teacher's own format of choice (gopkg.in/yaml.v3 is its sole dependency).
type YAMLPersister struct {
	dir string
}

// NewYAMLPersister creates a YAMLPersister, ensuring the directory exists.
func NewYAMLPersister(dir string) (*YAMLPersister, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &YAMLPersister{dir: dir}, nil
}

func (p *YAMLPersister) Save(engineID string, snapshot core.Snapshot) error {
	data, err := yaml.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("yaml marshal: %w", err)
	}
	fn := filepath.Join(p.dir, engineID+".yaml")
	if err := renameio.WriteFile(fn, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", fn, err)
	}
	return nil
}

func (p *YAMLPersister) Load(engineID string) (core.Snapshot, error) {
	fn := filepath.Join(p.dir, engineID+".yaml")
	data, err := os.ReadFile(fn)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("engine %q: %w", engineID, os.ErrNotExist)
		}
		return nil, fmt.Errorf("read %s: %w", fn, err)
	}
	var snapshot core.Snapshot
	if err := yaml.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	return snapshot, nil
}
