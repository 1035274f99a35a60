// LocationConfig is the immutable static rule for one node in the hierarchy.
// Cross-location invariants (uniqueness, forest shape, dangling parents) are
// enforced by internal/hierarchy at engine construction time, not here.
package primitives

import (
	"errors"
	"fmt"
)

// Kind distinguishes a physical area from a virtual aggregation container.
type Kind string

const (
	AREA    Kind = "AREA"
	VIRTUAL Kind = "VIRTUAL"
)

// OccupancyStrategy selects how a location's occupancy is derived.
type OccupancyStrategy string

const (
	// INDEPENDENT is the default: the location tracks its own sensors.
	INDEPENDENT OccupancyStrategy = "INDEPENDENT"
	// FollowParent inherits occupied=true from its nearest ancestor whenever
	// that ancestor is occupied, without ever overwriting its own occupied_until.
	FollowParent OccupancyStrategy = "FOLLOW_PARENT"
)

// Default timeout minutes applied when a category is missing from Timeouts.
const (
	DefaultPulseTimeoutMinutes   = 10
	DefaultTrailingTimeoutMinutes = 2
)

// PropagatedCategory is the category key synthetic PROPAGATED events carry.
const PropagatedCategory = "propagated"

// LocationConfig is the immutable static rule for one node.
type LocationConfig struct {
	ID                   string         `json:"id" yaml:"id"`
	ParentID             string         `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Kind                 Kind           `json:"kind" yaml:"kind"`
	OccupancyStrategy    OccupancyStrategy `json:"occupancy_strategy,omitempty" yaml:"occupancy_strategy,omitempty"`
	ContributesToParent  bool           `json:"contributes_to_parent" yaml:"contributes_to_parent"`
	Timeouts             map[string]int `json:"timeouts,omitempty" yaml:"timeouts,omitempty"`
}

// NewLocationConfig returns a LocationConfig with the documented defaults:
// INDEPENDENT strategy, contributes_to_parent = true.
func NewLocationConfig(id string, kind Kind) *LocationConfig {
	return &LocationConfig{
		ID:                  id,
		Kind:                kind,
		OccupancyStrategy:   INDEPENDENT,
		ContributesToParent: true,
	}
}

// Validate checks the fields local to this config. It does not check
// cross-location invariants (uniqueness, dangling parent_id, cycles) — that
// is internal/hierarchy's job since it requires the whole set.
func (c *LocationConfig) Validate() error {
	if c.ID == "" {
		return errors.New("location id is required")
	}
	switch c.Kind {
	case AREA, VIRTUAL:
	default:
		return fmt.Errorf("location %q: invalid kind %q", c.ID, c.Kind)
	}
	switch c.OccupancyStrategy {
	case "", INDEPENDENT, FollowParent:
	default:
		return fmt.Errorf("location %q: invalid occupancy_strategy %q", c.ID, c.OccupancyStrategy)
	}
	for category, minutes := range c.Timeouts {
		if minutes < 0 {
			return fmt.Errorf("location %q: negative timeout for category %q", c.ID, category)
		}
	}
	return nil
}

// Strategy returns the effective occupancy strategy, defaulting to INDEPENDENT.
func (c *LocationConfig) Strategy() OccupancyStrategy {
	if c.OccupancyStrategy == "" {
		return INDEPENDENT
	}
	return c.OccupancyStrategy
}

// TimeoutMinutes resolves the configured timeout for category, or def if absent.
func (c *LocationConfig) TimeoutMinutes(category string, def int) int {
	if c.Timeouts == nil {
		return def
	}
	if v, ok := c.Timeouts[category]; ok {
		return v
	}
	return def
}
