// Package builder provides a fluent API for constructing a location
// hierarchy, as an alternative to hand-writing a []*LocationConfig slice or
// a YAML/JSON file (grounded on the teacher's own builder package, which
// offers the same kind of fluent tree construction for statechart states).
package builder

import (
	"github.com/comalice/occupancyx/internal/primitives"
)

// Node is one location in a tree under construction. Build a tree with Area
// or Virtual, attach children with With, then flatten it with Build.
type Node struct {
	cfg      *primitives.LocationConfig
	children []*Node
}

// Option configures a Node's LocationConfig at construction time.
type Option func(*primitives.LocationConfig)

// Area creates a physical AREA location.
func Area(id string, opts ...Option) *Node {
	return newNode(id, primitives.AREA, opts)
}

// Virtual creates a VIRTUAL aggregation location (e.g. a named scene with no
// sensors of its own).
func Virtual(id string, opts ...Option) *Node {
	return newNode(id, primitives.VIRTUAL, opts)
}

func newNode(id string, kind primitives.Kind, opts []Option) *Node {
	cfg := primitives.NewLocationConfig(id, kind)
	for _, opt := range opts {
		opt(cfg)
	}
	return &Node{cfg: cfg}
}

// With attaches children to n, stamping each child's ParentID, and returns n
// for further chaining.
func (n *Node) With(children ...*Node) *Node {
	for _, c := range children {
		c.cfg.ParentID = n.cfg.ID
		n.children = append(n.children, c)
	}
	return n
}

// Build flattens n and its descendants into the slice NewEngine expects.
func (n *Node) Build() []*primitives.LocationConfig {
	out := []*primitives.LocationConfig{n.cfg}
	for _, c := range n.children {
		out = append(out, c.Build()...)
	}
	return out
}

// WithStrategy sets the occupancy strategy (default INDEPENDENT).
func WithStrategy(s primitives.OccupancyStrategy) Option {
	return func(c *primitives.LocationConfig) { c.OccupancyStrategy = s }
}

// WithoutPropagation marks a location as not contributing to its parent's
// occupancy (the "backyard rule").
func WithoutPropagation() Option {
	return func(c *primitives.LocationConfig) { c.ContributesToParent = false }
}

// WithTimeout sets the timeout, in minutes, for a specific event category.
func WithTimeout(category string, minutes int) Option {
	return func(c *primitives.LocationConfig) {
		if c.Timeouts == nil {
			c.Timeouts = make(map[string]int)
		}
		c.Timeouts[category] = minutes
	}
}
