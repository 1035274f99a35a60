// Package hierarchy builds and queries the parent/child adjacency of a
// location forest: ancestor walks, topological sanity checks, and the
// deterministic location ordering the rest of the engine relies on.
//
// Grounded on the teacher engine's ancestor/LCA walking (statechart.go) and
// its precomputed path caches (internal/core/machine.go's stateCache /
// ancestorCache), generalized from a single-root state tree to a forest of
// independent location roots.
package hierarchy

import (
	"sort"

	"github.com/comalice/occupancyx/internal/primitives"
)

// Index is the precomputed adjacency of a validated location forest.
type Index struct {
	configs  map[string]*primitives.LocationConfig
	children map[string][]string // parent id -> sorted child ids
	ids      []string            // all location ids, sorted
}

// Build validates the forest invariants (unique ids, no dangling parent_id,
// no cycles — exactly one parent per node, forming a forest) and returns a
// queryable Index. Returns *primitives.ConfigurationError on violation.
func Build(configs []*primitives.LocationConfig) (*Index, error) {
	byID := make(map[string]*primitives.LocationConfig, len(configs))
	for _, c := range configs {
		if err := c.Validate(); err != nil {
			return nil, primitives.NewConfigurationError("%s", err.Error())
		}
		if _, dup := byID[c.ID]; dup {
			return nil, primitives.NewConfigurationError("duplicate location id %q", c.ID)
		}
		byID[c.ID] = c
	}
	for _, c := range configs {
		if c.ParentID != "" {
			if _, ok := byID[c.ParentID]; !ok {
				return nil, primitives.NewConfigurationError("location %q references unknown parent %q", c.ID, c.ParentID)
			}
		}
	}

	children := make(map[string][]string)
	for _, c := range configs {
		if c.ParentID != "" {
			children[c.ParentID] = append(children[c.ParentID], c.ID)
		}
	}
	for k := range children {
		sort.Strings(children[k])
	}

	idx := &Index{configs: byID, children: children}
	idx.ids = make([]string, 0, len(byID))
	for id := range byID {
		idx.ids = append(idx.ids, id)
	}
	sort.Strings(idx.ids)

	for _, c := range configs {
		if err := idx.checkAcyclic(c.ID); err != nil {
			return nil, err
		}
	}

	return idx, nil
}

// checkAcyclic walks parent pointers from id and fails if it revisits a node,
// which can only happen via a cycle since parent_id existence was already verified.
func (idx *Index) checkAcyclic(id string) error {
	seen := make(map[string]struct{})
	cur := id
	for cur != "" {
		if _, ok := seen[cur]; ok {
			return primitives.NewConfigurationError("parent cycle detected involving location %q", cur)
		}
		seen[cur] = struct{}{}
		cur = idx.configs[cur].ParentID
	}
	return nil
}

// Config returns the config for id, or false if not configured.
func (idx *Index) Config(id string) (*primitives.LocationConfig, bool) {
	c, ok := idx.configs[id]
	return c, ok
}

// Parent returns the parent id of id, or "" if id is a root.
func (idx *Index) Parent(id string) string {
	c, ok := idx.configs[id]
	if !ok {
		return ""
	}
	return c.ParentID
}

// Children returns the sorted, direct child ids of id.
func (idx *Index) Children(id string) []string {
	return idx.children[id]
}

// Ancestors returns the chain from id's parent up to the root, nearest first.
func (idx *Index) Ancestors(id string) []string {
	var chain []string
	cur := idx.Parent(id)
	for cur != "" {
		chain = append(chain, cur)
		cur = idx.Parent(cur)
	}
	return chain
}

// AllIDs returns every configured location id in deterministic (sorted) order.
func (idx *Index) AllIDs() []string {
	return idx.ids
}
