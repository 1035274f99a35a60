package production

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/comalice/occupancyx/internal/core"
)

// Visualizer renders the location hierarchy and current occupancy for
// humans: an operator console or a debugging session, never the engine
// itself.
type Visualizer struct{}

// ExportDOT generates Graphviz DOT source for an engine's location forest,
// coloring occupied locations so a glance at the rendered graph shows what
// is currently occupied.
func (Visualizer) ExportDOT(e *core.Engine) string {
	var buf bytes.Buffer
	buf.WriteString("digraph Occupancy {\n  rankdir=LR;\n  node [shape=box, fontsize=10, style=rounded];\n")

	roots := make([]string, 0)
	for _, id := range e.LocationIDs() {
		cfg, _ := e.Config(id)
		if cfg.ParentID == "" {
			roots = append(roots, id)
		}
	}
	for _, id := range roots {
		renderLocation(&buf, e, id)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func renderLocation(buf *bytes.Buffer, e *core.Engine, id string) {
	st, _ := e.RawState(id)
	style := ""
	if st.IsOccupied {
		style = " style=filled fillcolor=lightgreen"
	}
	fmt.Fprintf(buf, "  %q [label=%q%s];\n", id, id, style)

	for _, childID := range e.LocationIDs() {
		cfg, _ := e.Config(childID)
		if cfg.ParentID == id {
			fmt.Fprintf(buf, "  %q -> %q;\n", id, childID)
			renderLocation(buf, e, childID)
		}
	}
}

// ExportJSON serializes the current effective occupancy of every location,
// keyed by id, for a dashboard to poll.
func (Visualizer) ExportJSON(e *core.Engine) ([]byte, error) {
	out := make(map[string]bool, len(e.LocationIDs()))
	for _, id := range e.LocationIDs() {
		st, err := e.State(id)
		if err != nil {
			return nil, fmt.Errorf("state %q: %w", id, err)
		}
		out[id] = st.IsOccupied
	}
	return json.MarshalIndent(out, "", "  ")
}
