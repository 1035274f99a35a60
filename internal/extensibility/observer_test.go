package extensibility

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"

	"github.com/comalice/occupancyx/internal/primitives"
)

func TestZerologObserver_LogsTransitionFields(t *testing.T) {
	var buf bytes.Buffer
	obs := NewZerologObserver(zerolog.New(&buf))

	obs.OnTransition(primitives.Transition{
		LocationID: "kitchen",
		Kind:       primitives.Occupied,
		Old:        primitives.DefaultRuntimeState(),
		New:        primitives.RuntimeState{IsOccupied: true},
	})

	out := buf.String()
	for _, want := range []string{`"location_id":"kitchen"`, `"kind":"OCCUPIED"`, `"level":"info"`} {
		if !bytes.Contains([]byte(out), []byte(want)) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}

func TestZerologObserver_UnknownLocationIsWarn(t *testing.T) {
	var buf bytes.Buffer
	obs := NewZerologObserver(zerolog.New(&buf))
	obs.OnUnknownLocation("ghost")

	out := buf.String()
	if !bytes.Contains([]byte(out), []byte(`"level":"warn"`)) {
		t.Errorf("expected warn level, got: %s", out)
	}
}

func TestMultiObserver_FansOutToAll(t *testing.T) {
	var a, b counting
	m := MultiObserver{&a, &b}
	m.OnTransition(primitives.Transition{LocationID: "x"})
	m.OnUnknownLocation("x")
	m.OnRestoreWarning(primitives.RestoreWarning{LocationID: "x"})

	if a.transitions != 1 || b.transitions != 1 {
		t.Fatalf("expected both observers to receive the transition, got %+v %+v", a, b)
	}
	if a.unknown != 1 || b.unknown != 1 {
		t.Fatalf("expected both observers to receive the unknown-location event")
	}
	if a.warnings != 1 || b.warnings != 1 {
		t.Fatalf("expected both observers to receive the restore warning")
	}
}

type counting struct {
	transitions int
	unknown     int
	warnings    int
}

func (c *counting) OnTransition(primitives.Transition)         { c.transitions++ }
func (c *counting) OnUnknownLocation(string)                   { c.unknown++ }
func (c *counting) OnRestoreWarning(primitives.RestoreWarning) { c.warnings++ }

func TestNoopObserver_DoesNothing(t *testing.T) {
	var o NoopObserver
	o.OnTransition(primitives.Transition{})
	o.OnUnknownLocation("x")
	o.OnRestoreWarning(primitives.RestoreWarning{})
}
