package hierarchy

import (
	"testing"

	"github.com/comalice/occupancyx/internal/primitives"
)

func area(id, parent string) *primitives.LocationConfig {
	c := primitives.NewLocationConfig(id, primitives.AREA)
	c.ParentID = parent
	return c
}

func TestBuild_Basic(t *testing.T) {
	idx, err := Build([]*primitives.LocationConfig{
		area("kitchen", "main_floor"),
		area("main_floor", ""),
		area("hallway", "main_floor"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := idx.Children("main_floor"); len(got) != 2 || got[0] != "hallway" || got[1] != "kitchen" {
		t.Errorf("children = %v", got)
	}
	if got := idx.Ancestors("kitchen"); len(got) != 1 || got[0] != "main_floor" {
		t.Errorf("ancestors = %v", got)
	}
	if got := idx.Parent("main_floor"); got != "" {
		t.Errorf("root parent = %q, want empty", got)
	}
}

func TestBuild_DuplicateID(t *testing.T) {
	_, err := Build([]*primitives.LocationConfig{
		area("kitchen", ""),
		area("kitchen", ""),
	})
	if err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestBuild_DanglingParent(t *testing.T) {
	_, err := Build([]*primitives.LocationConfig{
		area("kitchen", "nonexistent"),
	})
	if err == nil {
		t.Fatal("expected dangling parent error")
	}
}

func TestBuild_Cycle(t *testing.T) {
	_, err := Build([]*primitives.LocationConfig{
		area("a", "b"),
		area("b", "a"),
	})
	if err == nil {
		t.Fatal("expected cycle error")
	}
}

func TestAllIDs_Sorted(t *testing.T) {
	idx, err := Build([]*primitives.LocationConfig{
		area("zeta", ""),
		area("alpha", ""),
	})
	if err != nil {
		t.Fatal(err)
	}
	ids := idx.AllIDs()
	if len(ids) != 2 || ids[0] != "alpha" || ids[1] != "zeta" {
		t.Errorf("AllIDs = %v", ids)
	}
}
