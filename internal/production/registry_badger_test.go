package production

import (
	"context"
	"testing"

	"github.com/comalice/occupancyx/internal/core"
)

func TestBadgerRegistry_RegisterAndLatest(t *testing.T) {
	r, err := NewBadgerRegistry(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	ctx := context.Background()
	snap := sampleSnapshot()
	if err := r.Register(ctx, "engine1", snap, "v1"); err != nil {
		t.Fatal(err)
	}

	got, err := r.Latest(ctx, "engine1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Version != "v1" {
		t.Fatalf("expected version v1, got %q", got.Version)
	}
	if len(got.Snapshot) != len(snap) {
		t.Fatalf("snapshot mismatch: %+v vs %+v", got.Snapshot, snap)
	}
}

func TestBadgerRegistry_ListVersionsNewestFirst(t *testing.T) {
	r, err := NewBadgerRegistry(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	ctx := context.Background()
	snap := sampleSnapshot()
	for _, v := range []string{"v1", "v2", "v3"} {
		if err := r.Register(ctx, "engine1", snap, v); err != nil {
			t.Fatal(err)
		}
	}

	versions, err := r.ListVersions(ctx, "engine1")
	if err != nil {
		t.Fatal(err)
	}
	if len(versions) != 3 || versions[0] != "v3" {
		t.Fatalf("expected newest-first [v3 v2 v1], got %v", versions)
	}
}

func TestBadgerRegistry_NotFound(t *testing.T) {
	r, err := NewBadgerRegistry(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if _, err := r.Latest(context.Background(), "nope"); err != core.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
