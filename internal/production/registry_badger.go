package production

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"golang.org/x/time/rate"

	"github.com/comalice/occupancyx/internal/core"
)

// BadgerRegistry implements core.Registry on an embedded Badger KV store,
// keeping a full version history per engine id rather than only the latest
// snapshot, so an operator can roll back after a bad sensor event.
type BadgerRegistry struct {
	db      *badger.DB
	limiter *rate.Limiter
}

// NewBadgerRegistry opens (creating if absent) a Badger database at dir.
// limiter, if non-nil, caps the rate of Register calls: a call over the rate
// waits for a token (or for its context to end) and then still writes its
// version.
func NewBadgerRegistry(dir string, limiter *rate.Limiter) (*BadgerRegistry, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open badger db %s: %w", dir, err)
	}
	return &BadgerRegistry{db: db, limiter: limiter}, nil
}

func (r *BadgerRegistry) Close() error {
	return r.db.Close()
}

func versionKey(engineID, version string) []byte {
	return []byte(fmt.Sprintf("v|%s|%s", engineID, version))
}

func latestKey(engineID string) []byte {
	return []byte(fmt.Sprintf("latest|%s", engineID))
}

func (r *BadgerRegistry) Register(ctx context.Context, engineID string, snapshot core.Snapshot, version string) error {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("registry rate limit: %w", err)
		}
	}
	vs := core.VersionedSnapshot{Snapshot: snapshot, Version: version, Timestamp: time.Now()}
	data, err := json.Marshal(vs)
	if err != nil {
		return fmt.Errorf("marshal versioned snapshot: %w", err)
	}
	return r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(versionKey(engineID, version), data); err != nil {
			return err
		}
		return txn.Set(latestKey(engineID), []byte(version))
	})
}

func (r *BadgerRegistry) Latest(ctx context.Context, engineID string) (core.VersionedSnapshot, error) {
	var version string
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(latestKey(engineID))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return core.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			version = string(val)
			return nil
		})
	})
	if err != nil {
		return core.VersionedSnapshot{}, err
	}
	return r.Version(ctx, engineID, version)
}

func (r *BadgerRegistry) Version(ctx context.Context, engineID, version string) (core.VersionedSnapshot, error) {
	var vs core.VersionedSnapshot
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(versionKey(engineID, version))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return core.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &vs)
		})
	})
	return vs, err
}

func (r *BadgerRegistry) ListVersions(ctx context.Context, engineID string) ([]string, error) {
	prefix := []byte(fmt.Sprintf("v|%s|", engineID))
	var entries []core.VersionedSnapshot
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var vs core.VersionedSnapshot
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &vs)
			}); err != nil {
				return err
			}
			entries = append(entries, vs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Timestamp.After(entries[j].Timestamp) })
	versions := make([]string, len(entries))
	for i, e := range entries {
		versions[i] = e.Version
	}
	return versions, nil
}
