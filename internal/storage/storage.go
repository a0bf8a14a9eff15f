// Package storage persists the bucket index. Two backends share the Store
// interface: a JSON file (canonical, optionally zstd-compressed) and SQLite.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/pable/uniqorn/internal/index"
)

// Backend names accepted by OpenStore.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Store loads and saves whole index snapshots. Save replaces the previous
// snapshot atomically: readers observe either the old or the new one.
type Store interface {
	// Exists reports whether a snapshot has been saved.
	Exists(ctx context.Context) (bool, error)
	// Load returns the stored index, or an empty index when none exists.
	Load(ctx context.Context) (*index.Index, error)
	Save(ctx context.Context, x *index.Index) error
	Close() error
}

// OpenStore opens the backend at path.
func OpenStore(backend, path string) (Store, error) {
	switch strings.ToLower(backend) {
	case "", BackendJSON:
		return NewJSONStore(path), nil
	case BackendSQLite:
		db, err := Open(path)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
