// Package snapshots persists the versioned entity cache between sessions so a
// later start can short-circuit a full refetch when the server reports the
// same version.
package snapshots

import (
	"context"

	"github.com/mgallardo/freightdeck/internal/entity"
)

// Repository is the durable local store for the cache snapshot.
//
// Load returns (nil, nil) when no snapshot has been saved yet. A non-nil
// error means the stored copy could not be read; callers must treat that as a
// cache miss, never as fatal.
type Repository interface {
	Load(ctx context.Context) (*entity.Snapshot, error)
	Save(ctx context.Context, snap *entity.Snapshot) error
	Clear(ctx context.Context) error
}
