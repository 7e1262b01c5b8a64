// Package entities stores the reference-data collections together with the
// global version counter that advances by one on every mutation.
package entities

import (
	"context"

	"github.com/mgallardo/freightdeck/internal/entity"
)

// Repository is the durable store behind the reference-data service. All
// mutating calls bump the global version atomically with the data change.
//
// Find, Save and Remove return common.ErrorNotFound (wrapped) when no entity
// has the given id.
type Repository interface {
	// Version returns the current global version counter.
	Version(ctx context.Context) (int64, error)

	// Snapshot returns a versioned copy of every collection, with an entry
	// for every registered type.
	Snapshot(ctx context.Context) (*entity.Snapshot, error)

	// ListByType returns the collection for one type, never nil.
	ListByType(ctx context.Context, t entity.Type) ([]entity.Entity, error)

	// Find locates an entity by id across all types.
	Find(ctx context.Context, id entity.ID) (entity.Type, *entity.Entity, error)

	// Insert stores a new entity, assigning its id.
	Insert(ctx context.Context, t entity.Type, e *entity.Entity) error

	// Save replaces the stored entity with the same id.
	Save(ctx context.Context, t entity.Type, e *entity.Entity) error

	// Remove deletes an entity by id.
	Remove(ctx context.Context, id entity.ID) error

	// Close releases any underlying connections.
	Close()
}
