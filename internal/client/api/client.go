// Package api defines the contract with the remote reference-data service and
// its HTTP/JSON implementation.
package api

import (
	"context"

	"github.com/mgallardo/freightdeck/internal/entity"
)

// Client is the remote reference-data API as seen by the cache store. All
// calls carry an opaque bearer credential supplied by a TokenSource; a
// 401-class failure surfaces as common.ErrorUnauthorized and is handled
// outside the cache (session teardown), never reinterpreted as stale data.
type Client interface {
	// Version returns the server's current global version counter.
	Version(ctx context.Context) (int64, error)

	// FetchAll returns the full versioned snapshot across all types.
	FetchAll(ctx context.Context) (*entity.Snapshot, error)

	// FetchByType returns the collection for a single type.
	FetchByType(ctx context.Context, t entity.Type) ([]entity.Entity, error)

	// Types lists the type names the server knows about.
	Types(ctx context.Context) ([]string, error)

	// Create persists a new entity and returns the canonical server copy.
	Create(ctx context.Context, t entity.Type, attrs map[string]any) (*entity.Entity, error)

	// Update applies a partial attribute change and returns the updated copy.
	Update(ctx context.Context, id entity.ID, attrs map[string]any) (*entity.Entity, error)

	// Delete removes an entity by id.
	Delete(ctx context.Context, id entity.ID) error
}

// TokenSource supplies the bearer credential for outbound requests. Session
// and token lifecycle management live outside this package.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource returning a fixed credential. An empty token
// sends no authorization header.
type StaticToken string

func (s StaticToken) Token(ctx context.Context) (string, error) {
	return string(s), nil
}
