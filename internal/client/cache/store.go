// Package cache holds the client-side source of truth for all reference-data
// collections and their synchronization state with the server.
//
// The store keeps one ordered collection per entity type plus a single global
// version counter. On load it asks the server for its version and skips the
// bulk fetch when the local copy is current; every successful local mutation
// bumps the version by exactly one and persists the snapshot to the durable
// local store.
//
// The optimistic single-increment scheme cannot detect another session's
// mutations while this one is active; any mismatch found on the next load
// triggers a full refetch that resynchronizes both values. This is an accepted
// limitation, not a bug to fix here.
package cache

import (
	"context"
	"sync"

	"github.com/mgallardo/freightdeck/internal/client/api"
	"github.com/mgallardo/freightdeck/internal/client/repositories/snapshots"
	"github.com/mgallardo/freightdeck/internal/entity"
	"github.com/mgallardo/freightdeck/internal/logging"
)

// Store is constructed once at application start and passed by reference to
// every consumer. It is the single writer of the collections; consumers treat
// returned slices as read-only.
type Store struct {
	api  api.Client
	repo snapshots.Repository
	log  logging.Logger

	mu          sync.Mutex
	version     int64
	hasVersion  bool
	itemsByType map[entity.Type][]entity.Entity
	loading     bool
	lastErr     error
	listeners   []func()
}

// New builds a store seeded from the durable local copy when one is readable.
// An unreadable local copy is downgraded to a cache miss with a warning.
func New(ctx context.Context, apiClient api.Client, repo snapshots.Repository, log logging.Logger) *Store {
	s := &Store{
		api:         apiClient,
		repo:        repo,
		log:         log,
		itemsByType: entity.NewSnapshot().ItemsByType,
	}

	snap, err := repo.Load(ctx)
	if err != nil {
		log.Warn(ctx, "ignoring unreadable local cache", "error", err)
	} else if snap != nil {
		s.version = snap.Version
		s.hasVersion = true
		s.itemsByType = snap.ItemsByType
	}
	return s
}

// Subscribe registers fn to run after every state change (load start/finish,
// mutation). Listeners are invoked outside the store lock.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Store) notify() {
	s.mu.Lock()
	listeners := make([]func(), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// Version returns the local version counter and whether a snapshot exists at
// all; before the first load (and without a durable copy) the second result
// is false.
func (s *Store) Version() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version, s.hasVersion
}

// IsLoading reports whether a load is in flight.
func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the error recorded by the last failed load, or nil.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// ItemsByType returns the current collection for a type. The result is never
// nil for registered types; unregistered types yield an empty slice.
func (s *Store) ItemsByType(t entity.Type) []entity.Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if items, ok := s.itemsByType[t]; ok {
		return items
	}
	return []entity.Entity{}
}

// ItemByID finds an entity by id within a type's collection. Ids are
// normalized strings, so the numeric id 5 and the lookup key "5" match the
// same record. Returns nil when absent.
func (s *Store) ItemByID(t entity.Type, id entity.ID) *entity.Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.itemsByType[t] {
		if s.itemsByType[t][i].ID == id {
			item := s.itemsByType[t][i]
			return &item
		}
	}
	return nil
}

// Load reconciles the store with the server. Unless forced, it first compares
// version counters and terminates without a bulk fetch when they match.
// Failures are recorded on the store (for the retry affordance) and returned.
func (s *Store) Load(ctx context.Context, forceRefresh bool) error {
	s.mu.Lock()
	s.loading = true
	s.lastErr = nil
	s.mu.Unlock()
	s.notify()

	err := s.load(ctx, forceRefresh)

	s.mu.Lock()
	s.loading = false
	s.lastErr = err
	s.mu.Unlock()
	s.notify()
	return err
}

func (s *Store) load(ctx context.Context, forceRefresh bool) error {
	if !forceRefresh {
		s.mu.Lock()
		localVersion, hasVersion := s.version, s.hasVersion
		s.mu.Unlock()

		if hasVersion {
			serverVersion, err := s.api.Version(ctx)
			if err != nil {
				return err
			}
			if serverVersion == localVersion {
				s.log.Debug(ctx, "cache is current, skipping bulk fetch", "version", localVersion)
				return nil
			}
			s.log.Info(ctx, "cache is stale, fetching all collections",
				"localVersion", localVersion, "serverVersion", serverVersion)
		}
	}

	snap, err := s.api.FetchAll(ctx)
	if err != nil {
		return err
	}
	snap.Normalize()

	s.mu.Lock()
	s.version = snap.Version
	s.hasVersion = true
	s.itemsByType = snap.ItemsByType
	s.mu.Unlock()

	s.persist(ctx)
	return nil
}

// Refresh forces a full reload, bypassing the version check. This is the
// manual recovery path for concurrent-session staleness.
func (s *Store) Refresh(ctx context.Context) error {
	return s.Load(ctx, true)
}

// Create sends a creation request and, on success, appends the canonical
// server copy to the type's collection, bumps the version and persists. The
// created entity is returned so the caller can select it immediately. A
// failed remote call leaves local state untouched.
func (s *Store) Create(ctx context.Context, t entity.Type, attrs map[string]any) (*entity.Entity, error) {
	created, err := s.api.Create(ctx, t, attrs)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	current := s.itemsByType[t]
	next := make([]entity.Entity, 0, len(current)+1)
	next = append(next, current...)
	next = append(next, *created)
	s.itemsByType[t] = next
	s.version++
	s.mu.Unlock()

	s.persist(ctx)
	s.notify()
	return created, nil
}

// Update sends a partial update and, on success, replaces the matching entity
// in place, bumps the version and persists.
func (s *Store) Update(ctx context.Context, t entity.Type, id entity.ID, attrs map[string]any) (*entity.Entity, error) {
	updated, err := s.api.Update(ctx, id, attrs)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	current := s.itemsByType[t]
	next := make([]entity.Entity, len(current))
	for i := range current {
		if current[i].ID == id {
			next[i] = *updated
		} else {
			next[i] = current[i]
		}
	}
	s.itemsByType[t] = next
	s.version++
	s.mu.Unlock()

	s.persist(ctx)
	s.notify()
	return updated, nil
}

// Delete sends a deletion request and, on success, removes the matching
// entity, bumps the version and persists.
func (s *Store) Delete(ctx context.Context, t entity.Type, id entity.ID) error {
	if err := s.api.Delete(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	current := s.itemsByType[t]
	next := make([]entity.Entity, 0, len(current))
	for i := range current {
		if current[i].ID != id {
			next = append(next, current[i])
		}
	}
	s.itemsByType[t] = next
	s.version++
	s.mu.Unlock()

	s.persist(ctx)
	s.notify()
	return nil
}

// persist writes the current snapshot to the durable store. Local state is
// already authoritative for the session, so persist failures are logged and
// not propagated.
func (s *Store) persist(ctx context.Context) {
	s.mu.Lock()
	snap := &entity.Snapshot{
		Version:     s.version,
		ItemsByType: make(map[entity.Type][]entity.Entity, len(s.itemsByType)),
	}
	for t, items := range s.itemsByType {
		snap.ItemsByType[t] = items
	}
	s.mu.Unlock()

	if err := s.repo.Save(ctx, snap); err != nil {
		s.log.Warn(ctx, "failed to persist cache snapshot", "error", err)
	}
}
