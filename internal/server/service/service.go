// Package service implements the reference-data domain operations on top of
// the entities repository: input validation, timestamps, and version
// reporting. Every accepted mutation advances the global version by one.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mgallardo/freightdeck/internal/common"
	"github.com/mgallardo/freightdeck/internal/entity"
	"github.com/mgallardo/freightdeck/internal/logging"
	"github.com/mgallardo/freightdeck/internal/server/repositories/entities"
)

// ValidationError carries user-correctable field messages. The HTTP layer
// renders it as a 422 with the message list.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, ", ")
}

func (e *ValidationError) Unwrap() error {
	return common.ErrorValidation
}

// Service owns the reference-data business rules.
type Service struct {
	repo entities.Repository
	log  logging.Logger
}

// New builds a Service over the given repository.
func New(repo entities.Repository, log logging.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Version returns the current global data version.
func (s *Service) Version(ctx context.Context) (int64, error) {
	return s.repo.Version(ctx)
}

// Snapshot returns every collection plus the version, with an entry for every
// registered type.
func (s *Service) Snapshot(ctx context.Context) (*entity.Snapshot, error) {
	return s.repo.Snapshot(ctx)
}

// ListByType returns one collection. Unknown types are a not-found condition,
// not a validation error: the set of types is part of the URL space.
func (s *Service) ListByType(ctx context.Context, t entity.Type) ([]entity.Entity, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: unknown entity type %q", common.ErrorNotFound, t)
	}
	return s.repo.ListByType(ctx, t)
}

// Types lists the registered type names.
func (s *Service) Types(ctx context.Context) []string {
	types := entity.AllTypes()
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, string(t))
	}
	return names
}

// Create validates and stores a new entity. The name attribute is required for
// every type; remaining attributes are stored as given.
func (s *Service) Create(ctx context.Context, t entity.Type, attrs map[string]any) (*entity.Entity, error) {
	if !t.Valid() {
		return nil, &ValidationError{Messages: []string{fmt.Sprintf("Unknown entity type %q", t)}}
	}

	name, rest := splitName(attrs)
	if name == "" {
		return nil, &ValidationError{Messages: []string{"Name is required"}}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	e := &entity.Entity{
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		Attrs:     rest,
	}

	if err := s.repo.Insert(ctx, t, e); err != nil {
		return nil, err
	}
	s.log.Info(ctx, "entity created", "type", t, "id", e.ID)
	return e, nil
}

// Update applies a partial attribute change to an existing entity. A provided
// name must be non-empty; absent attributes keep their stored values.
func (s *Service) Update(ctx context.Context, id entity.ID, attrs map[string]any) (*entity.Entity, error) {
	t, current, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if raw, ok := attrs["name"]; ok {
		name, _ := raw.(string)
		if strings.TrimSpace(name) == "" {
			return nil, &ValidationError{Messages: []string{"Name is required"}}
		}
		current.Name = strings.TrimSpace(name)
	}

	for k, v := range attrs {
		if isReserved(k) {
			continue
		}
		if current.Attrs == nil {
			current.Attrs = make(map[string]any)
		}
		current.Attrs[k] = v
	}
	current.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	if err := s.repo.Save(ctx, t, current); err != nil {
		return nil, err
	}
	s.log.Info(ctx, "entity updated", "type", t, "id", current.ID)
	return current, nil
}

// Delete removes an entity by id.
func (s *Service) Delete(ctx context.Context, id entity.ID) error {
	if err := s.repo.Remove(ctx, id); err != nil {
		return err
	}
	s.log.Info(ctx, "entity deleted", "id", id)
	return nil
}

// splitName extracts the trimmed name attribute and returns the remaining
// non-reserved attributes.
func splitName(attrs map[string]any) (string, map[string]any) {
	name := ""
	if raw, ok := attrs["name"].(string); ok {
		name = strings.TrimSpace(raw)
	}

	var rest map[string]any
	for k, v := range attrs {
		if isReserved(k) {
			continue
		}
		if rest == nil {
			rest = make(map[string]any)
		}
		rest[k] = v
	}
	return name, rest
}

// reserved attribute keys managed by the service, never stored in Attrs.
func isReserved(k string) bool {
	switch k {
	case "id", "name", "type", "createdAt", "updatedAt":
		return true
	}
	return false
}
