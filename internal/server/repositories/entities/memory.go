package entities

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/mgallardo/freightdeck/internal/common"
	"github.com/mgallardo/freightdeck/internal/entity"
)

// Memory is the in-process Repository used for development and tests. Ids are
// sequential integers, matching what the production backend hands out.
type Memory struct {
	mu      sync.Mutex
	version int64
	nextID  int64
	items   map[entity.Type][]entity.Entity
}

// NewMemory returns an empty store at version 1.
func NewMemory() *Memory {
	return &Memory{
		version: 1,
		nextID:  1,
		items:   entity.NewSnapshot().ItemsByType,
	}
}

func (m *Memory) Version(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version, nil
}

func (m *Memory) Snapshot(ctx context.Context) (*entity.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := &entity.Snapshot{
		Version:     m.version,
		ItemsByType: make(map[entity.Type][]entity.Entity, len(m.items)),
	}
	for t, items := range m.items {
		snap.ItemsByType[t] = append([]entity.Entity{}, items...)
	}
	snap.Normalize()
	return snap, nil
}

func (m *Memory) ListByType(ctx context.Context, t entity.Type) ([]entity.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.Entity{}, m.items[t]...), nil
}

func (m *Memory) Find(ctx context.Context, id entity.ID) (entity.Type, *entity.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for t := range m.items {
		for i := range m.items[t] {
			if m.items[t][i].ID == id {
				item := m.items[t][i]
				return t, &item, nil
			}
		}
	}
	return "", nil, fmt.Errorf("%w: entity %s", common.ErrorNotFound, id)
}

func (m *Memory) Insert(ctx context.Context, t entity.Type, e *entity.Entity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e.ID = entity.ID(strconv.FormatInt(m.nextID, 10))
	m.nextID++
	m.items[t] = append(m.items[t], *e)
	m.version++
	return nil
}

func (m *Memory) Save(ctx context.Context, t entity.Type, e *entity.Entity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.items[t] {
		if m.items[t][i].ID == e.ID {
			m.items[t][i] = *e
			m.version++
			return nil
		}
	}
	return fmt.Errorf("%w: entity %s", common.ErrorNotFound, e.ID)
}

func (m *Memory) Remove(ctx context.Context, id entity.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for t := range m.items {
		for i := range m.items[t] {
			if m.items[t][i].ID == id {
				m.items[t] = append(m.items[t][:i], m.items[t][i+1:]...)
				m.version++
				return nil
			}
		}
	}
	return fmt.Errorf("%w: entity %s", common.ErrorNotFound, id)
}

func (m *Memory) Close() {}
