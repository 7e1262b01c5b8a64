// Package drawer tracks which overlays are open and their relative order. The
// manager stores opaque ids and configurations; it knows nothing about what a
// drawer contains.
//
// Ids follow the convention "<namespace>-<type>" for static overlays and
// "<namespace>-<type>-<uniqueSuffix>" for dynamically spawned nested ones.
package drawer

import (
	"sync"

	"github.com/mgallardo/freightdeck/internal/entity"
)

// Z-order is derived from stack position on every read, never cached per id:
// an id's z-index changes when earlier entries close.
const (
	BaseZIndex      = 50
	ZIndexIncrement = 10
)

// Config is the tagged payload attached to an open drawer. The stack treats
// it as opaque; the overlay host dispatches on the concrete variant.
type Config interface {
	kind() string
}

// EntityCreate opens a schema-driven creation form for Type. PrefillName, when
// set, seeds the name field (the dropdown "create with this text" path).
// OnSuccess runs with the created entity after the form submits and closes.
type EntityCreate struct {
	Type        entity.Type
	PrefillName string
	OnSuccess   func(created entity.Entity)
}

func (EntityCreate) kind() string { return "entity-create" }

// Confirm opens a yes/no confirmation overlay.
type Confirm struct {
	Prompt    string
	OnConfirm func()
}

func (Confirm) kind() string { return "confirm" }

// Manager is the single owner of the overlay stack. Components never mutate
// the list directly, only through Open and Close.
type Manager struct {
	mu        sync.Mutex
	ids       []string
	configs   map[string]Config
	listeners []func()
}

// NewManager returns an empty stack.
func NewManager() *Manager {
	return &Manager{configs: make(map[string]Config)}
}

// Open appends id to the top of the stack. Opening an already-open id is a
// no-op on the stack position but still refreshes the stored configuration.
func (m *Manager) Open(id string, cfg Config) {
	m.mu.Lock()
	if !m.contains(id) {
		m.ids = append(m.ids, id)
	}
	if cfg != nil {
		m.configs[id] = cfg
	}
	m.mu.Unlock()
	m.notify()
}

// Close removes id and its configuration. Closing an absent id is a no-op.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	for i, open := range m.ids {
		if open == id {
			m.ids = append(m.ids[:i], m.ids[i+1:]...)
			break
		}
	}
	delete(m.configs, id)
	m.mu.Unlock()
	m.notify()
}

// IsOpen reports whether id is on the stack.
func (m *Manager) IsOpen(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.contains(id)
}

// Config returns the stored configuration for id.
func (m *Manager) Config(id string) (Config, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg, ok := m.configs[id]
	return cfg, ok
}

// ZIndex computes the rendering order for id from its stack position. Absent
// ids get the base value.
func (m *Manager) ZIndex(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, open := range m.ids {
		if open == id {
			return BaseZIndex + i*ZIndexIncrement
		}
	}
	return BaseZIndex
}

// Stack returns the ordered list of open ids, bottom first.
func (m *Manager) Stack() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.ids))
	copy(out, m.ids)
	return out
}

// Top returns the topmost open id, if any.
func (m *Manager) Top() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.ids) == 0 {
		return "", false
	}
	return m.ids[len(m.ids)-1], true
}

// Subscribe registers fn to run after every open/close. Listeners are invoked
// outside the lock.
func (m *Manager) Subscribe(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

func (m *Manager) contains(id string) bool {
	for _, open := range m.ids {
		if open == id {
			return true
		}
	}
	return false
}

func (m *Manager) notify() {
	m.mu.Lock()
	listeners := make([]func(), len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}
