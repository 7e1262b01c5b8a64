// Package entity defines the wire/data model shared by the console client and
// the reference-data server: entity types, identifiers, records and snapshots.
package entity

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Type identifies a reference-data collection. The set of types is closed:
// adding one requires a schema entry and a server-side counterpart, so it is a
// compile-time extension point.
type Type string

const (
	TypeContainer     Type = "CONTAINER"
	TypeContainerType Type = "CONTAINER_TYPE"
	TypeVessel        Type = "VESSEL"
)

// AllTypes returns the closed set of registered types in declaration order.
func AllTypes() []Type {
	return []Type{TypeContainer, TypeContainerType, TypeVessel}
}

// Valid reports whether t is a registered type.
func (t Type) Valid() bool {
	switch t {
	case TypeContainer, TypeContainerType, TypeVessel:
		return true
	}
	return false
}

// ParseType converts a raw string (case-insensitive) into a registered Type.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown entity type %q", s)
	}
	return t, nil
}

// ID is an entity identifier. The backend hands out both numeric and string
// ids; both normalize to their textual form so that the numeric id 5 and the
// string "5" compare equal with ==.
type ID string

// UnmarshalJSON accepts either a JSON number or a JSON string.
func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON renders integer-shaped ids as JSON numbers and everything else
// as strings, preserving what the backend originally sent. Only canonical
// decimal forms qualify as numbers; "05" or "+5" parse but are not valid JSON
// number literals, so they stay strings.
func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Entity is the minimal shape every reference record shares. Type-specific
// fields (a vessel's code and flag, a container's capacity) live in Attrs and
// are flattened to the top level on the wire.
type Entity struct {
	ID        ID
	Name      string
	CreatedAt string
	UpdatedAt string
	Attrs     map[string]any
}

// reserved keys handled outside Attrs.
var reservedKeys = map[string]struct{}{
	"id": {}, "name": {}, "createdAt": {}, "updatedAt": {},
}

// MarshalJSON flattens Attrs into the top-level object alongside the shared
// fields. Shared fields win on key collisions.
func (e Entity) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Attrs)+4)
	for k, v := range e.Attrs {
		if _, reserved := reservedKeys[k]; reserved {
			continue
		}
		out[k] = v
	}
	out["id"] = e.ID
	out["name"] = e.Name
	if e.CreatedAt != "" {
		out["createdAt"] = e.CreatedAt
	}
	if e.UpdatedAt != "" {
		out["updatedAt"] = e.UpdatedAt
	}
	return json.Marshal(out)
}

// UnmarshalJSON splits the top-level object into the shared fields and Attrs.
func (e *Entity) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode entity: %w", err)
	}

	if v, ok := raw["id"]; ok {
		if err := e.ID.UnmarshalJSON(v); err != nil {
			return err
		}
	}
	if v, ok := raw["name"]; ok {
		if err := json.Unmarshal(v, &e.Name); err != nil {
			return fmt.Errorf("entity name must be a string: %w", err)
		}
	}
	if v, ok := raw["createdAt"]; ok {
		_ = json.Unmarshal(v, &e.CreatedAt)
	}
	if v, ok := raw["updatedAt"]; ok {
		_ = json.Unmarshal(v, &e.UpdatedAt)
	}

	var attrs map[string]any
	for k, v := range raw {
		if _, reserved := reservedKeys[k]; reserved {
			continue
		}
		var x any
		if err := json.Unmarshal(v, &x); err != nil {
			return fmt.Errorf("failed to decode entity attribute %q: %w", k, err)
		}
		if attrs == nil {
			attrs = make(map[string]any)
		}
		attrs[k] = x
	}
	e.Attrs = attrs
	return nil
}

// Attr returns a type-specific attribute value, or nil if absent.
func (e *Entity) Attr(key string) any {
	if e.Attrs == nil {
		return nil
	}
	return e.Attrs[key]
}

// Snapshot is a versioned copy of every collection. ItemsByType always holds
// an entry (possibly an empty slice) for every registered type, so consumers
// never need to nil-check a missing type.
type Snapshot struct {
	Version     int64             `json:"version"`
	ItemsByType map[Type][]Entity `json:"itemsByType"`
}

// NewSnapshot returns an empty snapshot pre-seeded with an empty collection
// per registered type.
func NewSnapshot() *Snapshot {
	s := &Snapshot{ItemsByType: make(map[Type][]Entity, len(AllTypes()))}
	for _, t := range AllTypes() {
		s.ItemsByType[t] = []Entity{}
	}
	return s
}

// Normalize enforces the type-completeness invariant on data that arrived from
// the wire or the local cache: every registered type ends up with a non-nil
// slice, and unregistered keys are dropped.
func (s *Snapshot) Normalize() {
	normalized := make(map[Type][]Entity, len(AllTypes()))
	for _, t := range AllTypes() {
		if items, ok := s.ItemsByType[t]; ok && items != nil {
			normalized[t] = items
		} else {
			normalized[t] = []Entity{}
		}
	}
	s.ItemsByType = normalized
}
