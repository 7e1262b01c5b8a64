// Package dropdown implements the type-bound selector backing every reference
// field: it reads one collection from the cache, renders it sorted and
// filtered, and signals creation intent upward without ever fulfilling it.
//
// The component never opens drawers and never knows schemas; it only calls
// OnCreateNew. Keeping "signal intent" separate from "fulfill intent" is the
// load-bearing boundary here.
package dropdown

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mgallardo/freightdeck/internal/entity"
)

// NewOptionID is the sentinel id of the trailing "Add New" affordance. It is
// not a selectable data row.
const NewOptionID = "__NEW__"

// Source is the slice of the cache store a dropdown needs.
type Source interface {
	ItemsByType(t entity.Type) []entity.Entity
	IsLoading() bool
}

// OptionKind distinguishes data rows from the two creation affordances.
type OptionKind int

const (
	// KindItem is a selectable entity row.
	KindItem OptionKind = iota
	// KindCreateWithText offers to create an entity named after the current
	// query when nothing matches it exactly.
	KindCreateWithText
	// KindCreateNew is the trailing "Add New" affordance.
	KindCreateNew
)

// Option is one rendered row.
type Option struct {
	Kind OptionKind
	Item *entity.Entity // KindItem only
	Text string         // KindCreateWithText only: the query text
}

// Label returns the display text for the row.
func (o Option) Label() string {
	switch o.Kind {
	case KindItem:
		return o.Item.Name
	case KindCreateWithText:
		return fmt.Sprintf("Create %q", o.Text)
	case KindCreateNew:
		return "Add New"
	}
	return ""
}

// Dropdown is a view-model for one type-bound selector. Zero-value callbacks
// are allowed; missing OnCreateNew suppresses both creation affordances.
type Dropdown struct {
	Store       Source
	Type        entity.Type
	Label       string
	Placeholder string
	Required    bool

	// SuppressNewOption hides the trailing affordance; by default it is
	// appended whenever OnCreateNew is set.
	SuppressNewOption bool

	// OnChange receives the selected entity, or nil when cleared.
	OnChange func(item *entity.Entity)

	// OnCreateNew receives the bound type and an optional prefill name (from
	// the create-with-text path). The parent decides what to do with it.
	OnCreateNew func(t entity.Type, prefillName string)
}

// Options returns the rows to render for the given live query: the collection
// sorted case-insensitively by name and filtered by substring match, plus the
// creation affordances.
func (d *Dropdown) Options(query string) []Option {
	items := d.sortedItems()

	q := strings.ToLower(strings.TrimSpace(query))
	var out []Option

	if q != "" && !d.hasExactMatch(items, q) && d.creatable() {
		out = append(out, Option{Kind: KindCreateWithText, Text: strings.TrimSpace(query)})
	}

	for i := range items {
		if q != "" && !strings.Contains(strings.ToLower(items[i].Name), q) {
			continue
		}
		item := items[i]
		out = append(out, Option{Kind: KindItem, Item: &item})
	}

	if d.creatable() {
		out = append(out, Option{Kind: KindCreateNew})
	}
	return out
}

// Resolve maps a bound value (a bare id, a string, or a full entity) to the
// live collection, so a rename is reflected even when the caller still holds
// a stale id. Returns nil when the value matches nothing.
func (d *Dropdown) Resolve(value any) *entity.Entity {
	if value == nil {
		return nil
	}

	var id entity.ID
	switch v := value.(type) {
	case *entity.Entity:
		if v == nil {
			return nil
		}
		id = v.ID
	case entity.Entity:
		id = v.ID
	case entity.ID:
		id = v
	case string:
		id = entity.ID(v)
	default:
		id = entity.ID(fmt.Sprintf("%v", v))
	}
	if id == "" {
		return nil
	}

	items := d.Store.ItemsByType(d.Type)
	for i := range items {
		if items[i].ID == id {
			item := items[i]
			return &item
		}
	}
	return nil
}

// Select dispatches a chosen option: data rows go to OnChange, the creation
// affordances to OnCreateNew.
func (d *Dropdown) Select(o Option) {
	switch o.Kind {
	case KindCreateNew:
		if d.OnCreateNew != nil {
			d.OnCreateNew(d.Type, "")
		}
	case KindCreateWithText:
		if d.OnCreateNew != nil {
			d.OnCreateNew(d.Type, o.Text)
		}
	case KindItem:
		if d.OnChange != nil {
			d.OnChange(o.Item)
		}
	}
}

// Disabled reports whether the control should render as a disabled
// placeholder (a loading collection is not an error state).
func (d *Dropdown) Disabled() bool {
	return d.Store.IsLoading()
}

// PlaceholderText returns the input hint for the current state.
func (d *Dropdown) PlaceholderText() string {
	if d.Store.IsLoading() {
		return "Loading..."
	}
	if d.Placeholder != "" {
		return d.Placeholder
	}
	return "Select an option..."
}

func (d *Dropdown) creatable() bool {
	return !d.SuppressNewOption && d.OnCreateNew != nil
}

// sortedItems returns a copy ordered by locale-naive lowercase name compare;
// equal keys keep collection order.
func (d *Dropdown) sortedItems() []entity.Entity {
	src := d.Store.ItemsByType(d.Type)
	items := make([]entity.Entity, len(src))
	copy(items, src)
	sort.SliceStable(items, func(i, j int) bool {
		return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
	})
	return items
}

func (d *Dropdown) hasExactMatch(items []entity.Entity, lowerQuery string) bool {
	for i := range items {
		if strings.ToLower(items[i].Name) == lowerQuery {
			return true
		}
	}
	return false
}
