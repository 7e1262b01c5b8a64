// Package form implements the schema-driven creation drawer: it renders the
// declared fields for exactly one entity type, validates required input,
// submits through the cache store, and can spawn nested drawers for its
// reference fields. No type-specific logic lives here.
package form

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mgallardo/freightdeck/internal/client/api"
	"github.com/mgallardo/freightdeck/internal/client/drawer"
	"github.com/mgallardo/freightdeck/internal/client/dropdown"
	"github.com/mgallardo/freightdeck/internal/client/schema"
	"github.com/mgallardo/freightdeck/internal/common"
	"github.com/mgallardo/freightdeck/internal/entity"
	"github.com/mgallardo/freightdeck/internal/logging"
)

// DrawerNamespace prefixes every drawer id this package opens.
const DrawerNamespace = "mantenedor"

// DrawerID returns the static overlay id for a type's creation drawer.
func DrawerID(t entity.Type) string {
	return fmt.Sprintf("%s-%s", DrawerNamespace, t)
}

// NestedDrawerID synthesizes a fresh, unique overlay id so the same type can
// have several independent nested-creation drawers stacked concurrently.
func NestedDrawerID(t entity.Type) string {
	return fmt.Sprintf("%s-%s-%s", DrawerNamespace, t, uuid.NewString())
}

// Store is the slice of the cache store the form needs.
type Store interface {
	dropdown.Source
	Create(ctx context.Context, t entity.Type, attrs map[string]any) (*entity.Entity, error)
}

// Form is the state machine behind one open creation drawer.
type Form struct {
	drawerID   string
	entityType entity.Type
	schema     schema.Schema
	fields     []schema.Field

	store Store
	stack *drawer.Manager
	log   logging.Logger

	onSuccess func(entity.Entity)

	values     map[string]Value
	fieldErrs  map[string]string
	submitErr  string
	submitting bool
}

// New initializes a fresh form for the drawer's configured type. The second
// result is false when the type has no registered schema; callers must render
// nothing in that case.
//
// Fields with broken configuration (an unsupported kind, or a dropdown whose
// source type is unregistered) are skipped with a logged warning instead of
// failing the whole drawer.
func New(drawerID string, cfg drawer.EntityCreate, reg *schema.Registry, store Store, stack *drawer.Manager, log logging.Logger) (*Form, bool) {
	sch, ok := reg.Lookup(cfg.Type)
	if !ok {
		return nil, false
	}

	f := &Form{
		drawerID:   drawerID,
		entityType: cfg.Type,
		schema:     sch,
		store:      store,
		stack:      stack,
		log:        log,
		onSuccess:  cfg.OnSuccess,
		values:     make(map[string]Value, len(sch.Fields)),
		fieldErrs:  make(map[string]string),
	}

	for _, field := range sch.Fields {
		if !field.Type.Valid() {
			log.Warn(context.Background(), "skipping field with unsupported type",
				"field", field.Name, "type", cfg.Type)
			continue
		}
		if field.Type == schema.FieldDropdown {
			if _, registered := reg.Lookup(field.SourceType); !field.SourceType.Valid() || !registered {
				log.Warn(context.Background(), "skipping dropdown field with unregistered source type",
					"field", field.Name, "sourceType", field.SourceType)
				continue
			}
		}
		f.fields = append(f.fields, field)
		f.values[field.Name] = zeroValue(field.Type)
	}

	if cfg.PrefillName != "" {
		if _, ok := f.values["name"]; ok {
			f.values["name"] = Text(cfg.PrefillName)
		}
	}
	return f, true
}

// Type returns the entity type this form creates.
func (f *Form) Type() entity.Type { return f.entityType }

// Title returns the schema's drawer title.
func (f *Form) Title() string { return f.schema.Title }

// Description returns the schema's optional description.
func (f *Form) Description() string { return f.schema.Description }

// Fields returns the renderable fields in schema order.
func (f *Form) Fields() []schema.Field { return f.fields }

// Value returns the current value for a field.
func (f *Form) Value(name string) Value { return f.values[name] }

// Set updates a field and clears its validation error, mirroring the rule
// that editing a field dismisses its error immediately.
func (f *Form) Set(name string, v Value) {
	if _, ok := f.values[name]; !ok {
		return
	}
	f.values[name] = v
	delete(f.fieldErrs, name)
}

// FieldError returns the validation message for a field, if any.
func (f *Form) FieldError(name string) string { return f.fieldErrs[name] }

// SubmitError returns the last server-reported failure, if any.
func (f *Form) SubmitError() string { return f.submitErr }

// Submitting reports whether a create request is in flight.
func (f *Form) Submitting() bool { return f.submitting }

// Dropdown builds the selector view-model for a reference field, wired so a
// selection fills the field and the "Add New" affordance spawns a nested
// drawer for the field's source type.
func (f *Form) Dropdown(field schema.Field) *dropdown.Dropdown {
	name := field.Name
	return &dropdown.Dropdown{
		Store:       f.store,
		Type:        field.SourceType,
		Label:       field.Label,
		Placeholder: field.Placeholder,
		Required:    field.Required,
		OnChange: func(item *entity.Entity) {
			if item == nil {
				f.Set(name, Ref(""))
				return
			}
			f.Set(name, Ref(item.ID))
		},
		OnCreateNew: func(t entity.Type, prefillName string) {
			f.NestedCreate(name, t, prefillName)
		},
	}
}

// NestedCreate opens a nested creation drawer for a reference field's source
// type. The id is synthesized fresh per invocation, so two nested flows for
// the same type stack independently. On success the created entity is
// auto-selected into the originating field.
func (f *Form) NestedCreate(fieldName string, t entity.Type, prefillName string) string {
	id := NestedDrawerID(t)
	f.stack.Open(id, drawer.EntityCreate{
		Type:        t,
		PrefillName: prefillName,
		OnSuccess: func(created entity.Entity) {
			f.Set(fieldName, Ref(created.ID))
		},
	})
	return id
}

// Validate checks required fields, recording one message per offender. It
// returns true when the form may be submitted.
func (f *Form) Validate() bool {
	for _, field := range f.fields {
		if field.Required && f.values[field.Name].IsEmpty() {
			f.fieldErrs[field.Name] = fmt.Sprintf("%s is required", field.Label)
		}
	}
	return len(f.fieldErrs) == 0
}

// Submit validates and sends the creation request. On success the drawer
// closes itself and the success callback runs with the created entity; the
// first result is it. On failure the form stays open with the server's
// message(s) surfaced for correction and resubmit.
func (f *Form) Submit(ctx context.Context) (*entity.Entity, bool) {
	if !f.Validate() {
		return nil, false
	}

	f.submitting = true
	f.submitErr = ""
	defer func() { f.submitting = false }()

	attrs := make(map[string]any, len(f.fields))
	for _, field := range f.fields {
		if v, ok := f.values[field.Name].attr(); ok {
			attrs[field.Name] = v
		}
	}

	created, err := f.store.Create(ctx, f.entityType, attrs)
	if err != nil {
		f.submitErr = submitErrorMessage(err)
		f.log.Error(ctx, "failed to create entity", "type", f.entityType, "error", err)
		return nil, false
	}

	f.stack.Close(f.drawerID)
	if f.onSuccess != nil {
		f.onSuccess(*created)
	}
	return created, true
}

// submitErrorMessage prefers the server's structured field messages, then a
// single message, then a generic fallback.
func submitErrorMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage()
	}
	if errors.Is(err, common.ErrorUnavailable) {
		return "Server unavailable. Please try again."
	}
	return "Failed to create. Please try again."
}
