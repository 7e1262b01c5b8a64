// Package schema provides the static registry mapping entity types to the
// field schemas that drive their creation forms.
//
// The registry is a pure lookup table: no runtime mutation, no network. An
// absent result means "this type has no creation UI" and callers must render
// nothing rather than fail.
package schema

import (
	"fmt"

	"github.com/mgallardo/freightdeck/internal/common"
	"github.com/mgallardo/freightdeck/internal/entity"
)

// FieldType classifies how a form renders and validates a field.
type FieldType int

const (
	FieldText FieldType = iota
	FieldNumber
	FieldTextarea
	FieldCheckbox
	FieldDropdown
)

// String returns the schema-visible type name.
func (ft FieldType) String() string {
	switch ft {
	case FieldText:
		return "text"
	case FieldNumber:
		return "number"
	case FieldTextarea:
		return "textarea"
	case FieldCheckbox:
		return "checkbox"
	case FieldDropdown:
		return "dropdown"
	default:
		return "unknown"
	}
}

// Valid reports whether ft is a supported field kind.
func (ft FieldType) Valid() bool {
	return ft >= FieldText && ft <= FieldDropdown
}

// Field describes one form field.
type Field struct {
	Name        string      // attribute key on the entity
	Label       string      // display label
	Type        FieldType   // how to render the field
	Required    bool        // validated at submit time
	Placeholder string      // optional hint text
	SourceType  entity.Type // dropdown only: which type supplies the options
}

// Schema is the complete creation-form description for one entity type.
type Schema struct {
	Title       string
	Description string
	Fields      []Field
}

// Validate reports configuration errors: unsupported field kinds, or dropdown
// fields whose source type is not registered. Violations are configuration
// bugs, defended at render time by skipping the field with a logged warning.
func (s Schema) Validate() error {
	for _, f := range s.Fields {
		if !f.Type.Valid() {
			return fmt.Errorf("%w: field %q has unsupported type", common.ErrorConfiguration, f.Name)
		}
		if f.Type == FieldDropdown && !f.SourceType.Valid() {
			return fmt.Errorf("%w: dropdown field %q references unregistered type %q",
				common.ErrorConfiguration, f.Name, f.SourceType)
		}
	}
	return nil
}

// Registry holds the schema per entity type.
type Registry struct {
	schemas map[entity.Type]Schema
}

// NewRegistry creates an empty registry. Most callers want Default.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[entity.Type]Schema)}
}

// Register adds (or replaces) the schema for a type.
func (r *Registry) Register(t entity.Type, s Schema) {
	r.schemas[t] = s
}

// Lookup returns the schema for a type and whether one is registered.
func (r *Registry) Lookup(t entity.Type) (Schema, bool) {
	s, ok := r.schemas[t]
	return s, ok
}

// Default returns the registry with the built-in reference-data schemas.
func Default() *Registry {
	r := NewRegistry()

	r.Register(entity.TypeContainerType, Schema{
		Title:       "Container Type",
		Description: "Define a new container type",
		Fields: []Field{
			{Name: "name", Label: "Name", Type: FieldText, Required: true, Placeholder: "Enter container type name"},
			{Name: "code", Label: "Code", Type: FieldText, Placeholder: "Optional code identifier"},
			{Name: "description", Label: "Description", Type: FieldTextarea, Placeholder: "Describe this container type"},
		},
	})

	r.Register(entity.TypeContainer, Schema{
		Title:       "Container",
		Description: "Add a new container",
		Fields: []Field{
			{Name: "name", Label: "Name", Type: FieldText, Required: true, Placeholder: "Enter container name"},
			{Name: "containerTypeId", Label: "Container Type", Type: FieldDropdown, Required: true, SourceType: entity.TypeContainerType},
			{Name: "code", Label: "Code", Type: FieldText, Placeholder: "Container code"},
			{Name: "capacity", Label: "Capacity", Type: FieldNumber, Placeholder: "Capacity in units"},
		},
	})

	r.Register(entity.TypeVessel, Schema{
		Title:       "Vessel",
		Description: "Register a new vessel",
		Fields: []Field{
			{Name: "name", Label: "Name", Type: FieldText, Required: true, Placeholder: "Enter vessel name"},
			{Name: "code", Label: "Code", Type: FieldText, Required: true, Placeholder: "Vessel code"},
			{Name: "onuCode", Label: "ONU Code", Type: FieldText, Placeholder: "UN/LOCODE"},
			{Name: "flag", Label: "Flag", Type: FieldText, Placeholder: "Country flag"},
		},
	})

	return r
}
