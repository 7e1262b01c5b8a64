package form

import (
	"strings"

	"github.com/mgallardo/freightdeck/internal/client/schema"
	"github.com/mgallardo/freightdeck/internal/entity"
)

// ValueKind enumerates the closed set of field value shapes.
type ValueKind int

const (
	KindText ValueKind = iota
	KindNumber
	KindBool
	KindRef
)

// Value is a field value keyed by the field's declared kind, so an invalid
// combination (a boolean in a number field, say) is unrepresentable rather
// than caught at submit time.
type Value struct {
	kind    ValueKind
	text    string
	number  *float64
	boolean bool
	ref     entity.ID
}

// Text builds a text value (also used for textarea fields).
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Number builds a number value; pass nil for "no input".
func Number(n *float64) Value {
	return Value{kind: KindNumber, number: n}
}

// Bool builds a checkbox value.
func Bool(b bool) Value {
	return Value{kind: KindBool, boolean: b}
}

// Ref builds a dropdown reference; the empty id means "nothing selected".
func Ref(id entity.ID) Value {
	return Value{kind: KindRef, ref: id}
}

// zeroValue returns the initial value for a freshly opened form field: empty
// text/number/ref, false for checkboxes.
func zeroValue(ft schema.FieldType) Value {
	switch ft {
	case schema.FieldNumber:
		return Number(nil)
	case schema.FieldCheckbox:
		return Bool(false)
	case schema.FieldDropdown:
		return Ref("")
	default:
		return Text("")
	}
}

// Kind returns the value's shape.
func (v Value) Kind() ValueKind { return v.kind }

// TextValue returns the text content for text/textarea values.
func (v Value) TextValue() string { return v.text }

// NumberValue returns the numeric content, nil when unset.
func (v Value) NumberValue() *float64 { return v.number }

// BoolValue returns the checkbox state.
func (v Value) BoolValue() bool { return v.boolean }

// RefValue returns the referenced entity id, empty when unselected.
func (v Value) RefValue() entity.ID { return v.ref }

// IsEmpty reports whether the value counts as missing for required-field
// validation. A false checkbox is present, not missing.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindText:
		return strings.TrimSpace(v.text) == ""
	case KindNumber:
		return v.number == nil
	case KindRef:
		return v.ref == ""
	}
	return false
}

// attr converts the value into its request-payload form, or (nil, false) when
// the field carries no input and should be omitted.
func (v Value) attr() (any, bool) {
	switch v.kind {
	case KindText:
		if v.text == "" {
			return nil, false
		}
		return v.text, true
	case KindNumber:
		if v.number == nil {
			return nil, false
		}
		return *v.number, true
	case KindBool:
		return v.boolean, true
	case KindRef:
		if v.ref == "" {
			return nil, false
		}
		return string(v.ref), true
	}
	return nil, false
}
