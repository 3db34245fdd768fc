// Package models holds the JSON document model: a rooted tree of typed values
// where every container maintains the parent link of the values it holds.
package models

import (
	"encoding/json"
	"fmt"

	"github.com/iancoleman/strcase"
)

// Kind is the closed set of value kinds in a document.
type Kind int

const (
	KindObject Kind = iota
	KindArray
	KindProperty
	KindScalar
)

// String returns the lower-case kind name
func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindProperty:
		return "property"
	case KindScalar:
		return "scalar"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Label returns the display name of the kind, e.g. "Property"
func (k Kind) Label() string {
	return strcase.ToCamel(k.String())
}

// IsContainer reports whether values of this kind hold an ordered child list
// that can be pasted into.
func (k Kind) IsContainer() bool {
	return k == KindObject || k == KindArray
}

// ScalarType is the JSON type of a scalar value
type ScalarType int

const (
	ScalarNull ScalarType = iota
	ScalarString
	ScalarNumber
	ScalarBoolean
)

// String returns the lower-case JSON type name
func (t ScalarType) String() string {
	switch t {
	case ScalarString:
		return "string"
	case ScalarNumber:
		return "number"
	case ScalarBoolean:
		return "boolean"
	default:
		return "null"
	}
}

// Value is a node of the document model.
//
// Objects hold Property children, Arrays hold any non-Property values and a
// Property holds exactly one non-Property value. The parent link is a lookup
// aid only; it is written exclusively by the container methods in this package.
type Value struct {
	kind     Kind
	name     string
	scalar   ScalarType
	literal  string
	children []*Value
	parent   *Value
}

// NewObject creates an empty object
func NewObject() *Value {
	return &Value{kind: KindObject}
}

// NewArray creates an empty array
func NewArray() *Value {
	return &Value{kind: KindArray}
}

// NewString creates a string scalar holding the unescaped text s
func NewString(s string) *Value {
	return &Value{kind: KindScalar, scalar: ScalarString, literal: s}
}

// NewNumber creates a number scalar from its JSON literal text
func NewNumber(literal string) *Value {
	return &Value{kind: KindScalar, scalar: ScalarNumber, literal: literal}
}

// NewBool creates a boolean scalar
func NewBool(b bool) *Value {
	literal := "false"
	if b {
		literal = "true"
	}
	return &Value{kind: KindScalar, scalar: ScalarBoolean, literal: literal}
}

// NewNull creates a null scalar
func NewNull() *Value {
	return &Value{kind: KindScalar, scalar: ScalarNull, literal: "null"}
}

// NewProperty creates a property named name holding value. value must not be
// attached elsewhere and must not be a property.
func NewProperty(name string, value *Value) (*Value, error) {
	if value == nil {
		return nil, fmt.Errorf("property %q: missing value", name)
	}
	if value.kind == KindProperty {
		return nil, fmt.Errorf("property %q: %w", name, errInvalidChild(KindProperty, value.kind))
	}
	if value.parent != nil {
		return nil, fmt.Errorf("property %q: value already has a parent", name)
	}
	p := &Value{kind: KindProperty, name: name, children: []*Value{value}}
	value.parent = p
	return p, nil
}

// Kind returns the kind of the value
func (v *Value) Kind() Kind { return v.kind }

// Name returns the property name, empty for other kinds
func (v *Value) Name() string { return v.name }

// ScalarType returns the JSON type of a scalar
func (v *Value) ScalarType() ScalarType { return v.scalar }

// Literal returns the scalar text: the unescaped string for strings, the
// literal for numbers, booleans and null.
func (v *Value) Literal() string { return v.literal }

// Parent returns the container holding v, or nil for a root or detached value
func (v *Value) Parent() *Value { return v.parent }

// Len returns the number of children
func (v *Value) Len() int { return len(v.children) }

// Child returns the i-th child
func (v *Value) Child(i int) *Value { return v.children[i] }

// Children returns a copy of the child list
func (v *Value) Children() []*Value {
	out := make([]*Value, len(v.children))
	copy(out, v.children)
	return out
}

// PropertyValue returns the value held by a property
func (v *Value) PropertyValue() *Value {
	if v.kind != KindProperty || len(v.children) == 0 {
		return nil
	}
	return v.children[0]
}

// TypeName returns the JSON type label shown for a selection, e.g. "Object",
// "Property" or "String".
func (v *Value) TypeName() string {
	if v.kind == KindScalar {
		return strcase.ToCamel(v.scalar.String())
	}
	return v.kind.Label()
}

// Index returns the position of v in its parent, or -1
func (v *Value) Index() int {
	if v.parent == nil {
		return -1
	}
	for i, c := range v.parent.children {
		if c == v {
			return i
		}
	}
	return -1
}

// Root returns the topmost ancestor of v
func (v *Value) Root() *Value {
	r := v
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// IsDescendantOf reports whether v lies strictly below ancestor
func (v *Value) IsDescendantOf(ancestor *Value) bool {
	for p := v.parent; p != nil; p = p.parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

// Property returns the property named name of an object
func (v *Value) Property(name string) *Value {
	if v.kind != KindObject {
		return nil
	}
	for _, c := range v.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// DeepClone returns a detached copy of the subtree rooted at v
func (v *Value) DeepClone() *Value {
	c := &Value{
		kind:    v.kind,
		name:    v.name,
		scalar:  v.scalar,
		literal: v.literal,
	}
	if len(v.children) > 0 {
		c.children = make([]*Value, len(v.children))
		for i, child := range v.children {
			cc := child.DeepClone()
			cc.parent = c
			c.children[i] = cc
		}
	}
	return c
}

// Equal reports structural equality, ignoring parents
func (v *Value) Equal(other *Value) bool {
	if v == nil || other == nil {
		return v == other
	}
	if v.kind != other.kind || v.name != other.name || len(v.children) != len(other.children) {
		return false
	}
	if v.kind == KindScalar && (v.scalar != other.scalar || v.literal != other.literal) {
		return false
	}
	for i := range v.children {
		if !v.children[i].Equal(other.children[i]) {
			return false
		}
	}
	return true
}

// Interface converts the subtree into plain Go values: map[string]any,
// []any, string, json.Number, bool and nil. Useful for
// comparisons in tests and tooling.
func (v *Value) Interface() any {
	switch v.kind {
	case KindObject:
		m := make(map[string]any, len(v.children))
		for _, p := range v.children {
			m[p.name] = p.PropertyValue().Interface()
		}
		return m
	case KindArray:
		a := make([]any, len(v.children))
		for i, c := range v.children {
			a[i] = c.Interface()
		}
		return a
	case KindProperty:
		return map[string]any{v.name: v.PropertyValue().Interface()}
	default:
		switch v.scalar {
		case ScalarBoolean:
			return v.literal == "true"
		case ScalarNull:
			return nil
		case ScalarNumber:
			return json.Number(v.literal)
		default:
			return v.literal
		}
	}
}
