// Package schema models the JSON Schema documents written by the infer
// command
package schema

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/tidwall/pretty"

	"github.com/mcncl/jsonedit/internal/errors"
)

// SchemaType handles JSON Schema type field which can be string or array of strings
type SchemaType struct {
	Types []string
}

// MarshalJSON writes a single type as a string and several as an array
func (st SchemaType) MarshalJSON() ([]byte, error) {
	if len(st.Types) == 1 {
		return json.Marshal(st.Types[0])
	}
	return json.Marshal(st.Types)
}

// IsZero reports whether no type is set
func (st SchemaType) IsZero() bool {
	return len(st.Types) == 0
}

// String joins the allowed types with " or "
func (st SchemaType) String() string {
	return strings.Join(st.Types, " or ")
}

// Properties maps member names to schemas and keeps the order members were
// first seen in
type Properties struct {
	names  []string
	byName map[string]*Schema
}

// NewProperties creates an empty property list
func NewProperties() *Properties {
	return &Properties{byName: make(map[string]*Schema)}
}

// Set adds or replaces the schema of name
func (p *Properties) Set(name string, s *Schema) {
	if _, ok := p.byName[name]; !ok {
		p.names = append(p.names, name)
	}
	p.byName[name] = s
}

// Get returns the schema of name
func (p *Properties) Get(name string) (*Schema, bool) {
	s, ok := p.byName[name]
	return s, ok
}

// Names returns the member names in order
func (p *Properties) Names() []string {
	return append([]string(nil), p.names...)
}

// Len returns the number of members
func (p *Properties) Len() int {
	return len(p.names)
}

// MarshalJSON writes the members as an object in order
func (p *Properties) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, name := range p.names {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(p.byName[name])
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')
		b.Write(value)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// Schema represents a JSON Schema document
type Schema struct {
	Meta string `json:"$schema,omitempty"`

	// Type - can be string or array of strings in JSON Schema
	Type SchemaType `json:"type,omitzero"`

	// String format, such as uuid or date-time
	Format string `json:"format,omitempty"`

	// Object properties
	Properties *Properties `json:"properties,omitempty"`
	Required   []string    `json:"required,omitempty"`

	// Array items
	Items *Schema `json:"items,omitempty"`

	// Alternatives for values of different types
	AnyOf []*Schema `json:"anyOf,omitempty"`
}

// Marshal renders s as JSON indented with indent
func (s *Schema) Marshal(indent string) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, errors.NewOutputError("failed to encode schema", err)
	}
	return pretty.PrettyOptions(data, &pretty.Options{
		Width:    pretty.DefaultOptions.Width,
		Prefix:   "",
		Indent:   indent,
		SortKeys: false,
	}), nil
}
