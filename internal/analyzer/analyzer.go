// Package analyzer infers a JSON Schema that describes an example document
package analyzer

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"

	"github.com/mcncl/jsonedit/internal/errors"
	"github.com/mcncl/jsonedit/internal/models"
	"github.com/mcncl/jsonedit/internal/schema"
)

// Draft is the meta-schema written on inferred root schemas
const Draft = "https://json-schema.org/draft/2020-12/schema"

// Regex patterns for string formats
var (
	uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

	// RFC 3339 timestamps, with optional fractional seconds
	rfc3339Regex  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`)
	dateOnlyRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Analyzer builds schemas from documents
type Analyzer struct {
	// DetectFormats adds a format to strings that look like a uuid, a
	// timestamp or a date
	DetectFormats bool
}

// NewAnalyzer creates an Analyzer that detects string formats
func NewAnalyzer() *Analyzer {
	return &Analyzer{DetectFormats: true}
}

// Analyze returns a schema that doc satisfies. Members present in every
// object of an array are required, the others optional.
func (a *Analyzer) Analyze(doc *models.Value) (*schema.Schema, error) {
	if doc == nil {
		return nil, errors.NewInputError("nothing to analyze", errors.ErrNoDocument)
	}
	s, err := a.analyzeNode(doc)
	if err != nil {
		return nil, err
	}
	s.Meta = Draft
	return s, nil
}

func (a *Analyzer) analyzeNode(v *models.Value) (*schema.Schema, error) {
	switch v.Kind() {
	case models.KindObject:
		return a.analyzeObject(v)
	case models.KindArray:
		return a.analyzeArray(v)
	case models.KindProperty:
		return a.analyzeNode(v.PropertyValue())
	case models.KindScalar:
		switch v.ScalarType() {
		case models.ScalarString:
			return a.analyzeString(v.Literal()), nil
		case models.ScalarNumber:
			return analyzeNumber(v.Literal()), nil
		case models.ScalarBoolean:
			return typed("boolean"), nil
		case models.ScalarNull:
			return typed("null"), nil
		}
	}
	return nil, errors.NewUnknownKindError(fmt.Sprintf("cannot describe %s", v.Kind()), errors.ErrUnknownKind)
}

func (a *Analyzer) analyzeString(s string) *schema.Schema {
	out := typed("string")
	if !a.DetectFormats {
		return out
	}
	switch {
	case uuidRegex.MatchString(s):
		out.Format = "uuid"
	case rfc3339Regex.MatchString(s):
		out.Format = "date-time"
	case dateOnlyRegex.MatchString(s):
		out.Format = "date"
	}
	return out
}

func analyzeNumber(literal string) *schema.Schema {
	if _, err := strconv.ParseInt(literal, 10, 64); err == nil {
		return typed("integer")
	}
	return typed("number")
}

func (a *Analyzer) analyzeObject(obj *models.Value) (*schema.Schema, error) {
	out := typed("object")
	out.Properties = schema.NewProperties()
	for _, p := range obj.Children() {
		sub, err := a.analyzeNode(p.PropertyValue())
		if err != nil {
			return nil, fmt.Errorf("failed to analyze property '%s': %w", p.Name(), err)
		}
		out.Properties.Set(p.Name(), sub)
		out.Required = append(out.Required, p.Name())
	}
	return out, nil
}

// analyzeArray describes every element with one merged item schema
func (a *Analyzer) analyzeArray(arr *models.Value) (*schema.Schema, error) {
	out := typed("array")
	for i, item := range arr.Children() {
		sub, err := a.analyzeNode(item)
		if err != nil {
			return nil, fmt.Errorf("failed to analyze item %d: %w", i, err)
		}
		if out.Items == nil {
			out.Items = sub
			continue
		}
		out.Items = merge(out.Items, sub)
	}
	return out, nil
}

// merge returns a schema accepting everything a or b accepts
func merge(a, b *schema.Schema) *schema.Schema {
	if len(a.AnyOf) > 0 || len(b.AnyOf) > 0 {
		return mergeAlternatives(a, b)
	}

	ta, tb := a.Type.Types, b.Type.Types
	switch {
	case slices.Equal(ta, tb):
		return mergeSameType(a, b)
	case onlyNull(ta):
		return withNull(b)
	case onlyNull(tb):
		return withNull(a)
	}

	na, nb := withoutNull(ta), withoutNull(tb)
	if slices.Equal(na, nb) {
		return mergeSameType(withNull(a), withNull(b))
	}
	if isNumeric(na) && isNumeric(nb) {
		out := typed("number")
		if len(na) != len(ta) || len(nb) != len(tb) {
			out.Type.Types = append(out.Type.Types, "null")
		}
		return out
	}
	return mergeAlternatives(a, b)
}

// mergeSameType merges two schemas of the same type list
func mergeSameType(a, b *schema.Schema) *schema.Schema {
	out := &schema.Schema{Type: schema.SchemaType{Types: slices.Clone(a.Type.Types)}}
	if a.Format == b.Format {
		out.Format = a.Format
	}

	switch {
	case a.Properties != nil || b.Properties != nil:
		out.Properties = schema.NewProperties()
		for _, p := range []*schema.Properties{a.Properties, b.Properties} {
			if p == nil {
				continue
			}
			for _, name := range p.Names() {
				sub, _ := p.Get(name)
				if prev, ok := out.Properties.Get(name); ok {
					sub = merge(prev, sub)
				}
				out.Properties.Set(name, sub)
			}
		}
		for _, name := range a.Required {
			if slices.Contains(b.Required, name) {
				out.Required = append(out.Required, name)
			}
		}
	case a.Items != nil && b.Items != nil:
		out.Items = merge(a.Items, b.Items)
	case a.Items != nil:
		out.Items = a.Items
	default:
		out.Items = b.Items
	}
	return out
}

func mergeAlternatives(a, b *schema.Schema) *schema.Schema {
	var alts []*schema.Schema
	for _, s := range []*schema.Schema{a, b} {
		if len(s.AnyOf) > 0 {
			alts = append(alts, s.AnyOf...)
			continue
		}
		alts = append(alts, s)
	}

	// Fold alternatives of the same type into one
	var out []*schema.Schema
	for _, alt := range alts {
		folded := false
		for i, prev := range out {
			if slices.Equal(withoutNull(prev.Type.Types), withoutNull(alt.Type.Types)) {
				out[i] = merge(prev, alt)
				folded = true
				break
			}
		}
		if !folded {
			out = append(out, alt)
		}
	}
	if len(out) == 1 {
		return out[0]
	}
	return &schema.Schema{AnyOf: out}
}

func withNull(s *schema.Schema) *schema.Schema {
	if slices.Contains(s.Type.Types, "null") {
		return s
	}
	out := *s
	out.Type = schema.SchemaType{Types: append(slices.Clone(s.Type.Types), "null")}
	return &out
}

func withoutNull(types []string) []string {
	var out []string
	for _, t := range types {
		if t != "null" {
			out = append(out, t)
		}
	}
	return out
}

func onlyNull(types []string) bool {
	return len(types) == 1 && types[0] == "null"
}

func isNumeric(types []string) bool {
	return len(types) == 1 && (types[0] == "integer" || types[0] == "number")
}

func typed(t string) *schema.Schema {
	return &schema.Schema{Type: schema.SchemaType{Types: []string{t}}}
}
