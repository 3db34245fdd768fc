package formatter

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/pretty"

	"github.com/mcncl/jsonedit/internal/errors"
	"github.com/mcncl/jsonedit/internal/models"
)

// DefaultIndent is used when no indent is configured
const DefaultIndent = "  "

// Formatter is responsible for turning a document tree into JSON text
type Formatter struct {
	options pretty.Options
}

// NewFormatter creates a new Formatter instance
func NewFormatter() *Formatter {
	return NewFormatterWithIndent(DefaultIndent)
}

// NewFormatterWithIndent creates a Formatter using indent for each nesting level
func NewFormatterWithIndent(indent string) *Formatter {
	return &Formatter{
		options: pretty.Options{
			Width:    pretty.DefaultOptions.Width,
			Indent:   indent,
			SortKeys: false,
		},
	}
}

// Format serializes v as indented JSON. A property is rendered as its
// `"name": value` member text.
func (f *Formatter) Format(v *models.Value) (string, error) {
	if v == nil {
		return "", errors.NewOutputError("nothing to format", errors.ErrNoDocument)
	}
	if v.Kind() == models.KindProperty {
		value, err := f.Format(v.PropertyValue())
		if err != nil {
			return "", err
		}
		return Quote(v.Name()) + ": " + value, nil
	}

	compact, err := Compact(v)
	if err != nil {
		return "", err
	}
	out := pretty.PrettyOptions([]byte(compact), &f.options)
	return strings.TrimRight(string(out), "\n"), nil
}

// Compact serializes v without insignificant whitespace
func Compact(v *models.Value) (string, error) {
	var b strings.Builder
	if err := writeValue(&b, v); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeValue(b *strings.Builder, v *models.Value) error {
	switch v.Kind() {
	case models.KindObject:
		b.WriteByte('{')
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := writeValue(b, v.Child(i)); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	case models.KindArray:
		b.WriteByte('[')
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := writeValue(b, v.Child(i)); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	case models.KindProperty:
		b.WriteString(Quote(v.Name()))
		b.WriteByte(':')
		return writeValue(b, v.PropertyValue())
	case models.KindScalar:
		if v.ScalarType() == models.ScalarString {
			b.WriteString(Quote(v.Literal()))
		} else {
			b.WriteString(v.Literal())
		}
	default:
		return errors.NewUnknownKindError(fmt.Sprintf("cannot serialize %s", v.Kind()), errors.ErrUnknownKind)
	}
	return nil
}

// LiteralText returns the text shown for editing a value: strings quoted,
// booleans lower case, numbers and null as written, containers indented and
// properties as `"name": value`.
func (f *Formatter) LiteralText(v *models.Value) string {
	if v.Kind() == models.KindScalar {
		if v.ScalarType() == models.ScalarString {
			return Quote(v.Literal())
		}
		return strings.ToLower(v.Literal())
	}
	text, err := f.Format(v)
	if err != nil {
		return ""
	}
	return text
}

// Abbreviate cuts text to max characters followed by " ...". A max of zero
// or less disables truncation.
func Abbreviate(text string, max int) string {
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return string(runes[:max]) + " ..."
}

const hexDigits = "0123456789abcdef"

// Quote returns s as a JSON string literal
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			if r < 0x20 || r == '\u2028' || r == '\u2029' {
				b.WriteString(`\u`)
				b.WriteByte(hexDigits[r>>12&0xF])
				b.WriteByte(hexDigits[r>>8&0xF])
				b.WriteByte(hexDigits[r>>4&0xF])
				b.WriteByte(hexDigits[r&0xF])
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
