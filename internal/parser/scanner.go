package parser

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/mcncl/jsonedit/internal/errors"
	"github.com/mcncl/jsonedit/internal/models"
)

// maxNesting bounds recursion on hostile input
const maxNesting = 10000

const eof = -1

// scanner is a recursive-descent JSON reader that tracks line and column.
// Object member names may also be bare identifiers, so a property can be
// edited as `name: value`.
type scanner struct {
	src  string
	pos  int
	line int
	col  int
}

func newScanner(src string) *scanner {
	return &scanner{src: src, line: 1, col: 1}
}

func (s *scanner) atEOF() bool {
	return s.pos >= len(s.src)
}

func (s *scanner) peek() rune {
	if s.atEOF() {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(s.src[s.pos:])
	return r
}

func (s *scanner) next() rune {
	if s.atEOF() {
		return eof
	}
	r, size := utf8.DecodeRuneInString(s.src[s.pos:])
	s.pos += size
	if r == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return r
}

func (s *scanner) skipSpace() {
	for {
		switch s.peek() {
		case ' ', '\t', '\n', '\r':
			s.next()
		default:
			return
		}
	}
}

func (s *scanner) errorf(format string, args ...any) *errors.ParseError {
	return &errors.ParseError{Line: s.line, Column: s.col, Msg: fmt.Sprintf(format, args...)}
}

func (s *scanner) describe() string {
	r := s.peek()
	if r == eof {
		return "end of input"
	}
	return fmt.Sprintf("%q", r)
}

func (s *scanner) expect(want rune) error {
	s.skipSpace()
	if s.peek() != want {
		return s.errorf("expected %q, found %s", want, s.describe())
	}
	s.next()
	return nil
}

func (s *scanner) parseValue(depth int) (*models.Value, error) {
	if depth > maxNesting {
		return nil, s.errorf("maximum nesting depth %d exceeded", maxNesting)
	}
	s.skipSpace()
	switch r := s.peek(); {
	case r == '{':
		s.next()
		members, err := s.parseMembers('}', depth+1)
		if err != nil {
			return nil, err
		}
		return buildObject(members), nil
	case r == '[':
		s.next()
		return s.parseArray(depth + 1)
	case r == '"':
		str, err := s.parseString()
		if err != nil {
			return nil, err
		}
		return models.NewString(str), nil
	case r == '-' || (r >= '0' && r <= '9'):
		lit, err := s.parseNumber()
		if err != nil {
			return nil, err
		}
		return models.NewNumber(lit), nil
	case isIdentStart(r):
		line, col := s.line, s.col
		word := s.parseIdent()
		switch word {
		case "true":
			return models.NewBool(true), nil
		case "false":
			return models.NewBool(false), nil
		case "null":
			return models.NewNull(), nil
		}
		return nil, &errors.ParseError{Line: line, Column: col, Msg: fmt.Sprintf("unexpected literal %q", word)}
	default:
		return nil, s.errorf("unexpected %s while reading a value", s.describe())
	}
}

// buildObject attaches members to a new object. A repeated name replaces the
// earlier member's value in place.
func buildObject(members []*models.Value) *models.Value {
	obj := models.NewObject()
	for _, m := range members {
		if existing := obj.Property(m.Name()); existing != nil {
			_ = existing.PropertyValue().Replace(m.PropertyValue().DeepClone())
			continue
		}
		_ = obj.Add(m)
	}
	return obj
}

// parseMembers reads `name: value` pairs separated by commas up to end, which
// is '}' or eof. The terminator is consumed.
func (s *scanner) parseMembers(end rune, depth int) ([]*models.Value, error) {
	var members []*models.Value
	s.skipSpace()
	if s.peek() == end {
		s.next()
		return members, nil
	}
	for {
		s.skipSpace()
		var name string
		switch r := s.peek(); {
		case r == '"':
			str, err := s.parseString()
			if err != nil {
				return nil, err
			}
			name = str
		case isIdentStart(r):
			name = s.parseIdent()
		default:
			return nil, s.errorf("expected property name, found %s", s.describe())
		}
		if err := s.expect(':'); err != nil {
			return nil, err
		}
		value, err := s.parseValue(depth)
		if err != nil {
			return nil, err
		}
		p, err := models.NewProperty(name, value)
		if err != nil {
			return nil, s.errorf("%v", err)
		}
		members = append(members, p)

		s.skipSpace()
		switch s.peek() {
		case ',':
			s.next()
		case end:
			s.next()
			return members, nil
		default:
			if end == eof {
				return nil, s.errorf("expected ',' or end of input, found %s", s.describe())
			}
			return nil, s.errorf("expected ',' or '}', found %s", s.describe())
		}
	}
}

func (s *scanner) parseArray(depth int) (*models.Value, error) {
	arr := models.NewArray()
	s.skipSpace()
	if s.peek() == ']' {
		s.next()
		return arr, nil
	}
	for {
		v, err := s.parseValue(depth)
		if err != nil {
			return nil, err
		}
		_ = arr.Add(v)
		s.skipSpace()
		switch s.peek() {
		case ',':
			s.next()
		case ']':
			s.next()
			return arr, nil
		default:
			return nil, s.errorf("expected ',' or ']', found %s", s.describe())
		}
	}
}

func (s *scanner) parseString() (string, error) {
	s.next() // opening quote
	var b strings.Builder
	for {
		r := s.next()
		switch {
		case r == eof:
			return "", s.errorf("unterminated string")
		case r == '"':
			return b.String(), nil
		case r < 0x20:
			return "", s.errorf("invalid control character %q in string", r)
		case r == '\\':
			if err := s.parseEscape(&b); err != nil {
				return "", err
			}
		default:
			b.WriteRune(r)
		}
	}
}

func (s *scanner) parseEscape(b *strings.Builder) error {
	r := s.next()
	switch r {
	case '"', '\\', '/':
		b.WriteRune(r)
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'n':
		b.WriteByte('\n')
	case 'r':
		b.WriteByte('\r')
	case 't':
		b.WriteByte('\t')
	case 'u':
		r1, err := s.parseHex4()
		if err != nil {
			return err
		}
		if utf16.IsSurrogate(r1) && strings.HasPrefix(s.src[s.pos:], `\u`) {
			s.next()
			s.next()
			r2, err := s.parseHex4()
			if err != nil {
				return err
			}
			if dec := utf16.DecodeRune(r1, r2); dec != unicode.ReplacementChar {
				b.WriteRune(dec)
				return nil
			}
			b.WriteRune(unicode.ReplacementChar)
			r1 = r2
		}
		if utf16.IsSurrogate(r1) {
			r1 = unicode.ReplacementChar
		}
		b.WriteRune(r1)
	default:
		return s.errorf("invalid escape sequence")
	}
	return nil
}

func (s *scanner) parseHex4() (rune, error) {
	var v rune
	for i := 0; i < 4; i++ {
		r := s.next()
		switch {
		case r >= '0' && r <= '9':
			v = v<<4 | (r - '0')
		case r >= 'a' && r <= 'f':
			v = v<<4 | (r - 'a' + 10)
		case r >= 'A' && r <= 'F':
			v = v<<4 | (r - 'A' + 10)
		default:
			return 0, s.errorf("invalid unicode escape")
		}
	}
	return v, nil
}

func (s *scanner) parseNumber() (string, error) {
	start := s.pos
	if s.peek() == '-' {
		s.next()
	}
	switch r := s.peek(); {
	case r == '0':
		s.next()
	case r >= '1' && r <= '9':
		s.digits()
	default:
		return "", s.errorf("invalid number")
	}
	if s.peek() == '.' {
		s.next()
		if !isDigit(s.peek()) {
			return "", s.errorf("expected digit after decimal point")
		}
		s.digits()
	}
	if r := s.peek(); r == 'e' || r == 'E' {
		s.next()
		if r := s.peek(); r == '+' || r == '-' {
			s.next()
		}
		if !isDigit(s.peek()) {
			return "", s.errorf("expected digit in exponent")
		}
		s.digits()
	}
	if isIdentPart(s.peek()) {
		return "", s.errorf("invalid character %s in number", s.describe())
	}
	return s.src[start:s.pos], nil
}

func (s *scanner) digits() {
	for isDigit(s.peek()) {
		s.next()
	}
}

func (s *scanner) parseIdent() string {
	start := s.pos
	for isIdentPart(s.peek()) {
		s.next()
	}
	return s.src[start:s.pos]
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}
