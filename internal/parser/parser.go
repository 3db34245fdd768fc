package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mcncl/jsonedit/internal/errors" // Custom errors package
	"github.com/mcncl/jsonedit/internal/models"
)

// Parse reads a single JSON value from reader into a document tree
func Parse(reader io.Reader) (*models.Value, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.NewInputError("failed to read JSON input", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
	}
	return parseDocument(string(data))
}

// ParseString parses JSON from a string
func ParseString(jsonString string) (*models.Value, error) {
	// Whitespace-only text is reported as empty input rather than a syntax error
	if strings.TrimSpace(jsonString) == "" {
		return nil, errors.NewInputError("input string is empty", errors.ErrEmptyInput)
	}
	return parseDocument(jsonString)
}

// ParseMembers parses text as the member list of an object whose braces are
// implied, e.g. `"a": 1, b: [true]`. Members are returned in order, repeated
// names included, as detached properties.
func ParseMembers(text string) ([]*models.Value, error) {
	s := newScanner(text)
	members, err := s.parseMembers(eof, 0)
	if err != nil {
		return nil, errors.NewParsingError("failed to parse properties", err)
	}
	return members, nil
}

// ParseFile parses JSON from a file path
func ParseFile(filePath string) (*models.Value, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		// Check if the file doesn't exist
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing file: %v\n", err)
		}
	}()

	// Check for empty file before parsing
	stat, err := file.Stat()
	if err != nil {
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to get file stats for '%s'", filePath),
			err,
		)
	}
	if stat.Size() == 0 {
		return nil, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	return Parse(file)
}

func parseDocument(text string) (*models.Value, error) {
	s := newScanner(text)
	root, err := s.parseValue(0)
	if err != nil {
		return nil, errors.NewParsingError("failed to parse JSON", err)
	}
	s.skipSpace()
	if !s.atEOF() {
		// A second complete value means several documents; anything else is junk
		probe := newScanner(text[s.pos:])
		probe.line, probe.col = s.line, s.col
		if _, perr := probe.parseValue(0); perr == nil {
			return nil, errors.NewParsingError("multiple JSON values found at the root", errors.ErrMultipleJSON)
		}
		return nil, errors.NewParsingError("invalid trailing data after JSON value", s.errorf("unexpected character %s", s.describe()))
	}
	return root, nil
}
