package errors

import (
	"errors"
	"fmt"
)

// Standard application errors
var (
	ErrEmptyInput      = errors.New("input is empty or contains only whitespace")
	ErrInvalidJSON     = errors.New("invalid JSON format")
	ErrMultipleJSON    = errors.New("multiple JSON values found at the root, only one is allowed")
	ErrFileNotFound    = errors.New("file not found")
	ErrFileEmpty       = errors.New("file is empty")
	ErrInvalidFilePath = errors.New("invalid file path")

	// Edit errors
	ErrClipboardEmpty  = errors.New("clipboard is empty")
	ErrRootNode        = errors.New("operation not allowed on the document root")
	ErrPropertyValue   = errors.New("the value of a property cannot be removed on its own")
	ErrNotContainer    = errors.New("target is not an object or an array")
	ErrDuplicateName   = errors.New("property with the same name already exists")
	ErrInvalidChild    = errors.New("container cannot hold a value of this kind")
	ErrNoParent        = errors.New("the parent is missing")
	ErrDetached        = errors.New("node is no longer part of the document")
	ErrUnknownKind     = errors.New("unattended value kind")
	ErrInvalidTransfer = errors.New("drag and drop transfer not allowed")
	ErrCutIntoSelf     = errors.New("cannot paste a cut node inside itself")
	ErrNoDocument      = errors.New("no document loaded")
	ErrNoSelection     = errors.New("no node selected")
	ErrPathNotFound    = errors.New("no node at path")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput       ErrorType = "input"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeStructural  ErrorType = "structural"
	ErrorTypeDetached    ErrorType = "detached"
	ErrorTypeUnknownKind ErrorType = "unknown-kind"
	ErrorTypeOutput      ErrorType = "output"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for comparison
func (e *AppError) Is(target error) bool {
	// Check if target is also an *AppError and if the types match
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// ParseError reports malformed JSON text. Line and Column are 1-based and zero
// when the position is unknown.
type ParseError struct {
	Line   int
	Column int
	Msg    string
}

// Error implements error interface
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s at line %d, column %d", e.Msg, e.Line, e.Column)
	}
	return e.Msg
}

// Unwrap lets errors.Is match ErrInvalidJSON
func (e *ParseError) Unwrap() error {
	return ErrInvalidJSON
}

// NewInputError creates a new error related to input processing
func NewInputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInput,
		Message: message,
		Err:     err,
	}
}

// NewParsingError creates a new error related to JSON parsing
func NewParsingError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeParsing,
		Message: message,
		Err:     err,
	}
}

// NewStructuralError creates an error for an edit that would break a container invariant
func NewStructuralError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeStructural,
		Message: message,
		Err:     err,
	}
}

// NewDetachedError creates an error for an edit targeting a removed node
func NewDetachedError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeDetached,
		Message: message,
		Err:     err,
	}
}

// NewUnknownKindError creates an error for a value outside the closed kind set.
// It signals a defect, callers must abort rather than recover.
func NewUnknownKindError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeUnknownKind,
		Message: message,
		Err:     err,
	}
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeOutput,
		Message: message,
		Err:     err,
	}
}

// IsType reports whether err is an *AppError of the given type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		if parseErr.Line > 0 {
			return fmt.Sprintf("INVALID Json format at (line %d, position %d)", parseErr.Line, parseErr.Column)
		}
		return "INVALID Json format"
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s", appErr.Message)
		case ErrorTypeParsing:
			return fmt.Sprintf("JSON parsing error: %s", appErr.Message)
		case ErrorTypeStructural:
			if appErr.Err != nil {
				return fmt.Sprintf("Edit rejected: %s: %v", appErr.Message, appErr.Err)
			}
			return fmt.Sprintf("Edit rejected: %s", appErr.Message)
		case ErrorTypeDetached:
			return fmt.Sprintf("Edit rejected: %s", appErr.Message)
		case ErrorTypeUnknownKind:
			return fmt.Sprintf("Internal error: %s", appErr.Message)
		case ErrorTypeOutput:
			return fmt.Sprintf("Output error: %s", appErr.Message)
		default:
			return fmt.Sprintf("Error: %s", appErr.Message)
		}
	}

	// Handle standard errors
	if errors.Is(err, ErrEmptyInput) {
		return "Error: The input is empty. Please provide valid JSON data."
	}
	if errors.Is(err, ErrInvalidJSON) {
		return "Error: The input contains invalid JSON. Please check your JSON syntax."
	}
	if errors.Is(err, ErrMultipleJSON) {
		return "Error: Multiple JSON values found. Please provide a single JSON value."
	}
	if errors.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if errors.Is(err, ErrFileEmpty) {
		return "Error: The specified file is empty. Please provide a file with valid JSON content."
	}
	if errors.Is(err, ErrInvalidFilePath) {
		return "Error: Invalid file path. Please provide a valid file path."
	}
	if errors.Is(err, ErrClipboardEmpty) {
		return "Error: Nothing to paste. Copy or cut a node first."
	}

	// Generic error message for unknown errors
	return fmt.Sprintf("Error: %v", err)
}
