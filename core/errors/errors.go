// Package errors provides standardized error types and helpers for the zim codebase.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrStructure indicates a malformed document structure that cannot be repaired
	ErrStructure = errors.New("malformed structure")
	// ErrMissingAttr indicates a mandatory attribute was absent and a sentinel was substituted
	ErrMissingAttr = errors.New("missing attribute")
	// ErrUnknownTag indicates a dumper has no handler for a tag
	ErrUnknownTag = errors.New("unknown tag")
	// ErrNoSuchFormat indicates an unregistered format name
	ErrNoSuchFormat = errors.New("no such format")
	// ErrIndex indicates a page index operation failed
	ErrIndex = errors.New("index failure")
)

// StructuralError represents a malformed event stream or tree that cannot
// be processed further. It is always fatal for the current build.
type StructuralError struct {
	Tag      string // Tag being processed when the error was detected
	Expected string // Tag that was expected instead, if any
	Message  string // Human-readable error message
	Err      error  // Underlying error, if any
}

func (e *StructuralError) Error() string {
	if e.Expected != "" {
		return fmt.Sprintf("mismatched end tag: got </%s>, expected </%s>", e.Tag, e.Expected)
	}
	if e.Tag != "" {
		return fmt.Sprintf("malformed structure at <%s>: %s", e.Tag, e.Message)
	}
	return fmt.Sprintf("malformed structure: %s", e.Message)
}

func (e *StructuralError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrStructure
}

// AttributeError records a mandatory attribute that was missing from an
// element. It is recovered by substituting a sentinel value and is only
// ever logged, never returned up the stack.
type AttributeError struct {
	Tag      string // Element the attribute belongs to
	Attr     string // Name of the missing attribute
	Sentinel string // Value substituted for the missing attribute
}

func (e *AttributeError) Error() string {
	if e.Sentinel != "" {
		return fmt.Sprintf("missing %q attribute on <%s>, substituted %q", e.Attr, e.Tag, e.Sentinel)
	}
	return fmt.Sprintf("missing %q attribute on <%s>", e.Attr, e.Tag)
}

func (e *AttributeError) Unwrap() error {
	return ErrMissingAttr
}

// UnknownTagError indicates a dumper encountered a tag it has neither a
// wrap sequence nor a handler for. This signals an incomplete dumper
// implementation rather than bad input.
type UnknownTagError struct {
	Tag    string // Tag with no registered handler
	Format string // Format whose dumper is incomplete
}

func (e *UnknownTagError) Error() string {
	if e.Format != "" {
		return fmt.Sprintf("unknown tag <%s> in %s dumper", e.Tag, e.Format)
	}
	return fmt.Sprintf("unknown tag <%s>", e.Tag)
}

func (e *UnknownTagError) Unwrap() error {
	return ErrUnknownTag
}

// ParseError represents a parsing or deserialization error
type ParseError struct {
	Format  string // Format being parsed (e.g., "wiki", "xml", "markdown")
	Path    string // File path, if applicable
	Line    int    // Line number, if known (1-based, 0 when unknown)
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *ParseError) Error() string {
	switch {
	case e.Path != "" && e.Line > 0:
		return fmt.Sprintf("failed to parse %s at %s:%d: %s", e.Format, e.Path, e.Line, e.Message)
	case e.Path != "":
		return fmt.Sprintf("failed to parse %s at %s: %s", e.Format, e.Path, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("failed to parse %s at line %d: %s", e.Format, e.Line, e.Message)
	default:
		return fmt.Sprintf("failed to parse %s: %s", e.Format, e.Message)
	}
}

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// NoSuchFormatError indicates a format name with no registration
type NoSuchFormatError struct {
	Name string // Format name as requested (before canonicalization)
}

func (e *NoSuchFormatError) Error() string {
	return fmt.Sprintf("no such format: %s", e.Name)
}

func (e *NoSuchFormatError) Unwrap() error {
	return ErrNoSuchFormat
}

// NotFoundError represents a resource not found error with context
type NotFoundError struct {
	Resource string // Type of resource (e.g., "page", "format", "object type")
	ID       string // Identifier of the resource
	Err      error  // Underlying error, if any
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// IndexError represents a failed page index operation with context
type IndexError struct {
	Operation string // Operation being performed (e.g., "open", "update", "query")
	Page      string // Page involved, if any
	Err       error  // Underlying error, if any
}

func (e *IndexError) Error() string {
	if e.Page != "" {
		return fmt.Sprintf("index %s failed for %s: %v", e.Operation, e.Page, e.Err)
	}
	return fmt.Sprintf("index %s failed: %v", e.Operation, e.Err)
}

func (e *IndexError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrIndex
}

// IOError represents an I/O operation error with context
type IOError struct {
	Operation string // Operation being performed (e.g., "read", "write", "open")
	Path      string // File/resource path involved
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Helper functions for creating common errors

// NewStructural creates a StructuralError with a message
func NewStructural(tag, message string) *StructuralError {
	return &StructuralError{
		Tag:     tag,
		Message: message,
	}
}

// NewMismatchedTag creates a StructuralError for an end tag that does not
// match the innermost open element
func NewMismatchedTag(got, expected string) *StructuralError {
	return &StructuralError{
		Tag:      got,
		Expected: expected,
	}
}

// NewMissingAttr creates an AttributeError
func NewMissingAttr(tag, attr, sentinel string) *AttributeError {
	return &AttributeError{
		Tag:      tag,
		Attr:     attr,
		Sentinel: sentinel,
	}
}

// NewUnknownTag creates an UnknownTagError
func NewUnknownTag(format, tag string) *UnknownTagError {
	return &UnknownTagError{
		Tag:    tag,
		Format: format,
	}
}

// NewParse creates a ParseError
func NewParse(format, path, message string) *ParseError {
	return &ParseError{
		Format:  format,
		Path:    path,
		Message: message,
	}
}

// NewParseLine creates a ParseError carrying a line number
func NewParseLine(format string, line int, message string) *ParseError {
	return &ParseError{
		Format:  format,
		Line:    line,
		Message: message,
	}
}

// NewNoSuchFormat creates a NoSuchFormatError
func NewNoSuchFormat(name string) *NoSuchFormatError {
	return &NoSuchFormatError{Name: name}
}

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// NewIndex creates an IndexError
func NewIndex(operation, page string, err error) *IndexError {
	return &IndexError{
		Operation: operation,
		Page:      page,
		Err:       err,
	}
}

// NewIO creates an IOError
func NewIO(operation, path string, err error) *IOError {
	return &IOError{
		Operation: operation,
		Path:      path,
		Err:       err,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
