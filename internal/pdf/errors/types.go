package errors

import (
	"errors"
	"fmt"
)

// ExtractError is the error returned by every stage of an extraction run.
// It carries the failure category plus where it happened.
type ExtractError struct {
	Type ErrorType `json:"type"`
	Op   string    `json:"operation"`
	Path string    `json:"path,omitempty"`
	Page int       `json:"page,omitempty"`
	Err  error     `json:"-"`
}

// ErrorType represents the failure categories of an extraction run
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeInvalidArguments
	ErrorTypeDocumentOpen
	ErrorTypeExtraction
	ErrorTypeOutput
)

// Error implements the error interface
func (e *ExtractError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Type.String(), e.Op)
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Page > 0 {
		msg += fmt.Sprintf(" (page %d)", e.Page)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *ExtractError) Unwrap() error {
	return e.Err
}

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeInvalidArguments:
		return "INVALID_ARGUMENTS"
	case ErrorTypeDocumentOpen:
		return "DOCUMENT_OPEN"
	case ErrorTypeExtraction:
		return "EXTRACTION"
	case ErrorTypeOutput:
		return "OUTPUT"
	default:
		return "UNKNOWN"
	}
}

// InvalidArguments creates an error for a malformed invocation
func InvalidArguments(format string, args ...any) *ExtractError {
	return &ExtractError{
		Type: ErrorTypeInvalidArguments,
		Op:   "parse_arguments",
		Err:  fmt.Errorf(format, args...),
	}
}

// DocumentOpen creates an error for a document that could not be opened
func DocumentOpen(path string, err error) *ExtractError {
	return &ExtractError{
		Type: ErrorTypeDocumentOpen,
		Op:   "open",
		Path: path,
		Err:  err,
	}
}

// Extraction creates an error for a failure while reading a page
func Extraction(path string, page int, err error) *ExtractError {
	return &ExtractError{
		Type: ErrorTypeExtraction,
		Op:   "extract_page",
		Path: path,
		Page: page,
		Err:  err,
	}
}

// Output creates an error for a failure while writing the result
func Output(path string, err error) *ExtractError {
	return &ExtractError{
		Type: ErrorTypeOutput,
		Op:   "write",
		Path: path,
		Err:  err,
	}
}

// IsType reports whether err or anything it wraps is an ExtractError of type t
func IsType(err error, t ErrorType) bool {
	var ee *ExtractError
	if errors.As(err, &ee) {
		return ee.Type == t
	}
	return false
}

// TypeOf returns the category of err, or ErrorTypeUnknown for foreign errors
func TypeOf(err error) ErrorType {
	var ee *ExtractError
	if errors.As(err, &ee) {
		return ee.Type
	}
	return ErrorTypeUnknown
}
