package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the categories of failure a single file can hit on its way
// through the retitle pipeline
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeNotFound
	ErrorTypeNoText
	ErrorTypeExtraction
	ErrorTypeIO
	ErrorTypeWrite
	ErrorTypeMalformedInput
)

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeNotFound:
		return "NOT_FOUND"
	case ErrorTypeNoText:
		return "NO_TEXT"
	case ErrorTypeExtraction:
		return "EXTRACTION"
	case ErrorTypeIO:
		return "IO"
	case ErrorTypeWrite:
		return "WRITE"
	case ErrorTypeMalformedInput:
		return "MALFORMED_INPUT"
	default:
		return "UNKNOWN"
	}
}

// IsRecoverable reports whether the pipeline can continue with manual input
// after an error of this type
func (et ErrorType) IsRecoverable() bool {
	switch et {
	case ErrorTypeNotFound, ErrorTypeNoText:
		return true
	default:
		return false
	}
}

// PDFError is an error tied to one input file
type PDFError struct {
	Type     ErrorType `json:"type"`
	Message  string    `json:"message"`
	FilePath string    `json:"file_path,omitempty"`
	Err      error     `json:"-"`
}

// Sentinels for errors.Is. Any *PDFError matches the sentinel of its type.
var (
	ErrNotFound   = &PDFError{Type: ErrorTypeNotFound, Message: "note/level marker not found"}
	ErrNoText     = &PDFError{Type: ErrorTypeNoText, Message: "no sized text found"}
	ErrExtraction = &PDFError{Type: ErrorTypeExtraction, Message: "text extraction failed"}
	ErrIO         = &PDFError{Type: ErrorTypeIO, Message: "i/o failure"}
	ErrWrite      = &PDFError{Type: ErrorTypeWrite, Message: "write failed"}
)

// Error implements the error interface
func (e *PDFError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type.String(), e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type.String(), e.Message)
}

// Unwrap returns the underlying cause, if any
func (e *PDFError) Unwrap() error {
	return e.Err
}

// Is matches any *PDFError of the same type
func (e *PDFError) Is(target error) bool {
	t, ok := target.(*PDFError)
	return ok && t.Type == e.Type
}

// NewPDFError creates a new PDFError
func NewPDFError(errorType ErrorType, message string) *PDFError {
	return &PDFError{
		Type:    errorType,
		Message: message,
	}
}

// WrapError wraps a standard error as a PDFError with a message describing the
// failed step
func WrapError(errorType ErrorType, message string, err error) *PDFError {
	return &PDFError{
		Type:    errorType,
		Message: message,
		Err:     err,
	}
}

// WithFile adds file path information to an existing PDFError
func (e *PDFError) WithFile(filePath string) *PDFError {
	e.FilePath = filePath
	return e
}

// TypeOf returns the ErrorType carried by err, or ErrorTypeUnknown
func TypeOf(err error) ErrorType {
	var pe *PDFError
	if errors.As(err, &pe) {
		return pe.Type
	}
	return ErrorTypeUnknown
}

// IsRecoverable reports whether err is a *PDFError whose type allows manual fallback
func IsRecoverable(err error) bool {
	return TypeOf(err).IsRecoverable()
}
