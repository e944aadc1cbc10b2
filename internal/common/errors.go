package common

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a processing failure. The printed report does not
// distinguish kinds; callers and tests do.
type Kind int

const (
	KindUnknown Kind = iota
	KindOpenFailed
	KindExtractionFailed
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindOpenFailed:
		return "OPEN_FAILED"
	case KindExtractionFailed:
		return "EXTRACTION_FAILED"
	case KindCanceled:
		return "CANCELED"
	default:
		return "UNKNOWN"
	}
}

// ProcessingError is the single failure type a report run produces.
type ProcessingError struct {
	Kind  Kind
	Path  string
	Page  int // 1-based; 0 when the failure is not tied to a page
	Cause error
}

// Error returns the cause's message, prefixed with the page when known.
func (e *ProcessingError) Error() string {
	msg := "unknown error"
	if e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.Page > 0 {
		return fmt.Sprintf("page %d: %s", e.Page, msg)
	}
	return msg
}

func (e *ProcessingError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrPanic        = errors.New("recovered panic")
)

// Error constructors
func NewProcessingError(kind Kind, path string, page int, cause error) *ProcessingError {
	return &ProcessingError{
		Kind:  kind,
		Path:  path,
		Page:  page,
		Cause: cause,
	}
}

// OpenError wraps a failure to open path. Context errors become KindCanceled.
func OpenError(path string, cause error) *ProcessingError {
	if isContextErr(cause) {
		return NewProcessingError(KindCanceled, path, 0, cause)
	}
	return NewProcessingError(KindOpenFailed, path, 0, cause)
}

// ExtractionError wraps a failure to extract page of path.
func ExtractionError(path string, page int, cause error) *ProcessingError {
	if isContextErr(cause) {
		return NewProcessingError(KindCanceled, path, page, cause)
	}
	return NewProcessingError(KindExtractionFailed, path, page, cause)
}

// PanicError converts a recovered value into an error wrapping ErrPanic.
func PanicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("%w: %w", ErrPanic, err)
	}
	return fmt.Errorf("%w: %v", ErrPanic, r)
}

// KindOf returns the Kind of the first ProcessingError in err's chain.
func KindOf(err error) Kind {
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	if isContextErr(err) {
		return KindCanceled
	}
	return KindUnknown
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
