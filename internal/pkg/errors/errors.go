package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrEngineUnavailable marks an OCR/PDF tool that cannot run at all (missing binary,
	// bad credentials). Retrying with another language will not help.
	ErrEngineUnavailable = errors.New("engine unavailable")
)

// Code classifies failures surfaced by the ingestion core.
type Code string

const (
	CodeNotFound    Code = "not_found"
	CodeExtraction  Code = "extraction"
	CodeValidation  Code = "validation"
	CodeTransaction Code = "transaction"
	CodeConflict    Code = "conflict"
	CodeInternal    Code = "internal"
)

// Error is the canonical coded error.
type Error struct {
	Code    Code
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, ErrNotFound) match not_found coded errors.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	switch target {
	case ErrNotFound:
		return e.Code == CodeNotFound
	case ErrInvalidArgument:
		return e.Code == CodeValidation
	}
	return false
}

func New(code Code, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// Wrap annotates err with a code. Errors that already carry a code keep it.
func Wrap(code Code, op string, err error) error {
	if err == nil {
		return nil
	}
	if existing := CodeOf(err); existing != "" && existing != CodeInternal {
		return err
	}
	return New(code, op, err.Error(), err)
}

func NotFound(op, format string, args ...any) error {
	return New(CodeNotFound, op, fmt.Sprintf(format, args...), nil)
}

func Validation(op, format string, args ...any) error {
	return New(CodeValidation, op, fmt.Sprintf(format, args...), nil)
}

func Extraction(op, message string, cause error) error {
	return New(CodeExtraction, op, message, cause)
}

// Transaction wraps a failure of the atomic re-indexing unit. Not-found, validation,
// extraction and conflict causes keep their code so callers can still branch on them.
func Transaction(op string, err error) error {
	if err == nil {
		return nil
	}
	switch CodeOf(err) {
	case CodeNotFound, CodeValidation, CodeExtraction, CodeConflict, CodeTransaction:
		return err
	}
	return New(CodeTransaction, op, err.Error(), err)
}

func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

func CodeOf(err error) Code {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Code
}
