package asset

import (
	"errors"
	"fmt"
)

// Code is the failure taxonomy shared by the locator, exporter and batch runner.
type Code int

const (
	OK Code = iota
	Malformed
	NotFound
	UnsupportedKind
	IOError
	EmptyOutput
	StrategyFailure
	Cancelled
	InvalidInput
	DestinationCollision
)

var codeNames = [...]string{
	OK:                   "OK",
	Malformed:            "Malformed",
	NotFound:             "NotFound",
	UnsupportedKind:      "UnsupportedKind",
	IOError:              "IOError",
	EmptyOutput:          "EmptyOutput",
	StrategyFailure:      "StrategyFailure",
	Cancelled:            "Cancelled",
	InvalidInput:         "InvalidInput",
	DestinationCollision: "DestinationCollision",
}

func (c Code) String() string {
	if c < 0 || int(c) >= len(codeNames) {
		return fmt.Sprintf("Code(%d)", int(c))
	}
	return codeNames[c]
}

// MarshalText lets codes appear by name in JSON and YAML summaries.
func (c Code) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Code) UnmarshalText(b []byte) error {
	for i, n := range codeNames {
		if n == string(b) {
			*c = Code(i)
			return nil
		}
	}
	return fmt.Errorf("asset: unknown code %q", b)
}

// BatchLevel reports whether the code rejects a whole batch rather than one job.
func (c Code) BatchLevel() bool {
	return c == InvalidInput || c == DestinationCollision
}

// Sentinels for errors.Is matching by code.
var (
	ErrMalformed            = &Error{Code: Malformed}
	ErrNotFound             = &Error{Code: NotFound}
	ErrUnsupportedKind      = &Error{Code: UnsupportedKind}
	ErrIO                   = &Error{Code: IOError}
	ErrEmptyOutput          = &Error{Code: EmptyOutput}
	ErrStrategyFailure      = &Error{Code: StrategyFailure}
	ErrCancelled            = &Error{Code: Cancelled}
	ErrInvalidInput         = &Error{Code: InvalidInput}
	ErrDestinationCollision = &Error{Code: DestinationCollision}
)

// Error is a classified pipeline failure.
type Error struct {
	Code Code
	Ref  string
	Path string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	s := e.Code.String()
	if e.Ref != "" {
		s += " " + e.Ref
	}
	if e.Path != "" {
		s += " -> " + e.Path
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error carrying the same code, so the sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Errorf builds a classified error for a reference.
func Errorf(code Code, ref string, format string, args ...any) *Error {
	return &Error{Code: code, Ref: ref, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error.
func Wrap(code Code, ref, path string, err error) *Error {
	return &Error{Code: code, Ref: ref, Path: path, Err: err}
}

// CodeOf extracts the code of a classified error. Unclassified errors count as IOError,
// nil as OK.
func CodeOf(err error) Code {
	if err == nil {
		return OK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return IOError
}
