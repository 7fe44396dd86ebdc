package distroalias

import (
	"errors"
	"strings"
)

// Error is the distroalias error domain type.
//
// Errors coming from distroalias components should be able to be inspected as
// ([errors.As]) an *Error at some point in the error chain.
//
// An Error is created at the system boundary (e.g. when talking to a remote
// endpoint or decoding its response) and intermediate layers should use
// [fmt.Errorf] with a "%w" verb in preference to creating a containing Error.
type Error struct {
	Inner   error
	Kind    ErrorKind
	Message string
	Op      string
}

var (
	_ error                       = (*Error)(nil)
	_ interface{ Is(error) bool } = (*Error)(nil)
	_ interface{ Unwrap() error } = (*Error)(nil)
)

// Error implements error.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(" ")
	}
	b.WriteString("[")
	switch e.Kind {
	case ErrTransport,
		ErrDecode,
		ErrSchema,
		ErrInvalid,
		ErrInternal:
		b.WriteString(string(e.Kind))
	default:
		b.WriteString("???")
	}
	b.WriteString("]: ")
	if e.Message != "" {
		b.WriteString(e.Message)
	}
	if e.Message != "" && e.Inner != nil {
		b.WriteString(": ")
	}
	if e.Op == "" && e.Message == "" {
		b.Reset()
	}
	if e.Inner != nil {
		b.WriteString(e.Inner.Error())
	}
	return b.String()
}

// Is enables [errors.Is].
//
// It compares the error kind. Callers should compare against a declared
// [ErrorKind] over a specific error.
func (e *Error) Is(kind error) bool {
	return errors.Is(e.Kind, kind)
}

// Unwrap enables [errors.Unwrap].
func (e *Error) Unwrap() error {
	return e.Inner
}

// ErrorKind represents classes of errors to be checked against.
//
// If an error is unsure which kind to use, ErrInternal should be used.
type ErrorKind string

// Defined error kinds.
var (
	ErrTransport = ErrorKind("transport") // remote endpoint unreachable or returned a non-success status
	ErrDecode    = ErrorKind("decode")    // response body is not valid JSON or XML
	ErrSchema    = ErrorKind("schema")    // decoded document is missing expected fields
	ErrInvalid   = ErrorKind("invalid")   // invalid request or configuration
	ErrInternal  = ErrorKind("internal")  // non-specific internal error
)

// Error implements error.
func (e ErrorKind) Error() string {
	return string(e)
}
