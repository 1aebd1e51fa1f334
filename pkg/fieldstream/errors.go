package fieldstream

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind categorizes a fatal extraction error.
type ErrorKind string

const (
	KindSchemaMismatch    ErrorKind = "schema_mismatch"    // complete document does not fit the typed shape
	KindMalformed         ErrorKind = "malformed"          // output can never become valid JSON
	KindMalformedTerminal ErrorKind = "malformed_terminal" // input ended on a buffer that does not parse
)

// Sentinels for errors.Is. A MalformedTerminal error matches both
// ErrMalformedTerminal and ErrMalformed.
var (
	ErrSchemaMismatch    = errors.New("schema mismatch")
	ErrMalformed         = errors.New("malformed structured output")
	ErrMalformedTerminal = errors.New("structured output ended before it could be read")
)

// Error is a fatal extraction error. After a Stream returns one it emits
// nothing more.
type Error struct {
	Kind    ErrorKind
	Loc     []string // JSON path of the offending field, if known
	Message string   // Human-readable error message
	Offset  int      // Byte offset into the accumulated buffer, -1 if unknown

	// Salvaged is set when WithSalvage recovered trailing text before the
	// error was returned.
	Salvaged bool

	Err error // Underlying cause, may be nil
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("fieldstream: ")
	b.WriteString(string(e.Kind))
	b.WriteString(": ")
	if len(e.Loc) > 0 {
		b.WriteString(strings.Join(e.Loc, "."))
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Offset >= 0 {
		fmt.Fprintf(&b, " (offset %d)", e.Offset)
	}
	return b.String()
}

// Unwrap exposes the kind sentinel and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	var errs []error
	switch e.Kind {
	case KindSchemaMismatch:
		errs = append(errs, ErrSchemaMismatch)
	case KindMalformed:
		errs = append(errs, ErrMalformed)
	case KindMalformedTerminal:
		errs = append(errs, ErrMalformedTerminal, ErrMalformed)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindOf returns the kind of a fatal extraction error, or "" if err is not one.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
