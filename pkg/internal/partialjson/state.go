package partialjson

import "fmt"

// Truncation describes where the input was cut off.
type Truncation string

const (
	TruncNone   Truncation = "complete"
	TruncString Truncation = "string"
	TruncArray  Truncation = "array"
	TruncObject Truncation = "object"
	TruncKey    Truncation = "key"
	TruncValue  Truncation = "value"
)

// ParseResult contains the repaired JSON and metadata about what's incomplete.
type ParseResult struct {
	// Repaired is valid JSON with incomplete parts closed or removed.
	// It is nil when nothing has been received yet.
	Repaired []byte

	// Incomplete tracks which JSON paths are truncated
	// e.g., ["tasks", "[1]", "title"] means tasks[1].title was cut off
	Incomplete [][]string

	// TruncatedAt indicates where the input was cut off
	TruncatedAt Truncation
}

// Complete reports whether the root value was fully received.
func (r *ParseResult) Complete() bool {
	return r.TruncatedAt == TruncNone
}

// SyntaxError reports input that can never become valid JSON, no matter
// how much more data arrives.
type SyntaxError struct {
	Offset int // byte offset of the offending character
	msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at offset %d", e.msg, e.Offset)
}

func syntaxErrorf(offset int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Offset: offset, msg: fmt.Sprintf(format, args...)}
}
