package invalid

import (
	"github.com/deepankarm/fieldstream/pkg/fieldstream"
)

// ═══════════════════════════════════════════════════════════════════════════
// INVALID TEST CASES - field name typos and type mismatches
// ═══════════════════════════════════════════════════════════════════════════

// ───────────────────────────────────────────────────────────────────────────
// Field name typos
// ───────────────────────────────────────────────────────────────────────────

type Reply struct {
	SpokenResponse string `json:"spoken_response"`
	Mood           int    `json:"mood,omitempty"`
}

var (
	_ = fieldstream.MustTyped[Reply]("spoken_respons")  // want `invalid.Reply has no field with JSON name "spoken_respons" \(did you mean "spoken_response"\?\)`
	_ = fieldstream.MustTyped[Reply]("SpokenResponse")  // want `invalid.Reply has no field with JSON name "SpokenResponse"`
	_ = fieldstream.MustTyped[Reply]("response")        // want `invalid.Reply has no field with JSON name "response" \(did you mean "spoken_response"\?\)`
	_ = fieldstream.MustTyped[Reply]("transcript_text") // want `invalid.Reply has no field with JSON name "transcript_text"`
)

// ───────────────────────────────────────────────────────────────────────────
// Ignored and unexported fields
// ───────────────────────────────────────────────────────────────────────────

type Hidden struct {
	Secret  string `json:"-"`
	private string
}

var (
	_, _ = fieldstream.Typed[Hidden]("Secret")  // want `invalid.Hidden has no field with JSON name "Secret"`
	_, _ = fieldstream.Typed[Hidden]("private") // want `invalid.Hidden has no field with JSON name "private"`
)

// ───────────────────────────────────────────────────────────────────────────
// Type mismatches
// ───────────────────────────────────────────────────────────────────────────

var _ = fieldstream.MustTyped[Reply]("mood") // want `field Mood of invalid.Reply has type int, want string`

type Pointers struct {
	Text *string  `json:"text"`
	Tags []string `json:"tags"`
}

var (
	_ = fieldstream.MustTyped[Pointers]("text") // want `field Text of invalid.Pointers has type \*string, want string`
	_ = fieldstream.MustTyped[Pointers]("tags") // want `field Tags of invalid.Pointers has type \[\]string, want string`
)

// ───────────────────────────────────────────────────────────────────────────
// Non-struct types
// ───────────────────────────────────────────────────────────────────────────

var (
	_ = fieldstream.MustTyped[*Reply]("spoken_response")  // want `MustTyped\[\*invalid.Reply\] needs a struct type`
	_ = fieldstream.MustTyped[map[string]any]("response") // want `needs a struct type`
)
