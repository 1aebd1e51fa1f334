package valid

import (
	"github.com/deepankarm/fieldstream/pkg/fieldstream"
)

// ═══════════════════════════════════════════════════════════════════════════
// VALID TEST CASES - no diagnostics expected
// ═══════════════════════════════════════════════════════════════════════════

// ───────────────────────────────────────────────────────────────────────────
// Tagged and untagged fields
// ───────────────────────────────────────────────────────────────────────────

type Reply struct {
	SpokenResponse string `json:"spoken_response" validate:"required"`
	Mood           int    `json:"mood,omitempty"`
	Caption        string
}

var (
	_, _ = fieldstream.Typed[Reply]("spoken_response")
	_    = fieldstream.MustTyped[Reply]("Caption")
)

// ───────────────────────────────────────────────────────────────────────────
// Named string types and constants
// ───────────────────────────────────────────────────────────────────────────

type Text string

type Note struct {
	Body Text `json:"body"`
}

const bodyField = "body"

var _ = fieldstream.MustTyped[Note](bodyField)

// ───────────────────────────────────────────────────────────────────────────
// Embedded structs
// ───────────────────────────────────────────────────────────────────────────

type Base struct {
	Response string `json:"response"`
}

type Extended struct {
	Base
	Mood string `json:"mood"`
}

type DeepBase struct {
	Answer string `json:"answer"`
}

type Middle struct {
	*DeepBase
}

type Top struct {
	Middle
}

var (
	_ = fieldstream.MustTyped[Extended]("response")
	_ = fieldstream.MustTyped[Top]("answer")
)

// ───────────────────────────────────────────────────────────────────────────
// Not checked: runtime names, other functions, nolint
// ───────────────────────────────────────────────────────────────────────────

func runtimeName(name string) {
	_ = fieldstream.MustTyped[Reply](name)
}

var _ = fieldstream.Other[Reply]("missing")

var _ = fieldstream.MustTyped[Reply]("missing") // nolint:fieldstreamlint
