package fieldstream

import (
	"encoding/json"
	"fmt"

	"github.com/deepankarm/fieldstream/pkg/internal/partialjson"
)

type partialKind int

const (
	partialIncomplete partialKind = iota
	partialValue
)

// Partial is the result of parsing an accumulated buffer: either Incomplete
// (wait for more input) or a Value holding the fields known so far.
type Partial struct {
	kind     partialKind
	fields   map[string]any
	raw      []byte
	complete bool
	pending  partialjson.PathSet
}

// Incomplete returns the Partial for a buffer that cannot be read yet.
func Incomplete() Partial {
	return Partial{kind: partialIncomplete}
}

// IsIncomplete reports whether more input is needed before any field can
// be read.
func (p Partial) IsIncomplete() bool {
	return p.kind == partialIncomplete
}

// Complete reports whether the whole document has been received.
func (p Partial) Complete() bool {
	return p.kind == partialValue && p.complete
}

// Fields returns the top-level fields known so far. Truncated strings hold
// their received prefix; truncated scalars are absent. Nil when Incomplete.
func (p Partial) Fields() map[string]any {
	return p.fields
}

// Raw returns the repaired document as valid JSON. Nil when Incomplete.
func (p Partial) Raw() []byte {
	return p.raw
}

// Pending reports whether the value at the given JSON path is still being
// received.
func (p Partial) Pending(path string) bool {
	return p.kind == partialValue && p.pending.Covers(path)
}

// ParsePartial parses a JSON object that may be cut off anywhere. It returns
// Incomplete while a top-level key is still being written, and a
// *partialjson.SyntaxError (wrapped) when buf can never become valid JSON.
func ParsePartial(buf []byte) (Partial, error) {
	result, err := partialjson.NewParser().Parse(buf)
	if err != nil {
		return Partial{}, err
	}
	if result.Repaired == nil || result.TruncatedAt == partialjson.TruncKey {
		return Incomplete(), nil
	}

	var fields map[string]any
	if err := json.Unmarshal(result.Repaired, &fields); err != nil {
		return Partial{}, fmt.Errorf("root value is not an object: %w", err)
	}

	return Partial{
		kind:     partialValue,
		fields:   fields,
		raw:      result.Repaired,
		complete: result.Complete(),
		pending:  partialjson.NewPathSet(result.Incomplete),
	}, nil
}
