package fieldstream

import "strings"

// Delta is a piece of newly available field text.
type Delta struct {
	Text string `json:"text"`

	// Resync is set when the field value stopped extending what was already
	// emitted and Text is the whole new value. Consumers that append will
	// repeat earlier text; the flag lets them notice.
	Resync bool `json:"resync,omitempty"`
}

// Emitter turns successive values of a field into deltas. Each consumer
// needs its own Emitter.
type Emitter struct {
	cursor string
}

// Next compares value with the last emitted value. If value extends it, the
// new suffix is returned; otherwise value is returned in full as a resync.
// ok is false when there is nothing to emit, in which case the cursor does
// not move.
func (e *Emitter) Next(value string) (Delta, bool) {
	d := Delta{Text: value, Resync: true}
	if strings.HasPrefix(value, e.cursor) {
		d = Delta{Text: value[len(e.cursor):]}
	}
	if d.Text == "" {
		return Delta{}, false
	}
	e.cursor = value
	return d, true
}

// Cursor returns the last emitted full value.
func (e *Emitter) Cursor() string {
	return e.cursor
}
