package ginfieldstream

import (
	"errors"

	"github.com/deepankarm/fieldstream/pkg/fieldstream"
)

// DonePayload is sent when a stream ends cleanly.
type DonePayload struct {
	Mode    string `json:"mode"`
	Chunks  int    `json:"chunks"`
	Bytes   int    `json:"bytes"`
	Deltas  int    `json:"deltas"`
	Resyncs int    `json:"resyncs"`

	// Truncated is set when the input ended before the JSON object closed.
	Truncated bool `json:"truncated,omitempty"`
}

func newDonePayload(st fieldstream.Stats) DonePayload {
	return DonePayload{
		Mode:    st.Mode.String(),
		Chunks:  st.Chunks,
		Bytes:   st.Bytes,
		Deltas:  st.Deltas,
		Resyncs: st.Resyncs,

		Truncated: st.Truncated,
	}
}

// ErrorPayload is sent when a stream fails.
type ErrorPayload struct {
	Kind     string   `json:"kind"`
	Loc      []string `json:"loc,omitempty"`
	Message  string   `json:"message"`
	Offset   *int     `json:"offset,omitempty"`
	Salvaged bool     `json:"salvaged,omitempty"`
}

func newErrorPayload(err error) ErrorPayload {
	var e *fieldstream.Error
	if !errors.As(err, &e) {
		return ErrorPayload{Kind: "source", Message: err.Error()}
	}
	p := ErrorPayload{
		Kind:     string(e.Kind),
		Loc:      e.Loc,
		Message:  e.Message,
		Salvaged: e.Salvaged,
	}
	if e.Offset >= 0 {
		offset := e.Offset
		p.Offset = &offset
	}
	return p
}

// WSMessage is a message on the extraction WebSocket. Clients send
// "chunk" messages followed by one "end"; the server answers with "delta"
// messages followed by one "done" or "error".
type WSMessage struct {
	Type   string        `json:"type"`
	Text   string        `json:"text,omitempty"`
	Resync bool          `json:"resync,omitempty"`
	Done   *DonePayload  `json:"done,omitempty"`
	Error  *ErrorPayload `json:"error,omitempty"`
}

// WebSocket message types.
const (
	WSChunk = "chunk"
	WSEnd   = "end"
	WSDelta = "delta"
	WSDone  = "done"
	WSError = "error"
)
