package fieldstream

// Mode is how a stream is interpreted. It is decided once, from the first
// non-empty chunk, and never changes afterwards.
type Mode int

const (
	// ModeUnknown means no non-empty chunk has been seen yet.
	ModeUnknown Mode = iota
	// ModePassthrough relays plain text chunks unmodified.
	ModePassthrough
	// ModeStructured extracts the target field from a JSON object.
	ModeStructured
)

func (m Mode) String() string {
	switch m {
	case ModePassthrough:
		return "passthrough"
	case ModeStructured:
		return "structured"
	default:
		return "unknown"
	}
}

// DetectMode classifies a stream by the first byte of its first chunk.
// Chunks are token sized, so the first byte is all there is to go on.
// An empty chunk decides nothing.
func DetectMode(chunk string) Mode {
	switch {
	case chunk == "":
		return ModeUnknown
	case chunk[0] == '{':
		return ModeStructured
	default:
		return ModePassthrough
	}
}
