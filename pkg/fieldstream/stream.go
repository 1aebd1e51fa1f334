package fieldstream

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"
	"github.com/kaptinlin/jsonrepair"
	"go.uber.org/zap"

	"github.com/deepankarm/fieldstream/pkg/internal/partialjson"
)

// TextStream is a pull-based sequence of text fragments. Next blocks until
// the next fragment is available and returns io.EOF once the sequence ends.
type TextStream interface {
	Next(ctx context.Context) (string, error)
}

// Stats summarizes a stream's progress.
type Stats struct {
	Mode    Mode
	Chunks  int // chunks received from the source
	Bytes   int // bytes received from the source
	Deltas  int // deltas emitted
	Resyncs int // deltas that re-emitted the whole value

	// Truncated is set when a structured stream ended before its root object
	// closed. The last parse still succeeded, so this is not an error.
	Truncated bool
}

// accumulator is the append-only buffer a structured stream is parsed from.
type accumulator struct {
	buf []byte
}

func (a *accumulator) Append(chunk string) {
	a.buf = append(a.buf, chunk...)
}

func (a *accumulator) Bytes() []byte { return a.buf }

func (a *accumulator) discard() { a.buf = nil }

// Stream extracts the target field from a TextStream, one delta at a time.
// It implements TextStream itself, so streams compose.
//
// A Stream is not safe for concurrent use; each consumer drives its own.
type Stream struct {
	src    TextStream
	cfg    *config
	logger *zap.Logger

	mode    Mode
	acc     accumulator
	emitter Emitter
	stats   Stats

	parsed    bool  // last parse produced a Value
	complete  bool  // last parse saw the whole document
	streaming bool  // target field was still open at the last parse
	deferred  error // malformed error held back while salvaging
	err       error // sticky terminal state, io.EOF when finished cleanly
}

// Extract wraps src so that reading from the result yields deltas of the
// target field.
func Extract(src TextStream, opts ...Option) *Stream {
	cfg := newConfig(opts)
	logger := cfg.logger.With(
		zap.String("stream_id", uuid.NewString()),
		zap.String("field", cfg.schema.Field()),
	)
	if cfg.name != "" {
		logger = logger.With(zap.String("sink", cfg.name))
	}
	return &Stream{
		src:    src,
		cfg:    cfg,
		logger: logger,
		acc:    accumulator{buf: make([]byte, 0, 1024)},
	}
}

// Next returns the next delta's text. It returns io.EOF when the source is
// exhausted and the document ended cleanly.
func (s *Stream) Next(ctx context.Context) (string, error) {
	d, err := s.NextDelta(ctx)
	return d.Text, err
}

// NextDelta is like Next but also reports whether the delta is a resync.
func (s *Stream) NextDelta(ctx context.Context) (Delta, error) {
	if s.err != nil {
		return Delta{}, s.err
	}

	for {
		if err := ctx.Err(); err != nil {
			return Delta{}, s.fail(err)
		}
		chunk, err := s.src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return s.finish()
		}
		if err != nil {
			return Delta{}, s.fail(err)
		}

		s.stats.Chunks++
		s.stats.Bytes += len(chunk)
		s.cfg.observer.OnChunk(s.cfg.name, chunk)

		d, ok, err := s.step(chunk)
		if err != nil {
			return Delta{}, s.fail(err)
		}
		if ok {
			s.record(d)
			return d, nil
		}
	}
}

// Mode returns the detected mode.
func (s *Stream) Mode() Mode {
	return s.mode
}

// Stats returns a snapshot of the stream's counters.
func (s *Stream) Stats() Stats {
	st := s.stats
	st.Mode = s.mode
	return st
}

// Buffer returns the accumulated structured input.
func (s *Stream) Buffer() []byte {
	return s.acc.Bytes()
}

func (s *Stream) step(chunk string) (Delta, bool, error) {
	if s.mode == ModeUnknown {
		if s.mode = DetectMode(chunk); s.mode == ModeUnknown {
			return Delta{}, false, nil
		}
		s.logger.Debug("mode detected", zap.Stringer("mode", s.mode))
		s.cfg.observer.OnMode(s.cfg.name, s.mode)
	}

	if s.mode == ModePassthrough {
		return Delta{Text: chunk}, chunk != "", nil
	}

	s.acc.Append(chunk)
	if s.deferred != nil {
		// Already malformed; keep collecting for salvage at the end.
		return Delta{}, false, nil
	}

	d, ok, err := s.extract()
	if err != nil && s.cfg.salvage && errors.Is(err, ErrMalformed) {
		s.logger.Warn("structured output malformed, holding for salvage", zap.Error(err))
		s.deferred = err
		return Delta{}, false, nil
	}
	return d, ok, err
}

func (s *Stream) extract() (Delta, bool, error) {
	p, err := ParsePartial(s.acc.Bytes())
	if err != nil {
		return Delta{}, false, malformed(err)
	}
	s.parsed = !p.IsIncomplete()
	if !s.parsed {
		s.logger.Debug("buffer not yet parseable", zap.Int("bytes", len(s.acc.Bytes())))
		return Delta{}, false, nil
	}
	s.complete = p.Complete()

	field := s.cfg.schema.Field()
	if streaming := p.Pending(field); streaming != s.streaming {
		s.streaming = streaming
		if !streaming {
			s.logger.Debug("field value closed")
		}
	}

	value, ready, err := s.cfg.schema.Extract(p)
	if err != nil || !ready {
		return Delta{}, false, err
	}

	d, ok := s.emitter.Next(value)
	return d, ok, nil
}

// finish handles end of input.
func (s *Stream) finish() (Delta, error) {
	if s.mode != ModeStructured {
		s.logger.Debug("stream finished", zap.Stringer("mode", s.mode), zap.Int("deltas", s.stats.Deltas))
		s.err = io.EOF
		return Delta{}, io.EOF
	}

	terminal := s.deferred
	if terminal == nil && !s.parsed {
		terminal = &Error{
			Kind:    KindMalformedTerminal,
			Message: "input ended while a key was still being written",
			Offset:  len(s.acc.Bytes()),
		}
	}
	if terminal == nil {
		if !s.complete {
			s.stats.Truncated = true
			s.logger.Warn("input ended before the JSON object was closed", zap.Int("bytes", len(s.acc.Bytes())))
		}
		s.logger.Debug("stream finished",
			zap.Int("deltas", s.stats.Deltas),
			zap.Int("resyncs", s.stats.Resyncs),
			zap.Int("bytes", s.stats.Bytes),
		)
		s.err = io.EOF
		return Delta{}, io.EOF
	}

	if s.cfg.salvage {
		if d, ok := s.salvage(); ok {
			var e *Error
			if errors.As(terminal, &e) {
				e.Salvaged = true
			}
			s.record(d)
			s.err = s.fail(terminal)
			return d, nil
		}
	}
	return Delta{}, s.fail(terminal)
}

// salvage repairs the buffer and emits whatever the field gained.
func (s *Stream) salvage() (Delta, bool) {
	repaired, err := jsonrepair.JSONRepair(string(s.acc.Bytes()))
	if err != nil {
		s.logger.Warn("salvage failed", zap.Error(err))
		return Delta{}, false
	}
	p, err := ParsePartial([]byte(repaired))
	if err != nil || p.IsIncomplete() {
		s.logger.Warn("salvage produced unusable JSON", zap.Error(err))
		return Delta{}, false
	}
	value, ready, err := s.cfg.schema.Extract(p)
	if err != nil || !ready {
		s.logger.Warn("salvaged document does not fit the schema", zap.Error(err))
		return Delta{}, false
	}
	d, ok := s.emitter.Next(value)
	if ok {
		s.logger.Warn("salvaged trailing field text", zap.Int("chars", len(d.Text)), zap.Bool("resync", d.Resync))
	}
	return d, ok
}

func (s *Stream) record(d Delta) {
	s.stats.Deltas++
	if d.Resync {
		s.stats.Resyncs++
		s.logger.Warn("field value no longer extends emitted text, re-emitting in full",
			zap.Int("chars", len(d.Text)),
		)
	}
	s.cfg.observer.OnDelta(s.cfg.name, d)
}

// fail makes err the stream's terminal state and drops the buffer.
func (s *Stream) fail(err error) error {
	s.err = err
	s.acc.discard()

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.logger.Debug("stream cancelled", zap.Error(err))
	case KindOf(err) != "":
		s.logger.Error("extraction failed", zap.String("kind", string(KindOf(err))), zap.Error(err))
	default:
		s.logger.Error("source failed", zap.Error(err))
	}
	s.cfg.observer.OnError(s.cfg.name, err)
	return err
}

func malformed(err error) *Error {
	e := &Error{
		Kind:    KindMalformed,
		Message: err.Error(),
		Offset:  -1,
		Err:     err,
	}
	var syntaxErr *partialjson.SyntaxError
	if errors.As(err, &syntaxErr) {
		e.Offset = syntaxErr.Offset
	}
	return e
}
