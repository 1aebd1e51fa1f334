package fieldstream

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"
)

// Views hands out independent readers over one source. Every view yields
// the full sequence of chunks from the start.
type Views interface {
	View() TextStream
}

// Sink consumes the deltas of one extraction.
type Sink interface {
	Write(ctx context.Context, d Delta) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(ctx context.Context, d Delta) error

// Write implements Sink.
func (f SinkFunc) Write(ctx context.Context, d Delta) error {
	return f(ctx, d)
}

// WriterSink writes delta text to w.
func WriterSink(w io.Writer) Sink {
	return SinkFunc(func(_ context.Context, d Delta) error {
		_, err := io.WriteString(w, d.Text)
		return err
	})
}

// Target is one consumer in a fan-out.
type Target struct {
	Name    string
	Sink    Sink
	Options []Option // applied after the shared options
}

// FanOut runs one extraction per target, each over its own view, and writes
// the deltas to the target's sink. Targets progress independently: a
// failing target does not stop the others. The returned error joins every
// target's error, each prefixed with the target name. Sinks that implement
// io.Closer are closed when their target finishes.
func FanOut(ctx context.Context, views Views, targets []Target, opts ...Option) error {
	// Not errgroup.WithContext: a failing target must not cancel its siblings.
	var g errgroup.Group
	errs := make([]error, len(targets))

	for i, t := range targets {
		src := views.View()
		g.Go(func() error {
			errs[i] = runTarget(ctx, src, t, opts)
			return errs[i]
		})
	}
	if err := g.Wait(); err == nil {
		return nil
	}
	return errors.Join(errs...)
}

func runTarget(ctx context.Context, src TextStream, t Target, shared []Option) (err error) {
	if c, ok := t.Sink.(io.Closer); ok {
		defer func() {
			if cerr := c.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("%s: close sink: %w", t.Name, cerr)
			}
		}()
	}

	opts := make([]Option, 0, len(shared)+len(t.Options)+1)
	opts = append(opts, shared...)
	opts = append(opts, WithName(t.Name))
	opts = append(opts, t.Options...)

	s := Extract(src, opts...)
	for {
		d, err := s.NextDelta(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", t.Name, err)
		}
		if err := t.Sink.Write(ctx, d); err != nil {
			return fmt.Errorf("%s: write: %w", t.Name, err)
		}
	}
}
