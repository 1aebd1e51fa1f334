package fieldstream_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/deepankarm/fieldstream/pkg/fieldstream"
)

// chunkStream yields a fixed list of chunks, then io.EOF.
type chunkStream struct {
	chunks []string
	i      int
	err    error // returned instead of io.EOF when set
}

func chunks(cs ...string) *chunkStream {
	return &chunkStream{chunks: cs}
}

func (c *chunkStream) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if c.i >= len(c.chunks) {
		if c.err != nil {
			return "", c.err
		}
		return "", io.EOF
	}
	chunk := c.chunks[c.i]
	c.i++
	return chunk, nil
}

// chunkViews hands out a fresh chunkStream per view.
type chunkViews []string

func (v chunkViews) View() fieldstream.TextStream {
	return chunks(v...)
}

// drain reads s until it stops. The returned error is nil on a clean io.EOF.
func drain(t *testing.T, s fieldstream.TextStream) ([]string, error) {
	t.Helper()
	ctx := context.Background()
	var out []string
	for i := 0; ; i++ {
		if i > 10000 {
			t.Fatal("stream did not terminate")
		}
		text, err := s.Next(ctx)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, text)
	}
}

func extractAll(t *testing.T, cs []string, opts ...fieldstream.Option) (string, error) {
	t.Helper()
	out, err := drain(t, fieldstream.Extract(chunks(cs...), opts...))
	return strings.Join(out, ""), err
}

// splitAt cuts s at the given byte offsets, which must be ascending.
func splitAt(s string, cuts ...int) []string {
	var out []string
	prev := 0
	for _, c := range cuts {
		out = append(out, s[prev:c])
		prev = c
	}
	return append(out, s[prev:])
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
