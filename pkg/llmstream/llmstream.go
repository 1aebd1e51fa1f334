// Package llmstream adapts model outputs and other text sources to
// fieldstream.TextStream, and lets several consumers replay one source.
package llmstream

import (
	"context"
	"errors"
	"io"

	"github.com/deepankarm/fieldstream/pkg/fieldstream"
)

var (
	_ fieldstream.TextStream = (*SliceStream)(nil)
	_ fieldstream.TextStream = (*ReaderStream)(nil)
	_ fieldstream.TextStream = Func(nil)
)

// Func adapts a function to a TextStream.
type Func func(ctx context.Context) (string, error)

// Next implements fieldstream.TextStream.
func (f Func) Next(ctx context.Context) (string, error) {
	return f(ctx)
}

// SliceStream yields a fixed list of chunks.
type SliceStream struct {
	chunks []string
	next   int
}

// Chunks returns a stream over cs.
func Chunks(cs ...string) *SliceStream {
	return &SliceStream{chunks: cs}
}

// Next implements fieldstream.TextStream.
func (s *SliceStream) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.next >= len(s.chunks) {
		return "", io.EOF
	}
	chunk := s.chunks[s.next]
	s.next++
	return chunk, nil
}

// ReaderStream yields the contents of an io.Reader in chunks of at most
// size bytes. Chunk boundaries may fall inside multi-byte characters.
type ReaderStream struct {
	r   io.Reader
	buf []byte
}

// DefaultChunkSize is used by FromReader for non-positive sizes.
const DefaultChunkSize = 256

// FromReader returns a stream reading r.
func FromReader(r io.Reader, size int) *ReaderStream {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return &ReaderStream{r: r, buf: make([]byte, size)}
}

// Next implements fieldstream.TextStream. Empty reads are skipped.
func (s *ReaderStream) Next(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		n, err := s.r.Read(s.buf)
		if n > 0 {
			return string(s.buf[:n]), nil
		}
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		if err != nil {
			return "", err
		}
	}
}
