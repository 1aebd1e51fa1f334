package llmstream_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepankarm/fieldstream/pkg/fieldstream"
	"github.com/deepankarm/fieldstream/pkg/llmstream"
)

// countingStream counts pulls from the source.
type countingStream struct {
	mu    sync.Mutex
	src   fieldstream.TextStream
	pulls int
}

func (c *countingStream) Next(ctx context.Context) (string, error) {
	c.mu.Lock()
	c.pulls++
	c.mu.Unlock()
	return c.src.Next(ctx)
}

func TestReplayViewsSeeEveryChunk(t *testing.T) {
	src := &countingStream{src: llmstream.Chunks("a", "b", "c")}
	r := llmstream.NewReplay(src)

	first, second := r.View(), r.View()

	out1, err := collect(t, first)
	require.NoError(t, err)
	out2, err := collect(t, second)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, out1)
	assert.Equal(t, out1, out2)
	assert.Equal(t, 3, r.Len())
	// Three chunks and one io.EOF, each pulled once.
	assert.Equal(t, 4, src.pulls)

	late, err := collect(t, r.View())
	require.NoError(t, err)
	assert.Equal(t, out1, late)
}

func TestReplayInterleaved(t *testing.T) {
	r := llmstream.NewReplay(llmstream.Chunks("a", "b"))
	v1, v2 := r.View(), r.View()
	ctx := context.Background()

	c, err := v1.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", c)

	c, err = v1.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", c)

	c, err = v2.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", c)

	_, err = v1.Next(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReplaySourceErrorReachesEveryView(t *testing.T) {
	boom := errors.New("upstream closed")
	calls := 0
	src := llmstream.Func(func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "x", nil
		}
		return "", boom
	})
	r := llmstream.NewReplay(src)

	for range 2 {
		out, err := collect(t, r.View())
		assert.Equal(t, []string{"x"}, out)
		assert.ErrorIs(t, err, boom)
	}
	assert.Equal(t, 2, calls)
}

func TestReplayCancelledViewDoesNotEndSource(t *testing.T) {
	r := llmstream.NewReplay(llmstream.Chunks("a"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.View().Next(ctx)
	require.ErrorIs(t, err, context.Canceled)

	out, err := collect(t, r.View())
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, out)
}

func TestReplayConcurrentViews(t *testing.T) {
	parts := strings.Split("the quick brown fox jumps over the lazy dog", " ")
	src := &countingStream{src: llmstream.Chunks(parts...)}
	r := llmstream.NewReplay(src)

	const n = 8
	results := make([][]string, n)
	var wg sync.WaitGroup
	for i := range n {
		v := r.View()
		wg.Add(1)
		go func() {
			defer wg.Done()
			var out []string
			for {
				c, err := v.Next(context.Background())
				if err != nil {
					break
				}
				out = append(out, c)
			}
			results[i] = out
		}()
	}
	wg.Wait()

	for _, out := range results {
		assert.Equal(t, parts, out)
	}
	assert.Equal(t, len(parts)+1, src.pulls)
}

func TestReplayFanOut(t *testing.T) {
	r := llmstream.NewReplay(llmstream.Chunks(`{"speech": "Hel`, `lo", "caption": "(gre`, `eting)"}`))

	var speech, captions strings.Builder
	err := fieldstream.FanOut(context.Background(), r, []fieldstream.Target{
		{Name: "speech", Sink: fieldstream.WriterSink(&speech), Options: []fieldstream.Option{fieldstream.WithField("speech")}},
		{Name: "captions", Sink: fieldstream.WriterSink(&captions), Options: []fieldstream.Option{fieldstream.WithField("caption")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello", speech.String())
	assert.Equal(t, "(greeting)", captions.String())
}
