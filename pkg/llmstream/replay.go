package llmstream

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/deepankarm/fieldstream/pkg/fieldstream"
)

var _ fieldstream.Views = (*Replay)(nil)

// Replay lets any number of consumers read the same source from the start,
// each at its own pace. Chunks are pulled from the source on demand by
// whichever view gets ahead first and are kept for the Replay's lifetime.
type Replay struct {
	src  fieldstream.TextStream
	pull *semaphore.Weighted // one pull from src at a time

	mu     sync.RWMutex
	chunks []string
	err    error // terminal source error, io.EOF included
}

// NewReplay wraps src.
func NewReplay(src fieldstream.TextStream) *Replay {
	return &Replay{
		src:  src,
		pull: semaphore.NewWeighted(1),
	}
}

// View returns a new reader positioned at the first chunk.
func (r *Replay) View() fieldstream.TextStream {
	return &view{replay: r}
}

// Len returns the number of chunks pulled so far.
func (r *Replay) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.chunks)
}

// at returns chunk i, or the terminal error if the source ended before it.
// ok is false when chunk i has not been pulled yet.
func (r *Replay) at(i int) (chunk string, ok bool, err error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i < len(r.chunks) {
		return r.chunks[i], true, nil
	}
	if r.err != nil {
		return "", true, r.err
	}
	return "", false, nil
}

func (r *Replay) get(ctx context.Context, i int) (string, error) {
	if chunk, ok, err := r.at(i); ok {
		return chunk, err
	}

	if err := r.pull.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer r.pull.Release(1)

	// Another view may have pulled while we waited.
	if chunk, ok, err := r.at(i); ok {
		return chunk, err
	}

	chunk, err := r.src.Next(ctx)
	if err != nil {
		// A cancelled caller does not end the source for the other views.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		r.mu.Lock()
		r.err = err
		r.mu.Unlock()
		return "", err
	}

	r.mu.Lock()
	r.chunks = append(r.chunks, chunk)
	r.mu.Unlock()
	return chunk, nil
}

type view struct {
	replay *Replay
	next   int
}

func (v *view) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	chunk, err := v.replay.get(ctx, v.next)
	if err != nil {
		return "", err
	}
	v.next++
	return chunk, nil
}
