package fieldstream

// Observer receives progress events from a Stream. Calls are made from the
// goroutine driving the stream; implementations shared between streams must
// be safe for concurrent use.
type Observer interface {
	OnMode(name string, m Mode)
	OnChunk(name string, chunk string)
	OnDelta(name string, d Delta)
	OnError(name string, err error)
}

type nopObserver struct{}

func (nopObserver) OnMode(string, Mode)    {}
func (nopObserver) OnChunk(string, string) {}
func (nopObserver) OnDelta(string, Delta)  {}
func (nopObserver) OnError(string, error)  {}
