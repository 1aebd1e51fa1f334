package fieldstream

import "go.uber.org/zap"

// Option configures a Stream.
type Option interface {
	apply(*config)
}

// config holds configuration for a Stream
type config struct {
	schema   Schema
	logger   *zap.Logger
	observer Observer
	salvage  bool
	name     string
}

func newConfig(opts []Option) *config {
	cfg := &config{
		schema:   OpenField(DefaultField),
		logger:   zap.NewNop(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt.apply(cfg)
	}
	return cfg
}

type optionFunc func(*config)

func (f optionFunc) apply(cfg *config) { f(cfg) }

// WithSchema sets how the target field is read. The default is
// OpenField(DefaultField).
func WithSchema(s Schema) Option {
	return optionFunc(func(cfg *config) {
		cfg.schema = s
	})
}

// WithField reads the named top-level key with no further validation.
// Shorthand for WithSchema(OpenField(name)).
func WithField(name string) Option {
	return WithSchema(OpenField(name))
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(cfg *config) {
		if l != nil {
			cfg.logger = l
		}
	})
}

// WithObserver registers hooks called as the stream progresses.
func WithObserver(o Observer) Option {
	return optionFunc(func(cfg *config) {
		if o != nil {
			cfg.observer = o
		}
	})
}

// WithName labels the stream's consumer (e.g. "speech", "captions") in logs
// and observer calls.
func WithName(name string) Option {
	return optionFunc(func(cfg *config) {
		cfg.name = name
	})
}

// WithSalvage makes a malformed structured stream try to recover the rest of
// the field once input ends, by running the buffer through a JSON repairer.
// Recovered text is emitted before the error is returned; the error is
// still returned.
//
// Example:
//
//	s := fieldstream.Extract(tokens,
//	    fieldstream.WithField("response"),
//	    fieldstream.WithSalvage(),
//	)
func WithSalvage() Option {
	return optionFunc(func(cfg *config) {
		cfg.salvage = true
	})
}
