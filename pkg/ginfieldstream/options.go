package ginfieldstream

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/deepankarm/fieldstream/pkg/fieldstream"
)

// Option configures a Server
type Option func(*Server)

// WithSchema sets the default schema. Requests may still name another
// field with the "field" query parameter.
func WithSchema(s fieldstream.Schema) Option {
	return func(srv *Server) {
		srv.schema = s
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(srv *Server) {
		if l != nil {
			srv.logger = l
		}
	}
}

// WithChunkSize sets how many bytes of a request body become one chunk.
func WithChunkSize(n int) Option {
	return func(srv *Server) {
		srv.chunkSize = n
	}
}

// WithSalvage enables salvage for every request
func WithSalvage() Option {
	return func(srv *Server) {
		srv.salvage = true
	}
}

// WithRegistry sets where metrics are registered and served from. The
// default is a fresh registry per Server.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(srv *Server) {
		srv.registry = reg
	}
}

// WithSinks sets the sink names a request may pass in the "sink" query
// parameter. DefaultSink is always accepted; other names get a 400.
func WithSinks(names ...string) Option {
	return func(srv *Server) {
		srv.sinks = names
	}
}
