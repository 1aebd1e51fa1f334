package ginfieldstream

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/deepankarm/fieldstream/pkg/fieldstream"
)

const namespace = "fieldstream"

var _ fieldstream.Observer = (*Metrics)(nil)

// Metrics counts extraction progress. It is a fieldstream.Observer and may
// be shared by any number of streams.
type Metrics struct {
	// chunksTotal counts chunks read from sources.
	chunksTotal prometheus.Counter

	// modesTotal counts streams by detected mode.
	modesTotal *prometheus.CounterVec

	// deltasTotal counts deltas emitted, by sink.
	deltasTotal *prometheus.CounterVec

	// resyncsTotal counts deltas that re-emitted the whole value, by sink.
	resyncsTotal *prometheus.CounterVec

	// errorsTotal counts failed streams, by error kind.
	errorsTotal *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		chunksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_total",
			Help:      "Total number of chunks read from sources",
		}),
		modesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "streams_total",
				Help:      "Total number of streams by detected mode",
			},
			[]string{"mode"}, // mode: passthrough, structured
		),
		deltasTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "deltas_total",
				Help:      "Total number of deltas emitted",
			},
			[]string{"sink"},
		),
		resyncsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resyncs_total",
				Help:      "Total number of deltas that re-emitted the whole field value",
			},
			[]string{"sink"},
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total number of failed streams",
			},
			[]string{"kind"}, // kind: schema_mismatch, malformed, malformed_terminal, source, cancelled
		),
	}
	reg.MustRegister(m.chunksTotal, m.modesTotal, m.deltasTotal, m.resyncsTotal, m.errorsTotal)
	return m
}

func (m *Metrics) OnMode(_ string, mode fieldstream.Mode) {
	m.modesTotal.WithLabelValues(mode.String()).Inc()
}

func (m *Metrics) OnChunk(string, string) {
	m.chunksTotal.Inc()
}

func (m *Metrics) OnDelta(name string, d fieldstream.Delta) {
	m.deltasTotal.WithLabelValues(name).Inc()
	if d.Resync {
		m.resyncsTotal.WithLabelValues(name).Inc()
	}
}

func (m *Metrics) OnError(_ string, err error) {
	kind := string(fieldstream.KindOf(err))
	switch {
	case kind != "":
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// Usually a client that went away.
		kind = "cancelled"
	default:
		kind = "source"
	}
	m.errorsTotal.WithLabelValues(kind).Inc()
}
