// Package ginfieldstream serves field extraction over HTTP with gin. Model
// output posted to the service comes back as a stream of field deltas, over
// Server-Sent Events or a WebSocket.
package ginfieldstream

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/deepankarm/fieldstream/pkg/fieldstream"
	"github.com/deepankarm/fieldstream/pkg/fieldstream/schema"
	"github.com/deepankarm/fieldstream/pkg/llmstream"
)

// DefaultSink labels requests that name no sink. It is always accepted.
const DefaultSink = "http"

// DefaultSinks are the sink names accepted when WithSinks is not used.
var DefaultSinks = []string{"speech", "captions", DefaultSink}

// Server holds the extraction service configuration
type Server struct {
	schema    fieldstream.Schema
	logger    *zap.Logger
	chunkSize int
	salvage   bool
	sinks     []string

	registry *prometheus.Registry
	metrics  *Metrics
	upgrader websocket.Upgrader
}

// New creates a new Server
func New(opts ...Option) *Server {
	s := &Server{
		schema:    fieldstream.OpenField(fieldstream.DefaultField),
		logger:    zap.NewNop(),
		chunkSize: llmstream.DefaultChunkSize,
		sinks:     DefaultSinks,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.metrics = NewMetrics(s.registry)
	return s
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Register adds the service routes to r.
func (s *Server) Register(r gin.IRouter) {
	r.GET("/healthz", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	r.GET("/openapi.json", s.openAPI)
	r.GET("/docs", SwaggerUI("openapi.json"))

	v1 := r.Group("/v1")
	v1.GET("/schema", s.getSchema)
	v1.POST("/extract", s.extractSSE)
	v1.GET("/extract/ws", s.extractWS)
}

// Handler returns a gin engine serving the service routes.
func (s *Server) Handler() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	s.Register(r)
	return r
}

// requestLogger logs each request with zap once it completes.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) getSchema(c *gin.Context) {
	if field := c.Query("field"); field != "" {
		c.JSON(http.StatusOK, schema.ForField(field))
		return
	}
	out, err := schema.ForSchema(s.schema)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

// sinkName returns the request's sink. Sink names label metrics, so only
// configured names are accepted.
func (s *Server) sinkName(c *gin.Context) (string, error) {
	sink := c.DefaultQuery("sink", DefaultSink)
	if sink != DefaultSink && !slices.Contains(s.sinks, sink) {
		return "", fmt.Errorf("unknown sink %q", sink)
	}
	return sink, nil
}

// streamOptions builds the extraction options for one request.
func (s *Server) streamOptions(c *gin.Context, sink string) []fieldstream.Option {
	opts := []fieldstream.Option{
		fieldstream.WithSchema(s.schema),
		fieldstream.WithLogger(s.logger),
		fieldstream.WithObserver(s.metrics),
		fieldstream.WithName(sink),
	}
	if field := c.Query("field"); field != "" {
		opts = append(opts, fieldstream.WithField(field))
	}
	if s.salvage || c.Query("salvage") == "true" {
		opts = append(opts, fieldstream.WithSalvage())
	}
	return opts
}

// extractSSE streams the field of the posted model output as events:
// "delta" for each piece of text, then "done" or "error".
func (s *Server) extractSSE(c *gin.Context) {
	sink, err := s.sinkName(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	stream := fieldstream.Extract(llmstream.FromReader(c.Request.Body, s.chunkSize), s.streamOptions(c, sink)...)

	c.Header("Cache-Control", "no-cache")
	c.Stream(func(io.Writer) bool {
		d, err := stream.NextDelta(ctx)
		switch {
		case errors.Is(err, io.EOF):
			c.SSEvent("done", newDonePayload(stream.Stats()))
			return false
		case err != nil:
			c.SSEvent("error", newErrorPayload(err))
			return false
		default:
			c.SSEvent("delta", d)
			return true
		}
	})
}
