package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/deepankarm/fieldstream/pkg/ginfieldstream"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the extraction service",
		Long: `Serve accepts model output over HTTP and streams the field back as
Server-Sent Events (POST /v1/extract) or WebSocket messages
(GET /v1/extract/ws). Metrics are served at /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			return a.serve(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	gin.SetMode(gin.ReleaseMode)

	s, err := a.cfg.StreamSchema()
	if err != nil {
		return err
	}
	opts := []ginfieldstream.Option{
		ginfieldstream.WithSchema(s),
		ginfieldstream.WithLogger(a.logger),
		ginfieldstream.WithChunkSize(a.cfg.Server.ChunkSize),
		ginfieldstream.WithSinks(a.cfg.Server.Sinks...),
	}
	if a.cfg.Salvage {
		opts = append(opts, ginfieldstream.WithSalvage())
	}

	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           ginfieldstream.New(opts...).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
