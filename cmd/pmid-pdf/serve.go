// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/pdiddy/pmid-pdf/internal/api"
	"github.com/pdiddy/pmid-pdf/internal/metrics"
	"github.com/pdiddy/pmid-pdf/pkg/types"
)

// maxContentPages bounds PDF text extraction for MCP responses.
const maxContentPages = 50

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve starts the HTTP API on the configured host and port:

  GET /api/health           liveness
  GET /api/pdf/{pmid}       the article PDF (X-API-Key required)
  GET /api/article/{pmid}   stored metadata (X-API-Key required)
  GET /api/mcp/{pmid}       Model Context Protocol payload (X-API-Key required)
  GET /metrics              Prometheus metrics

The server shuts down gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("host", "", "listen host")
	serveCmd.Flags().Int("port", 0, "listen port")
	serveCmd.Flags().String("crawler", "", "crawler base URL")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := openDeps(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	if cfg.Env == types.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	metrics.Init(version, string(cfg.Env))

	router := api.NewRouter(api.Options{
		Resolver:        d.engine,
		Articles:        d.store,
		PDFPath:         d.engine.PDFPath,
		APIKeys:         cfg.APIKeys,
		CacheTTL:        cfg.Cache.TTL,
		MaxContentPages: maxContentPages,
		Logger:          log,
	})

	srv := &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).WithField("env", cfg.Env).Info("pmid-pdf listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
