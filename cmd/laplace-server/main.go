// cmd/laplace-server/main.go: HTTP tool server for the Laplace transformer
//
// Usage:
//
//	go run ./cmd/laplace-server -port 8080
//
// Environment: LAPLACE_ADDR, LAPLACE_MAX_DEPTH, LAPLACE_TIMEOUT,
// LAPLACE_CACHE, LAPLACE_LOG_LEVEL. The -port flag overrides LAPLACE_ADDR.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	laplace "github.com/njchilds90/golaplace"
	"github.com/njchilds90/golaplace/internal/config"
	"github.com/njchilds90/golaplace/internal/metrics"
	"github.com/njchilds90/golaplace/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	port := flag.Int("port", 0, "Port to listen on (overrides LAPLACE_ADDR)")
	flag.Parse()

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	if *port > 0 {
		cfg.Addr = fmt.Sprintf(":%d", *port)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	tr := laplace.New(
		laplace.WithLogger(logger),
		laplace.WithMaxDepth(cfg.MaxDepth),
		laplace.WithTimeout(cfg.Timeout),
		laplace.WithCache(cfg.Cache),
	)
	h := server.NewHandler(tr, server.WithLogger(logger), server.WithMetrics(metrics.New(reg), reg))
	srv := server.New(cfg.Addr, h.Router())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("laplace server listening", slog.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
	return g.Wait()
}
