// SPDX-License-Identifier: EPL-2.0

// Command audlab-server serves the degradation lab over HTTP.
//
// Usage:
//
//	audlab-server [-config config.json] [-addr :8080]
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ik5/audlab/internal/config"
	"github.com/ik5/audlab/internal/server"
	"github.com/ik5/audlab/pipeline"
)

const shutdownTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", "", "path to a JSON config file")
	addr := flag.String("addr", "", "listen address, overrides the config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	log := cfg.NewLogger(os.Stderr)
	slog.SetDefault(log)

	srv := server.New(pipeline.New(cfg, pipeline.WithLogger(log)), log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(cfg.Addr)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
		return
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("shutdown error", "error", err)
	}
	<-errCh
	log.Info("shutdown complete")
}
