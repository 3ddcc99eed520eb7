package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/lendwise/landing/api"
	"github.com/lendwise/landing/config"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	config.InitLogger(cfg.Log, os.Stdout)

	root, err := filepath.Abs(cfg.Server.Root)
	if err != nil {
		slog.Error("invalid root directory", "root", cfg.Server.Root, "error", err)
		os.Exit(1)
	}
	cfg.Server.Root = root

	if _, err := os.Stat(filepath.Join(root, cfg.Server.Entry)); err != nil {
		// Not fatal: "/" answers 404 until the file appears.
		slog.Warn("entry file not found", "entry", cfg.Server.Entry, "root", root)
	}

	// ── 3. Setup router ─────────────────────────────────────────────
	router := api.NewRouter(cfg)

	// ── 4. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("LendWise landing page is live",
			"local", fmt.Sprintf("http://localhost:%d", cfg.Server.Port),
			"network", fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port),
			"root", root,
			"entry", cfg.Server.Entry,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 5. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}
	slog.Info("landing stopped")
}
