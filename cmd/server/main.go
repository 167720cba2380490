package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blackmichael/bulletin/internal/blobstore"
	"github.com/blackmichael/bulletin/internal/config"
	"github.com/blackmichael/bulletin/internal/domain"
	"github.com/blackmichael/bulletin/internal/httpserver"
	"github.com/blackmichael/bulletin/internal/i18n"
	"github.com/blackmichael/bulletin/internal/storage"
	"github.com/blackmichael/bulletin/internal/telemetry"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("set up tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error("error flushing traces", "error", err)
		}
	}()

	blobs, err := blobstore.New(cfg.ImageDir)
	if err != nil {
		return fmt.Errorf("create blob store: %w", err)
	}
	logger.Info("image directory ready", "dir", blobs.Root())

	repo, err := storage.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("create repository: %w", err)
	}
	defer repo.Close()
	logger.Info("connected to database")

	board, err := domain.NewBoardService(repo, blobs, logger)
	if err != nil {
		return fmt.Errorf("create board service: %w", err)
	}

	localizer, err := i18n.NewLocalizer(cfg.DefaultLocale)
	if err != nil {
		return fmt.Errorf("create localizer: %w", err)
	}

	server := httpserver.NewServer(cfg, board, blobs, localizer, logger)
	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	logger.Info("server started", "port", cfg.Port, "hostname", cfg.Hostname)

	select {
	case <-ctx.Done():
		logger.Info("received signal, shutting down")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("error shutting down http server", "error", err)
	}

	return nil
}
