package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blackmichael/bulletin/internal/blobstore"
	"github.com/blackmichael/bulletin/internal/domain"
	"github.com/blackmichael/bulletin/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		databaseURL string
		imageDir    string
		olderThan   time.Duration
		dryRun      bool
		verbose     bool
	)

	flag.StringVar(&databaseURL, "database-url", envOrDefault("DATABASE_URL", "sqlite://bulletin.db"), "Record store URL (postgres://... or sqlite://path)")
	flag.StringVar(&imageDir, "image-dir", envOrDefault("BULLETIN_IMAGE_DIR", "./data/image"), "Directory holding uploaded images")
	flag.DurationVar(&olderThan, "older-than", time.Hour, "Only consider images last modified before this long ago")
	flag.BoolVar(&dryRun, "dry-run", false, "Report orphaned images without deleting them")
	flag.BoolVar(&verbose, "verbose", false, "Log each deleted image")
	flag.Parse()

	if olderThan < 0 {
		return fmt.Errorf("--older-than must not be negative")
	}

	logOut := io.Discard
	if verbose {
		logOut = os.Stderr
	}
	logger := slog.New(slog.NewJSONHandler(logOut, nil))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	blobs, err := blobstore.New(imageDir)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}

	repo, err := storage.Open(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}
	defer repo.Close()

	board, err := domain.NewBoardService(repo, blobs, logger)
	if err != nil {
		return fmt.Errorf("create board service: %w", err)
	}

	fmt.Printf("Sweeping %s for images older than %s...\n", blobs.Root(), olderThan)
	result, err := board.SweepOrphanImages(ctx, olderThan, dryRun)
	if err != nil {
		return err
	}

	for _, name := range result.Orphans {
		fmt.Printf("orphan: %s\n", name)
	}
	if dryRun {
		fmt.Printf("Dry run: %d scanned, %d orphaned, nothing deleted\n", result.Scanned, len(result.Orphans))
		return nil
	}
	fmt.Printf("Done: %d scanned, %d deleted\n", result.Scanned, result.Deleted)

	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
