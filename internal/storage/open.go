// Package storage selects the post repository implementation from a
// database URL.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/blackmichael/bulletin/internal/domain"
	"github.com/blackmichael/bulletin/internal/postgres"
	"github.com/blackmichael/bulletin/internal/sqlite"
)

// Repository is a post repository that owns a database handle.
type Repository interface {
	domain.PostRepository
	io.Closer
}

// Driver names returned by DriverFor.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DriverFor returns the driver for databaseURL and the value to hand to it.
// postgres:// and postgresql:// URLs select PostgreSQL; sqlite://path,
// file:path and bare paths select SQLite.
func DriverFor(databaseURL string) (driver, target string, err error) {
	url := strings.TrimSpace(databaseURL)
	switch {
	case url == "":
		return "", "", fmt.Errorf("database url is required")
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DriverPostgres, url, nil
	case strings.HasPrefix(url, "sqlite://"):
		return DriverSQLite, strings.TrimPrefix(url, "sqlite://"), nil
	case strings.HasPrefix(url, "file:"):
		return DriverSQLite, strings.TrimPrefix(url, "file:"), nil
	case strings.Contains(url, "://"):
		return "", "", fmt.Errorf("unsupported database url scheme in %q", url)
	default:
		return DriverSQLite, url, nil
	}
}

// Open connects to the repository named by databaseURL.
func Open(ctx context.Context, databaseURL string) (Repository, error) {
	driver, target, err := DriverFor(databaseURL)
	if err != nil {
		return nil, err
	}
	if driver == DriverPostgres {
		repo, err := postgres.NewRepository(ctx, target)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return repo, nil
	}
	repo, err := sqlite.NewRepository(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return repo, nil
}
