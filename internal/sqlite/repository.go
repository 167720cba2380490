// Package sqlite provides a SQLite-backed post repository.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/blackmichael/bulletin/internal/domain"
	"github.com/blackmichael/bulletin/internal/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Repository implements domain.PostRepository using SQLite.
type Repository struct {
	db *sql.DB
}

// NewRepository opens the SQLite database at path, verifies the connection
// and applies embedded migrations. The caller should call Close when the
// repository is no longer needed.
func NewRepository(ctx context.Context, path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

// Close closes the underlying database handle.
func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// CreatePost inserts a new post. id and created_at are assigned by the
// database.
func (r *Repository) CreatePost(ctx context.Context, body string, imageFilename *string) (domain.Post, error) {
	var (
		p         domain.Post
		image     sql.NullString
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO posts (body, image_filename)
		VALUES (?, ?)
		RETURNING id, body, image_filename, created_at`,
		body,
		nullString(imageFilename),
	).Scan(&p.ID, &p.Body, &image, &createdAt)
	if err != nil {
		return domain.Post{}, fmt.Errorf("insert post: %w", err)
	}

	p.ImageFilename = stringPtr(image)
	p.CreatedAt = fromMillis(createdAt)
	return p, nil
}

// ListPosts returns all posts, newest first.
func (r *Repository) ListPosts(ctx context.Context) ([]domain.Post, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, body, image_filename, created_at
		FROM posts
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		var (
			p         domain.Post
			image     sql.NullString
			createdAt int64
		)
		if err := rows.Scan(&p.ID, &p.Body, &image, &createdAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		p.ImageFilename = stringPtr(image)
		p.CreatedAt = fromMillis(createdAt)
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return posts, nil
}

// HasImage reports whether any post references filename.
func (r *Repository) HasImage(ctx context.Context, filename string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM posts WHERE image_filename = ?)`, filename,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query image reference: %w", err)
	}
	return exists, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}
