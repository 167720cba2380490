package postgres

import (
	"context"
	"fmt"

	"github.com/blackmichael/bulletin/internal/domain"
	"github.com/blackmichael/bulletin/internal/postgres/schema"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements domain.PostRepository using PostgreSQL through a
// connection pool. Every operation acquires its own connection and releases
// it before returning.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository connects to PostgreSQL at the given URL, verifies the
// connection, ensures the schema exists and returns a new Repository. Pool
// size follows the pool_max_conns URL parameter. The caller should call Close
// when the repository is no longer needed.
func NewRepository(ctx context.Context, databaseURL string) (*Repository, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement
	cfg.ConnConfig.StatementCacheCapacity = 64

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &Repository{pool: pool}
	if err := r.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return r, nil
}

// Close closes all pooled connections.
func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

func (r *Repository) ensureSchema(ctx context.Context) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	// Simple protocol allows the multi-statement schema file.
	if _, err := conn.Exec(ctx, schema.SQL, pgx.QueryExecModeSimpleProtocol); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// CreatePost inserts a new post. id and created_at are assigned by the
// database.
func (r *Repository) CreatePost(ctx context.Context, body string, imageFilename *string) (domain.Post, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return domain.Post{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var p domain.Post
	err = conn.QueryRow(ctx, `
		INSERT INTO posts (body, image_filename)
		VALUES ($1, $2)
		RETURNING id, body, image_filename, created_at`,
		body,
		imageFilename,
	).Scan(&p.ID, &p.Body, &p.ImageFilename, &p.CreatedAt)
	if err != nil {
		return domain.Post{}, fmt.Errorf("insert post: %w", err)
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return p, nil
}

// ListPosts returns all posts, newest first.
func (r *Repository) ListPosts(ctx context.Context) ([]domain.Post, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
		SELECT id, body, image_filename, created_at
		FROM posts
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		var p domain.Post
		if err := rows.Scan(&p.ID, &p.Body, &p.ImageFilename, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		p.CreatedAt = p.CreatedAt.UTC()
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return posts, nil
}

// HasImage reports whether any post references filename.
func (r *Repository) HasImage(ctx context.Context, filename string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var exists bool
	err = conn.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM posts WHERE image_filename = $1)`, filename,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query image reference: %w", err)
	}
	return exists, nil
}
