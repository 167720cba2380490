package domain

import (
	"context"
	"io"
)

// PostRepository defines persistence operations for posts. There is no
// update or delete: posts are immutable.
type PostRepository interface {
	// CreatePost inserts a new post using bound parameters and returns it with
	// the store-assigned ID and CreatedAt.
	CreatePost(ctx context.Context, body string, imageFilename *string) (Post, error)

	// ListPosts returns every post ordered by CreatedAt descending.
	ListPosts(ctx context.Context) ([]Post, error)

	// HasImage reports whether any post references the given image filename.
	HasImage(ctx context.Context, filename string) (bool, error)
}

// BlobStore defines the flat image store keyed by generated filename.
type BlobStore interface {
	// Put atomically writes the content of r under name. On error nothing is
	// left under name.
	Put(ctx context.Context, name string, r io.Reader) error

	// List returns all committed blobs.
	List(ctx context.Context) ([]BlobInfo, error)

	// Delete removes the blob under name. Deleting a missing blob is not an
	// error.
	Delete(ctx context.Context, name string) error
}
