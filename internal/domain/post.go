package domain

import (
	"io"
	"time"
)

// Post represents a bulletin board entry stored in the relational store.
// Posts are immutable once created.
type Post struct {
	// ID is assigned by the store and increases monotonically.
	ID int64

	// Body is the trimmed post text, 1 to MaxBodyChars code points.
	Body string

	// ImageFilename names the attached image in the blob store, or nil when
	// the post has no image.
	ImageFilename *string

	// CreatedAt is assigned by the store at insertion time.
	CreatedAt time.Time
}

// HasImage reports whether the post references an image blob.
func (p Post) HasImage() bool {
	return p.ImageFilename != nil && *p.ImageFilename != ""
}

// Upload describes an image file attached to a submission. Only Size and the
// file content are trusted for validation; ClaimedType and Filename come from
// the client and are kept for logging only.
type Upload struct {
	// Filename is the client-supplied file name.
	Filename string

	// Size is the declared size of the upload in bytes.
	Size int64

	// ClaimedType is the client-supplied Content-Type of the part.
	ClaimedType string

	// Content holds the uploaded bytes.
	Content io.ReadSeeker
}

// Empty reports whether the upload slot was left empty by the client.
func (u *Upload) Empty() bool {
	return u == nil || u.Content == nil || (u.Filename == "" && u.Size == 0)
}

// BlobInfo describes a committed blob in the blob store.
type BlobInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// SweepResult summarises an orphan image sweep.
type SweepResult struct {
	// Scanned is the number of blobs inspected.
	Scanned int

	// Orphans lists blobs that no post references and that are older than
	// the grace period.
	Orphans []string

	// Deleted is the number of orphans removed. Zero on a dry run.
	Deleted int
}
