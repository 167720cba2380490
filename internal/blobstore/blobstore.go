// Package blobstore provides the flat on-disk image store.
//
// Images live directly under the root directory as <32 hex>.<ext> files.
// Writes go to a temporary file in a staging directory under the same root
// and are renamed into place, so a name either refers to a complete file or
// does not exist.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/blackmichael/bulletin/internal/domain"
)

const tempDirName = ".tmp"

var (
	ErrNotFound    = errors.New("blob not found")
	ErrInvalidName = errors.New("invalid blob name")
)

// namePattern matches generated image filenames.
var namePattern = regexp.MustCompile(`^[0-9a-f]{32}\.(jpg|png|gif|webp)$`)

// Store is a filesystem-backed domain.BlobStore.
type Store struct {
	root string
	opts Options
}

// New creates the store root and staging directories if needed.
func New(root string, opts ...OptionFunc) (*Store, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	root = filepath.Clean(root)
	if err := os.MkdirAll(filepath.Join(root, tempDirName), options.DirMode); err != nil {
		return nil, fmt.Errorf("creating blob directories: %w", err)
	}

	return &Store{root: root, opts: options}, nil
}

// Root returns the directory holding committed blobs.
func (s *Store) Root() string {
	return s.root
}

// ValidName reports whether name is a well-formed image filename.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// Put streams r into a temporary file and renames it to name.
func (s *Store) Put(ctx context.Context, name string, r io.Reader) (err error) {
	if !ValidName(name) {
		return fmt.Errorf("put %q: %w", name, ErrInvalidName)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Join(s.root, tempDirName), "upload-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = io.Copy(tmp, r); err != nil {
		return fmt.Errorf("writing blob %s: %w", name, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing blob %s: %w", name, err)
	}
	if err = os.Chmod(tmpPath, s.opts.FileMode); err != nil {
		return fmt.Errorf("chmod blob %s: %w", name, err)
	}
	if err = os.Rename(tmpPath, s.path(name)); err != nil {
		return fmt.Errorf("committing blob %s: %w", name, err)
	}
	return nil
}

// Open returns the committed blob and its file info. The caller closes the
// file.
func (s *Store) Open(ctx context.Context, name string) (*os.File, os.FileInfo, error) {
	if !ValidName(name) {
		return nil, nil, fmt.Errorf("open %q: %w", name, ErrInvalidName)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	f, err := os.Open(s.path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("blob %q: %w", name, ErrNotFound)
		}
		return nil, nil, fmt.Errorf("open blob %q: %w", name, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("stat blob %q: %w", name, err)
	}
	return f, info, nil
}

// List returns every committed blob. Files that do not look like generated
// image names are ignored.
func (s *Store) List(ctx context.Context) ([]domain.BlobInfo, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("reading blob directory: %w", err)
	}

	blobs := make([]domain.BlobInfo, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !ValidName(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("stat blob %q: %w", entry.Name(), err)
		}
		blobs = append(blobs, domain.BlobInfo{
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return blobs, nil
}

// Delete removes a committed blob. Missing blobs are ignored.
func (s *Store) Delete(ctx context.Context, name string) error {
	if !ValidName(name) {
		return fmt.Errorf("delete %q: %w", name, ErrInvalidName)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(s.path(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete blob %q: %w", name, err)
	}
	return nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.root, name)
}
