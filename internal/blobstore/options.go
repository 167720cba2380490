package blobstore

import "os"

// Options configures a Store.
type Options struct {
	FileMode os.FileMode // Permission bits for committed blobs
	DirMode  os.FileMode // Permission bits for the root and staging directories
}

// OptionFunc is a functional option for configuring a Store.
type OptionFunc func(opts *Options)

// WithFileMode sets the permission bits of committed blobs.
// Default is 0644 (owner read/write, group and others read-only).
func WithFileMode(mode os.FileMode) OptionFunc {
	return func(opts *Options) {
		opts.FileMode = mode
	}
}

// WithDirMode sets the permission bits of the store directories.
// Default is 0755.
func WithDirMode(mode os.FileMode) OptionFunc {
	return func(opts *Options) {
		opts.DirMode = mode
	}
}

func defaultOptions() Options {
	return Options{
		FileMode: 0o644,
		DirMode:  0o755,
	}
}
