package storage

import (
	"context"
	"errors"
	"io"
)

// ErrInvalidName is returned for names that are empty or escape the storage root
var ErrInvalidName = errors.New("invalid file name")

// Storage defines the interface for uploaded photos and generated images.
// Names are slash separated and relative to the storage root.
type Storage interface {
	// Save writes content under name, replacing any previous file, and returns the bytes written
	Save(ctx context.Context, name string, content io.Reader) (int64, error)

	// Open opens a stored file for reading
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Exists reports whether name is a stored file
	Exists(ctx context.Context, name string) (bool, error)

	// List lists the files directly under dir
	List(ctx context.Context, dir string) ([]string, error)

	// Delete removes a stored file; a missing file is not an error
	Delete(ctx context.Context, name string) error

	// Path returns the physical location of name
	Path(name string) (string, error)
}
