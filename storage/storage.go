// Package storage stores recording audio as objects, on the local
// filesystem or in S3.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned by Download for a missing object.
var ErrNotFound = errors.New("storage: object not found")

// FileInfo describes a stored object.
type FileInfo struct {
	Path         string
	Size         int64
	LastModified time.Time
	ContentType  string
}

// Storage is an object store addressed by slash-separated paths.
type Storage interface {
	// Upload writes reader to path, replacing any existing object.
	Upload(ctx context.Context, path string, reader io.Reader) error

	// Download opens the object at path. The caller closes it.
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes the object; a missing object is not an error.
	Delete(ctx context.Context, path string) error

	Exists(ctx context.Context, path string) (bool, error)

	// List returns the objects whose path starts with prefix, sorted by path.
	List(ctx context.Context, prefix string) ([]FileInfo, error)
}
