// Package storage provides the read side of a filesystem abstraction the
// resource resolver streams from.
//
// Two drivers are available:
//   - "local": a directory on the local filesystem (default: PUBLIC_DIR)
//   - "s3"   : an S3-compatible bucket (AWS S3, MinIO, R2, Spaces)
//
// Both report a missing object as ErrNotFound so callers can tell a 404
// apart from a real failure with errors.Is.
//
//	m, err := storage.Connect(ctx, cfg)
//	rc, err := m.Default().GetStream(ctx, "home/index.html")
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

var (
	// ErrNotFound is wrapped by every driver when the object does not exist,
	// is a directory, or lies outside the disk root.
	ErrNotFound = errors.New("storage: file not found")

	// ErrDiskNotConfigured is returned by Manager.Use for unknown disk names.
	ErrDiskNotConfigured = errors.New("storage: disk not configured")
)

// Disk is the driver interface.
type Disk interface {
	// GetStream opens the object at path. The caller must close it.
	GetStream(ctx context.Context, path string) (io.ReadCloser, error)

	// Exists reports whether a readable object lives at path.
	Exists(ctx context.Context, path string) (bool, error)
}

// cleanKey turns a request path into a slash-separated key relative to the
// disk root. ".." segments cannot climb above the root.
func cleanKey(p string) string {
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}
