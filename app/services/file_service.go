package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/shashiranjanraj/radio/pkg/storage"
)

// ErrFileNotFound reports that a requested resource does not exist. It also
// matches storage.ErrNotFound through the wrapped chain.
var ErrFileNotFound = errors.New("file not found")

// FileStream is an opened resource. Stream must be closed by the receiver;
// Type is the extension token (".html") or empty when the name has none.
type FileStream struct {
	Stream io.ReadCloser
	Type   string
}

// FileService resolves logical paths against a storage disk.
type FileService struct {
	disk storage.Disk
}

func NewFileService(disk storage.Disk) *FileService {
	return &FileService{disk: disk}
}

// GetFileStream opens file and reports its extension token.
func (s *FileService) GetFileStream(ctx context.Context, file string) (FileStream, error) {
	rc, err := s.disk.GetStream(ctx, file)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return FileStream{}, fmt.Errorf("%w: %w", ErrFileNotFound, err)
		}
		return FileStream{}, fmt.Errorf("resolve %s: %w", file, err)
	}

	return FileStream{Stream: rc, Type: path.Ext(file)}, nil
}

// Exists reports whether file can be resolved.
func (s *FileService) Exists(ctx context.Context, file string) (bool, error) {
	return s.disk.Exists(ctx, file)
}
