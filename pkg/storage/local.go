package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// localDisk is the local-filesystem driver.
type localDisk struct {
	root string // absolute root directory
}

// NewLocalDisk returns a Disk rooted at root. Relative roots are resolved
// against the working directory.
func NewLocalDisk(root string) (Disk, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage/local: resolve root %s: %w", root, err)
	}
	return &localDisk{root: abs}, nil
}

func (d *localDisk) abs(p string) (string, error) {
	full := filepath.Join(d.root, filepath.FromSlash(cleanKey(p)))
	if full != d.root && !strings.HasPrefix(full, d.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s is outside the disk root", ErrNotFound, p)
	}
	return full, nil
}

func (d *localDisk) GetStream(_ context.Context, p string) (io.ReadCloser, error) {
	full, err := d.abs(p)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(full)
	if err != nil {
		return nil, classifyFSError(err, "open", p)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, classifyFSError(err, "stat", p)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotFound, p)
	}

	return f, nil
}

func (d *localDisk) Exists(_ context.Context, p string) (bool, error) {
	full, err := d.abs(p)
	if err != nil {
		return false, nil
	}

	info, err := os.Stat(full)
	if err != nil {
		err = classifyFSError(err, "stat", p)
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

// classifyFSError maps missing-path errors onto ErrNotFound and wraps the
// rest with the operation for the log line.
func classifyFSError(err error, op, p string) error {
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
		return fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	return fmt.Errorf("storage/local: %s %s: %w", op, p, err)
}
