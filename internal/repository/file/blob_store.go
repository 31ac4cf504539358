// Package file stores blobs as files in a directory, one file per key.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"tmsbilling/internal/port"
)

var unsafeKey = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)

type blobStore struct {
	dir string
}

// NewBlobStore creates a directory-backed BlobStore, creating dir if needed.
func NewBlobStore(dir string) (port.BlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}
	return &blobStore{dir: dir}, nil
}

func (s *blobStore) path(key string) string {
	return filepath.Join(s.dir, unsafeKey.ReplaceAllString(key, "_")+".json")
}

func (s *blobStore) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, port.ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("file blob get: %w", err)
	}
	return data, nil
}

// Put writes to a temp file and renames it so readers never see a torn write.
func (s *blobStore) Put(_ context.Context, key string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".blob-*")
	if err != nil {
		return fmt.Errorf("file blob put: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("file blob put: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file blob put: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		return fmt.Errorf("file blob put: %w", err)
	}
	return nil
}

func (s *blobStore) Ping(context.Context) error {
	_, err := os.Stat(s.dir)
	return err
}
