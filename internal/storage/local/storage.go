// Package local is an ObjectStorage over a directory, used for export
// archives when no S3 bucket is configured.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"tmsbilling/internal/port"
)

type storage struct {
	root string
}

// NewStorage creates a directory-backed ObjectStorage rooted at root.
func NewStorage(root string) (port.ObjectStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating archive dir: %w", err)
	}
	return &storage{root: root}, nil
}

func (s *storage) path(bucket, key string) (string, error) {
	p := filepath.Join(s.root, bucket, filepath.FromSlash(key))
	rel, err := filepath.Rel(s.root, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return p, nil
}

func (s *storage) Upload(_ context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	p, err := s.path(input.Bucket, input.Key)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return nil, fmt.Errorf("local upload: %w", err)
	}
	f, err := os.Create(p)
	if err != nil {
		return nil, fmt.Errorf("local upload: %w", err)
	}
	if _, err := io.Copy(f, input.Body); err != nil {
		f.Close()
		return nil, fmt.Errorf("local upload: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("local upload: %w", err)
	}
	return &port.UploadOutput{Location: fileURL(p)}, nil
}

func (s *storage) Download(_ context.Context, bucket, key string) ([]byte, error) {
	p, err := s.path(bucket, key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("local download: %w", err)
	}
	return data, nil
}

func (s *storage) Delete(_ context.Context, bucket, key string) error {
	p, err := s.path(bucket, key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("local delete: %w", err)
	}
	return nil
}

// GetPresignedURL returns a file:// URL; local files do not expire.
func (s *storage) GetPresignedURL(_ context.Context, bucket, key string, _ int64) (string, error) {
	p, err := s.path(bucket, key)
	if err != nil {
		return "", err
	}
	return fileURL(p), nil
}

func fileURL(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		abs = p
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
}
