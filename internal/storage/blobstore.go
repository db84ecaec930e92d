// Package storage provides the blob store used for uploaded cover images.
// The pipeline never interprets image bytes; it only needs a stable
// reference back.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"editorial-pipeline/internal/domain"
)

// BlobStore persists opaque blobs and returns a stable reference.
type BlobStore interface {
	// Save stores the blob and returns its reference path and public URL.
	Save(ctx context.Context, filename string, r io.Reader) (path string, url string, err error)
}

// FSBlobStore stores blobs on the local filesystem.
type FSBlobStore struct {
	dir     string
	baseURL string
}

// NewFSBlobStore creates a filesystem blob store rooted at dir. Stored blobs
// are reachable under baseURL.
func NewFSBlobStore(dir, baseURL string) (*FSBlobStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create blob directory: %w", err)
	}
	return &FSBlobStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Save writes the blob under a collision-free name derived from the original
// filename. Failures surface as domain.ErrStorage.
func (s *FSBlobStore) Save(ctx context.Context, filename string, r io.Reader) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", fmt.Errorf("save blob: %v: %w", err, domain.ErrStorage)
	}

	name := uuid.New().String() + sanitizeExt(filename)
	fullPath := filepath.Join(s.dir, name)

	file, err := os.Create(fullPath)
	if err != nil {
		return "", "", fmt.Errorf("create blob file: %v: %w", err, domain.ErrStorage)
	}
	defer file.Close()

	if _, err := io.Copy(file, r); err != nil {
		_ = os.Remove(fullPath)
		return "", "", fmt.Errorf("write blob: %v: %w", err, domain.ErrStorage)
	}

	return name, s.baseURL + "/" + name, nil
}

// sanitizeExt keeps only a plain lowercase extension from the client-supplied
// filename; everything else is discarded.
func sanitizeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if ext == "" {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
