package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalStorage implements Storage using the local filesystem
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local filesystem storage
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{basePath: basePath}, nil
}

// Upload stores a file under a UUID-prefixed name and returns its metadata.
// The prefix keeps repeated uploads of the same receipt from colliding.
func (s *LocalStorage) Upload(ctx context.Context, filename string, contentType string, r io.Reader) (*FileInfo, error) {
	fileID := uuid.New()

	safeFilename := sanitizeFilename(filename)
	storedFilename := fmt.Sprintf("%s_%s", fileID.String()[:8], safeFilename)
	filePath := filepath.Join(s.basePath, storedFilename)

	f, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(filePath) // Cleanup on error
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return &FileInfo{
		ID:          fileID,
		Name:        filename,
		Size:        size,
		ContentType: contentType,
		Path:        filePath,
		CreatedAt:   time.Now(),
	}, nil
}

// Open returns a reader for a stored file
func (s *LocalStorage) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

// Remove deletes a stored file. A file that is already gone is not an error.
func (s *LocalStorage) Remove(ctx context.Context, path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// PurgeOlderThan removes uploads whose modification time is older than the
// given age.
func (s *LocalStorage) PurgeOlderThan(ctx context.Context, age time.Duration) (int, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return 0, fmt.Errorf("failed to list storage directory: %w", err)
	}

	cutoff := time.Now().Add(-age)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.basePath, entry.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

// sanitizeFilename removes unsafe characters from filenames
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		"..", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	return replacer.Replace(name)
}
