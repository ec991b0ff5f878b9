// Package storage archives raw ingestion snapshots. Two backends
// implement the same operations: local filesystem and S3-compatible
// object storage.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Backend stores and retrieves snapshot documents by path.
type Backend interface {
	SaveSnapshot(ctx context.Context, name string, data []byte) (string, error)
	ReadSnapshot(ctx context.Context, path string) ([]byte, error)
	DeleteSnapshot(ctx context.Context, path string) error
}

// Config contains filesystem storage configuration.
type Config struct {
	BasePath string // Base directory for all stored files
}

// DefaultConfig returns default storage configuration.
func DefaultConfig() Config {
	return Config{
		BasePath: "./storage",
	}
}

// Storage is the filesystem backend.
type Storage struct {
	config Config
}

// New creates a filesystem backend rooted at the configured base path.
func New(config Config) (*Storage, error) {
	if err := os.MkdirAll(config.BasePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base storage directory: %w", err)
	}
	return &Storage{config: config}, nil
}

// SaveSnapshot writes a snapshot document under snapshots/YYYY/MM/.
// Colliding names get a numeric suffix. Returns the path relative to
// the base directory.
func (s *Storage) SaveSnapshot(_ context.Context, name string, data []byte) (string, error) {
	dirPath := filepath.Join(s.config.BasePath, snapshotDir(time.Now()))
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	filename := name + ".json"
	filePath := filepath.Join(dirPath, filename)
	counter := 1
	for fileExists(filePath) {
		filename = fmt.Sprintf("%s-%d.json", name, counter)
		filePath = filepath.Join(dirPath, filename)
		counter++
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write snapshot file: %w", err)
	}

	relPath, err := filepath.Rel(s.config.BasePath, filePath)
	if err != nil {
		return "", fmt.Errorf("failed to get relative path: %w", err)
	}
	return filepath.ToSlash(relPath), nil
}

// ReadSnapshot reads a snapshot document by its relative path.
func (s *Storage) ReadSnapshot(_ context.Context, path string) ([]byte, error) {
	fullPath, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}
	return data, nil
}

// DeleteSnapshot removes a snapshot document. Deleting a missing
// snapshot is not an error.
func (s *Storage) DeleteSnapshot(_ context.Context, path string) error {
	fullPath, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete snapshot file: %w", err)
	}
	return nil
}

// resolve joins a relative snapshot path with the base directory and
// rejects paths that escape it.
func (s *Storage) resolve(path string) (string, error) {
	fullPath := filepath.Join(s.config.BasePath, filepath.FromSlash(path))
	rel, err := filepath.Rel(s.config.BasePath, fullPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid snapshot path: %s", path)
	}
	return fullPath, nil
}

func snapshotDir(now time.Time) string {
	return filepath.Join("snapshots",
		fmt.Sprintf("%04d", now.Year()),
		fmt.Sprintf("%02d", int(now.Month())))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
