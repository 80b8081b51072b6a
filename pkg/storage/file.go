package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"
)

const fileStoreVersion = "1.0"

// FileStore implements Adapter using a JSON file. Writes go to a temp file
// that is renamed over the original.
type FileStore struct {
	path string
	data map[string]any
	mu   sync.RWMutex
}

// NewFileStore creates a file-backed store.
// If path is empty, defaults to ~/.foxconf/storage.json
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(homeDir, ".foxconf", "storage.json")
	}

	store := &FileStore{
		path: path,
		data: make(map[string]any),
	}

	if err := store.load(); err != nil {
		return nil, fmt.Errorf("failed to load storage from %s: %w", path, err)
	}

	return store, nil
}

// Path returns the file path of the store.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			// Nothing stored yet
			s.data = make(map[string]any)
			return nil
		}
		return fmt.Errorf("failed to open storage file: %w", err)
	}
	defer file.Close()

	var stored struct {
		Version string         `json:"version"`
		Items   map[string]any `json:"items"`
	}
	if err := json.NewDecoder(file).Decode(&stored); err != nil {
		return fmt.Errorf("failed to decode storage file: %w", err)
	}

	s.data = stored.Items
	if s.data == nil {
		s.data = make(map[string]any)
	}
	return nil
}

// GetAll returns a copy of the stored mapping.
func (s *FileStore) GetAll(ctx context.Context) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyMap(s.data), nil
}

// Set merges items into the stored mapping and writes the file.
func (s *FileStore) Set(ctx context.Context, items map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := copyMap(s.data)
	maps.Copy(next, items)
	if err := s.save(next); err != nil {
		return err
	}
	s.data = next
	return nil
}

func (s *FileStore) save(data map[string]any) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	tempPath := s.path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temp storage file: %w", err)
	}

	stored := struct {
		Version string         `json:"version"`
		Items   map[string]any `json:"items"`
	}{
		Version: fileStoreVersion,
		Items:   data,
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(stored); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode storage: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
