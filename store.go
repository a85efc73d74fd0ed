package physique

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Keys of the per-user JSON blobs
const (
	KeyHistory     = "physique_history"
	KeyPreferences = "physique_preferences"
	KeyProfile     = "physique_profile"
	KeyCredentials = "physique_credentials"
)

var ErrNotFound = errors.New("not found")

// Store persists JSON blobs keyed by user and name
type Store interface {
	// Get decodes the value stored under key into v or returns ErrNotFound
	Get(ctx context.Context, user, key string, v any) error
	// Put encodes v and stores it under key
	Put(ctx context.Context, user, key string, v any) error
}

// FileStore keeps one JSON file per user and key under a root directory
type FileStore struct {
	root string
	mu   sync.RWMutex
}

func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

// escape maps a name onto a single path element
func escape(name string) string {
	if strings.Trim(name, ".") == "" {
		return "_" + strings.Repeat("%2E", len(name))
	}
	return url.PathEscape(name)
}

func (s *FileStore) path(user, key string) string {
	return filepath.Join(s.root, escape(user), escape(key)+".json")
}

func (s *FileStore) Get(ctx context.Context, user, key string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(user, key))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) Put(ctx context.Context, user, key string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(user, key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
