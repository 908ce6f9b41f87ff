package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mamadbah2/shopsim/internal/repository"
)

// Store keeps a JSON object of key/value pairs in a single file on disk.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore returns a store backed by path. The file is created on the first write.
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("file store path must not be empty")
	}
	return &Store{path: path}, nil
}

// Get returns the value under key or repository.ErrNotFound.
func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return "", err
	}
	value, ok := values[key]
	if !ok {
		return "", repository.ErrNotFound
	}
	return value, nil
}

// Set overwrites the value under key. The file is replaced atomically.
func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		// an unreadable file is overwritten rather than blocking every save
		values = make(map[string]string)
	}
	values[key] = value

	payload, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store file: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create store dir %s: %w", dir, err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write store file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace store file %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) read() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store file %s: %w", s.path, err)
	}

	values := make(map[string]string)
	if len(raw) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("decode store file %s: %w", s.path, err)
	}
	return values, nil
}
