package memory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
)

// FileStore keeps all entries in a map and rewrites a JSON file on every
// change. An empty path keeps the store purely in memory.
type FileStore struct {
	mu   sync.RWMutex
	data map[string][]byte
	path string
}

// NewFileStore opens the store at path, loading it if the file exists.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{data: make(map[string][]byte), path: path}
	if path == "" {
		return s, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	var stored map[string]string
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("failed to parse state file %s: %w", path, err)
	}
	for k, v := range stored {
		s.data[k] = []byte(v)
	}
	return s, nil
}

func (s *FileStore) Put(_ context.Context, key string, value []byte) error {
	if key == "" {
		return ErrKeyEmpty
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
	return s.flush()
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrKeyEmpty
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	if key == "" {
		return ErrKeyEmpty
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return nil
	}
	delete(s.data, key)
	return s.flush()
}

func (s *FileStore) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flush()
}

// flush writes the map through a temp file so a crash never leaves a
// truncated state file. Callers hold mu.
func (s *FileStore) flush() error {
	if s.path == "" {
		return nil
	}
	stored := make(map[string]string, len(s.data))
	for k, v := range s.data {
		stored[k] = string(v)
	}
	raw, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".state-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
