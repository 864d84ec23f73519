// Package memory persists editor state between runs: the recently opened
// plans and, per plan, the last search and the rows it expanded.
package memory

import (
	"context"
	"errors"
	"fmt"

	"github.com/adriangreen/fddplan/internal/config"
)

// Common errors
var (
	ErrKeyNotFound = errors.New("key not found")
	ErrKeyEmpty    = errors.New("key cannot be empty")
)

// Store is a small key/value store.
type Store interface {
	// Put saves value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Get returns the value for key or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	Delete(ctx context.Context, key string) error

	// Keys lists the keys starting with prefix in ascending order.
	Keys(ctx context.Context, prefix string) ([]string, error)

	Close() error
}

// Open returns the store selected by cfg.
func Open(cfg *config.Config) (Store, error) {
	path, err := cfg.ResolvedStatePath()
	if err != nil {
		return nil, err
	}
	switch cfg.StateBackend {
	case config.BackendBadger:
		return NewBadgerStore(path)
	case config.BackendJSON, "":
		return NewFileStore(path)
	default:
		return nil, fmt.Errorf("unknown state backend %q", cfg.StateBackend)
	}
}
