package memory

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/adriangreen/fddplan/internal/config"
)

func stores(t *testing.T) map[string]func() Store {
	return map[string]func() Store{
		"file": func() Store {
			s, err := NewFileStore(filepath.Join(t.TempDir(), "state.json"))
			if err != nil {
				t.Fatalf("NewFileStore: %v", err)
			}
			return s
		},
		"badger": func() Store {
			s, err := NewBadgerStore(filepath.Join(t.TempDir(), "state.badger"))
			if err != nil {
				t.Fatalf("NewBadgerStore: %v", err)
			}
			return s
		},
		"badger in memory": func() Store {
			s, err := NewBadgerStore("")
			if err != nil {
				t.Fatalf("NewBadgerStore: %v", err)
			}
			return s
		},
	}
}

func TestStoreContract(t *testing.T) {
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			s := open()
			defer s.Close()
			ctx := context.Background()

			if err := s.Put(ctx, "", []byte("x")); !errors.Is(err, ErrKeyEmpty) {
				t.Errorf("Put empty key: got %v", err)
			}
			if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrKeyNotFound) {
				t.Errorf("Get missing: got %v", err)
			}

			for _, k := range []string{"view:b", "recent", "view:a"} {
				if err := s.Put(ctx, k, []byte(k)); err != nil {
					t.Fatalf("Put %s: %v", k, err)
				}
			}
			got, err := s.Get(ctx, "recent")
			if err != nil || string(got) != "recent" {
				t.Errorf("Get = %q, %v", got, err)
			}

			keys, err := s.Keys(ctx, "view:")
			if err != nil {
				t.Fatalf("Keys: %v", err)
			}
			if want := []string{"view:a", "view:b"}; !reflect.DeepEqual(keys, want) {
				t.Errorf("Keys = %v, want %v", keys, want)
			}

			if err := s.Delete(ctx, "view:a"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := s.Get(ctx, "view:a"); !errors.Is(err, ErrKeyNotFound) {
				t.Errorf("Get after delete: got %v", err)
			}
		})
	}
}

func TestFileStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := s.Put(context.Background(), "k", []byte("v")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	again, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := again.Get(context.Background(), "k")
	if err != nil || string(got) != "v" {
		t.Errorf("Get after reopen = %q, %v", got, err)
	}
}

func TestBadgerStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.badger")
	s, err := NewBadgerStore(path)
	if err != nil {
		t.Fatalf("NewBadgerStore: %v", err)
	}
	if err := s.Put(context.Background(), "k", []byte("v")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	again, err := NewBadgerStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer again.Close()
	got, err := again.Get(context.Background(), "k")
	if err != nil || string(got) != "v" {
		t.Errorf("Get after reopen = %q, %v", got, err)
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	cfg := config.Default()
	cfg.StatePath = filepath.Join(t.TempDir(), "state.json")
	s, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := s.(*FileStore); !ok {
		t.Errorf("Open returned %T, want *FileStore", s)
	}
	s.Close()

	cfg.StateBackend = config.BackendBadger
	cfg.StatePath = filepath.Join(t.TempDir(), "state.badger")
	s, err = Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := s.(*BadgerStore); !ok {
		t.Errorf("Open returned %T, want *BadgerStore", s)
	}
	s.Close()
}
