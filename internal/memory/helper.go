package memory

import (
	"context"
	"errors"
	"path/filepath"

	json "github.com/goccy/go-json"
)

// Keys and prefixes used in the store.
const (
	RecentKey  = "recent"
	ViewPrefix = "view:"
)

// ViewState is what a plan looked like when it was last closed.
type ViewState struct {
	Query    string   `json:"query"`
	Expanded []string `json:"expanded,omitempty"`
}

// Helper layers typed editor state over a Store.
type Helper struct {
	Store       Store
	RecentLimit int
}

// NewHelper creates a helper that keeps at most recentLimit recent plans.
func NewHelper(store Store, recentLimit int) *Helper {
	if recentLimit <= 0 {
		recentLimit = 10
	}
	return &Helper{Store: store, RecentLimit: recentLimit}
}

func (h *Helper) putJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return h.Store.Put(ctx, key, data)
}

func (h *Helper) getJSON(ctx context.Context, key string, v any) error {
	data, err := h.Store.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// Touch moves path to the front of the recent list.
func (h *Helper) Touch(ctx context.Context, path string) error {
	path = canonical(path)
	recent, err := h.Recent(ctx)
	if err != nil {
		return err
	}
	out := make([]string, 0, len(recent)+1)
	out = append(out, path)
	for _, p := range recent {
		if p != path && len(out) < h.RecentLimit {
			out = append(out, p)
		}
	}
	return h.putJSON(ctx, RecentKey, out)
}

// Recent returns the recently opened plans, most recent first.
func (h *Helper) Recent(ctx context.Context) ([]string, error) {
	data, err := h.Store.Get(ctx, RecentKey)
	if errors.Is(err, ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var recent []string
	if err := json.Unmarshal(data, &recent); err != nil {
		// Unreadable list, start fresh
		return nil, nil
	}
	return recent, nil
}

// SaveView records the view state of the plan at path.
func (h *Helper) SaveView(ctx context.Context, path string, v ViewState) error {
	return h.putJSON(ctx, ViewPrefix+canonical(path), v)
}

// View returns the saved view state of the plan at path. The second result
// is false if nothing was saved.
func (h *Helper) View(ctx context.Context, path string) (ViewState, bool, error) {
	var v ViewState
	err := h.getJSON(ctx, ViewPrefix+canonical(path), &v)
	if errors.Is(err, ErrKeyNotFound) {
		return ViewState{}, false, nil
	}
	if err != nil {
		return ViewState{}, false, err
	}
	return v, true, nil
}

// Forget drops a plan from the recent list and deletes its view state.
func (h *Helper) Forget(ctx context.Context, path string) error {
	path = canonical(path)
	recent, err := h.Recent(ctx)
	if err != nil {
		return err
	}
	kept := recent[:0]
	for _, p := range recent {
		if p != path {
			kept = append(kept, p)
		}
	}
	if err := h.putJSON(ctx, RecentKey, kept); err != nil {
		return err
	}
	return h.Store.Delete(ctx, ViewPrefix+path)
}

// Close properly shuts down the store
func (h *Helper) Close() error {
	return h.Store.Close()
}

func canonical(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
