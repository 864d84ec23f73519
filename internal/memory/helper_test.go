package memory

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHelper(t *testing.T, limit int) *Helper {
	t.Helper()
	s, err := NewFileStore("")
	require.NoError(t, err)
	return NewHelper(s, limit)
}

func TestRecentMostRecentFirst(t *testing.T) {
	h := newHelper(t, 3)
	ctx := context.Background()
	dir := t.TempDir()

	recent, err := h.Recent(ctx)
	require.NoError(t, err)
	assert.Empty(t, recent)

	for i := 0; i < 4; i++ {
		require.NoError(t, h.Touch(ctx, filepath.Join(dir, fmt.Sprintf("p%d.json", i))))
	}
	require.NoError(t, h.Touch(ctx, filepath.Join(dir, "p2.json")))

	recent, err = h.Recent(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "p2.json"),
		filepath.Join(dir, "p3.json"),
		filepath.Join(dir, "p1.json"),
	}, recent)
}

func TestRecentIgnoresCorruptList(t *testing.T) {
	h := newHelper(t, 3)
	ctx := context.Background()
	require.NoError(t, h.Store.Put(ctx, RecentKey, []byte("{not json")))

	recent, err := h.Recent(ctx)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestViewState(t *testing.T) {
	h := newHelper(t, 3)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "plan.json")

	_, ok, err := h.View(ctx, path)
	require.NoError(t, err)
	assert.False(t, ok)

	want := ViewState{Query: "invoice", Expanded: []string{"a", "b"}}
	require.NoError(t, h.SaveView(ctx, path, want))

	got, ok, err := h.View(ctx, path)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)
}

func TestForget(t *testing.T) {
	h := newHelper(t, 3)
	ctx := context.Background()
	dir := t.TempDir()
	a, b := filepath.Join(dir, "a.json"), filepath.Join(dir, "b.json")

	require.NoError(t, h.Touch(ctx, a))
	require.NoError(t, h.Touch(ctx, b))
	require.NoError(t, h.SaveView(ctx, a, ViewState{Query: "x"}))
	require.NoError(t, h.Forget(ctx, a))

	recent, err := h.Recent(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{b}, recent)
	_, ok, err := h.View(ctx, a)
	require.NoError(t, err)
	assert.False(t, ok)
}
