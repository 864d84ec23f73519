package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func startWatcher(t *testing.T, debounce time.Duration, paths ...string) *Watcher {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	w, err := NewWatcher(ctx, paths...)
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	t.Cleanup(func() { w.Stop() })

	if err := w.Start(debounce); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}
	// Give watcher time to start
	time.Sleep(100 * time.Millisecond)
	return w
}

// TestWatcher_SingleFileChange tests that watcher detects a single file change
func TestWatcher_SingleFileChange(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "plan.json")
	if err := os.WriteFile(testFile, []byte(`{"version": 1}`), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	w := startWatcher(t, 50*time.Millisecond, testFile)

	if err := os.WriteFile(testFile, []byte(`{"version": 1, "root": {}}`), 0644); err != nil {
		t.Fatalf("Failed to modify test file: %v", err)
	}

	select {
	case <-w.Events():
	case err := <-w.Errors():
		t.Fatalf("Watcher error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for file change event")
	}
}

// TestWatcher_DebounceMultipleWrites tests that rapid writes produce one event
func TestWatcher_DebounceMultipleWrites(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "plan.json")
	if err := os.WriteFile(testFile, []byte(`{}`), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	w := startWatcher(t, 200*time.Millisecond, testFile)

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(testFile, []byte(`{"n": 1}`), 0644); err != nil {
			t.Fatalf("Failed to write: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	select {
	case <-w.Events():
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for debounced event")
	}

	select {
	case <-w.Events():
		t.Error("received a second event for one burst of writes")
	case <-time.After(400 * time.Millisecond):
	}
}

// TestWatcher_IgnoresOtherFiles tests that siblings of a watched file are ignored
func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "plan.json")
	other := filepath.Join(dir, "other.json")
	if err := os.WriteFile(watched, []byte(`{}`), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	w := startWatcher(t, 50*time.Millisecond, watched)

	if err := os.WriteFile(other, []byte(`{}`), 0644); err != nil {
		t.Fatalf("Failed to write other file: %v", err)
	}

	select {
	case <-w.Events():
		t.Error("unexpected event for unwatched file")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_StartTwice(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "plan.json")
	if err := os.WriteFile(testFile, []byte(`{}`), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	w := startWatcher(t, 50*time.Millisecond, testFile)
	if err := w.Start(50 * time.Millisecond); err == nil {
		t.Error("second Start should fail")
	}
}

func TestWatcher_StopWithoutStart(t *testing.T) {
	w, err := NewWatcher(context.Background(), filepath.Join(t.TempDir(), "x.json"))
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}
