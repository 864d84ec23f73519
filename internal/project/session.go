// Package project holds an open plan: its tree, change bus, command history
// and search navigator. A Session is the single writer for all of them.
package project

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adriangreen/fddplan/internal/bus"
	"github.com/adriangreen/fddplan/internal/command"
	"github.com/adriangreen/fddplan/internal/config"
	"github.com/adriangreen/fddplan/internal/debug"
	"github.com/adriangreen/fddplan/internal/loader"
	"github.com/adriangreen/fddplan/internal/memory"
	"github.com/adriangreen/fddplan/internal/plan"
	"github.com/adriangreen/fddplan/internal/search"
)

// ErrUnsavedChanges is returned by Reload when the tree has edits that a
// reload would throw away.
var ErrUnsavedChanges = errors.New("plan has unsaved changes")

// Builder constructs a command against the session's current tree and bus.
type Builder func(tree *plan.Tree, b *bus.Bus) (command.Command, error)

// Options tune Open.
type Options struct {
	// View receives navigator updates. Defaults to a search.MemoryView.
	View search.View

	// State, when set, records the plan as recently used and restores the
	// last query and expanded rows.
	State *memory.Helper
}

// Session serializes every operation on an open plan behind one mutex.
// Bus listeners run with that mutex held and must not call back into the
// session.
type Session struct {
	path    string
	cfg     *config.Config
	tree    *plan.Tree
	bus     *bus.Bus
	service *command.Service
	nav     *search.Navigator
	view    search.View
	state   *memory.Helper

	// warnings from the last load
	warnings []plan.ValidationWarning

	// lastModTime is the plan file's mtime after our last load or save
	lastModTime time.Time

	watcher    *config.Watcher
	stopWatch  chan struct{}
	reloadChan chan struct{}

	mu sync.Mutex
}

// Open loads the plan at path.
func Open(ctx context.Context, path string, cfg *config.Config, opts Options) (*Session, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	tree, warnings, err := loader.Load(path)
	if err != nil {
		return nil, err
	}

	view := opts.View
	if view == nil {
		view = search.NewMemoryView()
	}
	s := &Session{
		path:       path,
		cfg:        cfg,
		tree:       tree,
		bus:        bus.New(),
		service:    command.NewService(cfg.HistoryLimit),
		view:       view,
		state:      opts.State,
		warnings:   warnings,
		reloadChan: make(chan struct{}, 1),
	}
	s.lastModTime = modTime(path)
	s.nav = search.NewNavigator(tree, view)
	s.nav.Attach(s.bus)

	for _, w := range warnings {
		debug.Warn("%s: %s", path, w.Message)
	}

	if s.state != nil {
		if err := s.state.Touch(ctx, path); err != nil {
			debug.Warn("failed to record recent plan: %v", err)
		}
		if vs, ok, err := s.state.View(ctx, path); err != nil {
			debug.Warn("failed to read view state: %v", err)
		} else if ok {
			ids := make([]plan.NodeID, len(vs.Expanded))
			for i, id := range vs.Expanded {
				ids[i] = plan.NodeID(id)
			}
			s.nav.Restore(vs.Query, ids)
		}
	}
	return s, nil
}

func modTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// Path is the plan file the session reads and writes.
func (s *Session) Path() string { return s.path }

// Bus returns the change bus. Subscriptions survive Reload.
func (s *Session) Bus() *bus.Bus { return s.bus }

// View returns the view the navigator drives.
func (s *Session) View() search.View { return s.view }

// Warnings returns the validation warnings of the last load.
func (s *Session) Warnings() []plan.ValidationWarning {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]plan.ValidationWarning(nil), s.warnings...)
}

// Read calls fn with the current tree. fn must not keep the tree.
func (s *Session) Read(fn func(tree *plan.Tree)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.tree)
}

// State reports dirty and undo/redo availability.
func (s *Session) State() command.State {
	return s.service.State()
}

// Do builds a command against the current tree and executes it.
func (s *Session) Do(build Builder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cmd, err := build(s.tree, s.bus)
	if err != nil {
		return err
	}
	return s.service.Execute(cmd)
}

// Add creates a node of kind under parent.
func (s *Session) Add(parent plan.NodeID, kind plan.Kind, name string) (plan.NodeID, error) {
	var id plan.NodeID
	err := s.Do(func(tree *plan.Tree, b *bus.Bus) (command.Command, error) {
		frag, err := plan.NewFragment(kind, name)
		if err != nil {
			return nil, err
		}
		id = frag.Root()
		return command.NewAddChild(tree, b, parent, frag), nil
	})
	return id, err
}

// Rename renames the node id.
func (s *Session) Rename(id plan.NodeID, name string) error {
	return s.Do(func(tree *plan.Tree, b *bus.Bus) (command.Command, error) {
		return command.NewRename(tree, b, id, name), nil
	})
}

// Delete removes the node id and its subtree.
func (s *Session) Delete(id plan.NodeID) error {
	return s.Do(func(tree *plan.Tree, b *bus.Bus) (command.Command, error) {
		return command.NewDeleteNode(tree, b, id), nil
	})
}

// Move reparents id under parent at index, -1 appending.
func (s *Session) Move(id, parent plan.NodeID, index int) error {
	return s.Do(func(tree *plan.Tree, b *bus.Bus) (command.Command, error) {
		return command.NewReparent(tree, b, id, parent, index), nil
	})
}

// Paste copies source under parent. Feature numbers are reassigned when the
// config asks for it.
func (s *Session) Paste(source, parent plan.NodeID) error {
	return s.Do(func(tree *plan.Tree, b *bus.Bus) (command.Command, error) {
		return command.NewPaste(tree, b, parent, source, s.cfg.ResequencePaste), nil
	})
}

func (s *Session) Undo() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.service.Undo()
}

func (s *Session) Redo() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.service.Redo()
}

// Search runs query through the navigator and returns the match count.
func (s *Session) Search(query string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.Search(query)
}

func (s *Session) Next() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.Next()
}

func (s *Session) Previous() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.Previous()
}

func (s *Session) ClearSearch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nav.Clear()
}

// Matches returns the current search results and cursor.
func (s *Session) Matches() ([]search.Match, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.Matches(), s.nav.Cursor()
}

// Save writes the tree back to the plan file and marks the history clean.
func (s *Session) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := loader.Save(s.path, s.tree); err != nil {
		return err
	}
	s.lastModTime = modTime(s.path)
	return s.service.MarkClean()
}

// Reload replaces the tree with the plan file's contents. Unless force is
// set it refuses to drop unsaved edits. History is cleared since its
// commands refer to the old tree.
func (s *Session) Reload(force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reload(force)
}

func (s *Session) reload(force bool) error {
	if !force && s.service.Dirty() {
		return ErrUnsavedChanges
	}
	tree, warnings, err := loader.Load(s.path)
	if err != nil {
		return err
	}
	old := s.tree
	s.tree = tree
	s.warnings = warnings
	s.lastModTime = modTime(s.path)
	s.bus.Publish(bus.ProjectReplaced{OldRoot: old, NewRoot: tree})
	if err := s.service.Reset(); err != nil {
		return err
	}
	debug.Log("reloaded %s (%d nodes)", s.path, tree.Len())
	return nil
}

// StartWatcher reloads the plan whenever the file changes on disk. Our own
// saves are recognised by modification time and skipped, and a dirty tree
// is never replaced. Reloads are signalled on ReloadEvents.
func (s *Session) StartWatcher(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watcher != nil {
		return fmt.Errorf("watcher already started")
	}
	abs, err := filepath.Abs(s.path)
	if err != nil {
		return err
	}
	w, err := config.NewWatcher(ctx, abs)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Start(s.cfg.WatchDebounce()); err != nil {
		w.Stop()
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	s.watcher = w
	s.stopWatch = make(chan struct{})
	go s.handleFileChanges(ctx, w, s.stopWatch)
	return nil
}

func (s *Session) handleFileChanges(ctx context.Context, w *config.Watcher, stop <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return

		case _, ok := <-w.Events():
			if !ok {
				return
			}
			if s.externalChange() {
				s.signalReload()
			}

		case err, ok := <-w.Errors():
			if !ok {
				return
			}
			debug.Warn("watcher error: %v", err)
		}
	}
}

// externalChange reloads after an edit made outside this session and
// reports whether it did.
func (s *Session) externalChange() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if mt := modTime(s.path); !mt.IsZero() && mt.Equal(s.lastModTime) {
		return false
	}
	if err := s.reload(false); err != nil {
		debug.Warn("not reloading %s: %v", s.path, err)
		return false
	}
	return true
}

func (s *Session) signalReload() {
	select {
	case s.reloadChan <- struct{}{}:
	default:
		// reload notification already pending
	}
}

// ReloadEvents signals each reload triggered by the watcher.
func (s *Session) ReloadEvents() <-chan struct{} {
	return s.reloadChan
}

// StopWatcher stops the file watcher if it's running
func (s *Session) StopWatcher() error {
	s.mu.Lock()
	w, stop := s.watcher, s.stopWatch
	s.watcher, s.stopWatch = nil, nil
	s.mu.Unlock()

	if w == nil {
		return nil
	}
	close(stop)
	return w.Stop()
}

// Close stops watching and records the view state for the next Open.
func (s *Session) Close(ctx context.Context) error {
	err := s.StopWatcher()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != nil {
		auto := s.nav.AutoExpanded()
		vs := memory.ViewState{Query: s.nav.Query(), Expanded: make([]string, len(auto))}
		for i, id := range auto {
			vs.Expanded[i] = string(id)
		}
		err = errors.Join(err, s.state.SaveView(ctx, s.path, vs))
	}
	s.nav.Detach()
	return err
}
