package command

import (
	"sync/atomic"

	"github.com/adriangreen/fddplan/internal/debug"
)

// State is a snapshot of what a UI needs to enable undo/redo controls.
type State struct {
	Dirty   bool
	CanUndo bool
	CanRedo bool
	Undo    string
	Redo    string
}

// Service runs commands through a History and tracks the dirty flag. Only
// one operation runs at a time: starting another one meanwhile, from a bus
// listener or another goroutine, fails with ErrBusy instead of blocking.
// State is always readable.
type Service struct {
	history *History
	dirty   bool
	busy    atomic.Bool
	state   atomic.Pointer[State]

	// OnChange, when set, is called with the new state after every
	// operation that changed it.
	OnChange func(State)
}

// NewService creates a service whose history keeps at most limit commands.
func NewService(limit int) *Service {
	s := &Service{history: NewHistory(limit)}
	s.state.Store(&State{})
	return s
}

func (s *Service) enter() error {
	if !s.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	return nil
}

func (s *Service) leave(changed bool) {
	st := State{
		Dirty:   s.dirty,
		CanUndo: s.history.CanUndo(),
		CanRedo: s.history.CanRedo(),
	}
	st.Undo, _ = s.history.PeekUndo()
	st.Redo, _ = s.history.PeekRedo()
	s.state.Store(&st)
	s.busy.Store(false)
	if changed && s.OnChange != nil {
		s.OnChange(st)
	}
}

// Execute runs cmd and records it for undo.
func (s *Service) Execute(cmd Command) error {
	if cmd == nil {
		return nil
	}
	if err := s.enter(); err != nil {
		return err
	}
	err := s.history.Execute(cmd)
	if err == nil {
		s.dirty = true
		debug.Log("executed command: %s", cmd.Description())
	} else {
		debug.Log("command failed: %s: %v", cmd.Description(), err)
	}
	s.leave(err == nil)
	return err
}

// Undo reverts the latest command.
func (s *Service) Undo() error {
	if err := s.enter(); err != nil {
		return err
	}
	cmd, err := s.history.Undo()
	if err == nil {
		s.dirty = true
		debug.Log("undid command: %s", cmd.Description())
	}
	s.leave(err == nil)
	return err
}

// Redo re-applies the latest undone command.
func (s *Service) Redo() error {
	if err := s.enter(); err != nil {
		return err
	}
	cmd, err := s.history.Redo()
	if err == nil {
		s.dirty = true
		debug.Log("redid command: %s", cmd.Description())
	}
	s.leave(err == nil)
	return err
}

// DiscardUndo drops the next undo entry, typically after Undo reported
// ErrInconsistentState.
func (s *Service) DiscardUndo() error {
	if err := s.enter(); err != nil {
		return err
	}
	_, ok := s.history.DiscardUndo()
	s.leave(ok)
	if !ok {
		return ErrNothingToUndo
	}
	return nil
}

// DiscardRedo drops the next redo entry.
func (s *Service) DiscardRedo() error {
	if err := s.enter(); err != nil {
		return err
	}
	_, ok := s.history.DiscardRedo()
	s.leave(ok)
	if !ok {
		return ErrNothingToRedo
	}
	return nil
}

// Reset drops all history and clears the dirty flag, e.g. after the tree
// the history refers to was replaced.
func (s *Service) Reset() error {
	if err := s.enter(); err != nil {
		return err
	}
	s.history.Clear()
	s.dirty = false
	s.leave(true)
	return nil
}

// MarkClean records that the current state has been saved.
func (s *Service) MarkClean() error {
	if err := s.enter(); err != nil {
		return err
	}
	s.dirty = false
	s.leave(true)
	return nil
}

// State returns the state as of the last completed operation.
func (s *Service) State() State {
	return *s.state.Load()
}

func (s *Service) Dirty() bool   { return s.State().Dirty }
func (s *Service) CanUndo() bool { return s.State().CanUndo }
func (s *Service) CanRedo() bool { return s.State().CanRedo }
