// Package command implements reversible tree mutations and the undo/redo
// history that records them.
package command

import (
	"errors"
	"fmt"
	"slices"

	"github.com/adriangreen/fddplan/internal/bus"
	"github.com/adriangreen/fddplan/internal/plan"
)

var (
	// ErrAlreadyExecuted is returned by Execute on a command that has not
	// been undone since it last ran.
	ErrAlreadyExecuted = errors.New("command already executed")

	// ErrNotExecuted is returned by Undo on a command that is not applied.
	ErrNotExecuted = errors.New("command not executed")

	// ErrNothingToUndo indicates the undo stack is empty.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo indicates the redo stack is empty.
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrBusy is returned when a command is started while another one is
	// still running, e.g. from inside a bus listener.
	ErrBusy = errors.New("another command is in progress")
)

// Command is a reversible mutation of a plan tree. Execute and Undo must
// alternate, starting with Execute; calling Execute again after Undo redoes
// the change.
type Command interface {
	Execute() error
	Undo() error
	Description() string
}

// target bundles the tree a command edits and the bus it reports to.
type target struct {
	tree *plan.Tree
	bus  *bus.Bus
}

func (t target) publish(events ...bus.Event) {
	if t.bus == nil {
		return
	}
	for _, e := range events {
		t.bus.Publish(e)
	}
}

func (t target) name(id plan.NodeID) string {
	if n, ok := t.tree.Node(id); ok {
		return n.Name()
	}
	return string(id)
}

func (t target) require(id plan.NodeID) (*plan.Node, error) {
	n, ok := t.tree.Node(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", plan.ErrNotAttached, id)
	}
	return n, nil
}

// state is the execute/undo alternation guard shared by every command.
type state struct {
	executed bool
}

func (s *state) canExecute() error {
	if s.executed {
		return ErrAlreadyExecuted
	}
	return nil
}

func (s *state) canUndo() error {
	if !s.executed {
		return ErrNotExecuted
	}
	return nil
}

// parentOf returns the current parent of id, failing with
// ErrInconsistentState unless it is want.
// at checks that id is still the index'th child of parent, where an
// earlier run of the command left it.
func at(t target, id, parent plan.NodeID, index int) error {
	if err := parentOf(t, id, parent); err != nil {
		return err
	}
	p, _ := t.tree.Node(parent)
	if got := slices.Index(p.Children(), id); got != index {
		return fmt.Errorf("%w: %s is at index %d under %s, expected %d", plan.ErrInconsistentState, id, got, parent, index)
	}
	return nil
}

func parentOf(t target, id, want plan.NodeID) error {
	n, err := t.require(id)
	if err != nil {
		return err
	}
	parent, _ := n.Parent()
	if parent != want {
		return fmt.Errorf("%w: %s is under %s, expected %s", plan.ErrInconsistentState, id, parent, want)
	}
	return nil
}
