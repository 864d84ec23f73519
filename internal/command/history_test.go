package command

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/adriangreen/fddplan/internal/plan"
)

func TestHistoryTrimsOldest(t *testing.T) {
	tree := plan.NewTree(plan.KindProgram, "Root")
	h := NewHistory(DefaultHistoryLimit)
	for i := 0; i < 105; i++ {
		frag, err := plan.NewFragment(plan.KindProgram, fmt.Sprintf("C%d", i))
		require.NoError(t, err)
		require.NoError(t, h.Execute(NewAddChild(tree, nil, tree.Root(), frag)))
	}
	assert.Equal(t, 100, h.UndoLen())
	for _, c := range h.undo[h.UndoLen():cap(h.undo)] {
		assert.Nil(t, c, "trimmed commands must not stay reachable")
	}

	for h.CanUndo() {
		_, err := h.Undo()
		require.NoError(t, err)
	}
	// The five oldest additions can no longer be undone.
	assert.Equal(t, 5, tree.RootNode().ChildCount())
}

func TestExecuteClearsRedo(t *testing.T) {
	f := newFixture(t)
	h := NewHistory(0)
	require.NoError(t, h.Execute(NewRename(f.tree, f.bus, f.subject, "One")))
	_, err := h.Undo()
	require.NoError(t, err)
	assert.True(t, h.CanRedo())

	require.NoError(t, h.Execute(NewRename(f.tree, f.bus, f.subject, "Two")))
	assert.False(t, h.CanRedo())
	_, err = h.Redo()
	assert.ErrorIs(t, err, ErrNothingToRedo)
}

func TestEmptyHistory(t *testing.T) {
	h := NewHistory(0)
	_, err := h.Undo()
	assert.ErrorIs(t, err, ErrNothingToUndo)
	_, ok := h.PeekUndo()
	assert.False(t, ok)
	_, ok = h.DiscardRedo()
	assert.False(t, ok)
}

func TestPeekDescriptions(t *testing.T) {
	f := newFixture(t)
	h := NewHistory(0)
	require.NoError(t, h.Execute(NewAddWorkPackage(f.tree, f.bus, f.project, "Release 1")))
	d, ok := h.PeekUndo()
	require.True(t, ok)
	assert.Equal(t, "Add Work Package 'Release 1'", d)
}

// TestUndoRedoRoundTrip applies random command sequences and checks that
// undoing them all restores the start and redoing them all reproduces the
// end state, step by step.
func TestUndoRedoRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f := newFixture(t)
		f.add(t, f.subject, plan.KindActivity, "Collect")
		h := NewHistory(0)
		snapshots := []plan.NodeData{f.tree.Data()}

		steps := rapid.IntRange(1, 25).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			cmd := randomCommand(t, f, i)
			if cmd == nil {
				continue
			}
			if err := h.Execute(cmd); err != nil {
				continue
			}
			snapshots = append(snapshots, f.tree.Data())
		}

		for i := len(snapshots) - 2; i >= 0; i-- {
			if _, err := h.Undo(); err != nil {
				t.Fatalf("Undo: %v", err)
			}
			if !reflect.DeepEqual(snapshots[i], f.tree.Data()) {
				t.Fatalf("state after undo %d differs", i)
			}
		}
		for i := 1; i < len(snapshots); i++ {
			if _, err := h.Redo(); err != nil {
				t.Fatalf("Redo: %v", err)
			}
			if !reflect.DeepEqual(snapshots[i], f.tree.Data()) {
				t.Fatalf("state after redo %d differs", i)
			}
		}
	})
}

func randomCommand(t *rapid.T, f *fixture, i int) Command {
	var activities, features, named []plan.NodeID
	f.tree.Walk(func(n *plan.Node, depth int) bool {
		switch n.Kind() {
		case plan.KindActivity:
			activities = append(activities, n.ID())
		case plan.KindFeature:
			features = append(features, n.ID())
		}
		if depth > 0 {
			named = append(named, n.ID())
		}
		return true
	})

	switch rapid.IntRange(0, 5).Draw(t, "kind") {
	case 0:
		parent := rapid.SampledFrom(activities).Draw(t, "parent")
		return NewAddChild(f.tree, f.bus, parent, fragment(t, plan.KindFeature, fmt.Sprintf("f%d", i)))
	case 1:
		if len(features) == 0 {
			return nil
		}
		return NewDeleteNode(f.tree, f.bus, rapid.SampledFrom(features).Draw(t, "victim"))
	case 2:
		id := rapid.SampledFrom(named).Draw(t, "renamed")
		return NewRename(f.tree, f.bus, id, fmt.Sprintf("n%d", i))
	case 3:
		if len(features) == 0 {
			return nil
		}
		id := rapid.SampledFrom(features).Draw(t, "moved")
		to := rapid.SampledFrom(activities).Draw(t, "to")
		return NewReparent(f.tree, f.bus, id, to, rapid.IntRange(-1, 4).Draw(t, "index"))
	case 4:
		if len(features) == 0 {
			return nil
		}
		id := rapid.SampledFrom(features).Draw(t, "edited")
		var ms []plan.Milestone
		for j := rapid.IntRange(0, 3).Draw(t, "milestones"); j > 0; j-- {
			ms = append(ms, done(fmt.Sprintf("m%d", j), rapid.IntRange(1, 28).Draw(t, "day")))
		}
		return NewEditMilestones(f.tree, f.bus, id, ms)
	default:
		return NewAddWorkPackage(f.tree, f.bus, f.project, fmt.Sprintf("wp%d", i))
	}
}

func TestFailedUndoKeepsCommandOnTop(t *testing.T) {
	f := newFixture(t)
	h := NewHistory(0)
	cmd := NewRename(f.tree, f.bus, f.subject, "Payments")
	require.NoError(t, h.Execute(cmd))
	_, err := f.tree.Rename(f.subject, "Elsewhere")
	require.NoError(t, err)

	got, err := h.Undo()
	assert.True(t, errors.Is(err, plan.ErrInconsistentState))
	assert.Same(t, cmd, got)
	assert.Equal(t, 1, h.UndoLen())
	assert.Equal(t, 0, h.RedoLen())
}
