package command

import (
	"fmt"

	"github.com/adriangreen/fddplan/internal/bus"
	"github.com/adriangreen/fddplan/internal/plan"
)

// AddChild appends a new subtree under a parent.
type AddChild struct {
	state
	t      target
	parent plan.NodeID
	node   plan.NodeID
	frag   *plan.Fragment
}

// NewAddChild prepares attaching frag as the last child of parent.
func NewAddChild(tree *plan.Tree, b *bus.Bus, parent plan.NodeID, frag *plan.Fragment) *AddChild {
	return &AddChild{t: target{tree, b}, parent: parent, node: frag.Root(), frag: frag}
}

// Node is the id of the added subtree's root.
func (c *AddChild) Node() plan.NodeID { return c.node }

func (c *AddChild) Execute() error {
	if err := c.canExecute(); err != nil {
		return err
	}
	if _, err := c.t.require(c.parent); err != nil {
		return err
	}
	if _, err := c.t.tree.Attach(c.parent, c.frag, -1); err != nil {
		return err
	}
	c.frag = nil
	c.executed = true
	c.t.publish(bus.NodeAdded{Parent: c.parent, Node: c.node})
	return nil
}

func (c *AddChild) Undo() error {
	if err := c.canUndo(); err != nil {
		return err
	}
	if err := parentOf(c.t, c.node, c.parent); err != nil {
		return err
	}
	frag, _, _, err := c.t.tree.Detach(c.node)
	if err != nil {
		return err
	}
	c.frag = frag
	c.executed = false
	c.t.publish(bus.NodeRemoved{Parent: c.parent, Node: c.node})
	return nil
}

func (c *AddChild) Description() string {
	n, ok := c.t.tree.Node(c.node)
	if !ok && c.frag != nil {
		n, ok = c.frag.Node(c.node)
	}
	if !ok {
		return "Add child"
	}
	return fmt.Sprintf("Add %s '%s'", n.Kind(), n.Name())
}

// DeleteNode removes a subtree, remembering where it was.
type DeleteNode struct {
	state
	t      target
	node   plan.NodeID
	name   string
	parent plan.NodeID
	index  int
	frag   *plan.Fragment
}

// NewDeleteNode prepares removing id and everything beneath it.
func NewDeleteNode(tree *plan.Tree, b *bus.Bus, id plan.NodeID) *DeleteNode {
	t := target{tree, b}
	return &DeleteNode{t: t, node: id, name: t.name(id), index: -1}
}

func (c *DeleteNode) Execute() error {
	if err := c.canExecute(); err != nil {
		return err
	}
	if _, err := c.t.require(c.node); err != nil {
		return err
	}
	if c.parent != "" {
		if err := at(c.t, c.node, c.parent, c.index); err != nil {
			return err
		}
	}
	frag, parent, index, err := c.t.tree.Detach(c.node)
	if err != nil {
		return err
	}
	c.frag, c.parent, c.index = frag, parent, index
	c.executed = true
	c.t.publish(bus.NodeRemoved{Parent: parent, Node: c.node})
	return nil
}

func (c *DeleteNode) Undo() error {
	if err := c.canUndo(); err != nil {
		return err
	}
	p, ok := c.t.tree.Node(c.parent)
	if !ok {
		return fmt.Errorf("%w: parent %s is gone", plan.ErrInconsistentState, c.parent)
	}
	if c.index > p.ChildCount() {
		return fmt.Errorf("%w: parent %s has %d children, cannot restore at %d",
			plan.ErrInconsistentState, c.parent, p.ChildCount(), c.index)
	}
	if _, err := c.t.tree.Attach(c.parent, c.frag, c.index); err != nil {
		return err
	}
	c.frag = nil
	c.executed = false
	c.t.publish(bus.NodeAdded{Parent: c.parent, Node: c.node})
	return nil
}

func (c *DeleteNode) Description() string {
	return fmt.Sprintf("Delete '%s'", c.name)
}

// Reparent moves a node under a new parent at an index measured after the
// node has left its old position.
type Reparent struct {
	state
	t         target
	node      plan.NodeID
	newParent plan.NodeID
	index     int
	oldParent plan.NodeID
	oldIndex  int
}

// NewReparent prepares moving id under newParent at index (-1 appends).
func NewReparent(tree *plan.Tree, b *bus.Bus, id, newParent plan.NodeID, index int) *Reparent {
	return &Reparent{t: target{tree, b}, node: id, newParent: newParent, index: index, oldIndex: -1}
}

func (c *Reparent) Execute() error {
	if err := c.canExecute(); err != nil {
		return err
	}
	if _, err := c.t.require(c.node); err != nil {
		return err
	}
	if c.oldParent != "" {
		if err := at(c.t, c.node, c.oldParent, c.oldIndex); err != nil {
			return err
		}
	}
	oldParent, oldIndex, err := c.t.tree.Move(c.node, c.newParent, c.index)
	if err != nil {
		return err
	}
	c.oldParent, c.oldIndex = oldParent, oldIndex
	c.executed = true
	c.t.publish(
		bus.NodeRemoved{Parent: oldParent, Node: c.node},
		bus.NodeAdded{Parent: c.newParent, Node: c.node},
	)
	return nil
}

func (c *Reparent) Undo() error {
	if err := c.canUndo(); err != nil {
		return err
	}
	if err := parentOf(c.t, c.node, c.newParent); err != nil {
		return err
	}
	if _, _, err := c.t.tree.Move(c.node, c.oldParent, c.oldIndex); err != nil {
		return err
	}
	c.executed = false
	c.t.publish(
		bus.NodeRemoved{Parent: c.newParent, Node: c.node},
		bus.NodeAdded{Parent: c.oldParent, Node: c.node},
	)
	return nil
}

func (c *Reparent) Description() string {
	return fmt.Sprintf("Move '%s' to '%s'", c.t.name(c.node), c.t.name(c.newParent))
}

// Paste attaches a fresh-id copy of an existing subtree under a parent.
type Paste struct {
	state
	t          target
	parent     plan.NodeID
	source     plan.NodeID
	sourceName string
	resequence bool
	node       plan.NodeID
	frag       *plan.Fragment
}

// NewPaste prepares copying source under parent. With resequence the copied
// features receive new sequence numbers.
func NewPaste(tree *plan.Tree, b *bus.Bus, parent, source plan.NodeID, resequence bool) *Paste {
	t := target{tree, b}
	return &Paste{t: t, parent: parent, source: source, sourceName: t.name(source), resequence: resequence}
}

// Node is the id of the pasted copy, empty until the first Execute.
func (c *Paste) Node() plan.NodeID { return c.node }

func (c *Paste) Execute() error {
	if err := c.canExecute(); err != nil {
		return err
	}
	if _, err := c.t.require(c.parent); err != nil {
		return err
	}
	frag := c.frag
	if frag == nil {
		var err error
		if frag, err = c.t.tree.Clone(c.source, c.resequence); err != nil {
			return err
		}
	}
	if _, err := c.t.tree.Attach(c.parent, frag, -1); err != nil {
		return err
	}
	c.node, c.frag = frag.Root(), nil
	c.executed = true
	c.t.publish(bus.NodeAdded{Parent: c.parent, Node: c.node})
	return nil
}

func (c *Paste) Undo() error {
	if err := c.canUndo(); err != nil {
		return err
	}
	if err := parentOf(c.t, c.node, c.parent); err != nil {
		return err
	}
	frag, _, _, err := c.t.tree.Detach(c.node)
	if err != nil {
		return err
	}
	c.frag = frag
	c.executed = false
	c.t.publish(bus.NodeRemoved{Parent: c.parent, Node: c.node})
	return nil
}

func (c *Paste) Description() string {
	return fmt.Sprintf("Paste '%s'", c.sourceName)
}
