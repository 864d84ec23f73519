package command

import (
	"fmt"
	"slices"

	"github.com/adriangreen/fddplan/internal/bus"
	"github.com/adriangreen/fddplan/internal/plan"
)

// Rename changes a node's display name.
type Rename struct {
	state
	t       target
	node    plan.NodeID
	name    string
	oldName string
}

func NewRename(tree *plan.Tree, b *bus.Bus, id plan.NodeID, name string) *Rename {
	return &Rename{t: target{tree, b}, node: id, name: name}
}

func (c *Rename) Execute() error {
	if err := c.canExecute(); err != nil {
		return err
	}
	if _, err := c.t.require(c.node); err != nil {
		return err
	}
	old, err := c.t.tree.Rename(c.node, c.name)
	if err != nil {
		return err
	}
	c.oldName = old
	c.executed = true
	c.t.publish(bus.NodeUpdated{Node: c.node})
	return nil
}

func (c *Rename) Undo() error {
	if err := c.canUndo(); err != nil {
		return err
	}
	n, err := c.t.require(c.node)
	if err != nil {
		return err
	}
	if n.Name() != c.name {
		return fmt.Errorf("%w: %s is named %q, expected %q", plan.ErrInconsistentState, c.node, n.Name(), c.name)
	}
	if _, err := c.t.tree.Rename(c.node, c.oldName); err != nil {
		return err
	}
	c.executed = false
	c.t.publish(bus.NodeUpdated{Node: c.node})
	return nil
}

func (c *Rename) Description() string {
	if c.executed {
		return fmt.Sprintf("Rename '%s' to '%s'", c.oldName, c.name)
	}
	return fmt.Sprintf("Rename '%s' to '%s'", c.t.name(c.node), c.name)
}

// EditMilestones replaces a feature's milestones.
type EditMilestones struct {
	state
	t    target
	node plan.NodeID
	ms   []plan.Milestone
	old  []plan.Milestone
}

func NewEditMilestones(tree *plan.Tree, b *bus.Bus, feature plan.NodeID, ms []plan.Milestone) *EditMilestones {
	return &EditMilestones{t: target{tree, b}, node: feature, ms: slices.Clone(ms)}
}

func (c *EditMilestones) Execute() error {
	if err := c.canExecute(); err != nil {
		return err
	}
	if _, err := c.t.require(c.node); err != nil {
		return err
	}
	old, err := c.t.tree.SetMilestones(c.node, c.ms)
	if err != nil {
		return err
	}
	c.old = old
	c.executed = true
	c.t.publish(bus.NodeUpdated{Node: c.node})
	return nil
}

func (c *EditMilestones) Undo() error {
	if err := c.canUndo(); err != nil {
		return err
	}
	n, err := c.t.require(c.node)
	if err != nil {
		return err
	}
	if !slices.EqualFunc(n.Milestones(), c.ms, milestoneEqual) {
		return fmt.Errorf("%w: milestones of %s changed", plan.ErrInconsistentState, c.node)
	}
	if _, err := c.t.tree.SetMilestones(c.node, c.old); err != nil {
		return err
	}
	c.executed = false
	c.t.publish(bus.NodeUpdated{Node: c.node})
	return nil
}

func (c *EditMilestones) Description() string {
	return fmt.Sprintf("Edit milestones of '%s'", c.t.name(c.node))
}

func milestoneEqual(a, b plan.Milestone) bool {
	return a.Name == b.Name && a.Status == b.Status && a.Planned.Equal(b.Planned) && a.Actual.Equal(b.Actual)
}
