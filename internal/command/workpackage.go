package command

import (
	"fmt"

	"github.com/adriangreen/fddplan/internal/bus"
	"github.com/adriangreen/fddplan/internal/plan"
)

// AddWorkPackage appends a new work package to a project.
type AddWorkPackage struct {
	state
	t       target
	project plan.NodeID
	name    string
	wp      plan.WorkPackage
}

func NewAddWorkPackage(tree *plan.Tree, b *bus.Bus, project plan.NodeID, name string) *AddWorkPackage {
	return &AddWorkPackage{t: target{tree, b}, project: project, name: name}
}

// Seq is the number given to the new work package, 0 before the first Execute.
func (c *AddWorkPackage) Seq() int { return c.wp.Seq }

func (c *AddWorkPackage) Execute() error {
	if err := c.canExecute(); err != nil {
		return err
	}
	if _, err := c.t.require(c.project); err != nil {
		return err
	}
	if c.wp.Seq == 0 {
		if _, err := c.t.tree.WorkPackages(c.project); err != nil {
			return err
		}
		wp, err := c.t.tree.NewWorkPackage(c.name)
		if err != nil {
			return err
		}
		c.wp = wp
	}
	if _, err := c.t.tree.InsertWorkPackage(c.project, c.wp, -1); err != nil {
		return err
	}
	c.executed = true
	c.t.publish(bus.WorkPackagesChanged{Project: c.project})
	return nil
}

func (c *AddWorkPackage) Undo() error {
	if err := c.canUndo(); err != nil {
		return err
	}
	if _, err := c.t.require(c.project); err != nil {
		return err
	}
	removed, _, err := c.t.tree.RemoveWorkPackage(c.project, c.wp.Seq)
	if err != nil {
		return fmt.Errorf("%w: %w", plan.ErrInconsistentState, err)
	}
	c.wp = removed
	c.executed = false
	c.t.publish(bus.WorkPackagesChanged{Project: c.project})
	return nil
}

func (c *AddWorkPackage) Description() string {
	return fmt.Sprintf("Add Work Package '%s'", c.name)
}

// DeleteWorkPackage removes a work package, remembering its position.
type DeleteWorkPackage struct {
	state
	t       target
	project plan.NodeID
	seq     int
	wp      plan.WorkPackage
	index   int
}

func NewDeleteWorkPackage(tree *plan.Tree, b *bus.Bus, project plan.NodeID, seq int) *DeleteWorkPackage {
	return &DeleteWorkPackage{t: target{tree, b}, project: project, seq: seq, index: -1}
}

func (c *DeleteWorkPackage) Execute() error {
	if err := c.canExecute(); err != nil {
		return err
	}
	if _, err := c.t.require(c.project); err != nil {
		return err
	}
	wp, index, err := c.t.tree.RemoveWorkPackage(c.project, c.seq)
	if err != nil {
		return err
	}
	c.wp, c.index = wp, index
	c.executed = true
	c.t.publish(bus.WorkPackagesChanged{Project: c.project})
	return nil
}

func (c *DeleteWorkPackage) Undo() error {
	if err := c.canUndo(); err != nil {
		return err
	}
	if _, err := c.t.require(c.project); err != nil {
		return err
	}
	wps, err := c.t.tree.WorkPackages(c.project)
	if err != nil {
		return err
	}
	if c.index > len(wps) {
		return fmt.Errorf("%w: project %s has %d work packages, cannot restore at %d",
			plan.ErrInconsistentState, c.project, len(wps), c.index)
	}
	if _, err := c.t.tree.InsertWorkPackage(c.project, c.wp, c.index); err != nil {
		return fmt.Errorf("%w: %w", plan.ErrInconsistentState, err)
	}
	c.executed = false
	c.t.publish(bus.WorkPackagesChanged{Project: c.project})
	return nil
}

func (c *DeleteWorkPackage) Description() string {
	if c.wp.Name != "" {
		return fmt.Sprintf("Delete Work Package '%s'", c.wp.Name)
	}
	return fmt.Sprintf("Delete Work Package %d", c.seq)
}

// RenameWorkPackage changes a work package's name.
type RenameWorkPackage struct {
	state
	t       target
	project plan.NodeID
	seq     int
	name    string
	oldName string
}

func NewRenameWorkPackage(tree *plan.Tree, b *bus.Bus, project plan.NodeID, seq int, name string) *RenameWorkPackage {
	return &RenameWorkPackage{t: target{tree, b}, project: project, seq: seq, name: name}
}

func (c *RenameWorkPackage) Execute() error {
	if err := c.canExecute(); err != nil {
		return err
	}
	if _, err := c.t.require(c.project); err != nil {
		return err
	}
	old, err := c.t.tree.RenameWorkPackage(c.project, c.seq, c.name)
	if err != nil {
		return err
	}
	c.oldName = old
	c.executed = true
	c.t.publish(bus.WorkPackagesChanged{Project: c.project})
	return nil
}

func (c *RenameWorkPackage) Undo() error {
	if err := c.canUndo(); err != nil {
		return err
	}
	if _, err := c.t.require(c.project); err != nil {
		return err
	}
	if _, err := c.t.tree.RenameWorkPackage(c.project, c.seq, c.oldName); err != nil {
		return fmt.Errorf("%w: %w", plan.ErrInconsistentState, err)
	}
	c.executed = false
	c.t.publish(bus.WorkPackagesChanged{Project: c.project})
	return nil
}

func (c *RenameWorkPackage) Description() string {
	return fmt.Sprintf("Rename Work Package to '%s'", c.name)
}

// AssignWorkPackage moves a feature into a work package of its project. A
// seq of 0 unassigns it.
type AssignWorkPackage struct {
	state
	t        target
	feature  plan.NodeID
	seq      int
	project  plan.NodeID
	snapshot []plan.WorkPackage
}

func NewAssignWorkPackage(tree *plan.Tree, b *bus.Bus, feature plan.NodeID, seq int) *AssignWorkPackage {
	return &AssignWorkPackage{t: target{tree, b}, feature: feature, seq: seq}
}

func (c *AssignWorkPackage) Execute() error {
	if err := c.canExecute(); err != nil {
		return err
	}
	if _, err := c.t.require(c.feature); err != nil {
		return err
	}
	project, ok := c.t.tree.ProjectOf(c.feature)
	if !ok {
		return fmt.Errorf("%w: %s is not inside a project", plan.ErrWorkPackageNotFound, c.feature)
	}
	snapshot, err := c.t.tree.WorkPackages(project)
	if err != nil {
		return err
	}
	if _, err := c.t.tree.AssignFeature(c.feature, c.seq); err != nil {
		return err
	}
	c.project, c.snapshot = project, snapshot
	c.executed = true
	c.t.publish(bus.WorkPackagesChanged{Project: project})
	return nil
}

func (c *AssignWorkPackage) Undo() error {
	if err := c.canUndo(); err != nil {
		return err
	}
	if _, err := c.t.require(c.project); err != nil {
		return err
	}
	if got := c.t.tree.WorkPackageOf(c.feature); got != c.seq {
		return fmt.Errorf("%w: feature %s is in work package %d, expected %d",
			plan.ErrInconsistentState, c.feature, got, c.seq)
	}
	if _, err := c.t.tree.SetWorkPackages(c.project, c.snapshot); err != nil {
		return err
	}
	c.executed = false
	c.t.publish(bus.WorkPackagesChanged{Project: c.project})
	return nil
}

func (c *AssignWorkPackage) Description() string {
	if c.seq == 0 {
		return fmt.Sprintf("Unassign '%s'", c.t.name(c.feature))
	}
	return fmt.Sprintf("Assign '%s' to Work Package %d", c.t.name(c.feature), c.seq)
}
