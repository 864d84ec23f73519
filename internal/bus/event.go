// Package bus delivers change notifications synchronously to subscribers.
package bus

import "github.com/adriangreen/fddplan/internal/plan"

// Event is one of the change notifications below. The set is closed.
type Event interface {
	event()
}

// NodeAdded reports that Node was attached under Parent.
type NodeAdded struct {
	Parent plan.NodeID
	Node   plan.NodeID
}

// NodeRemoved reports that Node was detached from Parent. Node is no longer
// in the tree when this is delivered.
type NodeRemoved struct {
	Parent plan.NodeID
	Node   plan.NodeID
}

// NodeUpdated reports that Node's own fields changed.
type NodeUpdated struct {
	Node plan.NodeID
}

// ProjectReplaced reports that the whole tree was swapped, e.g. on reload.
type ProjectReplaced struct {
	OldRoot *plan.Tree
	NewRoot *plan.Tree
}

// WorkPackagesChanged reports an edit to a project's work packages.
type WorkPackagesChanged struct {
	Project plan.NodeID
}

func (NodeAdded) event()           {}
func (NodeRemoved) event()         {}
func (NodeUpdated) event()         {}
func (ProjectReplaced) event()     {}
func (WorkPackagesChanged) event() {}
