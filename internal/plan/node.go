package plan

import "time"

// Node is one element of the plan hierarchy. Nodes are owned by a Tree (or a
// detached Fragment) and refer to each other by id only.
type Node struct {
	id       NodeID
	kind     Kind
	name     string
	parent   NodeID
	children []NodeID

	// derived state, kept current by the propagation engine
	completion int
	target     time.Time
	hasTarget  bool

	// per-variant payload
	seq           int             // feature
	initials      string          // feature, activity
	prefix        string          // subject
	milestones    []Milestone     // feature
	milestoneInfo []MilestoneInfo // aspect
	workPackages  []WorkPackage   // project
}

func (n *Node) ID() NodeID   { return n.id }
func (n *Node) Kind() Kind   { return n.kind }
func (n *Node) Name() string { return n.name }

// Parent returns the parent id and false for a root or detached node.
func (n *Node) Parent() (NodeID, bool) {
	return n.parent, n.parent != ""
}

// Children returns a copy of the ordered child ids.
func (n *Node) Children() []NodeID {
	return append([]NodeID(nil), n.children...)
}

// ChildCount returns the number of direct children.
func (n *Node) ChildCount() int {
	return len(n.children)
}

// Completion is the derived completion percentage in [0,100].
func (n *Node) Completion() int { return n.completion }

// TargetDate returns the derived target date; ok is false when no date is known.
func (n *Node) TargetDate() (time.Time, bool) {
	return n.target, n.hasTarget
}

// IsLeaf reports whether the node derives state from milestones.
func (n *Node) IsLeaf() bool { return n.kind.IsLeaf() }

// Seq is the feature sequence number, 0 for other kinds.
func (n *Node) Seq() int { return n.seq }

func (n *Node) Initials() string { return n.initials }
func (n *Node) Prefix() string   { return n.prefix }

// Milestones returns a copy of a feature's milestones.
func (n *Node) Milestones() []Milestone {
	return append([]Milestone(nil), n.milestones...)
}

// MilestoneInfo returns a copy of an aspect's milestone definitions.
func (n *Node) MilestoneInfo() []MilestoneInfo {
	return append([]MilestoneInfo(nil), n.milestoneInfo...)
}

// WorkPackages returns a copy of a project's work packages.
func (n *Node) WorkPackages() []WorkPackage {
	out := make([]WorkPackage, len(n.workPackages))
	for i, wp := range n.workPackages {
		out[i] = wp.clone()
	}
	return out
}

func (n *Node) indexOf(child NodeID) int {
	for i, id := range n.children {
		if id == child {
			return i
		}
	}
	return -1
}

func (n *Node) insertChild(child NodeID, index int) int {
	if index < 0 || index > len(n.children) {
		index = len(n.children)
	}
	n.children = append(n.children, "")
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child
	return index
}

func (n *Node) removeChildAt(index int) {
	n.children = append(n.children[:index], n.children[index+1:]...)
}

// copyNode duplicates the record, deep-copying slices so the copy can be
// mutated independently.
func (n *Node) copyNode() *Node {
	c := *n
	c.children = append([]NodeID(nil), n.children...)
	c.milestones = append([]Milestone(nil), n.milestones...)
	c.milestoneInfo = append([]MilestoneInfo(nil), n.milestoneInfo...)
	c.workPackages = nil
	for _, wp := range n.workPackages {
		c.workPackages = append(c.workPackages, wp.clone())
	}
	return &c
}
