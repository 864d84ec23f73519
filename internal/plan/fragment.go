package plan

import (
	"fmt"
	"strings"
)

// Fragment is a detached subtree: nodes that are not part of any tree yet
// (or any more). Fragments are built by callers, produced by Detach and
// Clone, and consumed by Attach.
type Fragment struct {
	root  NodeID
	nodes map[NodeID]*Node
}

// NewFragment starts a fragment with a single node.
func NewFragment(kind Kind, name string) (*Fragment, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("unknown node kind %q", kind)
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidName
	}
	id := newID()
	return &Fragment{
		root:  id,
		nodes: map[NodeID]*Node{id: {id: id, kind: kind, name: name}},
	}, nil
}

// Root returns the id of the fragment's top node.
func (f *Fragment) Root() NodeID { return f.root }

// Consumed reports whether the fragment has been attached to a tree.
func (f *Fragment) Consumed() bool { return f.nodes == nil }

// Len returns the number of nodes held by the fragment.
func (f *Fragment) Len() int { return len(f.nodes) }

// Node looks up a node held by the fragment.
func (f *Fragment) Node(id NodeID) (*Node, bool) {
	n, ok := f.nodes[id]
	return n, ok
}

// Add appends a new child under parent inside the fragment.
func (f *Fragment) Add(parent NodeID, kind Kind, name string) (NodeID, error) {
	if f.nodes == nil {
		return "", fmt.Errorf("%w: fragment already consumed", ErrInconsistentState)
	}
	p, ok := f.nodes[parent]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNodeNotFound, parent)
	}
	if !Accepts(p.kind, kind) {
		return "", fmt.Errorf("%w: %s under %s", ErrHierarchyRejected, kind, p.kind)
	}
	if strings.TrimSpace(name) == "" {
		return "", ErrInvalidName
	}
	id := newID()
	f.nodes[id] = &Node{id: id, kind: kind, name: name, parent: parent}
	p.children = append(p.children, id)
	return id, nil
}

// SetMilestones sets the milestones of a feature inside the fragment.
func (f *Fragment) SetMilestones(id NodeID, ms []Milestone) error {
	n, ok := f.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	if n.kind != KindFeature {
		return fmt.Errorf("%w: milestones on %s", ErrWrongKind, n.kind)
	}
	n.milestones = append([]Milestone(nil), ms...)
	return nil
}

// SetMilestoneInfo sets the milestone definitions of an aspect inside the fragment.
func (f *Fragment) SetMilestoneInfo(id NodeID, infos []MilestoneInfo) error {
	n, ok := f.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	if n.kind != KindAspect {
		return fmt.Errorf("%w: milestone info on %s", ErrWrongKind, n.kind)
	}
	n.milestoneInfo = append([]MilestoneInfo(nil), infos...)
	return nil
}
