package plan

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Tree is the arena that owns every attached node of a plan. Parent and
// child relations are id lookups into the arena, so detaching or
// reattaching a subtree is a pure relation edit.
//
// A Tree is not safe for concurrent use; callers serialize access.
type Tree struct {
	root  NodeID
	nodes map[NodeID]*Node

	featureSeq     *Sequence
	workPackageSeq *Sequence
}

// NewTree creates a tree holding only a root node of the given kind. The
// root is the one node allowed to have an empty name.
func NewTree(kind Kind, name string) *Tree {
	id := newID()
	return &Tree{
		root:           id,
		nodes:          map[NodeID]*Node{id: {id: id, kind: kind, name: name}},
		featureSeq:     NewSequence(1),
		workPackageSeq: NewSequence(1),
	}
}

func newID() NodeID {
	return NodeID(uuid.NewString())
}

// Root returns the root id.
func (t *Tree) Root() NodeID { return t.root }

// RootNode returns the root node.
func (t *Tree) RootNode() *Node { return t.nodes[t.root] }

// Node looks up an attached node by id.
func (t *Tree) Node(id NodeID) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Contains reports whether id is attached to this tree.
func (t *Tree) Contains(id NodeID) bool {
	_, ok := t.nodes[id]
	return ok
}

// Len returns the number of attached nodes, root included.
func (t *Tree) Len() int { return len(t.nodes) }

// FeatureSeq is the sequence used to number new features.
func (t *Tree) FeatureSeq() *Sequence { return t.featureSeq }

// WorkPackageSeq is the sequence used to number new work packages.
func (t *Tree) WorkPackageSeq() *Sequence { return t.workPackageSeq }

func (t *Tree) lookup(id NodeID) (*Node, error) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	return n, nil
}

// Walk visits the tree depth-first in preorder starting at the root. When fn
// returns false the children of that node are skipped.
func (t *Tree) Walk(fn func(n *Node, depth int) bool) {
	t.WalkFrom(t.root, fn)
}

// WalkFrom is Walk anchored at an arbitrary attached node.
func (t *Tree) WalkFrom(id NodeID, fn func(n *Node, depth int) bool) {
	var visit func(id NodeID, depth int)
	visit = func(id NodeID, depth int) {
		n, ok := t.nodes[id]
		if !ok {
			return
		}
		if !fn(n, depth) {
			return
		}
		for _, child := range n.children {
			visit(child, depth+1)
		}
	}
	visit(id, 0)
}

// Ancestors returns the ids from the node's parent up to the root.
func (t *Tree) Ancestors(id NodeID) []NodeID {
	var out []NodeID
	n, ok := t.nodes[id]
	for ok && n.parent != "" {
		out = append(out, n.parent)
		n, ok = t.nodes[n.parent]
	}
	return out
}

// IsDescendant reports whether ancestor appears on id's parent chain.
func (t *Tree) IsDescendant(id, ancestor NodeID) bool {
	for _, a := range t.Ancestors(id) {
		if a == ancestor {
			return true
		}
	}
	return false
}

// Path returns node names from the root down to id, skipping unnamed nodes.
func (t *Tree) Path(id NodeID) []string {
	if _, ok := t.nodes[id]; !ok {
		return nil
	}
	chain := append([]NodeID{id}, t.Ancestors(id)...)
	path := make([]string, 0, len(chain))
	for i := len(chain) - 1; i >= 0; i-- {
		if name := t.nodes[chain[i]].name; name != "" {
			path = append(path, name)
		}
	}
	return path
}

// Features returns every feature below id in preorder.
func (t *Tree) Features(id NodeID) []*Node {
	var out []*Node
	t.WalkFrom(id, func(n *Node, depth int) bool {
		if depth > 0 && n.kind == KindFeature {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Attach inserts a detached fragment under parent at index (appending when
// index is out of range) and brings derived state up to date. The fragment
// is consumed. It returns the index actually used.
func (t *Tree) Attach(parent NodeID, f *Fragment, index int) (int, error) {
	p, err := t.lookup(parent)
	if err != nil {
		return -1, err
	}
	if f == nil || f.nodes == nil {
		return -1, fmt.Errorf("%w: fragment already consumed", ErrInconsistentState)
	}
	root := f.nodes[f.root]
	if !Accepts(p.kind, root.kind) {
		return -1, fmt.Errorf("%w: %s under %s", ErrHierarchyRejected, root.kind, p.kind)
	}
	for id := range f.nodes {
		if _, exists := t.nodes[id]; exists {
			return -1, fmt.Errorf("%w: %s", ErrAlreadyAttached, id)
		}
	}

	for id, n := range f.nodes {
		if n.kind == KindFeature {
			if n.seq == 0 {
				n.seq = t.featureSeq.Next()
			} else {
				t.featureSeq.Observe(n.seq)
			}
		}
		t.nodes[id] = n
	}
	root.parent = parent
	used := p.insertChild(root.id, index)
	f.nodes = nil

	t.recomputeSubtree(root.id)
	t.Recompute(parent)
	return used, nil
}

// Detach removes the subtree rooted at id from the arena and returns it as a
// fragment together with the former parent and index.
func (t *Tree) Detach(id NodeID) (*Fragment, NodeID, int, error) {
	n, err := t.lookup(id)
	if err != nil {
		return nil, "", -1, err
	}
	if id == t.root {
		return nil, "", -1, fmt.Errorf("%w: cannot detach the root", ErrHierarchyRejected)
	}
	parent, ok := t.nodes[n.parent]
	if !ok {
		return nil, "", -1, fmt.Errorf("%w: %s has no parent", ErrNotAttached, id)
	}
	index := parent.indexOf(id)
	if index < 0 {
		return nil, "", -1, fmt.Errorf("%w: %s missing from parent %s", ErrInconsistentState, id, parent.id)
	}

	parent.removeChildAt(index)
	n.parent = ""
	f := &Fragment{root: id, nodes: make(map[NodeID]*Node)}
	t.collect(id, f.nodes)
	for sub := range f.nodes {
		delete(t.nodes, sub)
	}

	t.Recompute(parent.id)
	return f, parent.id, index, nil
}

func (t *Tree) collect(id NodeID, into map[NodeID]*Node) {
	n, ok := t.nodes[id]
	if !ok {
		return
	}
	into[id] = n
	for _, child := range n.children {
		t.collect(child, into)
	}
}

// Move reparents id under newParent at index, measured after the node has
// been removed from its current parent. All checks run before any mutation,
// so a rejected move leaves the tree untouched.
func (t *Tree) Move(id, newParent NodeID, index int) (NodeID, int, error) {
	n, err := t.lookup(id)
	if err != nil {
		return "", -1, err
	}
	target, err := t.lookup(newParent)
	if err != nil {
		return "", -1, err
	}
	if id == newParent || t.IsDescendant(newParent, id) {
		return "", -1, fmt.Errorf("%w: %s under %s", ErrCycleRejected, id, newParent)
	}
	if id == t.root {
		return "", -1, fmt.Errorf("%w: cannot move the root", ErrHierarchyRejected)
	}
	if !Accepts(target.kind, n.kind) {
		return "", -1, fmt.Errorf("%w: %s under %s", ErrHierarchyRejected, n.kind, target.kind)
	}
	old, ok := t.nodes[n.parent]
	if !ok {
		return "", -1, fmt.Errorf("%w: %s has no parent", ErrNotAttached, id)
	}
	oldIndex := old.indexOf(id)
	if oldIndex < 0 {
		return "", -1, fmt.Errorf("%w: %s missing from parent %s", ErrInconsistentState, id, old.id)
	}

	old.removeChildAt(oldIndex)
	n.parent = newParent
	target.insertChild(id, index)

	// A feature's completion depends on the aspect above it, so the moved
	// subtree is rederived before both chains.
	t.recomputeSubtree(id)
	t.Recompute(newParent)
	if old.id != newParent {
		t.Recompute(old.id)
	}
	return old.id, oldIndex, nil
}

// Rename sets the display name and returns the previous one.
func (t *Tree) Rename(id NodeID, name string) (string, error) {
	n, err := t.lookup(id)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(name) == "" && id != t.root {
		return "", fmt.Errorf("%w: %s", ErrInvalidName, id)
	}
	old := n.name
	n.name = name
	return old, nil
}

// SetMilestones replaces a feature's milestones, rederives it and its
// ancestors, and returns the previous milestones.
func (t *Tree) SetMilestones(id NodeID, ms []Milestone) ([]Milestone, error) {
	n, err := t.lookup(id)
	if err != nil {
		return nil, err
	}
	if n.kind != KindFeature {
		return nil, fmt.Errorf("%w: milestones on %s", ErrWrongKind, n.kind)
	}
	old := n.milestones
	n.milestones = append([]Milestone(nil), ms...)
	t.Recompute(id)
	return old, nil
}

// SetMilestoneInfo replaces an aspect's milestone definitions and rederives
// every feature beneath it.
func (t *Tree) SetMilestoneInfo(id NodeID, infos []MilestoneInfo) ([]MilestoneInfo, error) {
	n, err := t.lookup(id)
	if err != nil {
		return nil, err
	}
	if n.kind != KindAspect {
		return nil, fmt.Errorf("%w: milestone info on %s", ErrWrongKind, n.kind)
	}
	old := n.milestoneInfo
	n.milestoneInfo = append([]MilestoneInfo(nil), infos...)
	t.recomputeSubtree(id)
	if n.parent != "" {
		t.Recompute(n.parent)
	}
	return old, nil
}

// SetInitials sets the owner initials of an activity or feature.
func (t *Tree) SetInitials(id NodeID, initials string) (string, error) {
	n, err := t.lookup(id)
	if err != nil {
		return "", err
	}
	if n.kind != KindActivity && n.kind != KindFeature {
		return "", fmt.Errorf("%w: initials on %s", ErrWrongKind, n.kind)
	}
	old := n.initials
	n.initials = initials
	return old, nil
}

// SetPrefix sets a subject's prefix.
func (t *Tree) SetPrefix(id NodeID, prefix string) (string, error) {
	n, err := t.lookup(id)
	if err != nil {
		return "", err
	}
	if n.kind != KindSubject {
		return "", fmt.Errorf("%w: prefix on %s", ErrWrongKind, n.kind)
	}
	old := n.prefix
	n.prefix = prefix
	return old, nil
}

// Clone copies the subtree rooted at id into a new fragment with fresh ids.
// When resequence is true copied features get new sequence numbers on attach.
func (t *Tree) Clone(id NodeID, resequence bool) (*Fragment, error) {
	if _, err := t.lookup(id); err != nil {
		return nil, err
	}
	f := &Fragment{nodes: make(map[NodeID]*Node)}
	var copyNode func(id, parent NodeID) NodeID
	copyNode = func(id, parent NodeID) NodeID {
		src := t.nodes[id]
		c := src.copyNode()
		c.id = newID()
		c.parent = parent
		if resequence {
			c.seq = 0
		}
		c.children = c.children[:0]
		for _, child := range src.children {
			c.children = append(c.children, copyNode(child, c.id))
		}
		f.nodes[c.id] = c
		return c.id
	}
	f.root = copyNode(id, "")
	return f, nil
}

// IsLate reports whether a node is behind schedule at now. A feature is late
// when any planned milestone has passed without completing; other nodes
// when their target date has passed before reaching 100%.
func (t *Tree) IsLate(id NodeID, now time.Time) bool {
	n, ok := t.nodes[id]
	if !ok {
		return false
	}
	if n.kind == KindFeature {
		for _, m := range n.milestones {
			if m.HasPlanned() && m.Planned.Before(now) && !m.IsComplete() {
				return true
			}
		}
		return false
	}
	return n.hasTarget && n.completion != 100 && n.target.Before(now)
}
