package plan

import (
	"fmt"
	"slices"
	"strings"
)

func (t *Tree) project(id NodeID) (*Node, error) {
	n, err := t.lookup(id)
	if err != nil {
		return nil, err
	}
	if n.kind != KindProject {
		return nil, fmt.Errorf("%w: work packages on %s", ErrWrongKind, n.kind)
	}
	return n, nil
}

func (n *Node) workPackageIndex(seq int) int {
	for i, wp := range n.workPackages {
		if wp.Seq == seq {
			return i
		}
	}
	return -1
}

// WorkPackages returns a copy of a project's work packages.
func (t *Tree) WorkPackages(project NodeID) ([]WorkPackage, error) {
	p, err := t.project(project)
	if err != nil {
		return nil, err
	}
	return p.WorkPackages(), nil
}

// NewWorkPackage creates a work package numbered from the tree's sequence.
// It is not attached to any project.
func (t *Tree) NewWorkPackage(name string) (WorkPackage, error) {
	if strings.TrimSpace(name) == "" {
		return WorkPackage{}, ErrInvalidName
	}
	return WorkPackage{Seq: t.workPackageSeq.Next(), Name: name}, nil
}

// InsertWorkPackage inserts wp into a project's list at index (appending when
// out of range) and returns the index used.
func (t *Tree) InsertWorkPackage(project NodeID, wp WorkPackage, index int) (int, error) {
	p, err := t.project(project)
	if err != nil {
		return -1, err
	}
	if p.workPackageIndex(wp.Seq) >= 0 {
		return -1, fmt.Errorf("%w: work package %d", ErrAlreadyAttached, wp.Seq)
	}
	if index < 0 || index > len(p.workPackages) {
		index = len(p.workPackages)
	}
	t.workPackageSeq.Observe(wp.Seq)
	p.workPackages = slices.Insert(p.workPackages, index, wp.clone())
	return index, nil
}

// RemoveWorkPackage removes the work package with seq and returns it with
// its former index.
func (t *Tree) RemoveWorkPackage(project NodeID, seq int) (WorkPackage, int, error) {
	p, err := t.project(project)
	if err != nil {
		return WorkPackage{}, -1, err
	}
	i := p.workPackageIndex(seq)
	if i < 0 {
		return WorkPackage{}, -1, fmt.Errorf("%w: %d", ErrWorkPackageNotFound, seq)
	}
	wp := p.workPackages[i]
	p.workPackages = slices.Delete(p.workPackages, i, i+1)
	return wp, i, nil
}

// RenameWorkPackage sets a work package's name and returns the previous one.
func (t *Tree) RenameWorkPackage(project NodeID, seq int, name string) (string, error) {
	p, err := t.project(project)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(name) == "" {
		return "", ErrInvalidName
	}
	i := p.workPackageIndex(seq)
	if i < 0 {
		return "", fmt.Errorf("%w: %d", ErrWorkPackageNotFound, seq)
	}
	old := p.workPackages[i].Name
	p.workPackages[i].Name = name
	return old, nil
}

// ProjectOf returns the project a node belongs to.
func (t *Tree) ProjectOf(id NodeID) (NodeID, bool) {
	n, ok := t.nodes[id]
	if ok && n.kind == KindProject {
		return id, true
	}
	for _, a := range t.Ancestors(id) {
		if t.nodes[a].kind == KindProject {
			return a, true
		}
	}
	return "", false
}

// AssignFeature moves a feature into the work package with seq, removing it
// from whichever package of the same project held it. A seq of 0 leaves the
// feature unassigned. It returns the seq of the previous package, 0 if none.
func (t *Tree) AssignFeature(feature NodeID, seq int) (int, error) {
	f, err := t.lookup(feature)
	if err != nil {
		return 0, err
	}
	if f.kind != KindFeature {
		return 0, fmt.Errorf("%w: work package assignment on %s", ErrWrongKind, f.kind)
	}
	pid, ok := t.ProjectOf(feature)
	if !ok {
		return 0, fmt.Errorf("%w: %s is not inside a project", ErrWorkPackageNotFound, feature)
	}
	p := t.nodes[pid]
	target := -1
	if seq != 0 {
		if target = p.workPackageIndex(seq); target < 0 {
			return 0, fmt.Errorf("%w: %d", ErrWorkPackageNotFound, seq)
		}
	}

	prev := 0
	for i := range p.workPackages {
		wp := &p.workPackages[i]
		if j := slices.Index(wp.Features, f.seq); j >= 0 {
			if prev == 0 {
				prev = wp.Seq
			}
			wp.Features = slices.Delete(wp.Features, j, j+1)
		}
	}
	if target >= 0 {
		p.workPackages[target].Features = append(p.workPackages[target].Features, f.seq)
	}
	return prev, nil
}

// WorkPackageOf returns the seq of the work package holding a feature, 0 if
// it is unassigned.
func (t *Tree) WorkPackageOf(feature NodeID) int {
	f, ok := t.nodes[feature]
	if !ok || f.kind != KindFeature {
		return 0
	}
	pid, ok := t.ProjectOf(feature)
	if !ok {
		return 0
	}
	for _, wp := range t.nodes[pid].workPackages {
		if slices.Contains(wp.Features, f.seq) {
			return wp.Seq
		}
	}
	return 0
}

// SetWorkPackages replaces a project's whole work package list and returns
// the previous one.
func (t *Tree) SetWorkPackages(project NodeID, wps []WorkPackage) ([]WorkPackage, error) {
	p, err := t.project(project)
	if err != nil {
		return nil, err
	}
	old := p.workPackages
	p.workPackages = nil
	for _, wp := range wps {
		t.workPackageSeq.Observe(wp.Seq)
		p.workPackages = append(p.workPackages, wp.clone())
	}
	return old, nil
}
