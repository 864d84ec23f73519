package plan

import (
	"fmt"
	"time"
)

// NodeID identifies a node within one loaded tree.
type NodeID string

// Kind is the variant tag of a node.
type Kind string

// Node kinds, outermost first.
const (
	KindProgram  Kind = "program"
	KindProject  Kind = "project"
	KindAspect   Kind = "aspect"
	KindSubject  Kind = "subject"
	KindActivity Kind = "activity"
	KindFeature  Kind = "feature"
)

// IsValid reports whether k is one of the defined kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindProgram, KindProject, KindAspect, KindSubject, KindActivity, KindFeature:
		return true
	default:
		return false
	}
}

// IsLeaf reports whether nodes of this kind derive their state from
// milestones rather than from children.
func (k Kind) IsLeaf() bool {
	return k == KindFeature
}

// Accepts reports whether a node of kind parent may hold a child of kind child.
func Accepts(parent, child Kind) bool {
	switch parent {
	case KindProgram:
		return child == KindProgram || child == KindProject
	case KindProject:
		return child == KindAspect
	case KindAspect:
		return child == KindSubject
	case KindSubject:
		return child == KindActivity
	case KindActivity:
		return child == KindFeature
	default:
		return false
	}
}

// Status is the state of a single feature milestone.
type Status string

// Milestone statuses
const (
	StatusNotStarted Status = "notstarted"
	StatusUnderway   Status = "underway"
	StatusAttention  Status = "attention"
	StatusComplete   Status = "complete"
)

// IsValid checks if the status is one of the defined constants
func (s Status) IsValid() bool {
	switch s {
	case StatusNotStarted, StatusUnderway, StatusAttention, StatusComplete, "":
		return true
	default:
		return false
	}
}

// Milestone is one step of a feature's delivery.
type Milestone struct {
	Name    string
	Planned time.Time
	Actual  time.Time
	Status  Status
}

// HasPlanned reports whether a planned date was recorded.
func (m Milestone) HasPlanned() bool {
	return !m.Planned.IsZero()
}

// IsComplete returns true if the milestone is marked complete
func (m Milestone) IsComplete() bool {
	return m.Status == StatusComplete
}

// MilestoneInfo describes a milestone column of an aspect and its share of
// a feature's completion.
type MilestoneInfo struct {
	Name   string
	Effort int
}

// WorkPackage is a named, numbered group of features attached to a project.
type WorkPackage struct {
	Seq      int
	Name     string
	Features []int
}

func (wp WorkPackage) clone() WorkPackage {
	wp.Features = append([]int(nil), wp.Features...)
	return wp
}

// ValidationWarning represents a non-fatal issue found while building a tree.
type ValidationWarning struct {
	NodeID  NodeID
	Message string
}

func (w ValidationWarning) String() string {
	return fmt.Sprintf("Node %s: %s", w.NodeID, w.Message)
}

// Sequence hands out increasing sequence numbers. Each tree owns one per
// numbered entity so independent trees never share counters.
type Sequence struct {
	next int
}

// NewSequence returns a sequence whose first value is start.
func NewSequence(start int) *Sequence {
	if start < 1 {
		start = 1
	}
	return &Sequence{next: start}
}

// Next returns the next value and advances the sequence.
func (s *Sequence) Next() int {
	v := s.next
	s.next++
	return v
}

// Peek returns the value Next would return.
func (s *Sequence) Peek() int {
	return s.next
}

// Observe makes sure values at or below n are never handed out again.
func (s *Sequence) Observe(n int) {
	if n >= s.next {
		s.next = n + 1
	}
}
