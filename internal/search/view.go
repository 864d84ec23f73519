package search

import (
	"maps"
	"slices"

	"github.com/adriangreen/fddplan/internal/plan"
)

// MemoryView is a View that only records state. The CLI renders from it.
type MemoryView struct {
	expanded    map[plan.NodeID]bool
	highlighted map[plan.NodeID]bool
	selected    plan.NodeID
	focused     bool
}

// NewMemoryView returns a view with the given rows already expanded.
func NewMemoryView(expanded ...plan.NodeID) *MemoryView {
	v := &MemoryView{
		expanded:    make(map[plan.NodeID]bool),
		highlighted: make(map[plan.NodeID]bool),
	}
	for _, id := range expanded {
		v.expanded[id] = true
	}
	return v
}

func (v *MemoryView) IsExpanded(id plan.NodeID) bool { return v.expanded[id] }

func (v *MemoryView) SetExpanded(id plan.NodeID, expanded bool) {
	if expanded {
		v.expanded[id] = true
	} else {
		delete(v.expanded, id)
	}
}

func (v *MemoryView) SetHighlighted(ids []plan.NodeID) {
	clear(v.highlighted)
	for _, id := range ids {
		v.highlighted[id] = true
	}
}

func (v *MemoryView) Select(id plan.NodeID, focus bool) {
	v.selected, v.focused = id, focus
}

func (v *MemoryView) IsHighlighted(id plan.NodeID) bool { return v.highlighted[id] }

// Selected returns the selected node and whether focus was requested.
func (v *MemoryView) Selected() (plan.NodeID, bool) { return v.selected, v.focused }

// Expanded returns the expanded rows in no particular order.
func (v *MemoryView) Expanded() []plan.NodeID {
	return slices.Collect(maps.Keys(v.expanded))
}
