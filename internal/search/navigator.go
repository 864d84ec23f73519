package search

import (
	"slices"
	"strings"

	"github.com/adriangreen/fddplan/internal/bus"
	"github.com/adriangreen/fddplan/internal/debug"
	"github.com/adriangreen/fddplan/internal/plan"
)

// View is what the navigator drives: a tree presentation with expandable
// rows, a highlight set and a selection.
type View interface {
	IsExpanded(id plan.NodeID) bool
	SetExpanded(id plan.NodeID, expanded bool)
	// SetHighlighted replaces the highlighted set; nil clears it.
	SetHighlighted(ids []plan.NodeID)
	// Select moves the selection to id. focus is true only for explicit
	// navigation, never while a query is being typed.
	Select(id plan.NodeID, focus bool)
}

// Listener is told about result changes. All methods are optional in the
// sense that a nil Listener is allowed.
type Listener interface {
	OnResults(query string, matches []Match)
	OnCurrentChanged(index, total int)
	OnCleared()
}

type nopView struct{}

func (nopView) IsExpanded(plan.NodeID) bool   { return true }
func (nopView) SetExpanded(plan.NodeID, bool) {}
func (nopView) SetHighlighted([]plan.NodeID)  {}
func (nopView) Select(plan.NodeID, bool)      {}

// Navigator holds the current query, its ranked matches and a cursor, and
// keeps the view's expansion, highlight and selection in line with them.
// It is not safe for concurrent use.
type Navigator struct {
	tree     *plan.Tree
	view     View
	listener Listener

	query   string
	matches []Match
	cursor  int

	// ancestors this navigator expanded, in expansion order
	expanded []plan.NodeID

	sub *bus.Subscription
}

// NewNavigator creates a navigator over tree driving view. A nil view is
// allowed.
func NewNavigator(tree *plan.Tree, view View) *Navigator {
	if view == nil {
		view = nopView{}
	}
	return &Navigator{tree: tree, view: view, cursor: -1}
}

// SetListener installs the result listener.
func (n *Navigator) SetListener(l Listener) {
	n.listener = l
}

func (n *Navigator) Query() string { return n.query }

// Cursor is the index of the current match, -1 when there is none.
func (n *Navigator) Cursor() int { return n.cursor }

// Matches returns a copy of the current ranked matches.
func (n *Navigator) Matches() []Match {
	return slices.Clone(n.matches)
}

// Current returns the match under the cursor.
func (n *Navigator) Current() (Match, bool) {
	if n.cursor < 0 || n.cursor >= len(n.matches) {
		return Match{}, false
	}
	return n.matches[n.cursor], true
}

// AutoExpanded returns the nodes this navigator expanded that are still in
// the tree.
func (n *Navigator) AutoExpanded() []plan.NodeID {
	return slices.DeleteFunc(slices.Clone(n.expanded), func(id plan.NodeID) bool {
		return !n.tree.Contains(id)
	})
}

// Search replaces the result set with the matches for query, highlights
// them, expands their ancestors and selects the best one without taking
// focus. It returns the number of matches.
func (n *Navigator) Search(query string) int {
	n.collapse()
	n.view.SetHighlighted(nil)

	q := strings.TrimSpace(query)
	if q == "" {
		n.reset()
		return 0
	}
	n.query = q
	n.matches = Search(n.tree, q)
	n.cursor = -1
	if len(n.matches) > 0 {
		n.cursor = 0
	}
	n.apply()
	if m, ok := n.Current(); ok {
		n.view.Select(m.Node, false)
	}
	n.notifyResults()
	return len(n.matches)
}

// Next moves to the following match, wrapping to the first. It reports
// false when there are no matches.
func (n *Navigator) Next() bool {
	if len(n.matches) == 0 {
		return false
	}
	n.cursor = (n.cursor + 1) % len(n.matches)
	n.navigate()
	return true
}

// Previous moves to the preceding match, wrapping to the last.
func (n *Navigator) Previous() bool {
	if len(n.matches) == 0 {
		return false
	}
	if n.cursor <= 0 {
		n.cursor = len(n.matches) - 1
	} else {
		n.cursor--
	}
	n.navigate()
	return true
}

// Clear drops the search, removing highlights and collapsing only the rows
// the navigator itself expanded.
func (n *Navigator) Clear() {
	n.collapse()
	n.view.SetHighlighted(nil)
	n.reset()
}

// Restore reopens a previous session's rows and reruns its query, e.g.
// after the plan is opened again.
func (n *Navigator) Restore(query string, expanded []plan.NodeID) {
	for _, id := range expanded {
		if n.tree.Contains(id) && !n.view.IsExpanded(id) {
			n.view.SetExpanded(id, true)
			n.expanded = append(n.expanded, id)
		}
	}
	if strings.TrimSpace(query) != "" {
		n.query = strings.TrimSpace(query)
		n.refresh()
	}
}

func (n *Navigator) reset() {
	n.query = ""
	n.matches = nil
	n.cursor = -1
	if n.listener != nil {
		n.listener.OnCleared()
	}
}

func (n *Navigator) navigate() {
	m := n.matches[n.cursor]
	debug.Log("search: match %d of %d: %s", n.cursor+1, len(n.matches), m.Text)
	n.view.Select(m.Node, true)
	if n.listener != nil {
		n.listener.OnCurrentChanged(n.cursor, len(n.matches))
	}
}

// apply highlights the matches and expands the ancestors of each one.
func (n *Navigator) apply() {
	ids := make([]plan.NodeID, len(n.matches))
	for i, m := range n.matches {
		ids[i] = m.Node
	}
	n.view.SetHighlighted(ids)
	for _, m := range n.matches {
		for _, a := range n.tree.Ancestors(m.Node) {
			if !n.view.IsExpanded(a) {
				n.view.SetExpanded(a, true)
				if !slices.Contains(n.expanded, a) {
					n.expanded = append(n.expanded, a)
				}
			}
		}
	}
}

func (n *Navigator) collapse() {
	for _, id := range n.expanded {
		if n.tree.Contains(id) {
			n.view.SetExpanded(id, false)
		}
	}
	n.expanded = nil
}

func (n *Navigator) notifyResults() {
	if n.listener == nil {
		return
	}
	n.listener.OnResults(n.query, n.Matches())
	n.listener.OnCurrentChanged(n.cursor, len(n.matches))
}

// refresh reruns the current query against the mutated tree. The cursor
// stays on the same node while it still matches; otherwise it keeps its
// position, clamped to the new result count.
func (n *Navigator) refresh() {
	prev, hadPrev := n.Current()
	oldCursor := n.cursor

	// Expanded rows that left the tree stay tracked: an undo may bring
	// them back, still open, and Clear must close them then.
	n.matches = Search(n.tree, n.query)

	n.cursor = -1
	if hadPrev {
		n.cursor = slices.IndexFunc(n.matches, func(m Match) bool { return m.Node == prev.Node })
	}
	if n.cursor < 0 && len(n.matches) > 0 {
		n.cursor = min(max(oldCursor, 0), len(n.matches)-1)
		n.view.Select(n.matches[n.cursor].Node, false)
	}
	n.apply()
	n.notifyResults()
}

// Attach subscribes the navigator to b so that results follow tree edits
// and project replacement. It replaces any earlier subscription.
func (n *Navigator) Attach(b *bus.Bus) {
	n.Detach()
	n.sub = b.Subscribe(n.handle)
}

// Detach cancels the bus subscription.
func (n *Navigator) Detach() {
	if n.sub != nil {
		n.sub.Unsubscribe()
		n.sub = nil
	}
}

func (n *Navigator) handle(e bus.Event) error {
	switch e := e.(type) {
	case bus.ProjectReplaced:
		// Rows of the old tree are gone, nothing to collapse.
		n.expanded = nil
		n.view.SetHighlighted(nil)
		n.tree = e.NewRoot
		n.reset()
	case bus.NodeAdded, bus.NodeRemoved, bus.NodeUpdated:
		if n.query != "" {
			n.refresh()
		}
	}
	return nil
}
