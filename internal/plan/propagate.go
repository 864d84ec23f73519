package plan

import "time"

// Recompute rederives completion and target date for id and then for every
// ancestor up to the root. It assumes the node's children are already
// consistent and therefore never descends.
func (t *Tree) Recompute(id NodeID) {
	for cur := id; cur != ""; {
		n, ok := t.nodes[cur]
		if !ok {
			return
		}
		t.derive(n)
		cur = n.parent
	}
}

// RecomputeAll rederives the whole tree bottom-up. Only needed after a tree
// has been assembled from raw data.
func (t *Tree) RecomputeAll() {
	t.recomputeSubtree(t.root)
}

func (t *Tree) recomputeSubtree(id NodeID) {
	n, ok := t.nodes[id]
	if !ok {
		return
	}
	for _, child := range n.children {
		t.recomputeSubtree(child)
	}
	t.derive(n)
}

func (t *Tree) derive(n *Node) {
	if n.kind.IsLeaf() {
		n.completion = featureCompletion(n.milestones, t.aspectInfo(n))
		n.target, n.hasTarget = latestPlanned(n.milestones)
		return
	}

	n.completion = 0
	n.target, n.hasTarget = time.Time{}, false
	if len(n.children) == 0 {
		return
	}
	sum := 0
	for _, id := range n.children {
		child := t.nodes[id]
		sum += child.completion
		if child.hasTarget && (!n.hasTarget || child.target.After(n.target)) {
			n.target, n.hasTarget = child.target, true
		}
	}
	n.completion = sum / len(n.children)
}

// aspectInfo finds the milestone definitions of the aspect a feature
// belongs to, if any.
func (t *Tree) aspectInfo(n *Node) []MilestoneInfo {
	for _, id := range t.Ancestors(n.id) {
		if a := t.nodes[id]; a.kind == KindAspect {
			return a.milestoneInfo
		}
	}
	return nil
}

// featureCompletion sums the effort of each complete milestone, matching
// milestones to the aspect's definitions by position. Without definitions
// every milestone weighs the same.
func featureCompletion(ms []Milestone, infos []MilestoneInfo) int {
	if len(ms) == 0 {
		return 0
	}
	total := 0
	if len(infos) > 0 {
		for i, m := range ms {
			if i >= len(infos) {
				break
			}
			if m.IsComplete() {
				total += infos[i].Effort
			}
		}
	} else {
		complete := 0
		for _, m := range ms {
			if m.IsComplete() {
				complete++
			}
		}
		total = 100 * complete / len(ms)
	}
	switch {
	case total < 0:
		return 0
	case total > 100:
		return 100
	}
	return total
}

func latestPlanned(ms []Milestone) (time.Time, bool) {
	var latest time.Time
	found := false
	for _, m := range ms {
		if !m.HasPlanned() {
			continue
		}
		if !found || m.Planned.After(latest) {
			latest, found = m.Planned, true
		}
	}
	return latest, found
}
