// Package search ranks plan nodes by how well their names match a query and
// keeps a navigable result set in step with the tree.
package search

import (
	"cmp"
	"slices"
	"strings"

	"github.com/adriangreen/fddplan/internal/plan"
)

// Score tiers.
const (
	ScoreExact     = 1.0
	ScorePrefix    = 0.9
	ScoreSubstring = 0.7

	fuzzyThreshold = 0.2
	fuzzyWeight    = 0.6
)

// Match is one node whose name matched a query.
type Match struct {
	Node  plan.NodeID
	Score float64
	Text  string
}

// Score rates name against query in [0,1]; 0 means no match. Both are
// case-folded. A name equal to the query scores 1, one starting with it 0.9,
// one containing it 0.7. Anything else is scored by how much of the query
// appears in order inside the name, scaled down for long names, and kept
// only above 0.2 before being weighted by 0.6.
func Score(name, query string) float64 {
	n := strings.ToLower(name)
	q := strings.ToLower(query)
	if q == "" || n == "" {
		return 0
	}
	switch {
	case n == q:
		return ScoreExact
	case strings.HasPrefix(n, q):
		return ScorePrefix
	case strings.Contains(n, q):
		return ScoreSubstring
	}
	if s := sequenceScore([]rune(n), []rune(q)); s > fuzzyThreshold {
		return s * fuzzyWeight
	}
	return 0
}

// sequenceScore greedily matches query runes in order against text.
func sequenceScore(text, query []rune) float64 {
	matched := 0
	for i := 0; i < len(text) && matched < len(query); i++ {
		if text[i] == query[matched] {
			matched++
		}
	}
	ratio := float64(matched) / float64(len(query))
	lengthPenalty := min(1.0, float64(len(query))/float64(len(text)))
	return ratio * lengthPenalty
}

// Search scores every node of tree against query and returns the matches
// best first. Equal scores keep depth-first discovery order. A blank query
// yields no matches.
func Search(tree *plan.Tree, query string) []Match {
	if tree == nil {
		return nil
	}
	return SearchFrom(tree, tree.Root(), query)
}

// SearchFrom is Search restricted to the subtree rooted at root.
func SearchFrom(tree *plan.Tree, root plan.NodeID, query string) []Match {
	q := strings.TrimSpace(query)
	if q == "" || tree == nil {
		return nil
	}
	var matches []Match
	tree.WalkFrom(root, func(n *plan.Node, _ int) bool {
		if s := Score(n.Name(), q); s > 0 {
			matches = append(matches, Match{Node: n.ID(), Score: s, Text: n.Name()})
		}
		return true
	})
	slices.SortStableFunc(matches, func(a, b Match) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return matches
}

// Path returns the names from the root down to id for breadcrumb display.
func Path(tree *plan.Tree, id plan.NodeID) []string {
	return tree.Path(id)
}
