package plan

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used in plain data.
const DateLayout = "2006-01-02"

// NodeData is the plain-data form of a node and its subtree, used for
// persistence and for structural comparison. Completion and TargetDate are
// written for readers but ignored when building a tree; they are always
// rederived.
type NodeData struct {
	ID            string              `json:"id,omitempty" yaml:"id,omitempty"`
	Kind          Kind                `json:"kind" yaml:"kind"`
	Name          string              `json:"name" yaml:"name"`
	Seq           int                 `json:"seq,omitempty" yaml:"seq,omitempty"`
	Initials      string              `json:"initials,omitempty" yaml:"initials,omitempty"`
	Prefix        string              `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Completion    int                 `json:"completion" yaml:"completion"`
	TargetDate    string              `json:"targetDate,omitempty" yaml:"targetDate,omitempty"`
	Milestones    []MilestoneData     `json:"milestones,omitempty" yaml:"milestones,omitempty"`
	MilestoneInfo []MilestoneInfoData `json:"milestoneInfo,omitempty" yaml:"milestoneInfo,omitempty"`
	WorkPackages  []WorkPackageData   `json:"workPackages,omitempty" yaml:"workPackages,omitempty"`
	Children      []NodeData          `json:"children,omitempty" yaml:"children,omitempty"`
}

// MilestoneData is the plain-data form of a Milestone.
type MilestoneData struct {
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Planned string `json:"planned,omitempty" yaml:"planned,omitempty"`
	Actual  string `json:"actual,omitempty" yaml:"actual,omitempty"`
	Status  Status `json:"status,omitempty" yaml:"status,omitempty"`
}

// MilestoneInfoData is the plain-data form of a MilestoneInfo.
type MilestoneInfoData struct {
	Name   string `json:"name" yaml:"name"`
	Effort int    `json:"effort" yaml:"effort"`
}

// WorkPackageData is the plain-data form of a WorkPackage.
type WorkPackageData struct {
	Seq      int    `json:"seq" yaml:"seq"`
	Name     string `json:"name" yaml:"name"`
	Features []int  `json:"features,omitempty" yaml:"features,omitempty"`
}

// FromData builds a tree from plain data. Recoverable problems (duplicate
// ids, misplaced kinds, unknown statuses) are reported as warnings; missing
// names, unknown kinds and malformed dates are errors.
func FromData(d NodeData) (*Tree, []ValidationWarning, error) {
	if !d.Kind.IsValid() {
		return nil, nil, fmt.Errorf("unknown root kind %q", d.Kind)
	}
	b := &builder{
		tree: &Tree{
			nodes:          make(map[NodeID]*Node),
			featureSeq:     NewSequence(1),
			workPackageSeq: NewSequence(1),
		},
		seqs: make(map[int]NodeID),
	}
	root, err := b.build(d, nil)
	if err != nil {
		return nil, nil, err
	}
	b.tree.root = root
	b.assignSequences()
	b.checkWorkPackages()
	b.tree.RecomputeAll()
	return b.tree, b.warnings, nil
}

type builder struct {
	tree     *Tree
	warnings []ValidationWarning
	features []*Node
	projects []*Node
	seqs     map[int]NodeID
}

func (b *builder) warn(id NodeID, format string, args ...any) {
	b.warnings = append(b.warnings, ValidationWarning{NodeID: id, Message: fmt.Sprintf(format, args...)})
}

func (b *builder) build(d NodeData, parent *Node) (NodeID, error) {
	if !d.Kind.IsValid() {
		return "", fmt.Errorf("node %q: unknown kind %q", d.Name, d.Kind)
	}
	if parent != nil && strings.TrimSpace(d.Name) == "" {
		return "", fmt.Errorf("%w: %s under %q", ErrInvalidName, d.Kind, parent.name)
	}

	id := NodeID(d.ID)
	if id == "" {
		id = newID()
	} else if _, exists := b.tree.nodes[id]; exists {
		b.warn(id, "Duplicate node ID found: %s", id)
		id = newID()
	}

	n := &Node{
		id:       id,
		kind:     d.Kind,
		name:     d.Name,
		seq:      d.Seq,
		initials: d.Initials,
		prefix:   d.Prefix,
	}
	if parent != nil {
		n.parent = parent.id
		if !Accepts(parent.kind, n.kind) {
			b.warn(id, "%s is not allowed under %s", n.kind, parent.kind)
		}
	}
	for _, md := range d.Milestones {
		m, err := milestoneFromData(md)
		if err != nil {
			return "", fmt.Errorf("node %q: %w", d.Name, err)
		}
		if !m.Status.IsValid() {
			b.warn(id, "Invalid milestone status: %s", m.Status)
		}
		n.milestones = append(n.milestones, m)
	}
	for _, mi := range d.MilestoneInfo {
		n.milestoneInfo = append(n.milestoneInfo, MilestoneInfo{Name: mi.Name, Effort: mi.Effort})
	}
	for _, wp := range d.WorkPackages {
		n.workPackages = append(n.workPackages, WorkPackage{
			Seq:      wp.Seq,
			Name:     wp.Name,
			Features: append([]int(nil), wp.Features...),
		})
	}
	if n.kind == KindFeature {
		b.features = append(b.features, n)
	}
	if len(n.workPackages) > 0 {
		b.projects = append(b.projects, n)
	}

	b.tree.nodes[id] = n
	for _, cd := range d.Children {
		child, err := b.build(cd, n)
		if err != nil {
			return "", err
		}
		n.children = append(n.children, child)
	}
	return id, nil
}

// assignSequences numbers features and work packages that came without a
// seq, continuing after the highest seq seen.
func (b *builder) assignSequences() {
	for _, f := range b.features {
		if f.seq == 0 {
			continue
		}
		if other, dup := b.seqs[f.seq]; dup {
			b.warn(f.id, "Duplicate feature seq %d (also %s)", f.seq, other)
			continue
		}
		b.seqs[f.seq] = f.id
		b.tree.featureSeq.Observe(f.seq)
	}
	for _, f := range b.features {
		if f.seq == 0 {
			f.seq = b.tree.featureSeq.Next()
			b.seqs[f.seq] = f.id
		}
	}
	for _, p := range b.projects {
		for _, wp := range p.workPackages {
			b.tree.workPackageSeq.Observe(wp.Seq)
		}
	}
	for _, p := range b.projects {
		for i := range p.workPackages {
			if p.workPackages[i].Seq == 0 {
				p.workPackages[i].Seq = b.tree.workPackageSeq.Next()
			}
		}
	}
}

func (b *builder) checkWorkPackages() {
	for _, p := range b.projects {
		for _, wp := range p.workPackages {
			for _, seq := range wp.Features {
				if _, ok := b.seqs[seq]; !ok {
					b.warn(p.id, "Work package %q references unknown feature %d", wp.Name, seq)
				}
			}
		}
	}
}

func milestoneFromData(md MilestoneData) (Milestone, error) {
	m := Milestone{Name: md.Name, Status: md.Status}
	var err error
	if m.Planned, err = parseDate(md.Planned); err != nil {
		return Milestone{}, fmt.Errorf("milestone %q planned date: %w", md.Name, err)
	}
	if m.Actual, err = parseDate(md.Actual); err != nil {
		return Milestone{}, fmt.Errorf("milestone %q actual date: %w", md.Name, err)
	}
	return m, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(DateLayout, s)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// Data returns the plain-data form of the whole tree.
func (t *Tree) Data() NodeData {
	return t.dataOf(t.root)
}

// DataOf returns the plain-data form of the subtree rooted at id.
func (t *Tree) DataOf(id NodeID) (NodeData, bool) {
	if _, ok := t.nodes[id]; !ok {
		return NodeData{}, false
	}
	return t.dataOf(id), true
}

func (t *Tree) dataOf(id NodeID) NodeData {
	n := t.nodes[id]
	d := NodeData{
		ID:         string(n.id),
		Kind:       n.kind,
		Name:       n.name,
		Seq:        n.seq,
		Initials:   n.initials,
		Prefix:     n.prefix,
		Completion: n.completion,
	}
	if n.hasTarget {
		d.TargetDate = formatDate(n.target)
	}
	for _, m := range n.milestones {
		d.Milestones = append(d.Milestones, MilestoneData{
			Name:    m.Name,
			Planned: formatDate(m.Planned),
			Actual:  formatDate(m.Actual),
			Status:  m.Status,
		})
	}
	for _, mi := range n.milestoneInfo {
		d.MilestoneInfo = append(d.MilestoneInfo, MilestoneInfoData{Name: mi.Name, Effort: mi.Effort})
	}
	for _, wp := range n.workPackages {
		d.WorkPackages = append(d.WorkPackages, WorkPackageData{
			Seq:      wp.Seq,
			Name:     wp.Name,
			Features: append([]int(nil), wp.Features...),
		})
	}
	for _, child := range n.children {
		d.Children = append(d.Children, t.dataOf(child))
	}
	return d
}
