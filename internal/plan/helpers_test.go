package plan

import (
	"time"
)

type fataler interface {
	Helper()
	Fatalf(format string, args ...any)
}

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
}

func mustAdd(t fataler, tr *Tree, parent NodeID, kind Kind, name string) NodeID {
	t.Helper()
	f, err := NewFragment(kind, name)
	if err != nil {
		t.Fatalf("NewFragment(%s, %q): %v", kind, name, err)
	}
	if _, err := tr.Attach(parent, f, -1); err != nil {
		t.Fatalf("Attach %q under %s: %v", name, parent, err)
	}
	return f.Root()
}

func mustFeature(t fataler, tr *Tree, activity NodeID, name string, ms ...Milestone) NodeID {
	t.Helper()
	f, err := NewFragment(KindFeature, name)
	if err != nil {
		t.Fatalf("NewFragment: %v", err)
	}
	if err := f.SetMilestones(f.Root(), ms); err != nil {
		t.Fatalf("SetMilestones: %v", err)
	}
	if _, err := tr.Attach(activity, f, -1); err != nil {
		t.Fatalf("Attach feature %q: %v", name, err)
	}
	return f.Root()
}

// samplePlan is program > project > aspect > subject > activity.
type samplePlan struct {
	tree     *Tree
	project  NodeID
	aspect   NodeID
	subject  NodeID
	activity NodeID
}

func newSamplePlan(t fataler) samplePlan {
	t.Helper()
	tr := NewTree(KindProgram, "")
	p := samplePlan{tree: tr}
	p.project = mustAdd(t, tr, tr.Root(), KindProject, "Billing")
	p.aspect = mustAdd(t, tr, p.project, KindAspect, "Backend")
	p.subject = mustAdd(t, tr, p.aspect, KindSubject, "Invoices")
	p.activity = mustAdd(t, tr, p.subject, KindActivity, "Issue invoices")
	return p
}

func complete(name string, planned time.Time) Milestone {
	return Milestone{Name: name, Planned: planned, Actual: planned, Status: StatusComplete}
}

func pending(name string, planned time.Time) Milestone {
	return Milestone{Name: name, Planned: planned, Status: StatusNotStarted}
}

func childNames(tr *Tree, id NodeID) []string {
	n, _ := tr.Node(id)
	var names []string
	for _, c := range n.Children() {
		cn, _ := tr.Node(c)
		names = append(names, cn.Name())
	}
	return names
}
