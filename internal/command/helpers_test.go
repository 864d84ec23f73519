package command

import (
	"time"

	"github.com/adriangreen/fddplan/internal/bus"
	"github.com/adriangreen/fddplan/internal/plan"
)

type fataler interface {
	Helper()
	Fatalf(format string, args ...any)
}

type fixture struct {
	tree     *plan.Tree
	bus      *bus.Bus
	events   []bus.Event
	project  plan.NodeID
	aspect   plan.NodeID
	subject  plan.NodeID
	activity plan.NodeID
}

func newFixture(t fataler) *fixture {
	t.Helper()
	f := &fixture{tree: plan.NewTree(plan.KindProgram, ""), bus: bus.New()}
	f.bus.Subscribe(func(e bus.Event) error {
		f.events = append(f.events, e)
		return nil
	})
	f.project = f.add(t, f.tree.Root(), plan.KindProject, "Billing")
	f.aspect = f.add(t, f.project, plan.KindAspect, "Backend")
	f.subject = f.add(t, f.aspect, plan.KindSubject, "Invoices")
	f.activity = f.add(t, f.subject, plan.KindActivity, "Issue invoices")
	f.events = nil
	return f
}

func (f *fixture) add(t fataler, parent plan.NodeID, kind plan.Kind, name string) plan.NodeID {
	t.Helper()
	frag, err := plan.NewFragment(kind, name)
	if err != nil {
		t.Fatalf("NewFragment: %v", err)
	}
	if _, err := f.tree.Attach(parent, frag, -1); err != nil {
		t.Fatalf("Attach %q: %v", name, err)
	}
	return frag.Root()
}

func (f *fixture) names(id plan.NodeID) []string {
	n, _ := f.tree.Node(id)
	var out []string
	for _, c := range n.Children() {
		cn, _ := f.tree.Node(c)
		out = append(out, cn.Name())
	}
	return out
}

func fragment(t fataler, kind plan.Kind, name string) *plan.Fragment {
	t.Helper()
	frag, err := plan.NewFragment(kind, name)
	if err != nil {
		t.Fatalf("NewFragment: %v", err)
	}
	return frag
}

func done(name string, d int) plan.Milestone {
	at := time.Date(2024, time.May, d, 0, 0, 0, 0, time.UTC)
	return plan.Milestone{Name: name, Planned: at, Actual: at, Status: plan.StatusComplete}
}
