package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const planJSON = `{
  "version": 1,
  "root": {
    "id": "root", "kind": "program",
    "children": [{
      "id": "p1", "kind": "project", "name": "Billing",
      "children": [{
        "id": "a1", "kind": "aspect", "name": "Backend",
        "children": [{
          "id": "s1", "kind": "subject", "name": "Invoices",
          "children": [{
            "id": "ac1", "kind": "activity", "name": "Issue invoices",
            "children": [
              {"id": "f1", "kind": "feature", "name": "Print invoice", "seq": 1,
               "milestones": [{"name": "Design", "planned": "2024-03-01", "status": "complete"}]},
              {"id": "f2", "kind": "feature", "name": "Email invoice", "seq": 2,
               "milestones": [{"name": "Design", "planned": "2024-03-05", "status": "underway"}]}
            ]
          }]
        }]
      }]
    }]
  }
}`

type fixture struct {
	dir    string
	plan   string
	config string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		dir:    dir,
		plan:   filepath.Join(dir, "plan.json"),
		config: filepath.Join(dir, "config.json"),
	}
	require.NoError(t, os.WriteFile(f.plan, []byte(planJSON), 0644))
	cfg := `{"statePath": "` + filepath.ToSlash(filepath.Join(dir, "state.json")) + `"}`
	require.NoError(t, os.WriteFile(f.config, []byte(cfg), 0644))

	prev := now
	now = func() time.Time { return time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = prev })
	return f
}

func (f fixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", f.config}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestShow(t *testing.T) {
	f := newFixture(t)
	out, err := f.run(t, "show", "--ids", f.plan)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "Billing [project]"), lines[0])
	assert.Contains(t, lines[0], "50%")
	assert.Contains(t, lines[5], "#2 Email invoice")
	assert.Contains(t, lines[5], "late")
	assert.Contains(t, lines[5], "f2")
	assert.Contains(t, lines[4], "100%")
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	out, err := f.run(t, "search", f.plan, "email")
	require.NoError(t, err)
	assert.Contains(t, out, "0.90")
	assert.Contains(t, out, "Billing > Backend > Invoices > Issue invoices > ")
	assert.Contains(t, out, "Email invoice")

	out, err = f.run(t, "search", f.plan, "zzz")
	require.NoError(t, err)
	assert.Contains(t, out, `No matches for "zzz"`)
}

func TestEditCommandsSave(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "rename", f.plan, "f1", "Print", "receipt")
	require.NoError(t, err)
	assert.Contains(t, out, "Rename 'Print invoice' to 'Print receipt'")

	out, err = f.run(t, "add", f.plan, "ac1", "feature", "Void invoice")
	require.NoError(t, err)
	newID := strings.Fields(out)[0]

	_, err = f.run(t, "move", "--index", "0", f.plan, newID, "ac1")
	require.NoError(t, err)

	out, err = f.run(t, "delete", f.plan, "f2")
	require.NoError(t, err)
	assert.Contains(t, out, "Delete 'Email invoice'")

	out, err = f.run(t, "show", f.plan)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.Contains(t, lines[4], "#3 Void invoice")
	assert.Contains(t, lines[5], "#1 Print receipt")
	assert.NotContains(t, out, "Email invoice")
}

func TestEditErrors(t *testing.T) {
	f := newFixture(t)
	before, err := os.ReadFile(f.plan)
	require.NoError(t, err)

	_, err = f.run(t, "rename", f.plan, "missing", "x")
	assert.Error(t, err)
	_, err = f.run(t, "add", f.plan, "s1", "feature", "Misplaced")
	assert.Error(t, err)
	_, err = f.run(t, "move", f.plan, "p1", "ac1")
	assert.Error(t, err)

	after, err := os.ReadFile(f.plan)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after), "failed commands must not rewrite the plan")
}

func TestRecent(t *testing.T) {
	f := newFixture(t)
	_, err := f.run(t, "show", f.plan)
	require.NoError(t, err)

	out, err := f.run(t, "recent")
	require.NoError(t, err)
	abs, _ := filepath.Abs(f.plan)
	assert.Equal(t, abs, strings.TrimSpace(out))
}

func TestMissingPlan(t *testing.T) {
	f := newFixture(t)
	_, err := f.run(t, "show", filepath.Join(f.dir, "nope.json"))
	assert.Error(t, err)
}
