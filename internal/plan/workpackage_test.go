package plan

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkPackageLifecycle(t *testing.T) {
	p := newSamplePlan(t)

	wp, err := p.tree.NewWorkPackage("Release 1")
	require.NoError(t, err)
	assert.Equal(t, 1, wp.Seq)

	idx, err := p.tree.InsertWorkPackage(p.project, wp, -1)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	_, err = p.tree.InsertWorkPackage(p.project, wp, -1)
	assert.ErrorIs(t, err, ErrAlreadyAttached)

	old, err := p.tree.RenameWorkPackage(p.project, wp.Seq, "Release 1.0")
	require.NoError(t, err)
	assert.Equal(t, "Release 1", old)

	removed, at, err := p.tree.RemoveWorkPackage(p.project, wp.Seq)
	require.NoError(t, err)
	assert.Equal(t, 0, at)
	assert.Equal(t, "Release 1.0", removed.Name)

	_, _, err = p.tree.RemoveWorkPackage(p.project, wp.Seq)
	assert.True(t, errors.Is(err, ErrWorkPackageNotFound))
}

func TestWorkPackagesOnlyOnProjects(t *testing.T) {
	p := newSamplePlan(t)
	_, err := p.tree.WorkPackages(p.aspect)
	assert.ErrorIs(t, err, ErrWrongKind)
}

func TestAssignFeature(t *testing.T) {
	p := newSamplePlan(t)
	f := mustFeature(t, p.tree, p.activity, "Print")
	first, _ := p.tree.NewWorkPackage("First")
	second, _ := p.tree.NewWorkPackage("Second")
	_, err := p.tree.InsertWorkPackage(p.project, first, -1)
	require.NoError(t, err)
	_, err = p.tree.InsertWorkPackage(p.project, second, -1)
	require.NoError(t, err)

	prev, err := p.tree.AssignFeature(f, first.Seq)
	require.NoError(t, err)
	assert.Equal(t, 0, prev)
	assert.Equal(t, first.Seq, p.tree.WorkPackageOf(f))

	prev, err = p.tree.AssignFeature(f, second.Seq)
	require.NoError(t, err)
	assert.Equal(t, first.Seq, prev)
	assert.Equal(t, second.Seq, p.tree.WorkPackageOf(f))

	wps, err := p.tree.WorkPackages(p.project)
	require.NoError(t, err)
	assert.Empty(t, wps[0].Features)
	assert.Equal(t, []int{1}, wps[1].Features)

	_, err = p.tree.AssignFeature(f, 42)
	assert.ErrorIs(t, err, ErrWorkPackageNotFound)
	_, err = p.tree.AssignFeature(p.activity, first.Seq)
	assert.ErrorIs(t, err, ErrWrongKind)

	prev, err = p.tree.AssignFeature(f, 0)
	require.NoError(t, err)
	assert.Equal(t, second.Seq, prev)
	assert.Equal(t, 0, p.tree.WorkPackageOf(f))
}

func TestSetWorkPackagesRestoresSnapshot(t *testing.T) {
	p := newSamplePlan(t)
	wp, _ := p.tree.NewWorkPackage("Only")
	_, err := p.tree.InsertWorkPackage(p.project, wp, -1)
	require.NoError(t, err)

	snapshot, err := p.tree.WorkPackages(p.project)
	require.NoError(t, err)
	old, err := p.tree.SetWorkPackages(p.project, nil)
	require.NoError(t, err)
	assert.Len(t, old, 1)

	_, err = p.tree.SetWorkPackages(p.project, snapshot)
	require.NoError(t, err)
	got, _ := p.tree.WorkPackages(p.project)
	assert.Equal(t, snapshot, got)
}
