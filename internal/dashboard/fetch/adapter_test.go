package fetch

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/dashboard/domain"
)

type fakeSource struct {
	projects   map[string][]domain.Project
	tasks      map[string][]domain.Task
	milestones map[string][]domain.Milestone

	projectsErr   error
	tasksErr      error
	milestonesErr error

	calls []string
}

func (f *fakeSource) ListProjects(_ context.Context, owner string) ([]domain.Project, error) {
	f.calls = append(f.calls, "projects:"+owner)
	return f.projects[owner], f.projectsErr
}

func (f *fakeSource) ListTasks(_ context.Context, owner string) ([]domain.Task, error) {
	f.calls = append(f.calls, "tasks:"+owner)
	return f.tasks[owner], f.tasksErr
}

func (f *fakeSource) ListMilestones(_ context.Context, owner string) ([]domain.Milestone, error) {
	f.calls = append(f.calls, "milestones:"+owner)
	return f.milestones[owner], f.milestonesErr
}

func newFake() *fakeSource {
	return &fakeSource{
		projects:   map[string][]domain.Project{"alice": {{ID: "p1"}, {ID: "p2"}}, "bob": {{ID: "pb"}}},
		tasks:      map[string][]domain.Task{"alice": {{ID: "t1"}}},
		milestones: map[string][]domain.Milestone{"alice": {{ID: "m1", ProjectID: "p1"}}},
	}
}

func TestAdapter_NoIdentity(t *testing.T) {
	src := newFake()
	a := NewAdapter(src, zerolog.Nop())

	snap := a.Load(context.Background(), "")
	assert.False(t, snap.Loading)
	assert.Nil(t, snap.Error)
	assert.Empty(t, snap.Projects)
	assert.Empty(t, snap.Tasks)
	assert.Empty(t, snap.Milestones)
	assert.Empty(t, src.calls)
}

func TestAdapter_LoadSuccess(t *testing.T) {
	src := newFake()
	a := NewAdapter(src, zerolog.Nop())

	snap := a.Load(context.Background(), "alice")
	require.Nil(t, snap.Error)
	assert.False(t, snap.Loading)
	assert.Equal(t, "alice", snap.Owner)
	assert.Len(t, snap.Projects, 2)
	assert.Len(t, snap.Tasks, 1)
	assert.Len(t, snap.Milestones, 1)
	assert.Equal(t, []string{"projects:alice", "tasks:alice", "milestones:alice"}, src.calls)
}

func TestAdapter_ReplacesNotMerges(t *testing.T) {
	src := newFake()
	a := NewAdapter(src, zerolog.Nop())
	a.Load(context.Background(), "alice")

	src.projects["alice"] = []domain.Project{{ID: "p3"}}
	snap := a.Load(context.Background(), "alice")

	require.Len(t, snap.Projects, 1)
	assert.Equal(t, "p3", snap.Projects[0].ID)
}

func TestAdapter_FailureKeepsPrevious(t *testing.T) {
	src := newFake()
	a := NewAdapter(src, zerolog.Nop())
	a.Load(context.Background(), "alice")

	src.tasksErr = errors.New("permission denied for table tasks")
	src.projects["alice"] = []domain.Project{{ID: "changed"}}

	snap := a.Load(context.Background(), "alice")
	require.NotNil(t, snap.Error)
	assert.Equal(t, "permission denied for table tasks", *snap.Error)
	assert.False(t, snap.Loading)
	require.Len(t, snap.Projects, 2, "collections keep previous values")
	assert.Equal(t, "p1", snap.Projects[0].ID)

	t.Run("aborts before later reads", func(t *testing.T) {
		src.calls = nil
		src.projectsErr = errors.New("timeout")
		a.Load(context.Background(), "alice")
		assert.Equal(t, []string{"projects:alice"}, src.calls)
	})
}

func TestAdapter_FirstRunFailureIsEmpty(t *testing.T) {
	src := newFake()
	src.milestonesErr = errors.New("boom")
	a := NewAdapter(src, zerolog.Nop())

	snap := a.Load(context.Background(), "alice")
	require.NotNil(t, snap.Error)
	assert.Empty(t, snap.Projects)
	assert.Empty(t, snap.Tasks)
}

func TestAdapter_IdentitySwapDropsOtherOwnerRows(t *testing.T) {
	src := newFake()
	a := NewAdapter(src, zerolog.Nop())
	a.Load(context.Background(), "alice")

	src.projectsErr = errors.New("down")
	snap := a.Load(context.Background(), "bob")

	require.NotNil(t, snap.Error)
	assert.Equal(t, "bob", snap.Owner)
	assert.Empty(t, snap.Projects)
}

func TestAdapter_SnapshotIsCopy(t *testing.T) {
	a := NewAdapter(newFake(), zerolog.Nop())
	a.Load(context.Background(), "alice")

	snap := a.Snapshot()
	snap.Projects[0].ID = "mutated"

	assert.Equal(t, "p1", a.Snapshot().Projects[0].ID)
}
