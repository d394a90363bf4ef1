package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/dashboard/domain"
	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/dashboard/fetch"
)

var errRemote = errors.New("remote unavailable")

type fakeRemote struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
	gate  chan struct{}
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{fail: map[string]error{}}
}

func (f *fakeRemote) failOn(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[op] = err
}

func (f *fakeRemote) hold() {
	f.gate = make(chan struct{})
}

func (f *fakeRemote) release() {
	close(f.gate)
}

func (f *fakeRemote) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.calls...)
}

func (f *fakeRemote) do(ctx context.Context, op, id string) error {
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op+":"+id)
	return f.fail[op]
}

func (f *fakeRemote) InsertProject(ctx context.Context, _ string, p domain.Project) error {
	return f.do(ctx, "insert_project", p.ID)
}

func (f *fakeRemote) UpdateProject(ctx context.Context, _, id string, _ domain.ProjectPatch, _ time.Time) error {
	return f.do(ctx, "update_project", id)
}

func (f *fakeRemote) DeleteProject(ctx context.Context, _, id string) error {
	return f.do(ctx, "delete_project", id)
}

func (f *fakeRemote) DeleteTasksByProject(ctx context.Context, _, id string) error {
	return f.do(ctx, "delete_tasks_by_project", id)
}

func (f *fakeRemote) DeleteMilestonesByProject(ctx context.Context, _, id string) error {
	return f.do(ctx, "delete_milestones_by_project", id)
}

func (f *fakeRemote) InsertTask(ctx context.Context, _ string, t domain.Task) error {
	return f.do(ctx, "insert_task", t.ID)
}

func (f *fakeRemote) UpdateTask(ctx context.Context, _, id string, _ domain.TaskPatch, _ time.Time) error {
	return f.do(ctx, "update_task", id)
}

func (f *fakeRemote) DeleteTask(ctx context.Context, _, id string) error {
	return f.do(ctx, "delete_task", id)
}

func (f *fakeRemote) InsertMilestone(ctx context.Context, _ string, m domain.Milestone) error {
	return f.do(ctx, "insert_milestone", m.ID)
}

func (f *fakeRemote) UpdateMilestone(ctx context.Context, _, id string, _ domain.MilestonePatch, _ time.Time) error {
	return f.do(ctx, "update_milestone", id)
}

func (f *fakeRemote) DeleteMilestone(ctx context.Context, _, id string) error {
	return f.do(ctx, "delete_milestone", id)
}

type fakeLoader struct {
	mu    sync.Mutex
	snaps map[string]fetch.Snapshot
	loads int
}

func (l *fakeLoader) Load(_ context.Context, owner string) fetch.Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loads++
	snap, ok := l.snaps[owner]
	if !ok {
		snap = fetch.Snapshot{}
	}
	snap.Owner = owner
	if snap.Projects == nil {
		snap.Projects = []domain.Project{}
	}
	if snap.Tasks == nil {
		snap.Tasks = []domain.Task{}
	}
	if snap.Milestones == nil {
		snap.Milestones = []domain.Milestone{}
	}
	return snap
}

func (l *fakeLoader) set(owner string, snap fetch.Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snaps[owner] = snap
}

type seqIDs struct{ n atomic.Int64 }

func (g *seqIDs) NewID() string {
	return fmt.Sprintf("id-%d", g.n.Add(1))
}

var t0 = time.Date(2025, 1, 20, 9, 0, 0, 0, time.UTC)

// steppingClock advances one minute per reading.
func steppingClock() func() time.Time {
	var n atomic.Int64
	return func() time.Time {
		return t0.Add(time.Duration(n.Add(1)) * time.Minute)
	}
}

type fixture struct {
	store  *Store
	remote *fakeRemote
	loader *fakeLoader
}

func newFixture(t *testing.T, opts Options) fixture {
	t.Helper()
	remote := newFakeRemote()
	loader := &fakeLoader{snaps: map[string]fetch.Snapshot{}}

	opts.IDs = &seqIDs{}
	opts.Clock = steppingClock()
	opts.Logger = zerolog.Nop()
	s := New(loader, remote, opts)
	s.Identify(context.Background(), "alice")
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Close(ctx)
	})
	return fixture{store: s, remote: remote, loader: loader}
}

func wait(t *testing.T, r *Receipt) Outcome {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	o, _ := r.Wait(ctx)
	require.NotEqual(t, Pending, o, "receipt did not settle")
	return o
}

func launchVideo() domain.NewProject {
	return domain.NewProject{
		Title:    "Launch Video",
		Category: domain.CategoryYouTube,
		Deadline: t0.AddDate(0, 1, 0),
		Priority: domain.PriorityHigh,
		Status:   domain.ProjectPlanning,
		Color:    "#3B82F6",
		Tags:     []string{"launch", "video", "launch"},
		Progress: 40,
	}
}

func todoTask(projectID string) domain.NewTask {
	return domain.NewTask{
		Title:     "Write script",
		Priority:  domain.PriorityMedium,
		Status:    domain.TaskToDo,
		ProjectID: &projectID,
	}
}

func countProjects(st State, id string) int {
	n := 0
	for _, p := range st.Projects {
		if p.ID == id {
			n++
		}
	}
	return n
}

func TestCreateProject_ReturnsOptimisticRecord(t *testing.T) {
	f := newFixture(t, Options{})
	in := launchVideo()

	p, r, err := f.store.CreateProject(in)
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, in.Title, p.Title)
	assert.Equal(t, in.Category, p.Category)
	assert.Equal(t, in.Deadline, p.Deadline)
	assert.Equal(t, in.Priority, p.Priority)
	assert.Equal(t, in.Status, p.Status)
	assert.Equal(t, in.Color, p.Color)
	assert.Equal(t, []string{"launch", "video", "launch"}, p.Tags)
	assert.Equal(t, 40, p.Progress)
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)
	assert.NotNil(t, p.Tasks)
	assert.Empty(t, p.Tasks)
	assert.NotNil(t, p.Milestones)
	assert.Empty(t, p.Milestones)

	assert.Equal(t, Applied, wait(t, r))
	assert.Equal(t, 1, countProjects(f.store.State(), p.ID))
	assert.Equal(t, []string{"insert_project:" + p.ID}, f.remote.Calls())
}

func TestCreate_ReturnsBeforeRemoteConfirms(t *testing.T) {
	f := newFixture(t, Options{})
	f.remote.hold()

	p, r, err := f.store.CreateProject(launchVideo())
	require.NoError(t, err)

	assert.Equal(t, Pending, r.Outcome())
	assert.Nil(t, r.Err())
	assert.Equal(t, 1, f.store.PendingWrites())
	assert.Equal(t, 1, countProjects(f.store.State(), p.ID))

	f.remote.release()
	assert.Equal(t, Applied, wait(t, r))
	assert.Equal(t, 0, f.store.PendingWrites())
}

func TestCreate_RollsBackOnRemoteFailure(t *testing.T) {
	t.Run("project", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.remote.failOn("insert_project", errRemote)

		p, r, err := f.store.CreateProject(launchVideo())
		require.NoError(t, err)

		assert.Equal(t, RolledBack, wait(t, r))
		assert.ErrorIs(t, r.Err(), errRemote)
		assert.Equal(t, 0, countProjects(f.store.State(), p.ID))
	})

	t.Run("task", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.remote.failOn("insert_task", errRemote)

		task, r, err := f.store.CreateTask(domain.NewTask{Title: "Edit", Priority: domain.PriorityLow, Status: domain.TaskToDo})
		require.NoError(t, err)

		assert.Equal(t, RolledBack, wait(t, r))
		_, ok := f.store.Task(task.ID)
		assert.False(t, ok)
	})

	t.Run("milestone", func(t *testing.T) {
		f := newFixture(t, Options{})
		p, pr, err := f.store.CreateProject(launchVideo())
		require.NoError(t, err)
		wait(t, pr)
		f.remote.failOn("insert_milestone", errRemote)

		m, r, err := f.store.CreateMilestone(domain.NewMilestone{
			Title: "Script locked", ProjectID: p.ID, Status: domain.MilestoneNotStarted, Deadline: t0.AddDate(0, 0, 7),
		})
		require.NoError(t, err)

		assert.Equal(t, RolledBack, wait(t, r))
		_, ok := f.store.Milestone(m.ID)
		assert.False(t, ok)
	})
}

func TestUpdate_KeptLocallyWhenRemoteFails(t *testing.T) {
	f := newFixture(t, Options{})
	task, r, err := f.store.CreateTask(domain.NewTask{Title: "Edit", Priority: domain.PriorityLow, Status: domain.TaskToDo})
	require.NoError(t, err)
	wait(t, r)

	f.remote.failOn("update_task", errRemote)
	title := "Edit footage"
	status := domain.TaskReview
	updated, r, err := f.store.UpdateTask(task.ID, domain.TaskPatch{Title: &title, Status: &status})
	require.NoError(t, err)

	assert.Equal(t, title, updated.Title)
	assert.Equal(t, status, updated.Status)
	assert.False(t, updated.UpdatedAt.Before(task.UpdatedAt))
	assert.Equal(t, domain.PriorityLow, updated.Priority, "fields outside the patch are untouched")

	assert.Equal(t, Diverged, wait(t, r))
	got, ok := f.store.Task(task.ID)
	require.True(t, ok)
	assert.Equal(t, title, got.Title)
	assert.Equal(t, status, got.Status)
}

func TestUpdate_TimestampNeverMovesBackwards(t *testing.T) {
	f := newFixture(t, Options{})
	p, _, err := f.store.CreateProject(launchVideo())
	require.NoError(t, err)

	// clock reading earlier than the stored timestamp
	f.store.opts.Clock = func() time.Time { return t0.Add(-time.Hour) }
	progress := 80
	updated, _, err := f.store.UpdateProject(p.ID, domain.ProjectPatch{Progress: &progress})
	require.NoError(t, err)

	assert.Equal(t, p.UpdatedAt, updated.UpdatedAt)
	assert.Equal(t, 80, updated.Progress)
}

func TestUpdate_RollbackAllRestoresPrevious(t *testing.T) {
	f := newFixture(t, Options{Policy: RollbackAll})
	p, r, err := f.store.CreateProject(launchVideo())
	require.NoError(t, err)
	wait(t, r)

	f.remote.failOn("update_project", errRemote)
	title := "Launch Trailer"
	_, r, err = f.store.UpdateProject(p.ID, domain.ProjectPatch{Title: &title})
	require.NoError(t, err)

	assert.Equal(t, RolledBack, wait(t, r))
	got, ok := f.store.Project(p.ID)
	require.True(t, ok)
	assert.Equal(t, "Launch Video", got.Title)
}

func TestUpdate_RollbackAllSkipsSupersededUndo(t *testing.T) {
	f := newFixture(t, Options{Policy: RollbackAll})
	m := domain.NewMilestone{Title: "Draft", Status: domain.MilestoneNotStarted}
	p, r, err := f.store.CreateProject(launchVideo())
	require.NoError(t, err)
	wait(t, r)
	m.ProjectID = p.ID
	ms, r, err := f.store.CreateMilestone(m)
	require.NoError(t, err)
	wait(t, r)

	f.remote.hold()
	f.remote.failOn("update_milestone", errRemote)
	first, second := "A", "B"
	_, r1, err := f.store.UpdateMilestone(ms.ID, domain.MilestonePatch{Title: &first})
	require.NoError(t, err)
	_, r2, err := f.store.UpdateMilestone(ms.ID, domain.MilestonePatch{Title: &second})
	require.NoError(t, err)
	f.remote.release()

	assert.Equal(t, RolledBack, wait(t, r1))
	assert.Equal(t, RolledBack, wait(t, r2))

	// only the latest write undoes itself, back to the state it replaced
	got, ok := f.store.Milestone(ms.ID)
	require.True(t, ok)
	assert.Equal(t, "A", got.Title)
}

func TestDeleteProject_CascadesLocallyOnly(t *testing.T) {
	f := newFixture(t, Options{})
	p, _, err := f.store.CreateProject(launchVideo())
	require.NoError(t, err)
	t1, _, err := f.store.CreateTask(todoTask(p.ID))
	require.NoError(t, err)
	loose, _, err := f.store.CreateTask(domain.NewTask{Title: "Inbox", Priority: domain.PriorityLow, Status: domain.TaskToDo})
	require.NoError(t, err)
	m1, _, err := f.store.CreateMilestone(domain.NewMilestone{Title: "Cut", ProjectID: p.ID, Status: domain.MilestoneNotStarted})
	require.NoError(t, err)
	require.NoError(t, f.store.Drain(context.Background()))

	r, err := f.store.DeleteProject(p.ID)
	require.NoError(t, err)

	st := f.store.State()
	assert.Equal(t, 0, countProjects(st, p.ID))
	for _, task := range st.Tasks {
		assert.False(t, task.InProject(p.ID))
	}
	for _, m := range st.Milestones {
		assert.NotEqual(t, p.ID, m.ProjectID)
	}
	_, ok := f.store.Task(loose.ID)
	assert.True(t, ok, "unassigned tasks survive")

	assert.Equal(t, Applied, wait(t, r))
	calls := f.remote.Calls()
	assert.Contains(t, calls, "delete_project:"+p.ID)
	assert.NotContains(t, calls, "delete_task:"+t1.ID)
	assert.NotContains(t, calls, "delete_milestone:"+m1.ID)
	assert.NotContains(t, calls, "delete_tasks_by_project:"+p.ID)
}

func TestDeleteProject_CascadeRemote(t *testing.T) {
	f := newFixture(t, Options{CascadeRemote: true})
	p, r, err := f.store.CreateProject(launchVideo())
	require.NoError(t, err)
	wait(t, r)

	r, err = f.store.DeleteProject(p.ID)
	require.NoError(t, err)
	assert.Equal(t, Applied, wait(t, r))

	assert.Equal(t, []string{
		"insert_project:" + p.ID,
		"delete_tasks_by_project:" + p.ID,
		"delete_milestones_by_project:" + p.ID,
		"delete_project:" + p.ID,
	}, f.remote.Calls())
}

func TestDeleteProject_RemoteFailure(t *testing.T) {
	setup := func(t *testing.T, policy RollbackPolicy) (fixture, domain.Project, domain.Task, domain.Milestone) {
		f := newFixture(t, Options{Policy: policy})
		p, _, err := f.store.CreateProject(launchVideo())
		require.NoError(t, err)
		task, _, err := f.store.CreateTask(todoTask(p.ID))
		require.NoError(t, err)
		m, _, err := f.store.CreateMilestone(domain.NewMilestone{Title: "Cut", ProjectID: p.ID, Status: domain.MilestoneNotStarted})
		require.NoError(t, err)
		require.NoError(t, f.store.Drain(context.Background()))
		require.NoError(t, f.store.SetCurrentProject(p.ID))
		f.remote.failOn("delete_project", errRemote)
		return f, p, task, m
	}

	t.Run("default keeps delete", func(t *testing.T) {
		f, p, task, _ := setup(t, RollbackCreates)
		r, err := f.store.DeleteProject(p.ID)
		require.NoError(t, err)

		assert.Equal(t, Diverged, wait(t, r))
		_, ok := f.store.Project(p.ID)
		assert.False(t, ok)
		_, ok = f.store.Task(task.ID)
		assert.False(t, ok)
		assert.Nil(t, f.store.State().CurrentProject)
	})

	t.Run("rollback all restores children", func(t *testing.T) {
		f, p, task, m := setup(t, RollbackAll)
		r, err := f.store.DeleteProject(p.ID)
		require.NoError(t, err)

		assert.Equal(t, RolledBack, wait(t, r))
		got, ok := f.store.Project(p.ID)
		require.True(t, ok)
		require.Len(t, got.Tasks, 1)
		assert.Equal(t, task.ID, got.Tasks[0].ID)
		require.Len(t, got.Milestones, 1)
		assert.Equal(t, m.ID, got.Milestones[0].ID)
		require.NotNil(t, f.store.State().CurrentProject)
		assert.Equal(t, p.ID, f.store.State().CurrentProject.ID)
	})
}

func TestDeleteTaskAndMilestone(t *testing.T) {
	f := newFixture(t, Options{})
	p, _, err := f.store.CreateProject(launchVideo())
	require.NoError(t, err)
	task, _, err := f.store.CreateTask(todoTask(p.ID))
	require.NoError(t, err)
	m, _, err := f.store.CreateMilestone(domain.NewMilestone{Title: "Cut", ProjectID: p.ID, Status: domain.MilestoneNotStarted})
	require.NoError(t, err)

	r, err := f.store.DeleteTask(task.ID)
	require.NoError(t, err)
	assert.Equal(t, Applied, wait(t, r))
	r, err = f.store.DeleteMilestone(m.ID)
	require.NoError(t, err)
	assert.Equal(t, Applied, wait(t, r))

	got, ok := f.store.Project(p.ID)
	require.True(t, ok)
	assert.Empty(t, got.Tasks)
	assert.Empty(t, got.Milestones)
}

func TestMutators_UnknownIDs(t *testing.T) {
	f := newFixture(t, Options{})
	title := "x"

	_, _, err := f.store.UpdateProject("nope", domain.ProjectPatch{Title: &title})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, _, err = f.store.UpdateTask("nope", domain.TaskPatch{Title: &title})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, _, err = f.store.UpdateMilestone("nope", domain.MilestonePatch{Title: &title})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.store.DeleteProject("nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.store.DeleteTask("nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.store.DeleteMilestone("nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.store.SetCurrentProject("nope"), domain.ErrNotFound)

	assert.Empty(t, f.remote.Calls())
}

func TestMutators_ReferenceChecks(t *testing.T) {
	f := newFixture(t, Options{})

	_, _, err := f.store.CreateTask(todoTask("missing"))
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)

	_, _, err = f.store.CreateMilestone(domain.NewMilestone{Title: "Cut", ProjectID: "missing", Status: domain.MilestoneNotStarted})
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)

	_, _, err = f.store.CreateMilestone(domain.NewMilestone{Title: "Cut", Status: domain.MilestoneNotStarted})
	assert.ErrorIs(t, err, domain.ErrProjectIDRequired)

	task, _, err := f.store.CreateTask(domain.NewTask{Title: "Loose", Priority: domain.PriorityLow, Status: domain.TaskToDo})
	require.NoError(t, err)
	missing := "missing"
	_, _, err = f.store.UpdateTask(task.ID, domain.TaskPatch{ProjectID: &missing})
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)

	require.NoError(t, f.store.Drain(context.Background()))
	assert.Equal(t, []string{"insert_task:" + task.ID}, f.remote.Calls())
}

func TestMutators_Validation(t *testing.T) {
	f := newFixture(t, Options{})

	in := launchVideo()
	in.Category = "TikTok"
	_, _, err := f.store.CreateProject(in)
	assert.ErrorIs(t, err, domain.ErrInvalidEnum)

	in = launchVideo()
	in.Title = ""
	_, _, err = f.store.CreateProject(in)
	assert.ErrorIs(t, err, domain.ErrTitleRequired)

	bad := domain.TaskStatus("Blocked")
	_, _, err = f.store.UpdateTask("any", domain.TaskPatch{Status: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidEnum)

	assert.Empty(t, f.store.State().Projects)
}

func TestMutators_RequireIdentity(t *testing.T) {
	s := New(&fakeLoader{snaps: map[string]fetch.Snapshot{}}, newFakeRemote(), Options{Logger: zerolog.Nop()})

	_, _, err := s.CreateProject(launchVideo())
	assert.ErrorIs(t, err, domain.ErrIdentityRequired)
	_, err = s.DeleteTask("t")
	assert.ErrorIs(t, err, domain.ErrIdentityRequired)
	_, err = s.Refresh(context.Background())
	assert.ErrorIs(t, err, domain.ErrIdentityRequired)
}

func TestReseed_ReplacesWholesale(t *testing.T) {
	f := newFixture(t, Options{})
	f.remote.hold()

	p, r, err := f.store.CreateProject(launchVideo())
	require.NoError(t, err)
	require.Equal(t, 1, countProjects(f.store.State(), p.ID))

	f.store.Reseed(fetch.Snapshot{
		Owner:    "alice",
		Projects: []domain.Project{{ID: "remote-1", Title: "From remote"}},
	})

	st := f.store.State()
	assert.Equal(t, 0, countProjects(st, p.ID), "unconfirmed local create is gone")
	require.Len(t, st.Projects, 1)
	assert.Equal(t, "remote-1", st.Projects[0].ID)

	f.remote.release()
	assert.Equal(t, Applied, wait(t, r))
	assert.Equal(t, 0, countProjects(f.store.State(), p.ID))
}

func TestReseed_IgnoresOtherIdentity(t *testing.T) {
	f := newFixture(t, Options{})
	f.store.Reseed(fetch.Snapshot{Owner: "bob", Projects: []domain.Project{{ID: "pb"}}})
	assert.Empty(t, f.store.State().Projects)
}

func TestIdentify_Transitions(t *testing.T) {
	f := newFixture(t, Options{})
	f.loader.set("alice", fetch.Snapshot{Projects: []domain.Project{{ID: "pa", Title: "Alice's"}}})
	f.loader.set("bob", fetch.Snapshot{Projects: []domain.Project{{ID: "pb", Title: "Bob's"}}})

	st := f.store.Identify(context.Background(), "alice")
	require.Len(t, st.Projects, 1)
	require.NoError(t, f.store.SetCurrentProject("pa"))

	t.Run("same identity keeps selection", func(t *testing.T) {
		st := f.store.Identify(context.Background(), "alice")
		require.NotNil(t, st.CurrentProject)
		assert.Equal(t, "pa", st.CurrentProject.ID)
		assert.False(t, st.Loading)
	})

	t.Run("swap resets", func(t *testing.T) {
		st := f.store.Identify(context.Background(), "bob")
		assert.Equal(t, "bob", st.Owner)
		assert.Nil(t, st.CurrentProject)
		require.Len(t, st.Projects, 1)
		assert.Equal(t, "pb", st.Projects[0].ID)
	})

	t.Run("absent identity empties", func(t *testing.T) {
		st := f.store.Identify(context.Background(), "")
		assert.Empty(t, st.Owner)
		assert.Empty(t, st.Projects)
		assert.Empty(t, st.Tasks)
		assert.Empty(t, st.Milestones)
		assert.False(t, st.Loading)
		assert.Nil(t, st.Error)
	})
}

func TestIdentify_SurfacesLoadError(t *testing.T) {
	f := newFixture(t, Options{})
	msg := "connection refused"
	f.loader.set("alice", fetch.Snapshot{Error: &msg})

	st := f.store.Identify(context.Background(), "alice")
	require.NotNil(t, st.Error)
	assert.Equal(t, msg, *st.Error)
}

func TestRefresh_DrainsThenReloads(t *testing.T) {
	f := newFixture(t, Options{})
	f.remote.hold()
	p, r, err := f.store.CreateProject(launchVideo())
	require.NoError(t, err)

	t.Run("bounded by context", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := f.store.Refresh(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	f.loader.set("alice", fetch.Snapshot{Projects: []domain.Project{{ID: p.ID, Title: "Launch Video"}}})
	f.remote.release()

	st, err := f.store.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Applied, r.Outcome())
	assert.Equal(t, 1, countProjects(st, p.ID))
}

func TestRefresh_FailedLoadKeepsConfirmedWrites(t *testing.T) {
	f := newFixture(t, Options{})
	p, r, err := f.store.CreateProject(launchVideo())
	require.NoError(t, err)
	require.Equal(t, Applied, wait(t, r))

	msg := "db down"
	f.loader.set("alice", fetch.Snapshot{Error: &msg})

	st, err := f.store.Refresh(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st.Error)
	assert.Equal(t, msg, *st.Error)
	assert.False(t, st.Loading)
	assert.Equal(t, 1, countProjects(st, p.ID), "collections stay stale, not regressed")

	st = f.store.Identify(context.Background(), "alice")
	assert.Equal(t, 1, countProjects(st, p.ID))

	// the next good load clears the error and reseeds
	f.loader.set("alice", fetch.Snapshot{Projects: []domain.Project{{ID: p.ID, Title: "Launch Video"}}})
	st, err = f.store.Refresh(context.Background())
	require.NoError(t, err)
	assert.Nil(t, st.Error)
	assert.Equal(t, 1, countProjects(st, p.ID))
}

func TestProjectView_AttachesChildren(t *testing.T) {
	f := newFixture(t, Options{})
	p, _, err := f.store.CreateProject(launchVideo())
	require.NoError(t, err)
	_, _, err = f.store.CreateMilestone(domain.NewMilestone{Title: "Second", ProjectID: p.ID, Status: domain.MilestoneNotStarted, Order: 2})
	require.NoError(t, err)
	_, _, err = f.store.CreateMilestone(domain.NewMilestone{Title: "First", ProjectID: p.ID, Status: domain.MilestoneNotStarted, Order: 1})
	require.NoError(t, err)
	_, _, err = f.store.CreateTask(todoTask(p.ID))
	require.NoError(t, err)

	got, ok := f.store.Project(p.ID)
	require.True(t, ok)
	require.Len(t, got.Milestones, 2)
	assert.Equal(t, "First", got.Milestones[0].Title)
	assert.Equal(t, "Second", got.Milestones[1].Title)
	assert.Len(t, got.Tasks, 1)

	// the collection copy stays flat
	for _, sp := range f.store.State().Projects {
		assert.Empty(t, sp.Tasks)
		assert.Empty(t, sp.Milestones)
	}
}

func TestStateIsCopy(t *testing.T) {
	f := newFixture(t, Options{})
	p, _, err := f.store.CreateProject(launchVideo())
	require.NoError(t, err)

	st := f.store.State()
	st.Projects[0].Tags[0] = "mutated"
	st.Projects[0].Title = "mutated"

	got, _ := f.store.Project(p.ID)
	assert.Equal(t, "Launch Video", got.Title)
	assert.Equal(t, "launch", got.Tags[0])
}

func TestAddTimeSpent(t *testing.T) {
	f := newFixture(t, Options{})
	task, _, err := f.store.CreateTask(domain.NewTask{Title: "Record", Priority: domain.PriorityHigh, Status: domain.TaskInProgress, TimeSpent: 30})
	require.NoError(t, err)

	updated, r, err := f.store.AddTimeSpent(task.ID, 45)
	require.NoError(t, err)
	assert.Equal(t, 75, updated.TimeSpent)
	assert.Equal(t, Applied, wait(t, r))

	_, _, err = f.store.AddTimeSpent("missing", 5)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAddTimeSpent_ConcurrentBookingsAllCount(t *testing.T) {
	f := newFixture(t, Options{})
	task, _, err := f.store.CreateTask(domain.NewTask{Title: "Edit", Priority: domain.PriorityLow, Status: domain.TaskInProgress, TimeSpent: 10})
	require.NoError(t, err)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := f.store.AddTimeSpent(task.ID, 2)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, ok := f.store.Task(task.ID)
	require.True(t, ok)
	assert.Equal(t, 10+2*n, got.TimeSpent)
}

func TestCalendarEvents(t *testing.T) {
	f := newFixture(t, Options{})
	p, _, err := f.store.CreateProject(launchVideo())
	require.NoError(t, err)
	due := t0.AddDate(0, 0, 3)
	task := todoTask(p.ID)
	task.Deadline = &due
	_, _, err = f.store.CreateTask(task)
	require.NoError(t, err)
	_, _, err = f.store.CreateTask(domain.NewTask{Title: "No deadline", Priority: domain.PriorityLow, Status: domain.TaskToDo})
	require.NoError(t, err)
	_, _, err = f.store.CreateMilestone(domain.NewMilestone{Title: "Cut", ProjectID: p.ID, Status: domain.MilestoneNotStarted, Deadline: t0.AddDate(0, 0, 10)})
	require.NoError(t, err)

	all := f.store.CalendarEvents(time.Time{}, time.Time{})
	require.Len(t, all, 3)
	assert.Equal(t, "task", all[0].Source)
	assert.Equal(t, domain.EventDeadline, all[0].Type)
	assert.Equal(t, p.ID, all[0].ProjectID)
	assert.Equal(t, "milestone", all[1].Source)
	assert.Equal(t, "project", all[2].Source)
	assert.Equal(t, domain.EventPublish, all[2].Type)

	window := f.store.CalendarEvents(t0.AddDate(0, 0, 5), t0.AddDate(0, 0, 20))
	require.Len(t, window, 1)
	assert.Equal(t, "Cut", window[0].Title)

	assert.Len(t, f.store.State().CalendarEvents, 3)
}

func TestReceiptWait_Timeout(t *testing.T) {
	f := newFixture(t, Options{})
	f.remote.hold()
	_, r, err := f.store.CreateProject(launchVideo())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	o, err := r.Wait(ctx)
	assert.Equal(t, Pending, o)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	f.remote.release()
	assert.Equal(t, Applied, wait(t, r))
}

func TestWriteTimeout(t *testing.T) {
	f := newFixture(t, Options{WriteTimeout: 10 * time.Millisecond})
	f.remote.hold()
	defer f.remote.release()

	p, r, err := f.store.CreateProject(launchVideo())
	require.NoError(t, err)

	assert.Equal(t, RolledBack, wait(t, r))
	assert.ErrorIs(t, r.Err(), context.DeadlineExceeded)
	assert.Equal(t, 0, countProjects(f.store.State(), p.ID))
}

// Launch Video walkthrough: create, add a task, finish it, delete the project.
func TestScenario_LaunchVideo(t *testing.T) {
	f := newFixture(t, Options{})

	p1, _, err := f.store.CreateProject(launchVideo())
	require.NoError(t, err)
	assert.NotEmpty(t, p1.ID)
	assert.Equal(t, 40, p1.Progress)
	assert.Empty(t, p1.Milestones)
	assert.Empty(t, p1.Tasks)

	t1, _, err := f.store.CreateTask(todoTask(p1.ID))
	require.NoError(t, err)
	_, ok := f.store.Task(t1.ID)
	require.True(t, ok)

	done := domain.TaskDone
	_, _, err = f.store.UpdateTask(t1.ID, domain.TaskPatch{Status: &done})
	require.NoError(t, err)
	got, _ := f.store.Task(t1.ID)
	assert.Equal(t, domain.TaskDone, got.Status)

	_, err = f.store.DeleteProject(p1.ID)
	require.NoError(t, err)
	require.NoError(t, f.store.Drain(context.Background()))

	st := f.store.State()
	assert.Equal(t, 0, countProjects(st, p1.ID))
	_, ok = f.store.Task(t1.ID)
	assert.False(t, ok)
	assert.NotContains(t, f.remote.Calls(), "delete_task:"+t1.ID)
}

func TestParseRollbackPolicy(t *testing.T) {
	for in, want := range map[string]RollbackPolicy{"": RollbackCreates, "creates": RollbackCreates, "all": RollbackAll} {
		got, err := ParseRollbackPolicy(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		if in != "" {
			assert.Equal(t, in, got.String())
		}
	}
	_, err := ParseRollbackPolicy("some")
	assert.Error(t, err)
}

func TestOutcome_MarshalText(t *testing.T) {
	b, err := RolledBack.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "rolled_back", string(b))
	assert.Equal(t, "outcome(9)", Outcome(9).String())
}
