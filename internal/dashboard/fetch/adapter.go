package fetch

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/dashboard/domain"
)

// Source is the read side of the remote table store.
type Source interface {
	ListProjects(ctx context.Context, owner string) ([]domain.Project, error)
	ListTasks(ctx context.Context, owner string) ([]domain.Task, error)
	ListMilestones(ctx context.Context, owner string) ([]domain.Milestone, error)
}

// Snapshot is the adapter's view after the most recent load.
type Snapshot struct {
	Owner      string
	Projects   []domain.Project
	Tasks      []domain.Task
	Milestones []domain.Milestone
	Loading    bool
	Error      *string
}

// Adapter performs the three owner-scoped reads and keeps the last result.
// It only runs when asked to; local mutations never trigger it.
type Adapter struct {
	source Source
	log    zerolog.Logger

	mu   sync.Mutex
	snap Snapshot
}

func NewAdapter(source Source, log zerolog.Logger) *Adapter {
	return &Adapter{
		source: source,
		log:    log,
		snap:   emptySnapshot(""),
	}
}

// Snapshot returns a copy of the current state.
func (a *Adapter) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snap.clone()
}

// Load reads projects, tasks and milestones for owner. An empty owner
// performs no reads and yields empty collections. When any read fails the
// collections from the previous load of the same owner are kept and Error
// carries the failure message.
func (a *Adapter) Load(ctx context.Context, owner string) Snapshot {
	a.mu.Lock()
	if owner == "" {
		a.snap = emptySnapshot("")
		out := a.snap.clone()
		a.mu.Unlock()
		return out
	}
	if a.snap.Owner != owner {
		// never serve another identity's rows
		a.snap = emptySnapshot(owner)
	}
	a.snap.Loading = true
	a.snap.Error = nil
	a.mu.Unlock()

	projects, tasks, milestones, err := a.read(ctx, owner)

	a.mu.Lock()
	defer a.mu.Unlock()

	a.snap.Loading = false
	if err != nil {
		a.log.Error().Err(err).Str("owner", owner).Msg("error fetching data")
		msg := err.Error()
		a.snap.Error = &msg
		return a.snap.clone()
	}

	a.snap.Projects = projects
	a.snap.Tasks = tasks
	a.snap.Milestones = milestones
	return a.snap.clone()
}

func (a *Adapter) read(ctx context.Context, owner string) ([]domain.Project, []domain.Task, []domain.Milestone, error) {
	projects, err := a.source.ListProjects(ctx, owner)
	if err != nil {
		return nil, nil, nil, err
	}
	tasks, err := a.source.ListTasks(ctx, owner)
	if err != nil {
		return nil, nil, nil, err
	}
	milestones, err := a.source.ListMilestones(ctx, owner)
	if err != nil {
		return nil, nil, nil, err
	}

	if projects == nil {
		projects = []domain.Project{}
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	if milestones == nil {
		milestones = []domain.Milestone{}
	}
	return projects, tasks, milestones, nil
}

func emptySnapshot(owner string) Snapshot {
	return Snapshot{
		Owner:      owner,
		Projects:   []domain.Project{},
		Tasks:      []domain.Task{},
		Milestones: []domain.Milestone{},
	}
}

func (s Snapshot) clone() Snapshot {
	out := s
	out.Projects = append([]domain.Project{}, s.Projects...)
	out.Tasks = append([]domain.Task{}, s.Tasks...)
	out.Milestones = append([]domain.Milestone{}, s.Milestones...)
	if s.Error != nil {
		msg := *s.Error
		out.Error = &msg
	}
	return out
}
