package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/dashboard/domain"
	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/dashboard/fetch"
)

// Remote is the write side of the table store. Every call is scoped by owner.
type Remote interface {
	InsertProject(ctx context.Context, owner string, p domain.Project) error
	UpdateProject(ctx context.Context, owner, id string, patch domain.ProjectPatch, updatedAt time.Time) error
	DeleteProject(ctx context.Context, owner, id string) error
	DeleteTasksByProject(ctx context.Context, owner, projectID string) error
	DeleteMilestonesByProject(ctx context.Context, owner, projectID string) error

	InsertTask(ctx context.Context, owner string, t domain.Task) error
	UpdateTask(ctx context.Context, owner, id string, patch domain.TaskPatch, updatedAt time.Time) error
	DeleteTask(ctx context.Context, owner, id string) error

	InsertMilestone(ctx context.Context, owner string, m domain.Milestone) error
	UpdateMilestone(ctx context.Context, owner, id string, patch domain.MilestonePatch, updatedAt time.Time) error
	DeleteMilestone(ctx context.Context, owner, id string) error
}

// Loader produces a fresh snapshot for an owner; *fetch.Adapter implements it.
type Loader interface {
	Load(ctx context.Context, owner string) fetch.Snapshot
}

type Options struct {
	Policy        RollbackPolicy
	CascadeRemote bool
	WriteTimeout  time.Duration
	IDs           domain.IDGenerator
	Clock         func() time.Time
	Logger        zerolog.Logger
}

// State is a point-in-time copy of the store.
type State struct {
	Owner          string                 `json:"owner"`
	Projects       []domain.Project       `json:"projects"`
	Tasks          []domain.Task          `json:"tasks"`
	Milestones     []domain.Milestone     `json:"milestones"`
	CalendarEvents []domain.CalendarEvent `json:"calendarEvents"`
	CurrentProject *domain.Project        `json:"currentProject"`
	Loading        bool                   `json:"loading"`
	Error          *string                `json:"error"`
}

// Store is the in-memory source of truth for one session identity. Mutators
// apply locally first and then write to the remote store in the background.
type Store struct {
	loader Loader
	remote Remote
	opts   Options
	log    zerolog.Logger

	// base context for background writes; cancelled by Close
	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.RWMutex
	owner      string
	projects   []domain.Project
	tasks      []domain.Task
	milestones []domain.Milestone
	currentID  string
	loading    bool
	loadErr    *string
	revs       map[string]uint64
	seq        uint64
	pending    map[*Receipt]struct{}
}

func New(loader Loader, remote Remote, opts Options) *Store {
	if opts.IDs == nil {
		opts.IDs = domain.UUIDGenerator{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		loader: loader,
		remote: remote,
		opts:   opts,
		log:    opts.Logger,
		ctx:    ctx,
		cancel: cancel,
	}
	s.resetLocked()
	return s
}

// Owner returns the identity the store currently serves.
func (s *Store) Owner() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.owner
}

// Identify moves the store to a new identity. An empty owner resets the
// store to empty; any other owner triggers a load and a re-seed.
func (s *Store) Identify(ctx context.Context, owner string) State {
	s.mu.Lock()
	if owner == "" {
		s.resetLocked()
		s.mu.Unlock()
		s.loader.Load(ctx, "")
		return s.State()
	}
	if owner != s.owner {
		s.resetLocked()
		s.owner = owner
	}
	s.loading = true
	s.mu.Unlock()

	s.Reseed(s.loader.Load(ctx, owner))
	return s.State()
}

// Reseed replaces the collections wholesale with snap. The current project
// selection survives. Snapshots for another identity are ignored. A failed
// snapshot only records its error; the local collections stay as they are.
func (s *Store) Reseed(snap fetch.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap.Owner != s.owner {
		s.log.Warn().Str("owner", s.owner).Str("snapshot_owner", snap.Owner).Msg("ignoring snapshot for another identity")
		return
	}
	if snap.Error != nil {
		s.loading = false
		s.loadErr = snap.Error
		return
	}

	s.projects = append([]domain.Project{}, snap.Projects...)
	s.tasks = append([]domain.Task{}, snap.Tasks...)
	s.milestones = append([]domain.Milestone{}, snap.Milestones...)
	s.loading = snap.Loading
	s.loadErr = snap.Error
	s.revs = make(map[string]uint64)
}

// Refresh waits for in-flight writes, then reloads and re-seeds. It is the
// reconciliation pass; mutations never call it.
func (s *Store) Refresh(ctx context.Context) (State, error) {
	if err := s.Drain(ctx); err != nil {
		return s.State(), err
	}

	owner := s.Owner()
	if owner == "" {
		return s.State(), domain.ErrIdentityRequired
	}
	snap := s.loader.Load(ctx, owner)
	s.Reseed(snap)
	return s.State(), nil
}

// Drain waits until every write pending at call time has settled.
func (s *Store) Drain(ctx context.Context) error {
	s.mu.RLock()
	receipts := make([]*Receipt, 0, len(s.pending))
	for r := range s.pending {
		receipts = append(receipts, r)
	}
	s.mu.RUnlock()

	for _, r := range receipts {
		if _, err := r.Wait(ctx); err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return nil
}

// PendingWrites reports how many remote writes are in flight.
func (s *Store) PendingWrites() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pending)
}

// Close waits for in-flight writes (bounded by ctx) and stops the store.
func (s *Store) Close(ctx context.Context) error {
	err := s.Drain(ctx)
	s.cancel()
	return err
}

// State returns a copy of the whole store.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := State{
		Owner:          s.owner,
		Projects:       cloneProjects(s.projects),
		Tasks:          cloneTasks(s.tasks),
		Milestones:     append([]domain.Milestone{}, s.milestones...),
		CalendarEvents: s.calendarLocked(time.Time{}, time.Time{}),
		Loading:        s.loading,
	}
	if s.loadErr != nil {
		msg := *s.loadErr
		st.Error = &msg
	}
	if p, ok := s.projectLocked(s.currentID); ok {
		st.CurrentProject = &p
	}
	return st
}

// Project returns one project with its tasks and milestones attached.
func (s *Store) Project(id string) (domain.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.projectLocked(id)
}

func (s *Store) Task(id string) (domain.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.taskIndex(id); i >= 0 {
		return cloneTask(s.tasks[i]), true
	}
	return domain.Task{}, false
}

func (s *Store) Milestone(id string) (domain.Milestone, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.milestoneIndex(id); i >= 0 {
		return s.milestones[i], true
	}
	return domain.Milestone{}, false
}

// SetCurrentProject selects the project being viewed. An empty id clears it.
// The selection is held in memory only.
func (s *Store) SetCurrentProject(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" && s.projectIndex(id) < 0 {
		return domain.ErrNotFound
	}
	s.currentID = id
	return nil
}

func (s *Store) resetLocked() {
	s.owner = ""
	s.projects = []domain.Project{}
	s.tasks = []domain.Task{}
	s.milestones = []domain.Milestone{}
	s.currentID = ""
	s.loading = false
	s.loadErr = nil
	s.revs = make(map[string]uint64)
	if s.pending == nil {
		s.pending = make(map[*Receipt]struct{})
	}
}

func (s *Store) projectLocked(id string) (domain.Project, bool) {
	i := s.projectIndex(id)
	if id == "" || i < 0 {
		return domain.Project{}, false
	}

	p := cloneProject(s.projects[i])
	p.Tasks = []domain.Task{}
	p.Milestones = []domain.Milestone{}
	for _, t := range s.tasks {
		if t.InProject(id) {
			p.Tasks = append(p.Tasks, cloneTask(t))
		}
	}
	for _, m := range s.milestones {
		if m.ProjectID == id {
			p.Milestones = append(p.Milestones, m)
		}
	}
	sort.SliceStable(p.Milestones, func(a, b int) bool {
		return p.Milestones[a].Order < p.Milestones[b].Order
	})
	return p, true
}

func (s *Store) projectIndex(id string) int {
	for i := range s.projects {
		if s.projects[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) taskIndex(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) milestoneIndex(id string) int {
	for i := range s.milestones {
		if s.milestones[i].ID == id {
			return i
		}
	}
	return -1
}

// now returns a timestamp that never precedes prev.
func (s *Store) now(prev time.Time) time.Time {
	t := s.opts.Clock().UTC()
	if t.Before(prev) {
		return prev
	}
	return t
}

// bump records a local write to id and returns its revision. Revisions are
// unique across re-seeds, so a stale undo can always tell it lost the race.
func (s *Store) bump(id string) uint64 {
	s.seq++
	s.revs[id] = s.seq
	return s.seq
}

// current reports whether rev is still the latest local write to id for owner.
func (s *Store) current(owner, id string, rev uint64) bool {
	return s.owner == owner && s.revs[id] == rev
}

func (s *Store) rollsBack(create bool) bool {
	return create || s.opts.Policy == RollbackAll
}

// dispatch runs write in the background. When it fails and undo is set,
// undo reverts the local change and the outcome is RolledBack; otherwise
// the failure is only logged and the outcome is Diverged.
func (s *Store) dispatch(op, id string, write func(ctx context.Context) error, undo func()) *Receipt {
	r := newReceipt(op, id)

	s.mu.Lock()
	s.pending[r] = struct{}{}
	s.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(s.ctx, s.opts.WriteTimeout)
		defer cancel()

		err := write(ctx)
		outcome := Applied
		if err != nil {
			outcome = Diverged
			if undo != nil {
				undo()
				outcome = RolledBack
			}
			s.log.Error().Err(err).
				Str("op", op).
				Str("id", id).
				Str("outcome", outcome.String()).
				Msg("remote write failed")
		}

		s.mu.Lock()
		delete(s.pending, r)
		s.mu.Unlock()
		r.resolve(outcome, err)
	}()

	return r
}

func cloneProject(p domain.Project) domain.Project {
	p.Tags = domain.CloneTags(p.Tags)
	p.Tasks = []domain.Task{}
	p.Milestones = []domain.Milestone{}
	return p
}

func cloneProjects(in []domain.Project) []domain.Project {
	out := make([]domain.Project, len(in))
	for i, p := range in {
		out[i] = cloneProject(p)
	}
	return out
}

func cloneTask(t domain.Task) domain.Task {
	t.Tags = domain.CloneTags(t.Tags)
	return t
}

func cloneTasks(in []domain.Task) []domain.Task {
	out := make([]domain.Task, len(in))
	for i, t := range in {
		out[i] = cloneTask(t)
	}
	return out
}
