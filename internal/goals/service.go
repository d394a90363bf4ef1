package goals

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/dashboard/domain"
)

type GoalStore interface {
	List(ctx context.Context, owner string, f Filter) ([]Goal, error)
	Get(ctx context.Context, owner, id string) (Goal, error)
	Insert(ctx context.Context, owner string, g Goal) error
	Update(ctx context.Context, owner string, g Goal) error
	Delete(ctx context.Context, owner, id string) error
}

// Projects is the owner's local project view that linked project ids are
// checked against; *store.Store implements it.
type Projects interface {
	Project(id string) (domain.Project, bool)
}

// Service writes goals straight through to the table store. Unlike the
// dashboard collections there is no optimistic local copy.
type Service struct {
	goals GoalStore
	ids   domain.IDGenerator
	clock func() time.Time
	log   zerolog.Logger
}

func NewService(goals GoalStore, ids domain.IDGenerator, clock func() time.Time, log zerolog.Logger) *Service {
	if ids == nil {
		ids = domain.UUIDGenerator{}
	}
	if clock == nil {
		clock = time.Now
	}
	return &Service{goals: goals, ids: ids, clock: clock, log: log}
}

// List returns the goals matching f plus stats over all of the owner's goals.
func (s *Service) List(ctx context.Context, owner string, f Filter) ([]Goal, Stats, error) {
	all, err := s.goals.List(ctx, owner, Filter{})
	if err != nil {
		return nil, Stats{}, err
	}
	stats := BuildStats(all, s.clock())
	if f == (Filter{}) {
		return all, stats, nil
	}
	matched, err := s.goals.List(ctx, owner, f)
	if err != nil {
		return nil, Stats{}, err
	}
	return matched, stats, nil
}

func (s *Service) Get(ctx context.Context, owner, id string) (Goal, error) {
	return s.goals.Get(ctx, owner, id)
}

func (s *Service) Create(ctx context.Context, owner string, projects Projects, in NewGoal) (Goal, error) {
	if owner == "" {
		return Goal{}, domain.ErrIdentityRequired
	}
	now := s.clock().UTC()
	g := Goal{
		ID:           s.ids.NewID(),
		Title:        in.Title,
		Description:  in.Description,
		Category:     in.Category,
		Priority:     in.Priority,
		Status:       in.Status,
		TargetValue:  in.TargetValue,
		CurrentValue: in.CurrentValue,
		Unit:         in.Unit,
		Deadline:     in.Deadline,
		Tags:         uniqueTags(in.Tags),
		ProjectIDs:   domain.CloneTags(in.ProjectIDs),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if g.Category == "" {
		g.Category = CategoryContent
	}
	if g.Priority == "" {
		g.Priority = domain.PriorityMedium
	}
	if g.Status == "" {
		g.Status = StatusNotStarted
	}
	if err := g.validate(); err != nil {
		return Goal{}, err
	}
	if err := checkProjects(projects, g.ProjectIDs); err != nil {
		return Goal{}, err
	}

	if err := s.goals.Insert(ctx, owner, g); err != nil {
		s.log.Error().Err(err).Str("goal", g.ID).Msg("create goal failed")
		return Goal{}, err
	}
	return g, nil
}

// Update merges patch into the stored goal and validates the result as a
// whole. Only newly linked projects need to exist locally.
func (s *Service) Update(ctx context.Context, owner string, projects Projects, id string, patch Patch) (Goal, error) {
	cur, err := s.goals.Get(ctx, owner, id)
	if err != nil {
		return Goal{}, err
	}
	next := cur
	patch.Apply(&next)
	if err := next.validate(); err != nil {
		return Goal{}, err
	}
	if patch.ProjectIDs != nil {
		if err := checkProjects(projects, added(cur.ProjectIDs, next.ProjectIDs)); err != nil {
			return Goal{}, err
		}
	}
	next.UpdatedAt = s.clock().UTC()
	if next.UpdatedAt.Before(cur.UpdatedAt) {
		next.UpdatedAt = cur.UpdatedAt
	}

	if err := s.goals.Update(ctx, owner, next); err != nil {
		s.log.Error().Err(err).Str("goal", id).Msg("update goal failed")
		return Goal{}, err
	}
	return next, nil
}

func (s *Service) Delete(ctx context.Context, owner, id string) error {
	return s.goals.Delete(ctx, owner, id)
}

func checkProjects(projects Projects, ids []string) error {
	for _, id := range ids {
		if _, ok := projects.Project(id); !ok {
			return fmt.Errorf("project %s: %w", id, domain.ErrProjectNotFound)
		}
	}
	return nil
}

func added(before, after []string) []string {
	had := make(map[string]bool, len(before))
	for _, id := range before {
		had[id] = true
	}
	var out []string
	for _, id := range after {
		if !had[id] {
			out = append(out, id)
		}
	}
	return out
}
