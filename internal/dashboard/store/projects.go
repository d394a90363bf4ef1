package store

import (
	"context"
	"fmt"
	"time"

	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/dashboard/domain"
)

// CreateProject inserts a new project locally and returns it before the
// remote insert has finished. A failed insert removes the project again.
func (s *Store) CreateProject(in domain.NewProject) (domain.Project, *Receipt, error) {
	if err := in.Validate(); err != nil {
		return domain.Project{}, nil, err
	}

	s.mu.Lock()
	owner := s.owner
	if owner == "" {
		s.mu.Unlock()
		return domain.Project{}, nil, domain.ErrIdentityRequired
	}

	now := s.now(time.Time{})
	p := domain.Project{
		ID:          s.opts.IDs.NewID(),
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Deadline:    in.Deadline,
		Priority:    in.Priority,
		Status:      in.Status,
		Color:       in.Color,
		Tags:        domain.CloneTags(in.Tags),
		Progress:    in.Progress,
		CreatedAt:   now,
		UpdatedAt:   now,
		Milestones:  []domain.Milestone{},
		Tasks:       []domain.Task{},
	}
	s.projects = append(s.projects, cloneProject(p))
	s.bump(p.ID)
	s.mu.Unlock()

	r := s.dispatch("create_project", p.ID,
		func(ctx context.Context) error {
			return s.remote.InsertProject(ctx, owner, p)
		},
		func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.owner != owner {
				return
			}
			if i := s.projectIndex(p.ID); i >= 0 {
				s.projects = append(s.projects[:i], s.projects[i+1:]...)
			}
			if s.currentID == p.ID {
				s.currentID = ""
			}
		})

	return p, r, nil
}

// UpdateProject merges patch into the project and stamps UpdatedAt.
func (s *Store) UpdateProject(id string, patch domain.ProjectPatch) (domain.Project, *Receipt, error) {
	if err := patch.Validate(); err != nil {
		return domain.Project{}, nil, err
	}

	s.mu.Lock()
	owner := s.owner
	if owner == "" {
		s.mu.Unlock()
		return domain.Project{}, nil, domain.ErrIdentityRequired
	}
	i := s.projectIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return domain.Project{}, nil, fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
	}

	prev := cloneProject(s.projects[i])
	next := cloneProject(prev)
	patch.Apply(&next)
	next.UpdatedAt = s.now(prev.UpdatedAt)
	s.projects[i] = next
	rev := s.bump(id)
	s.mu.Unlock()

	var undo func()
	if s.rollsBack(false) {
		undo = func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if !s.current(owner, id, rev) {
				return
			}
			if j := s.projectIndex(id); j >= 0 {
				s.projects[j] = prev
			}
		}
	}

	updatedAt := next.UpdatedAt
	r := s.dispatch("update_project", id,
		func(ctx context.Context) error {
			return s.remote.UpdateProject(ctx, owner, id, patch, updatedAt)
		}, undo)

	return cloneProject(next), r, nil
}

// DeleteProject removes the project and, locally, every task and milestone
// that references it. The remote delete only targets the project row unless
// CascadeRemote is set.
func (s *Store) DeleteProject(id string) (*Receipt, error) {
	s.mu.Lock()
	owner := s.owner
	if owner == "" {
		s.mu.Unlock()
		return nil, domain.ErrIdentityRequired
	}
	i := s.projectIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
	}

	removed := s.projects[i]
	s.projects = append(s.projects[:i:i], s.projects[i+1:]...)

	var (
		tasks      []indexedTask
		milestones []indexedMilestone
	)
	keptTasks := s.tasks[:0:0]
	for j, t := range s.tasks {
		if t.InProject(id) {
			tasks = append(tasks, indexedTask{at: j, task: t})
			continue
		}
		keptTasks = append(keptTasks, t)
	}
	s.tasks = keptTasks

	keptMilestones := s.milestones[:0:0]
	for j, m := range s.milestones {
		if m.ProjectID == id {
			milestones = append(milestones, indexedMilestone{at: j, milestone: m})
			continue
		}
		keptMilestones = append(keptMilestones, m)
	}
	s.milestones = keptMilestones

	wasCurrent := s.currentID == id
	if wasCurrent {
		s.currentID = ""
	}
	rev := s.bump(id)
	s.mu.Unlock()

	var undo func()
	if s.rollsBack(false) {
		undo = func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if !s.current(owner, id, rev) || s.projectIndex(id) >= 0 {
				return
			}
			s.projects = insertAt(s.projects, i, removed)
			for _, t := range tasks {
				if s.taskIndex(t.task.ID) < 0 {
					s.tasks = insertAt(s.tasks, t.at, t.task)
				}
			}
			for _, m := range milestones {
				if s.milestoneIndex(m.milestone.ID) < 0 {
					s.milestones = insertAt(s.milestones, m.at, m.milestone)
				}
			}
			if wasCurrent && s.currentID == "" {
				s.currentID = id
			}
		}
	}

	cascade := s.opts.CascadeRemote
	r := s.dispatch("delete_project", id,
		func(ctx context.Context) error {
			if cascade {
				if err := s.remote.DeleteTasksByProject(ctx, owner, id); err != nil {
					return fmt.Errorf("delete tasks of project %s: %w", id, err)
				}
				if err := s.remote.DeleteMilestonesByProject(ctx, owner, id); err != nil {
					return fmt.Errorf("delete milestones of project %s: %w", id, err)
				}
			}
			return s.remote.DeleteProject(ctx, owner, id)
		}, undo)

	return r, nil
}

type indexedTask struct {
	at   int
	task domain.Task
}

type indexedMilestone struct {
	at        int
	milestone domain.Milestone
}

// insertAt puts v at position i, or at the end when i is past it.
func insertAt[T any](xs []T, i int, v T) []T {
	if i >= len(xs) {
		return append(xs, v)
	}
	xs = append(xs, v)
	copy(xs[i+1:], xs[i:])
	xs[i] = v
	return xs
}
