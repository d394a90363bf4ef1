package store

import (
	"context"
	"fmt"
	"time"

	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/dashboard/domain"
)

func (s *Store) CreateTask(in domain.NewTask) (domain.Task, *Receipt, error) {
	if err := in.Validate(); err != nil {
		return domain.Task{}, nil, err
	}

	s.mu.Lock()
	owner := s.owner
	if owner == "" {
		s.mu.Unlock()
		return domain.Task{}, nil, domain.ErrIdentityRequired
	}
	if in.ProjectID != nil && s.projectIndex(*in.ProjectID) < 0 {
		s.mu.Unlock()
		return domain.Task{}, nil, fmt.Errorf("project %s: %w", *in.ProjectID, domain.ErrProjectNotFound)
	}

	now := s.now(time.Time{})
	t := domain.Task{
		ID:          s.opts.IDs.NewID(),
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		Status:      in.Status,
		Assignee:    in.Assignee,
		Deadline:    in.Deadline,
		Tags:        domain.CloneTags(in.Tags),
		ProjectID:   in.ProjectID,
		TimeSpent:   in.TimeSpent,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.tasks = append(s.tasks, cloneTask(t))
	s.bump(t.ID)
	s.mu.Unlock()

	r := s.dispatch("create_task", t.ID,
		func(ctx context.Context) error {
			return s.remote.InsertTask(ctx, owner, t)
		},
		func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.owner != owner {
				return
			}
			if i := s.taskIndex(t.ID); i >= 0 {
				s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			}
		})

	return t, r, nil
}

// UpdateTask merges patch into the task. Moving a task to another project
// requires that project to exist locally.
func (s *Store) UpdateTask(id string, patch domain.TaskPatch) (domain.Task, *Receipt, error) {
	if err := patch.Validate(); err != nil {
		return domain.Task{}, nil, err
	}
	return s.updateTask(id, func(domain.Task) domain.TaskPatch { return patch })
}

// AddTimeSpent adds minutes to a task's TimeSpent. The sum is taken under
// the write lock so concurrent bookings all count.
func (s *Store) AddTimeSpent(id string, minutes int) (domain.Task, *Receipt, error) {
	return s.updateTask(id, func(cur domain.Task) domain.TaskPatch {
		total := cur.TimeSpent + minutes
		return domain.TaskPatch{TimeSpent: &total}
	})
}

// updateTask builds the patch from the task as it is under the lock.
func (s *Store) updateTask(id string, build func(cur domain.Task) domain.TaskPatch) (domain.Task, *Receipt, error) {
	s.mu.Lock()
	owner := s.owner
	if owner == "" {
		s.mu.Unlock()
		return domain.Task{}, nil, domain.ErrIdentityRequired
	}
	i := s.taskIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return domain.Task{}, nil, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}
	patch := build(s.tasks[i])
	if patch.ProjectID != nil && *patch.ProjectID != "" && s.projectIndex(*patch.ProjectID) < 0 {
		s.mu.Unlock()
		return domain.Task{}, nil, fmt.Errorf("project %s: %w", *patch.ProjectID, domain.ErrProjectNotFound)
	}

	prev := cloneTask(s.tasks[i])
	next := cloneTask(prev)
	patch.Apply(&next)
	next.UpdatedAt = s.now(prev.UpdatedAt)
	s.tasks[i] = next
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
			if j := s.taskIndex(id); j >= 0 {
				s.tasks[j] = prev
			}
		}
	}

	updatedAt := next.UpdatedAt
	r := s.dispatch("update_task", id,
		func(ctx context.Context) error {
			return s.remote.UpdateTask(ctx, owner, id, patch, updatedAt)
		}, undo)

	return cloneTask(next), r, nil
}

func (s *Store) DeleteTask(id string) (*Receipt, error) {
	s.mu.Lock()
	owner := s.owner
	if owner == "" {
		s.mu.Unlock()
		return nil, domain.ErrIdentityRequired
	}
	i := s.taskIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}

	removed := s.tasks[i]
	s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	rev := s.bump(id)
	s.mu.Unlock()

	var undo func()
	if s.rollsBack(false) {
		undo = func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if !s.current(owner, id, rev) || s.taskIndex(id) >= 0 {
				return
			}
			s.tasks = insertAt(s.tasks, i, removed)
		}
	}

	r := s.dispatch("delete_task", id,
		func(ctx context.Context) error {
			return s.remote.DeleteTask(ctx, owner, id)
		}, undo)

	return r, nil
}
