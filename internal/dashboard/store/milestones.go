package store

import (
	"context"
	"fmt"
	"time"

	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/dashboard/domain"
)

func (s *Store) CreateMilestone(in domain.NewMilestone) (domain.Milestone, *Receipt, error) {
	if err := in.Validate(); err != nil {
		return domain.Milestone{}, nil, err
	}

	s.mu.Lock()
	owner := s.owner
	if owner == "" {
		s.mu.Unlock()
		return domain.Milestone{}, nil, domain.ErrIdentityRequired
	}
	if s.projectIndex(in.ProjectID) < 0 {
		s.mu.Unlock()
		return domain.Milestone{}, nil, fmt.Errorf("project %s: %w", in.ProjectID, domain.ErrProjectNotFound)
	}

	m := domain.Milestone{
		ID:          s.opts.IDs.NewID(),
		Title:       in.Title,
		Description: in.Description,
		Deadline:    in.Deadline,
		Status:      in.Status,
		Progress:    in.Progress,
		ProjectID:   in.ProjectID,
		Order:       in.Order,
	}
	s.milestones = append(s.milestones, m)
	s.bump(m.ID)
	s.mu.Unlock()

	r := s.dispatch("create_milestone", m.ID,
		func(ctx context.Context) error {
			return s.remote.InsertMilestone(ctx, owner, m)
		},
		func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.owner != owner {
				return
			}
			if i := s.milestoneIndex(m.ID); i >= 0 {
				s.milestones = append(s.milestones[:i], s.milestones[i+1:]...)
			}
		})

	return m, r, nil
}

// UpdateMilestone merges patch into the milestone. Milestones carry no
// timestamps locally; the remote row's updated_at is still stamped.
func (s *Store) UpdateMilestone(id string, patch domain.MilestonePatch) (domain.Milestone, *Receipt, error) {
	if err := patch.Validate(); err != nil {
		return domain.Milestone{}, nil, err
	}

	s.mu.Lock()
	owner := s.owner
	if owner == "" {
		s.mu.Unlock()
		return domain.Milestone{}, nil, domain.ErrIdentityRequired
	}
	i := s.milestoneIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return domain.Milestone{}, nil, fmt.Errorf("milestone %s: %w", id, domain.ErrNotFound)
	}

	prev := s.milestones[i]
	next := prev
	patch.Apply(&next)
	s.milestones[i] = next
	rev := s.bump(id)
	updatedAt := s.now(time.Time{})
	s.mu.Unlock()

	var undo func()
	if s.rollsBack(false) {
		undo = func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if !s.current(owner, id, rev) {
				return
			}
			if j := s.milestoneIndex(id); j >= 0 {
				s.milestones[j] = prev
			}
		}
	}

	r := s.dispatch("update_milestone", id,
		func(ctx context.Context) error {
			return s.remote.UpdateMilestone(ctx, owner, id, patch, updatedAt)
		}, undo)

	return next, r, nil
}

func (s *Store) DeleteMilestone(id string) (*Receipt, error) {
	s.mu.Lock()
	owner := s.owner
	if owner == "" {
		s.mu.Unlock()
		return nil, domain.ErrIdentityRequired
	}
	i := s.milestoneIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("milestone %s: %w", id, domain.ErrNotFound)
	}

	removed := s.milestones[i]
	s.milestones = append(s.milestones[:i:i], s.milestones[i+1:]...)
	rev := s.bump(id)
	s.mu.Unlock()

	var undo func()
	if s.rollsBack(false) {
		undo = func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if !s.current(owner, id, rev) || s.milestoneIndex(id) >= 0 {
				return
			}
			s.milestones = insertAt(s.milestones, i, removed)
		}
	}

	r := s.dispatch("delete_milestone", id,
		func(ctx context.Context) error {
			return s.remote.DeleteMilestone(ctx, owner, id)
		}, undo)

	return r, nil
}
