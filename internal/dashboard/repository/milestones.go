package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/dashboard/domain"
)

// ListMilestones returns the owner's milestones, earliest deadline first.
func (r *Repository) ListMilestones(ctx context.Context, owner string) ([]domain.Milestone, error) {
	const q = `
SELECT id, user_id, project_id, title, description, deadline, status, progress, "order"
FROM milestones
WHERE user_id = $1
ORDER BY deadline ASC;
`
	var rows []milestoneRow
	if err := r.db.SelectContext(ctx, &rows, q, owner); err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}

	out := make([]domain.Milestone, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *Repository) InsertMilestone(ctx context.Context, owner string, m domain.Milestone) error {
	const q = `
INSERT INTO milestones (id, user_id, project_id, title, description, deadline, status, progress, "order")
VALUES (:id, :user_id, :project_id, :title, :description, :deadline, :status, :progress, :order);
`
	if _, err := r.db.NamedExecContext(ctx, q, milestoneToRow(owner, m)); err != nil {
		return fmt.Errorf("insert milestone %s: %w", m.ID, err)
	}
	return nil
}

func (r *Repository) UpdateMilestone(ctx context.Context, owner, id string, patch domain.MilestonePatch, updatedAt time.Time) error {
	b := &updateBuilder{}
	if patch.Title != nil {
		b.set("title", *patch.Title)
	}
	if patch.Description != nil {
		b.set("description", *patch.Description)
	}
	if patch.Deadline != nil {
		b.set("deadline", *patch.Deadline)
	}
	if patch.Status != nil {
		b.set("status", string(*patch.Status))
	}
	if patch.Progress != nil {
		b.set("progress", *patch.Progress)
	}
	if patch.Order != nil {
		b.set(`"order"`, *patch.Order)
	}
	b.set("updated_at", updatedAt)

	return r.execUpdate(ctx, b, "milestones", id, owner)
}

func (r *Repository) DeleteMilestone(ctx context.Context, owner, id string) error {
	const q = `DELETE FROM milestones WHERE id = $1 AND user_id = $2;`
	return r.execDelete(ctx, q, "milestone "+id, id, owner)
}

// DeleteMilestonesByProject removes every milestone row of the project.
func (r *Repository) DeleteMilestonesByProject(ctx context.Context, owner, projectID string) error {
	const q = `DELETE FROM milestones WHERE project_id = $1 AND user_id = $2;`
	return r.execDelete(ctx, q, "milestones of project "+projectID, projectID, owner)
}
