package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/dashboard/domain"
)

const projectColumns = `id, user_id, title, description, category, deadline, priority, status,
       color, tags, progress, created_at, updated_at`

// ListProjects returns the owner's projects, newest first.
func (r *Repository) ListProjects(ctx context.Context, owner string) ([]domain.Project, error) {
	const q = `
SELECT ` + projectColumns + `
FROM projects
WHERE user_id = $1
ORDER BY created_at DESC;
`
	var rows []projectRow
	if err := r.db.SelectContext(ctx, &rows, q, owner); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	out := make([]domain.Project, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// InsertProject writes a locally created project under the same identity.
func (r *Repository) InsertProject(ctx context.Context, owner string, p domain.Project) error {
	const q = `
INSERT INTO projects (id, user_id, title, description, category, deadline, priority, status,
                      color, tags, progress, created_at, updated_at)
VALUES (:id, :user_id, :title, :description, :category, :deadline, :priority, :status,
        :color, :tags, :progress, :created_at, :updated_at);
`
	if _, err := r.db.NamedExecContext(ctx, q, projectToRow(owner, p)); err != nil {
		return fmt.Errorf("insert project %s: %w", p.ID, err)
	}
	return nil
}

// UpdateProject writes the patched fields and stamps updated_at.
func (r *Repository) UpdateProject(ctx context.Context, owner, id string, patch domain.ProjectPatch, updatedAt time.Time) error {
	b := &updateBuilder{}
	if patch.Title != nil {
		b.set("title", *patch.Title)
	}
	if patch.Description != nil {
		b.set("description", *patch.Description)
	}
	if patch.Category != nil {
		b.set("category", string(*patch.Category))
	}
	if patch.Deadline != nil {
		b.set("deadline", *patch.Deadline)
	}
	if patch.Priority != nil {
		b.set("priority", string(*patch.Priority))
	}
	if patch.Status != nil {
		b.set("status", string(*patch.Status))
	}
	if patch.Color != nil {
		b.set("color", *patch.Color)
	}
	if patch.Tags != nil {
		b.set("tags", pq.StringArray(domain.CloneTags(*patch.Tags)))
	}
	if patch.Progress != nil {
		b.set("progress", *patch.Progress)
	}
	b.set("updated_at", updatedAt)

	return r.execUpdate(ctx, b, "projects", id, owner)
}

// DeleteProject removes only the project row; dependent rows are untouched.
func (r *Repository) DeleteProject(ctx context.Context, owner, id string) error {
	const q = `DELETE FROM projects WHERE id = $1 AND user_id = $2;`
	return r.execDelete(ctx, q, "project "+id, id, owner)
}
