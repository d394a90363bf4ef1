package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/dashboard/domain"
)

const taskColumns = `id, user_id, project_id, title, description, priority, status, assignee,
       deadline, tags, time_spent, created_at, updated_at`

// ListTasks returns the owner's tasks, newest first.
func (r *Repository) ListTasks(ctx context.Context, owner string) ([]domain.Task, error) {
	const q = `
SELECT ` + taskColumns + `
FROM tasks
WHERE user_id = $1
ORDER BY created_at DESC;
`
	var rows []taskRow
	if err := r.db.SelectContext(ctx, &rows, q, owner); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	out := make([]domain.Task, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *Repository) InsertTask(ctx context.Context, owner string, t domain.Task) error {
	const q = `
INSERT INTO tasks (id, user_id, project_id, title, description, priority, status, assignee,
                   deadline, tags, time_spent, created_at, updated_at)
VALUES (:id, :user_id, :project_id, :title, :description, :priority, :status, :assignee,
        :deadline, :tags, :time_spent, :created_at, :updated_at);
`
	if _, err := r.db.NamedExecContext(ctx, q, taskToRow(owner, t)); err != nil {
		return fmt.Errorf("insert task %s: %w", t.ID, err)
	}
	return nil
}

func (r *Repository) UpdateTask(ctx context.Context, owner, id string, patch domain.TaskPatch, updatedAt time.Time) error {
	b := &updateBuilder{}
	if patch.Title != nil {
		b.set("title", *patch.Title)
	}
	if patch.Description != nil {
		b.set("description", *patch.Description)
	}
	if patch.Priority != nil {
		b.set("priority", string(*patch.Priority))
	}
	if patch.Status != nil {
		b.set("status", string(*patch.Status))
	}
	if patch.Assignee != nil {
		b.set("assignee", nullable(*patch.Assignee))
	}
	if patch.Deadline != nil {
		b.set("deadline", *patch.Deadline)
	}
	if patch.Tags != nil {
		b.set("tags", pq.StringArray(domain.CloneTags(*patch.Tags)))
	}
	if patch.ProjectID != nil {
		b.set("project_id", nullable(*patch.ProjectID))
	}
	if patch.TimeSpent != nil {
		b.set("time_spent", *patch.TimeSpent)
	}
	b.set("updated_at", updatedAt)

	return r.execUpdate(ctx, b, "tasks", id, owner)
}

func (r *Repository) DeleteTask(ctx context.Context, owner, id string) error {
	const q = `DELETE FROM tasks WHERE id = $1 AND user_id = $2;`
	return r.execDelete(ctx, q, "task "+id, id, owner)
}

// DeleteTasksByProject removes every task row that references the project.
func (r *Repository) DeleteTasksByProject(ctx context.Context, owner, projectID string) error {
	const q = `DELETE FROM tasks WHERE project_id = $1 AND user_id = $2;`
	return r.execDelete(ctx, q, "tasks of project "+projectID, projectID, owner)
}

// nullable maps "" to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
