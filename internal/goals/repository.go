package goals

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/dashboard/domain"
)

// Repo stores goals in the goals table, scoped by user_id.
type Repo struct {
	db *sqlx.DB
}

func NewRepo(db *sqlx.DB) *Repo {
	return &Repo{db: db}
}

const goalColumns = `id, user_id, title, description, category, priority, status, target_value,
       current_value, unit, deadline, tags, project_ids, created_at, updated_at`

type goalRow struct {
	ID           string         `db:"id"`
	UserID       string         `db:"user_id"`
	Title        string         `db:"title"`
	Description  sql.NullString `db:"description"`
	Category     string         `db:"category"`
	Priority     string         `db:"priority"`
	Status       string         `db:"status"`
	TargetValue  float64        `db:"target_value"`
	CurrentValue float64        `db:"current_value"`
	Unit         string         `db:"unit"`
	Deadline     sql.NullTime   `db:"deadline"`
	Tags         pq.StringArray `db:"tags"`
	ProjectIDs   pq.StringArray `db:"project_ids"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (r goalRow) toGoal() Goal {
	g := Goal{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description.String,
		Category:     Category(r.Category),
		Priority:     domain.Priority(r.Priority),
		Status:       Status(r.Status),
		TargetValue:  r.TargetValue,
		CurrentValue: r.CurrentValue,
		Unit:         r.Unit,
		Tags:         domain.CloneTags(r.Tags),
		ProjectIDs:   domain.CloneTags(r.ProjectIDs),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.Deadline.Valid {
		d := r.Deadline.Time
		g.Deadline = &d
	}
	return g
}

func toRow(owner string, g Goal) goalRow {
	row := goalRow{
		ID:           g.ID,
		UserID:       owner,
		Title:        g.Title,
		Description:  sql.NullString{String: g.Description, Valid: g.Description != ""},
		Category:     string(g.Category),
		Priority:     string(g.Priority),
		Status:       string(g.Status),
		TargetValue:  g.TargetValue,
		CurrentValue: g.CurrentValue,
		Unit:         g.Unit,
		Tags:         pq.StringArray(domain.CloneTags(g.Tags)),
		ProjectIDs:   pq.StringArray(domain.CloneTags(g.ProjectIDs)),
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
	}
	if g.Deadline != nil {
		row.Deadline = sql.NullTime{Time: *g.Deadline, Valid: true}
	}
	return row
}

// List returns the owner's goals matching f, newest first.
func (r *Repo) List(ctx context.Context, owner string, f Filter) ([]Goal, error) {
	const q = `
SELECT ` + goalColumns + `
FROM goals
WHERE user_id = $1
  AND ($2 = '' OR category = $2)
  AND ($3 = '' OR status = $3)
  AND ($4 = '' OR priority = $4)
  AND ($5 = '' OR title ILIKE '%' || $5 || '%' OR coalesce(description, '') ILIKE '%' || $5 || '%')
ORDER BY created_at DESC;
`
	var rows []goalRow
	err := r.db.SelectContext(ctx, &rows, q, owner, string(f.Category), string(f.Status), string(f.Priority), f.Search)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	out := make([]Goal, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toGoal())
	}
	return out, nil
}

func (r *Repo) Get(ctx context.Context, owner, id string) (Goal, error) {
	const q = `SELECT ` + goalColumns + ` FROM goals WHERE id = $1 AND user_id = $2;`
	var row goalRow
	if err := r.db.GetContext(ctx, &row, q, id, owner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Goal{}, fmt.Errorf("goal %s: %w", id, domain.ErrNotFound)
		}
		return Goal{}, fmt.Errorf("get goal %s: %w", id, err)
	}
	return row.toGoal(), nil
}

func (r *Repo) Insert(ctx context.Context, owner string, g Goal) error {
	const q = `
INSERT INTO goals (id, user_id, title, description, category, priority, status, target_value,
                   current_value, unit, deadline, tags, project_ids, created_at, updated_at)
VALUES (:id, :user_id, :title, :description, :category, :priority, :status, :target_value,
        :current_value, :unit, :deadline, :tags, :project_ids, :created_at, :updated_at);
`
	if _, err := r.db.NamedExecContext(ctx, q, toRow(owner, g)); err != nil {
		return fmt.Errorf("insert goal %s: %w", g.ID, err)
	}
	return nil
}

// Update overwrites every mutable column of the goal.
func (r *Repo) Update(ctx context.Context, owner string, g Goal) error {
	const q = `
UPDATE goals
SET title = :title, description = :description, category = :category, priority = :priority,
    status = :status, target_value = :target_value, current_value = :current_value, unit = :unit,
    deadline = :deadline, tags = :tags, project_ids = :project_ids, updated_at = :updated_at
WHERE id = :id AND user_id = :user_id;
`
	res, err := r.db.NamedExecContext(ctx, q, toRow(owner, g))
	if err != nil {
		return fmt.Errorf("update goal %s: %w", g.ID, err)
	}
	return affected(res, "update", g.ID)
}

func (r *Repo) Delete(ctx context.Context, owner, id string) error {
	const q = `DELETE FROM goals WHERE id = $1 AND user_id = $2;`
	res, err := r.db.ExecContext(ctx, q, id, owner)
	if err != nil {
		return fmt.Errorf("delete goal %s: %w", id, err)
	}
	return affected(res, "delete", id)
}

func affected(res sql.Result, op, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s goal %s: %w", op, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s goal %s: %w", op, id, domain.ErrNotFound)
	}
	return nil
}
