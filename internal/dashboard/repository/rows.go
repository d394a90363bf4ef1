package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/dashboard/domain"
)

// projectRow mirrors the projects table.
type projectRow struct {
	ID          string         `db:"id"`
	UserID      string         `db:"user_id"`
	Title       string         `db:"title"`
	Description sql.NullString `db:"description"`
	Category    string         `db:"category"`
	Deadline    time.Time      `db:"deadline"`
	Priority    string         `db:"priority"`
	Status      string         `db:"status"`
	Color       string         `db:"color"`
	Tags        pq.StringArray `db:"tags"`
	Progress    int            `db:"progress"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

type taskRow struct {
	ID          string         `db:"id"`
	UserID      string         `db:"user_id"`
	ProjectID   sql.NullString `db:"project_id"`
	Title       string         `db:"title"`
	Description sql.NullString `db:"description"`
	Priority    string         `db:"priority"`
	Status      string         `db:"status"`
	Assignee    sql.NullString `db:"assignee"`
	Deadline    sql.NullTime   `db:"deadline"`
	Tags        pq.StringArray `db:"tags"`
	TimeSpent   int            `db:"time_spent"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

type milestoneRow struct {
	ID          string         `db:"id"`
	UserID      string         `db:"user_id"`
	ProjectID   string         `db:"project_id"`
	Title       string         `db:"title"`
	Description sql.NullString `db:"description"`
	Deadline    time.Time      `db:"deadline"`
	Status      string         `db:"status"`
	Progress    int            `db:"progress"`
	Order       int            `db:"order"`
}

// Enum columns are passed through unchecked; the store trusts what the table holds.

func (r projectRow) toDomain() domain.Project {
	return domain.Project{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description.String,
		Category:    domain.Category(r.Category),
		Deadline:    r.Deadline,
		Priority:    domain.Priority(r.Priority),
		Status:      domain.ProjectStatus(r.Status),
		Color:       r.Color,
		Tags:        domain.CloneTags(r.Tags),
		Progress:    r.Progress,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		Milestones:  []domain.Milestone{},
		Tasks:       []domain.Task{},
	}
}

func (r taskRow) toDomain() domain.Task {
	t := domain.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description.String,
		Priority:    domain.Priority(r.Priority),
		Status:      domain.TaskStatus(r.Status),
		Tags:        domain.CloneTags(r.Tags),
		TimeSpent:   r.TimeSpent,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.Assignee.Valid {
		a := r.Assignee.String
		t.Assignee = &a
	}
	if r.Deadline.Valid {
		d := r.Deadline.Time
		t.Deadline = &d
	}
	if r.ProjectID.Valid {
		p := r.ProjectID.String
		t.ProjectID = &p
	}
	return t
}

func (r milestoneRow) toDomain() domain.Milestone {
	return domain.Milestone{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description.String,
		Deadline:    r.Deadline,
		Status:      domain.MilestoneStatus(r.Status),
		Progress:    r.Progress,
		ProjectID:   r.ProjectID,
		Order:       r.Order,
	}
}

func projectToRow(owner string, p domain.Project) projectRow {
	return projectRow{
		ID:          p.ID,
		UserID:      owner,
		Title:       p.Title,
		Description: sql.NullString{String: p.Description, Valid: true},
		Category:    string(p.Category),
		Deadline:    p.Deadline,
		Priority:    string(p.Priority),
		Status:      string(p.Status),
		Color:       p.Color,
		Tags:        pq.StringArray(domain.CloneTags(p.Tags)),
		Progress:    p.Progress,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func taskToRow(owner string, t domain.Task) taskRow {
	row := taskRow{
		ID:          t.ID,
		UserID:      owner,
		Title:       t.Title,
		Description: sql.NullString{String: t.Description, Valid: true},
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		Tags:        pq.StringArray(domain.CloneTags(t.Tags)),
		TimeSpent:   t.TimeSpent,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.ProjectID != nil {
		row.ProjectID = sql.NullString{String: *t.ProjectID, Valid: true}
	}
	if t.Assignee != nil {
		row.Assignee = sql.NullString{String: *t.Assignee, Valid: true}
	}
	if t.Deadline != nil {
		row.Deadline = sql.NullTime{Time: *t.Deadline, Valid: true}
	}
	return row
}

func milestoneToRow(owner string, m domain.Milestone) milestoneRow {
	return milestoneRow{
		ID:          m.ID,
		UserID:      owner,
		ProjectID:   m.ProjectID,
		Title:       m.Title,
		Description: sql.NullString{String: m.Description, Valid: true},
		Deadline:    m.Deadline,
		Status:      string(m.Status),
		Progress:    m.Progress,
		Order:       m.Order,
	}
}

// IsUniqueViolation reports whether err is a Postgres unique-key violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pq.Error
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsForeignKeyViolation reports whether err is a Postgres foreign-key violation.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pq.Error
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
