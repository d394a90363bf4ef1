package timetracking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of *pgxpool.Pool the repository uses.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repo struct {
	db Querier
}

func NewRepo(db Querier) *Repo {
	return &Repo{db: db}
}

const entryColumns = `id, task_id, project_id, description, duration, date, created_at, updated_at`

func (r *Repo) Insert(ctx context.Context, owner string, e TimeEntry) error {
	const q = `
insert into time_entries (id, user_id, task_id, project_id, description, duration, date, created_at, updated_at)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`
	_, err := r.db.Exec(ctx, q, e.ID, owner, e.TaskID, e.ProjectID, e.Description, e.Duration, e.Date, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("time entry %s already exists: %w", e.ID, err)
		}
		return fmt.Errorf("insert time entry: %w", err)
	}
	return nil
}

// List returns the owner's entries matching f, newest day first. from and
// to bound the date column inclusively; zero values leave that side open.
func (r *Repo) List(ctx context.Context, owner string, f Filter, from, to time.Time) ([]TimeEntry, error) {
	var (
		where = []string{"user_id = $1"}
		args  = []any{owner}
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.ProjectID != "" {
		add("project_id = $%d", f.ProjectID)
	}
	if f.TaskID != "" {
		add("task_id = $%d", f.TaskID)
	}
	if !from.IsZero() {
		add("date >= $%d", from)
	}
	if !to.IsZero() {
		add("date <= $%d", to)
	}

	q := "select " + entryColumns + " from time_entries where " + strings.Join(where, " and ") +
		" order by date desc, created_at desc"

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list time entries: %w", err)
	}
	defer rows.Close()

	out := make([]TimeEntry, 0, 32)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, owner, id string) (TimeEntry, error) {
	q := "select " + entryColumns + " from time_entries where user_id = $1 and id = $2"
	e, err := scanEntry(r.db.QueryRow(ctx, q, owner, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return TimeEntry{}, ErrEntryNotFound
	}
	return e, err
}

func (r *Repo) Delete(ctx context.Context, owner, id string) error {
	ct, err := r.db.Exec(ctx, `delete from time_entries where user_id = $1 and id = $2`, owner, id)
	if err != nil {
		return fmt.Errorf("delete time entry: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func scanEntry(row pgx.Row) (TimeEntry, error) {
	var e TimeEntry
	err := row.Scan(&e.ID, &e.TaskID, &e.ProjectID, &e.Description, &e.Duration, &e.Date, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}
