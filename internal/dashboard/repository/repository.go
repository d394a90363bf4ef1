package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/dashboard/domain"
)

// Repository reads and writes the owner-scoped dashboard tables
// (projects, tasks, milestones). Every statement filters on user_id.
type Repository struct {
	db *sqlx.DB
}

// New creates a repository over an open sqlx handle using the postgres bindvar style.
func New(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// updateBuilder assembles "col = $n" assignments for partial updates.
type updateBuilder struct {
	sets []string
	args []any
}

func (b *updateBuilder) set(col string, v any) {
	b.args = append(b.args, v)
	b.sets = append(b.sets, fmt.Sprintf("%s = $%d", col, len(b.args)))
}

func (b *updateBuilder) empty() bool {
	return len(b.sets) == 0
}

// query renders the UPDATE statement keyed by id and owner.
func (b *updateBuilder) query(table, id, owner string) (string, []any) {
	args := append(b.args, id, owner)
	q := fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = $%d AND user_id = $%d",
		table, strings.Join(b.sets, ", "), len(args)-1, len(args),
	)
	return q, args
}

func (r *Repository) execUpdate(ctx context.Context, b *updateBuilder, table, id, owner string) error {
	q, args := b.query(table, id, owner)
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update %s %s: %w", table, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s %s: %w", table, id, err)
	}
	if n == 0 {
		return fmt.Errorf("update %s %s: %w", table, id, domain.ErrNotFound)
	}
	return nil
}

func (r *Repository) execDelete(ctx context.Context, q, what string, args ...any) error {
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("delete %s: %w", what, err)
	}
	return nil
}
