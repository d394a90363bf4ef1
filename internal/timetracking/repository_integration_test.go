package timetracking

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/storage/postgres"
)

// setupPool connects to TEST_DB_DSN and applies the schema.
// Skips when TEST_DB_DSN is not set.
func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set, skipping PostgreSQL integration test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = postgres.Migrate(ctx, pool)
	require.NoError(t, err)
	return pool
}

func TestRepo_Integration(t *testing.T) {
	pool := setupPool(t)
	repo := NewRepo(pool)
	ctx := context.Background()
	owner := "it-" + time.Now().Format("150405.000000")
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `delete from time_entries where user_id = $1`, owner)
	})

	now := time.Now().UTC().Truncate(time.Microsecond)
	task, project := "t1", "p1"
	entries := []TimeEntry{
		{ID: "00000000-0000-4000-8000-000000000001", TaskID: &task, ProjectID: &project, Description: "cut", Duration: 30,
			Date: time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC), CreatedAt: now, UpdatedAt: now},
		{ID: "00000000-0000-4000-8000-000000000002", Description: "misc", Duration: 5,
			Date: time.Date(2025, 1, 22, 0, 0, 0, 0, time.UTC), CreatedAt: now, UpdatedAt: now},
	}
	for _, e := range entries {
		require.NoError(t, repo.Insert(ctx, owner, e))
	}
	assert.Error(t, repo.Insert(ctx, owner, entries[0]), "duplicate id")

	all, err := repo.List(ctx, owner, Filter{}, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, entries[1].ID, all[0].ID, "newest day first")
	assert.Nil(t, all[0].TaskID)

	byProject, err := repo.List(ctx, owner, Filter{ProjectID: project}, time.Date(2025, 1, 19, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 21, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, byProject, 1)
	assert.Equal(t, "cut", byProject[0].Description)

	got, err := repo.Get(ctx, owner, entries[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 30, got.Duration)

	_, err = repo.Get(ctx, "someone-else", entries[0].ID)
	assert.ErrorIs(t, err, ErrEntryNotFound)

	require.NoError(t, repo.Delete(ctx, owner, entries[0].ID))
	assert.ErrorIs(t, repo.Delete(ctx, owner, entries[0].ID), ErrEntryNotFound)
}
