package cronjob

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingReconciler struct {
	reconciles atomic.Int32
	evictions  atomic.Int32
	err        error
}

func (c *countingReconciler) ReconcileAll(context.Context) (int, error) {
	c.reconciles.Add(1)
	return 2, c.err
}

func (c *countingReconciler) EvictIdle(context.Context) int {
	c.evictions.Add(1)
	return 1
}

func TestScheduler_RunsJob(t *testing.T) {
	r := &countingReconciler{}
	s := NewScheduler(r, "* * * * * *", time.Second, zerolog.Nop())
	require.NoError(t, s.Start())

	assert.Eventually(t, func() bool { return r.reconciles.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	assert.Equal(t, r.reconciles.Load(), r.evictions.Load())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}

func TestScheduler_InvalidSpec(t *testing.T) {
	s := NewScheduler(&countingReconciler{}, "every tuesday", time.Second, zerolog.Nop())
	assert.Error(t, s.Start())
}

func TestScheduler_RunLogsFailure(t *testing.T) {
	r := &countingReconciler{err: errors.New("db down")}
	s := NewScheduler(r, "@every 1h", time.Second, zerolog.Nop())

	s.run()
	assert.EqualValues(t, 1, r.reconciles.Load())
}
