package timetracking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	timerKeyPrefix = "tt:timer:"        // running timer per owner: tt:timer:{user_id}
	timerTTL       = 7 * 24 * time.Hour // abandoned timers expire
)

// Timer is the stopwatch state for one owner. Elapsed time is Accumulated
// plus, while running, the time since StartedAt.
type Timer struct {
	TaskID      string     `json:"taskId"`
	Description string     `json:"description"`
	FirstStart  time.Time  `json:"firstStart"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	Accumulated int64      `json:"accumulated"` // seconds
}

func (t Timer) Running() bool {
	return t.StartedAt != nil
}

// Elapsed is the total tracked time at now.
func (t Timer) Elapsed(now time.Time) time.Duration {
	d := time.Duration(t.Accumulated) * time.Second
	if t.StartedAt != nil && now.After(*t.StartedAt) {
		d += now.Sub(*t.StartedAt).Truncate(time.Second)
	}
	return d
}

// TimerStore keeps one timer per owner in Redis so it survives restarts and
// is shared by every API instance.
type TimerStore struct {
	client *redis.Client
	clock  func() time.Time
}

func NewTimerStore(client *redis.Client, clock func() time.Time) *TimerStore {
	if clock == nil {
		clock = time.Now
	}
	return &TimerStore{client: client, clock: clock}
}

func (s *TimerStore) Get(ctx context.Context, owner string) (Timer, error) {
	data, err := s.client.Get(ctx, s.key(owner)).Result()
	if err == redis.Nil {
		return Timer{}, ErrTimerNotStarted
	}
	if err != nil {
		return Timer{}, fmt.Errorf("failed to get timer: %w", err)
	}

	var t Timer
	if err := json.Unmarshal([]byte(data), &t); err != nil {
		return Timer{}, fmt.Errorf("failed to unmarshal timer: %w", err)
	}
	return t, nil
}

// Start begins a fresh timer for taskID. Starting while another timer is
// running fails; a paused timer is discarded.
func (s *TimerStore) Start(ctx context.Context, owner, taskID, description string) (Timer, error) {
	if taskID == "" {
		return Timer{}, ErrTaskRequired
	}
	return s.transition(ctx, owner, func(cur Timer, found bool) (Timer, error) {
		if found && cur.Running() {
			return Timer{}, ErrTimerRunning
		}
		now := s.clock().UTC()
		return Timer{TaskID: taskID, Description: description, FirstStart: now, StartedAt: &now}, nil
	})
}

func (s *TimerStore) Pause(ctx context.Context, owner string) (Timer, error) {
	return s.transition(ctx, owner, func(t Timer, found bool) (Timer, error) {
		if !found {
			return Timer{}, ErrTimerNotStarted
		}
		if !t.Running() {
			return Timer{}, ErrTimerNotRunning
		}
		t.Accumulated = int64(t.Elapsed(s.clock().UTC()) / time.Second)
		t.StartedAt = nil
		return t, nil
	})
}

func (s *TimerStore) Resume(ctx context.Context, owner string) (Timer, error) {
	return s.transition(ctx, owner, func(t Timer, found bool) (Timer, error) {
		if !found {
			return Timer{}, ErrTimerNotStarted
		}
		if t.Running() {
			return Timer{}, ErrTimerRunning
		}
		now := s.clock().UTC()
		t.StartedAt = &now
		return t, nil
	})
}

// Stop removes the timer and returns it with its final elapsed time. Only
// one of several concurrent stops gets the timer.
func (s *TimerStore) Stop(ctx context.Context, owner string) (Timer, time.Duration, error) {
	var (
		t       Timer
		elapsed time.Duration
	)
	key := s.key(owner)
	err := s.watch(ctx, key, func(tx *redis.Tx) error {
		cur, found, err := s.read(ctx, tx, key)
		if err != nil {
			return err
		}
		if !found {
			return ErrTimerNotStarted
		}
		t, elapsed = cur, cur.Elapsed(s.clock().UTC())
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			return nil
		})
		return err
	})
	if err != nil {
		return Timer{}, 0, err
	}
	return t, elapsed, nil
}

// transition reads the owner's timer, lets next decide the new state and
// writes it back. The write is dropped and retried if the key changed in
// between.
func (s *TimerStore) transition(ctx context.Context, owner string, next func(cur Timer, found bool) (Timer, error)) (Timer, error) {
	var out Timer
	key := s.key(owner)
	err := s.watch(ctx, key, func(tx *redis.Tx) error {
		cur, found, err := s.read(ctx, tx, key)
		if err != nil {
			return err
		}
		t, err := next(cur, found)
		if err != nil {
			return err
		}
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("failed to marshal timer: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, timerTTL)
			return nil
		})
		if err != nil {
			return err
		}
		out = t
		return nil
	})
	return out, err
}

const timerRetries = 5

func (s *TimerStore) watch(ctx context.Context, key string, fn func(tx *redis.Tx) error) error {
	for i := 0; i < timerRetries; i++ {
		err := s.client.Watch(ctx, fn, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil && !isTimerErr(err) {
			return fmt.Errorf("failed to save timer: %w", err)
		}
		return err
	}
	return ErrTimerBusy
}

func (s *TimerStore) read(ctx context.Context, tx *redis.Tx, key string) (Timer, bool, error) {
	data, err := tx.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return Timer{}, false, nil
	}
	if err != nil {
		return Timer{}, false, fmt.Errorf("failed to get timer: %w", err)
	}
	var t Timer
	if err := json.Unmarshal([]byte(data), &t); err != nil {
		return Timer{}, false, fmt.Errorf("failed to unmarshal timer: %w", err)
	}
	return t, true, nil
}

func isTimerErr(err error) bool {
	return errors.Is(err, ErrTimerRunning) || errors.Is(err, ErrTimerNotRunning) || errors.Is(err, ErrTimerNotStarted)
}

func (s *TimerStore) key(owner string) string {
	return timerKeyPrefix + owner
}
