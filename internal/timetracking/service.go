package timetracking

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/dashboard/domain"
	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/dashboard/store"
)

type EntryStore interface {
	Insert(ctx context.Context, owner string, e TimeEntry) error
	List(ctx context.Context, owner string, f Filter, from, to time.Time) ([]TimeEntry, error)
	Get(ctx context.Context, owner, id string) (TimeEntry, error)
	Delete(ctx context.Context, owner, id string) error
}

// Tasks is the owner's local task view. Booked time flows back into the
// task's TimeSpent through it; *store.Store implements it.
type Tasks interface {
	Task(id string) (domain.Task, bool)
	AddTimeSpent(id string, minutes int) (domain.Task, *store.Receipt, error)
}

type Service struct {
	entries EntryStore
	timers  *TimerStore
	ids     domain.IDGenerator
	clock   func() time.Time
	log     zerolog.Logger
}

func NewService(entries EntryStore, timers *TimerStore, ids domain.IDGenerator, clock func() time.Time, log zerolog.Logger) *Service {
	if ids == nil {
		ids = domain.UUIDGenerator{}
	}
	if clock == nil {
		clock = time.Now
	}
	return &Service{entries: entries, timers: timers, ids: ids, clock: clock, log: log}
}

// AddEntry books a manual entry. Project and description default to the
// task's project and title.
func (s *Service) AddEntry(ctx context.Context, owner string, tasks Tasks, in NewEntry) (TimeEntry, error) {
	if in.TaskID == "" {
		return TimeEntry{}, ErrTaskRequired
	}
	if in.Duration <= 0 {
		return TimeEntry{}, ErrInvalidDuration
	}
	task, ok := tasks.Task(in.TaskID)
	if !ok {
		return TimeEntry{}, fmt.Errorf("task %s: %w", in.TaskID, domain.ErrNotFound)
	}

	date := in.Date
	if date.IsZero() {
		date = s.clock()
	}
	e := s.newEntry(task, in.ProjectID, in.Description, "Manual entry", in.Duration, date)
	if err := s.entries.Insert(ctx, owner, e); err != nil {
		return TimeEntry{}, err
	}
	s.book(tasks, in.TaskID, in.Duration)
	return e, nil
}

func (s *Service) Timer(ctx context.Context, owner string) (Timer, error) {
	return s.timers.Get(ctx, owner)
}

func (s *Service) StartTimer(ctx context.Context, owner string, tasks Tasks, taskID, description string) (Timer, error) {
	if taskID == "" {
		return Timer{}, ErrTaskRequired
	}
	if _, ok := tasks.Task(taskID); !ok {
		return Timer{}, fmt.Errorf("task %s: %w", taskID, domain.ErrNotFound)
	}
	return s.timers.Start(ctx, owner, taskID, description)
}

func (s *Service) PauseTimer(ctx context.Context, owner string) (Timer, error) {
	return s.timers.Pause(ctx, owner)
}

func (s *Service) ResumeTimer(ctx context.Context, owner string) (Timer, error) {
	return s.timers.Resume(ctx, owner)
}

// StopTimer ends the timer and books whole elapsed minutes against its task.
// The entry is recorded even when under a minute was tracked.
func (s *Service) StopTimer(ctx context.Context, owner string, tasks Tasks) (TimeEntry, error) {
	t, elapsed, err := s.timers.Stop(ctx, owner)
	if err != nil {
		return TimeEntry{}, err
	}

	minutes := int(elapsed / time.Minute)
	task, ok := tasks.Task(t.TaskID)
	if !ok {
		// the task went away while the timer ran
		task = domain.Task{ID: t.TaskID}
	}
	e := s.newEntry(task, "", t.Description, "Time tracking", minutes, s.clock())
	if err := s.entries.Insert(ctx, owner, e); err != nil {
		return TimeEntry{}, err
	}
	if ok && minutes > 0 {
		s.book(tasks, t.TaskID, minutes)
	}
	return e, nil
}

func (s *Service) List(ctx context.Context, owner string, f Filter) ([]TimeEntry, error) {
	from, to := f.Period.Bounds(s.clock())
	return s.entries.List(ctx, owner, f, from, to)
}

func (s *Service) Delete(ctx context.Context, owner, id string) error {
	return s.entries.Delete(ctx, owner, id)
}

func (s *Service) Summary(ctx context.Context, owner string, f Filter) (Summary, error) {
	entries, err := s.List(ctx, owner, f)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(entries), nil
}

func (s *Service) newEntry(task domain.Task, projectID, description, fallback string, minutes int, date time.Time) TimeEntry {
	now := s.clock().UTC()
	if projectID == "" && task.ProjectID != nil {
		projectID = *task.ProjectID
	}
	if description == "" {
		description = task.Title
	}
	if description == "" {
		description = fallback
	}

	e := TimeEntry{
		ID:          s.ids.NewID(),
		Description: description,
		Duration:    minutes,
		Date:        time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if task.ID != "" {
		id := task.ID
		e.TaskID = &id
	}
	if projectID != "" {
		e.ProjectID = &projectID
	}
	return e
}

func (s *Service) book(tasks Tasks, taskID string, minutes int) {
	if _, _, err := tasks.AddTimeSpent(taskID, minutes); err != nil {
		s.log.Warn().Err(err).Str("task_id", taskID).Int("minutes", minutes).Msg("could not add time to task")
	}
}
