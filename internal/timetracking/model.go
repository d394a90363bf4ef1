package timetracking

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrEntryNotFound    = errors.New("time entry not found")
	ErrTaskRequired     = errors.New("task id required")
	ErrInvalidDuration  = errors.New("duration must be positive")
	ErrTimerNotRunning  = errors.New("no timer running")
	ErrTimerRunning     = errors.New("timer already running")
	ErrTimerNotStarted  = errors.New("no timer started")
	ErrTimerBusy        = errors.New("timer changed concurrently, try again")
	ErrUnknownPeriod    = errors.New("unknown period")
	ErrUnknownExportFmt = errors.New("unknown export format")
)

// TimeEntry is one block of time booked against a task, a project or both.
// Date is the calendar day the time counts towards.
type TimeEntry struct {
	ID          string    `json:"id"`
	TaskID      *string   `json:"taskId,omitempty"`
	ProjectID   *string   `json:"projectId,omitempty"`
	Description string    `json:"description"`
	Duration    int       `json:"duration"` // minutes
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type NewEntry struct {
	TaskID      string    `json:"taskId"`
	ProjectID   string    `json:"projectId"`
	Description string    `json:"description"`
	Duration    int       `json:"duration"`
	Date        time.Time `json:"date"`
}

type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodAll   Period = "all"
)

func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case PeriodToday, PeriodWeek, PeriodMonth, PeriodAll:
		return p, nil
	case "":
		return PeriodWeek, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, s)
}

// Bounds returns the inclusive day range the period covers around now.
// Weeks start on Sunday. PeriodAll returns zero times.
func (p Period) Bounds(now time.Time) (time.Time, time.Time) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch p {
	case PeriodToday:
		return day, day
	case PeriodWeek:
		start := day.AddDate(0, 0, -int(day.Weekday()))
		return start, start.AddDate(0, 0, 6)
	case PeriodMonth:
		start := day.AddDate(0, 0, 1-day.Day())
		return start, start.AddDate(0, 1, -1)
	}
	return time.Time{}, time.Time{}
}

// Filter narrows a listing. Empty ids match everything.
type Filter struct {
	Period    Period
	ProjectID string
	TaskID    string
}
