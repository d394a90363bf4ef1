package goals

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/dashboard/domain"
)

var (
	ErrUnitRequired  = errors.New("unit required")
	ErrInvalidTarget = errors.New("target value must be positive")
	ErrInvalidValue  = errors.New("current value must not be negative")
)

type Category string

const (
	CategoryContent  Category = "Content"
	CategoryGrowth   Category = "Growth"
	CategoryRevenue  Category = "Revenue"
	CategoryLearning Category = "Learning"
	CategoryPersonal Category = "Personal"
	CategoryOther    Category = "Other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryContent, CategoryGrowth, CategoryRevenue, CategoryLearning, CategoryPersonal, CategoryOther:
		return true
	}
	return false
}

type Status string

const (
	StatusNotStarted Status = "Not Started"
	StatusInProgress Status = "In Progress"
	StatusOnHold     Status = "On Hold"
	StatusCompleted  Status = "Completed"
	StatusCancelled  Status = "Cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusOnHold, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Closed goals never count as overdue.
func (s Status) Closed() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Goal is a measurable target, optionally linked to projects.
type Goal struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Category     Category        `json:"category"`
	Priority     domain.Priority `json:"priority"`
	Status       Status          `json:"status"`
	TargetValue  float64         `json:"targetValue"`
	CurrentValue float64         `json:"currentValue"`
	Unit         string          `json:"unit"`
	Deadline     *time.Time      `json:"deadline,omitempty"`
	Tags         []string        `json:"tags"`
	ProjectIDs   []string        `json:"projectIds"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// Progress is CurrentValue as a whole percentage of TargetValue. It may
// exceed 100 once a goal is overshot.
func (g Goal) Progress() int {
	if g.TargetValue <= 0 {
		return 0
	}
	return int(math.Round(g.CurrentValue / g.TargetValue * 100))
}

func (g Goal) IsOverdue(now time.Time) bool {
	return g.Deadline != nil && g.Deadline.Before(now) && !g.Status.Closed()
}

func (g Goal) validate() error {
	if g.Title == "" {
		return domain.ErrTitleRequired
	}
	if g.Unit == "" {
		return ErrUnitRequired
	}
	if g.TargetValue <= 0 {
		return ErrInvalidTarget
	}
	if g.CurrentValue < 0 {
		return ErrInvalidValue
	}
	if !g.Category.Valid() {
		return fmt.Errorf("%w: category %q", domain.ErrInvalidEnum, g.Category)
	}
	if !g.Priority.Valid() {
		return fmt.Errorf("%w: priority %q", domain.ErrInvalidEnum, g.Priority)
	}
	if !g.Status.Valid() {
		return fmt.Errorf("%w: status %q", domain.ErrInvalidEnum, g.Status)
	}
	return nil
}

// NewGoal is the create payload. Category, priority and status default to
// Content, Medium and Not Started.
type NewGoal struct {
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Category     Category        `json:"category"`
	Priority     domain.Priority `json:"priority"`
	Status       Status          `json:"status"`
	TargetValue  float64         `json:"targetValue"`
	CurrentValue float64         `json:"currentValue"`
	Unit         string          `json:"unit"`
	Deadline     *time.Time      `json:"deadline"`
	Tags         []string        `json:"tags"`
	ProjectIDs   []string        `json:"projectIds"`
}

// Patch carries a partial update. Nil means "leave as is".
type Patch struct {
	Title        *string          `json:"title,omitempty"`
	Description  *string          `json:"description,omitempty"`
	Category     *Category        `json:"category,omitempty"`
	Priority     *domain.Priority `json:"priority,omitempty"`
	Status       *Status          `json:"status,omitempty"`
	TargetValue  *float64         `json:"targetValue,omitempty"`
	CurrentValue *float64         `json:"currentValue,omitempty"`
	Unit         *string          `json:"unit,omitempty"`
	Deadline     *time.Time       `json:"deadline,omitempty"`
	Tags         *[]string        `json:"tags,omitempty"`
	ProjectIDs   *[]string        `json:"projectIds,omitempty"`
}

func (p Patch) Apply(dst *Goal) {
	if p.Title != nil {
		dst.Title = *p.Title
	}
	if p.Description != nil {
		dst.Description = *p.Description
	}
	if p.Category != nil {
		dst.Category = *p.Category
	}
	if p.Priority != nil {
		dst.Priority = *p.Priority
	}
	if p.Status != nil {
		dst.Status = *p.Status
	}
	if p.TargetValue != nil {
		dst.TargetValue = *p.TargetValue
	}
	if p.CurrentValue != nil {
		dst.CurrentValue = *p.CurrentValue
	}
	if p.Unit != nil {
		dst.Unit = *p.Unit
	}
	if p.Deadline != nil {
		d := *p.Deadline
		dst.Deadline = &d
	}
	if p.Tags != nil {
		dst.Tags = uniqueTags(*p.Tags)
	}
	if p.ProjectIDs != nil {
		dst.ProjectIDs = domain.CloneTags(*p.ProjectIDs)
	}
}

// Filter narrows a listing. Empty fields match everything; Search matches
// title or description, case-insensitively.
type Filter struct {
	Search   string
	Category Category
	Status   Status
	Priority domain.Priority
}

type Stats struct {
	Total           int `json:"totalGoals"`
	Completed       int `json:"completedGoals"`
	InProgress      int `json:"inProgressGoals"`
	Overdue         int `json:"overdueGoals"`
	CompletionRate  int `json:"completionRate"`
	AverageProgress int `json:"avgProgress"`
}

// BuildStats summarizes goals at now.
func BuildStats(goals []Goal, now time.Time) Stats {
	st := Stats{Total: len(goals)}
	if len(goals) == 0 {
		return st
	}
	progress := 0.0
	for _, g := range goals {
		switch g.Status {
		case StatusCompleted:
			st.Completed++
		case StatusInProgress:
			st.InProgress++
		}
		if g.IsOverdue(now) {
			st.Overdue++
		}
		if g.TargetValue > 0 {
			progress += g.CurrentValue / g.TargetValue * 100
		}
	}
	st.CompletionRate = int(math.Round(float64(st.Completed) / float64(len(goals)) * 100))
	st.AverageProgress = int(math.Round(progress / float64(len(goals))))
	return st
}

// uniqueTags trims blanks and drops repeats, keeping first-seen order.
func uniqueTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
