package analytics

import (
	"fmt"
	"math"
	"time"

	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/dashboard/domain"
	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/timetracking"
)

type Range string

const (
	RangeWeek    Range = "week"
	RangeMonth   Range = "month"
	RangeQuarter Range = "quarter"
	RangeYear    Range = "year"
)

func ParseRange(s string) (Range, error) {
	switch r := Range(s); r {
	case RangeWeek, RangeMonth, RangeQuarter, RangeYear:
		return r, nil
	case "":
		return RangeMonth, nil
	}
	return "", fmt.Errorf("unknown range %q", s)
}

// Window is a half-open interval [Start, End) plus the one before it.
type Window struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	PrevStart time.Time `json:"previousStart"`
	PrevEnd   time.Time `json:"previousEnd"`
}

func (w Window) contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

func (w Window) previous() Window {
	return Window{Start: w.PrevStart, End: w.PrevEnd}
}

// WindowAt returns the calendar period containing now. Weeks start on Sunday.
func (r Range) WindowAt(now time.Time) Window {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var start time.Time
	step := func(t time.Time, n int) time.Time { return t.AddDate(0, n, 0) }

	switch r {
	case RangeWeek:
		start = day.AddDate(0, 0, -int(day.Weekday()))
		step = func(t time.Time, n int) time.Time { return t.AddDate(0, 0, 7*n) }
	case RangeQuarter:
		start = time.Date(day.Year(), day.Month()-(day.Month()-1)%3, 1, 0, 0, 0, 0, day.Location())
		step = func(t time.Time, n int) time.Time { return t.AddDate(0, 3*n, 0) }
	case RangeYear:
		start = time.Date(day.Year(), 1, 1, 0, 0, 0, 0, day.Location())
		step = func(t time.Time, n int) time.Time { return t.AddDate(n, 0, 0) }
	default:
		start = time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
	}

	return Window{Start: start, End: step(start, 1), PrevStart: step(start, -1), PrevEnd: start}
}

type Trend string

const (
	TrendIncrease Trend = "increase"
	TrendDecrease Trend = "decrease"
	TrendNeutral  Trend = "neutral"
)

type Metric struct {
	Label  string  `json:"label"`
	Value  float64 `json:"value"`
	Change float64 `json:"change"` // percent, absolute
	Trend  Trend   `json:"trend"`
}

// Change compares current against previous. From a zero baseline any
// growth counts as a full 100 percent increase.
func Change(current, previous float64) (float64, Trend) {
	if previous == 0 {
		if current > 0 {
			return 100, TrendIncrease
		}
		return 0, TrendNeutral
	}
	c := (current - previous) / previous * 100
	switch {
	case c > 0:
		return math.Abs(c), TrendIncrease
	case c < 0:
		return math.Abs(c), TrendDecrease
	}
	return 0, TrendNeutral
}

type ProjectPerformance struct {
	ID             string               `json:"id"`
	Title          string               `json:"title"`
	Category       domain.Category      `json:"category"`
	Status         domain.ProjectStatus `json:"status"`
	Progress       int                  `json:"progress"`
	TaskCount      int                  `json:"taskCount"`
	CompletedTasks int                  `json:"completedTasks"`
	CompletionRate int                  `json:"completionRate"`
	TimeSpent      int                  `json:"timeSpent"`
	IsOverdue      bool                 `json:"isOverdue"`
}

type CategoryCount struct {
	Category domain.Category `json:"category"`
	Count    int             `json:"count"`
}

type Report struct {
	Range      Range                `json:"range"`
	Window     Window               `json:"window"`
	Metrics    []Metric             `json:"metrics"`
	Projects   []ProjectPerformance `json:"projects"`
	Categories []CategoryCount      `json:"categories"`
}

type ReportInput struct {
	Projects []domain.Project
	Tasks    []domain.Task
	Entries  []timetracking.TimeEntry
	// ProjectID narrows the report to one project when set.
	ProjectID string
}

var categories = []domain.Category{
	domain.CategoryYouTube, domain.CategoryBlog, domain.CategoryPodcast, domain.CategorySocialMedia, domain.CategoryOther,
}

// BuildReport compares the range containing now with the range before it.
// Projects and tasks are placed by creation time, entries by date.
func BuildReport(in ReportInput, r Range, now time.Time) Report {
	w := r.WindowAt(now)
	cur := in.slice(w)
	prev := in.slice(w.previous())

	rep := Report{Range: r, Window: w, Projects: []ProjectPerformance{}}

	metric := func(label string, c, p float64) {
		change, trend := Change(c, p)
		rep.Metrics = append(rep.Metrics, Metric{Label: label, Value: c, Change: change, Trend: trend})
	}
	metric("Projects Created", float64(len(cur.Projects)), float64(len(prev.Projects)))
	metric("Tasks Completed", float64(doneCount(cur.Tasks)), float64(doneCount(prev.Tasks)))
	curMin, prevMin := minutes(cur.Entries), minutes(prev.Entries)
	// value in hours, change on minutes
	change, trend := Change(float64(curMin), float64(prevMin))
	rep.Metrics = append(rep.Metrics, Metric{Label: "Hours Tracked", Value: math.Round(float64(curMin) / 60), Change: change, Trend: trend})
	metric("Average Progress", avgProgress(cur.Projects), avgProgress(prev.Projects))

	for _, p := range cur.Projects {
		pp := ProjectPerformance{
			ID:        p.ID,
			Title:     p.Title,
			Category:  p.Category,
			Status:    p.Status,
			Progress:  p.Progress,
			IsOverdue: IsOverdue(p.Deadline, now) && p.Status != domain.ProjectComplete,
		}
		for _, t := range cur.Tasks {
			if t.InProject(p.ID) {
				pp.TaskCount++
				if t.Status == domain.TaskDone {
					pp.CompletedTasks++
				}
			}
		}
		if pp.TaskCount > 0 {
			pp.CompletionRate = int(math.Round(float64(pp.CompletedTasks) / float64(pp.TaskCount) * 100))
		}
		for _, e := range cur.Entries {
			if e.ProjectID != nil && *e.ProjectID == p.ID {
				pp.TimeSpent += e.Duration
			}
		}
		rep.Projects = append(rep.Projects, pp)
	}

	for _, c := range categories {
		n := 0
		for _, p := range cur.Projects {
			if p.Category == c {
				n++
			}
		}
		rep.Categories = append(rep.Categories, CategoryCount{Category: c, Count: n})
	}
	return rep
}

func (in ReportInput) slice(w Window) ReportInput {
	out := ReportInput{ProjectID: in.ProjectID}
	for _, p := range in.Projects {
		if w.contains(p.CreatedAt) && (in.ProjectID == "" || p.ID == in.ProjectID) {
			out.Projects = append(out.Projects, p)
		}
	}
	for _, t := range in.Tasks {
		if w.contains(t.CreatedAt) && (in.ProjectID == "" || t.InProject(in.ProjectID)) {
			out.Tasks = append(out.Tasks, t)
		}
	}
	for _, e := range in.Entries {
		if w.contains(e.Date) && (in.ProjectID == "" || (e.ProjectID != nil && *e.ProjectID == in.ProjectID)) {
			out.Entries = append(out.Entries, e)
		}
	}
	return out
}

func doneCount(tasks []domain.Task) int {
	n := 0
	for _, t := range tasks {
		if t.Status == domain.TaskDone {
			n++
		}
	}
	return n
}

func minutes(entries []timetracking.TimeEntry) int {
	n := 0
	for _, e := range entries {
		n += e.Duration
	}
	return n
}

func avgProgress(projects []domain.Project) float64 {
	if len(projects) == 0 {
		return 0
	}
	sum := 0
	for _, p := range projects {
		sum += p.Progress
	}
	return math.Round(float64(sum) / float64(len(projects)))
}
