package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/dashboard/domain"
)

// ProjectProgress is the share of tasks in Done, rounded to a whole percent.
func ProjectProgress(tasks []domain.Task) int {
	if len(tasks) == 0 {
		return 0
	}
	done := 0
	for _, t := range tasks {
		if t.Status == domain.TaskDone {
			done++
		}
	}
	return int(math.Round(float64(done) / float64(len(tasks)) * 100))
}

func IsOverdue(deadline, now time.Time) bool {
	return !deadline.IsZero() && deadline.Before(now)
}

// FormatTimeSpent renders minutes as "2h 5m" or "45m".
func FormatTimeSpent(minutes int) string {
	h, m := minutes/60, minutes%60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

type Overview struct {
	TotalProjects     int              `json:"totalProjects"`
	ActiveTasks       int              `json:"activeTasks"`
	CompletedTasks    int              `json:"completedTasks"`
	TotalTimeSpent    int              `json:"totalTimeSpent"`
	TotalTimeLabel    string           `json:"totalTimeLabel"`
	OverdueItems      int              `json:"overdueItems"`
	AverageProgress   int              `json:"averageProgress"`
	RecentProjects    []domain.Project `json:"recentProjects"`
	UpcomingDeadlines []domain.Task    `json:"upcomingDeadlines"`
}

const (
	recentProjects    = 3
	upcomingDeadlines = 5
)

// BuildOverview computes the dashboard headline numbers. Overdue counts
// tasks whose deadline has passed, whatever their status.
func BuildOverview(projects []domain.Project, tasks []domain.Task, now time.Time) Overview {
	o := Overview{
		TotalProjects:     len(projects),
		RecentProjects:    []domain.Project{},
		UpcomingDeadlines: []domain.Task{},
	}

	progress := 0
	for _, p := range projects {
		progress += p.Progress
	}
	if len(projects) > 0 {
		o.AverageProgress = int(math.Round(float64(progress) / float64(len(projects))))
	}

	withDeadline := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		switch t.Status {
		case domain.TaskInProgress:
			o.ActiveTasks++
		case domain.TaskDone:
			o.CompletedTasks++
		}
		o.TotalTimeSpent += t.TimeSpent
		if t.Deadline != nil {
			withDeadline = append(withDeadline, t)
			if IsOverdue(*t.Deadline, now) {
				o.OverdueItems++
			}
		}
	}
	o.TotalTimeLabel = FormatTimeSpent(o.TotalTimeSpent)

	recent := append([]domain.Project{}, projects...)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].UpdatedAt.After(recent[j].UpdatedAt)
	})
	o.RecentProjects = append(o.RecentProjects, recent[:min(recentProjects, len(recent))]...)

	sort.SliceStable(withDeadline, func(i, j int) bool {
		return withDeadline[i].Deadline.Before(*withDeadline[j].Deadline)
	})
	o.UpcomingDeadlines = append(o.UpcomingDeadlines, withDeadline[:min(upcomingDeadlines, len(withDeadline))]...)

	return o
}
