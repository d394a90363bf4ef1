package timetracking

import (
	"fmt"
	"sort"
)

type Summary struct {
	TotalMinutes  int            `json:"totalMinutes"`
	Entries       int            `json:"entries"`
	Days          int            `json:"days"`
	AveragePerDay float64        `json:"averagePerDay"` // minutes per day with at least one entry
	ByProject     map[string]int `json:"byProject"`
	ByTask        map[string]int `json:"byTask"`
}

// Summarize totals entries. Entries without a project or task are counted
// in the total only.
func Summarize(entries []TimeEntry) Summary {
	s := Summary{
		Entries:   len(entries),
		ByProject: map[string]int{},
		ByTask:    map[string]int{},
	}
	days := map[string]struct{}{}
	for _, e := range entries {
		s.TotalMinutes += e.Duration
		days[e.Date.Format("2006-01-02")] = struct{}{}
		if e.ProjectID != nil {
			s.ByProject[*e.ProjectID] += e.Duration
		}
		if e.TaskID != nil {
			s.ByTask[*e.TaskID] += e.Duration
		}
	}
	s.Days = len(days)
	if s.Days > 0 {
		s.AveragePerDay = float64(s.TotalMinutes) / float64(s.Days)
	}
	return s
}

// TopProjects returns project ids ordered by booked minutes, most first.
func (s Summary) TopProjects() []string {
	ids := make([]string, 0, len(s.ByProject))
	for id := range s.ByProject {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if s.ByProject[ids[i]] == s.ByProject[ids[j]] {
			return ids[i] < ids[j]
		}
		return s.ByProject[ids[i]] > s.ByProject[ids[j]]
	})
	return ids
}

// FormatClock renders seconds as HH:MM:SS for a running timer display.
func FormatClock(seconds int64) string {
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
}
