package store

import (
	"sort"
	"time"

	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/dashboard/domain"
)

// CalendarEvents derives events from the deadlines in local state. A project
// deadline is its publish date; task and milestone deadlines are plain
// deadlines. Zero bounds are open; both bounds are inclusive.
func (s *Store) CalendarEvents(from, to time.Time) []domain.CalendarEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calendarLocked(from, to)
}

func (s *Store) calendarLocked(from, to time.Time) []domain.CalendarEvent {
	in := func(d time.Time) bool {
		if d.IsZero() {
			return false
		}
		if !from.IsZero() && d.Before(from) {
			return false
		}
		if !to.IsZero() && d.After(to) {
			return false
		}
		return true
	}

	events := []domain.CalendarEvent{}
	for _, p := range s.projects {
		if in(p.Deadline) {
			events = append(events, domain.CalendarEvent{
				ID:        "project:" + p.ID,
				Title:     p.Title,
				Date:      p.Deadline,
				Type:      domain.EventPublish,
				Source:    "project",
				SourceID:  p.ID,
				ProjectID: p.ID,
			})
		}
	}
	for _, t := range s.tasks {
		if t.Deadline == nil || !in(*t.Deadline) {
			continue
		}
		ev := domain.CalendarEvent{
			ID:       "task:" + t.ID,
			Title:    t.Title,
			Date:     *t.Deadline,
			Type:     domain.EventDeadline,
			Source:   "task",
			SourceID: t.ID,
		}
		if t.ProjectID != nil {
			ev.ProjectID = *t.ProjectID
		}
		events = append(events, ev)
	}
	for _, m := range s.milestones {
		if in(m.Deadline) {
			events = append(events, domain.CalendarEvent{
				ID:        "milestone:" + m.ID,
				Title:     m.Title,
				Date:      m.Deadline,
				Type:      domain.EventDeadline,
				Source:    "milestone",
				SourceID:  m.ID,
				ProjectID: m.ProjectID,
			})
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Date.Equal(events[j].Date) {
			return events[i].ID < events[j].ID
		}
		return events[i].Date.Before(events[j].Date)
	})
	return events
}
