package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/analytics"
	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/auth"
	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/timetracking"
)

// dashboard returns the whole session state, including the loading flag
// and the last read error.
func (h *Handler) dashboard(c *gin.Context) {
	s, release := h.session(c)
	if s == nil {
		return
	}
	defer release()
	c.JSON(http.StatusOK, gin.H{"ok": true, "state": s.State()})
}

// refresh re-reads the remote store once pending writes have settled.
func (h *Handler) refresh(c *gin.Context) {
	s, release := h.session(c)
	if s == nil {
		return
	}
	defer release()
	st, err := s.Refresh(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": st.Error == nil, "state": st})
}

// endSession drops the caller's store. The next request loads afresh.
func (h *Handler) endSession(c *gin.Context) {
	if err := h.sessions.End(c.Request.Context(), auth.UserFirebaseUID(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// calendar accepts from/to as RFC 3339 or YYYY-MM-DD. A date-only "to"
// covers that whole day.
func (h *Handler) calendar(c *gin.Context) {
	from, err := parseBound(c.Query("from"), false)
	if err != nil {
		badRequest(c, "invalid from")
		return
	}
	to, err := parseBound(c.Query("to"), true)
	if err != nil {
		badRequest(c, "invalid to")
		return
	}
	s, release := h.session(c)
	if s == nil {
		return
	}
	defer release()
	c.JSON(http.StatusOK, gin.H{"ok": true, "events": s.CalendarEvents(from, to)})
}

func parseBound(v string, endOfDay bool) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

func (h *Handler) overview(c *gin.Context) {
	s, release := h.session(c)
	if s == nil {
		return
	}
	defer release()
	st := s.State()
	c.JSON(http.StatusOK, gin.H{"ok": true, "overview": analytics.BuildOverview(st.Projects, st.Tasks, h.clock())})
}

func (h *Handler) report(c *gin.Context) {
	r, err := analytics.ParseRange(c.Query("range"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	s, release := h.session(c)
	if s == nil {
		return
	}
	defer release()
	entries, err := h.entries.List(c.Request.Context(), s.Owner(), timetracking.Filter{Period: timetracking.PeriodAll})
	if err != nil {
		h.log.Error().Err(err).Str("owner", s.Owner()).Msg("list time entries for report")
		fail(c, err)
		return
	}

	st := s.State()
	rep := analytics.BuildReport(analytics.ReportInput{
		Projects:  st.Projects,
		Tasks:     st.Tasks,
		Entries:   entries,
		ProjectID: c.Query("project"),
	}, r, h.clock())
	c.JSON(http.StatusOK, gin.H{"ok": true, "report": rep})
}
