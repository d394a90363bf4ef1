package http

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/timetracking"
)

func (h *Handler) listEntries(c *gin.Context) {
	f, err := filter(c)
	if err != nil {
		fail(c, err)
		return
	}
	s, release := h.session(c)
	if s == nil {
		return
	}
	defer release()
	entries, err := h.svc.List(c.Request.Context(), s.Owner(), f)
	if err != nil {
		fail(c, err)
		return
	}
	if entries == nil {
		entries = []timetracking.TimeEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "entries": entries})
}

func (h *Handler) addEntry(c *gin.Context) {
	var req timetracking.NewEntry
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	s, release := h.session(c)
	if s == nil {
		return
	}
	defer release()
	e, err := h.svc.AddEntry(c.Request.Context(), s.Owner(), s, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "entry": e})
}

func (h *Handler) deleteEntry(c *gin.Context) {
	s, release := h.session(c)
	if s == nil {
		return
	}
	defer release()
	if err := h.svc.Delete(c.Request.Context(), s.Owner(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) summary(c *gin.Context) {
	f, err := filter(c)
	if err != nil {
		fail(c, err)
		return
	}
	s, release := h.session(c)
	if s == nil {
		return
	}
	defer release()
	sum, err := h.svc.Summary(c.Request.Context(), s.Owner(), f)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "summary": sum, "topProjects": sum.TopProjects()})
}

// export streams the filtered entries as a download, with project and task
// titles taken from the caller's session.
func (h *Handler) export(c *gin.Context) {
	f, err := filter(c)
	if err != nil {
		fail(c, err)
		return
	}
	format := c.DefaultQuery("format", "csv")
	s, release := h.session(c)
	if s == nil {
		return
	}
	defer release()
	entries, err := h.svc.List(c.Request.Context(), s.Owner(), f)
	if err != nil {
		fail(c, err)
		return
	}

	st := s.State()
	titles := timetracking.Titles{Projects: map[string]string{}, Tasks: map[string]string{}}
	for _, p := range st.Projects {
		titles.Projects[p.ID] = p.Title
	}
	for _, t := range st.Tasks {
		titles.Tasks[t.ID] = t.Title
	}

	var buf bytes.Buffer
	if err := timetracking.Export(&buf, format, entries, titles); err != nil {
		fail(c, err)
		return
	}
	name := fmt.Sprintf("time-entries-%s.%s", h.clock().Format(time.DateOnly), format)
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, timetracking.ContentType(format), buf.Bytes())
}
