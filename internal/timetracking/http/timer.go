package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/timetracking"
)

type startTimerReq struct {
	TaskID      string `json:"taskId"`
	Description string `json:"description"`
}

// timerBody adds the elapsed time as seconds and as an HH:MM:SS label.
func (h *Handler) timerBody(t timetracking.Timer) gin.H {
	secs := int64(t.Elapsed(h.clock()).Seconds())
	return gin.H{
		"ok":      true,
		"timer":   t,
		"running": t.Running(),
		"elapsed": secs,
		"clock":   timetracking.FormatClock(secs),
	}
}

func (h *Handler) timer(c *gin.Context) {
	s, release := h.session(c)
	if s == nil {
		return
	}
	defer release()
	t, err := h.svc.Timer(c.Request.Context(), s.Owner())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.timerBody(t))
}

func (h *Handler) startTimer(c *gin.Context) {
	var req startTimerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	s, release := h.session(c)
	if s == nil {
		return
	}
	defer release()
	t, err := h.svc.StartTimer(c.Request.Context(), s.Owner(), s, req.TaskID, req.Description)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.timerBody(t))
}

func (h *Handler) pauseTimer(c *gin.Context) {
	s, release := h.session(c)
	if s == nil {
		return
	}
	defer release()
	t, err := h.svc.PauseTimer(c.Request.Context(), s.Owner())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.timerBody(t))
}

func (h *Handler) resumeTimer(c *gin.Context) {
	s, release := h.session(c)
	if s == nil {
		return
	}
	defer release()
	t, err := h.svc.ResumeTimer(c.Request.Context(), s.Owner())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.timerBody(t))
}

// stopTimer books the elapsed whole minutes as an entry and adds them to
// the task's time spent.
func (h *Handler) stopTimer(c *gin.Context) {
	s, release := h.session(c)
	if s == nil {
		return
	}
	defer release()
	e, err := h.svc.StopTimer(c.Request.Context(), s.Owner(), s)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "entry": e})
}
