package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/auth"
	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/dashboard/domain"
	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/dashboard/store"
	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/timetracking"
)

// Sessions hands out the per-owner store whose tasks time is booked against.
type Sessions interface {
	Acquire(ctx context.Context, owner string) (*store.Store, func(), error)
}

type Handler struct {
	svc      *timetracking.Service
	sessions Sessions
	clock    func() time.Time
	log      zerolog.Logger
}

func NewHandler(svc *timetracking.Service, sessions Sessions, clock func() time.Time, log zerolog.Logger) *Handler {
	if clock == nil {
		clock = time.Now
	}
	return &Handler{svc: svc, sessions: sessions, clock: clock, log: log}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/time")
	g.GET("/entries", h.listEntries)
	g.POST("/entries", h.addEntry)
	g.DELETE("/entries/:id", h.deleteEntry)
	g.GET("/summary", h.summary)
	g.GET("/export", h.export)

	g.GET("/timer", h.timer)
	g.POST("/timer/start", h.startTimer)
	g.POST("/timer/pause", h.pauseTimer)
	g.POST("/timer/resume", h.resumeTimer)
	g.POST("/timer/stop", h.stopTimer)
}

func (h *Handler) session(c *gin.Context) (*store.Store, func()) {
	s, release, err := h.sessions.Acquire(c.Request.Context(), auth.UserFirebaseUID(c))
	if err != nil {
		fail(c, err)
		return nil, nil
	}
	return s, release
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrIdentityRequired):
		return http.StatusUnauthorized
	case errors.Is(err, timetracking.ErrEntryNotFound), errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, timetracking.ErrTaskRequired), errors.Is(err, timetracking.ErrInvalidDuration),
		errors.Is(err, timetracking.ErrUnknownPeriod), errors.Is(err, timetracking.ErrUnknownExportFmt):
		return http.StatusBadRequest
	case errors.Is(err, timetracking.ErrTimerRunning), errors.Is(err, timetracking.ErrTimerNotRunning),
		errors.Is(err, timetracking.ErrTimerNotStarted), errors.Is(err, timetracking.ErrTimerBusy):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"ok": false, "error": err.Error()})
}

// filter reads period, projectId and taskId from the query string.
func filter(c *gin.Context) (timetracking.Filter, error) {
	p, err := timetracking.ParsePeriod(c.Query("period"))
	if err != nil {
		return timetracking.Filter{}, err
	}
	return timetracking.Filter{
		Period:    p,
		ProjectID: c.Query("projectId"),
		TaskID:    c.Query("taskId"),
	}, nil
}
