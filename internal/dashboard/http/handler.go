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

// Sessions hands out the per-owner store; *session.Manager implements it.
type Sessions interface {
	Acquire(ctx context.Context, owner string) (*store.Store, func(), error)
	End(ctx context.Context, owner string) error
}

// Entries feeds tracked time into analytics reports.
type Entries interface {
	List(ctx context.Context, owner string, f timetracking.Filter) ([]timetracking.TimeEntry, error)
}

type Handler struct {
	sessions Sessions
	entries  Entries
	clock    func() time.Time
	log      zerolog.Logger
}

func NewHandler(sessions Sessions, entries Entries, clock func() time.Time, log zerolog.Logger) *Handler {
	if clock == nil {
		clock = time.Now
	}
	return &Handler{sessions: sessions, entries: entries, clock: clock, log: log}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/dashboard", h.dashboard)
	rg.POST("/sync", h.refresh)
	rg.DELETE("/session", h.endSession)
	rg.PUT("/current-project", h.setCurrentProject)
	rg.GET("/calendar", h.calendar)

	projects := rg.Group("/projects")
	projects.GET("", h.listProjects)
	projects.POST("", h.createProject)
	projects.GET("/:id", h.getProject)
	projects.PATCH("/:id", h.updateProject)
	projects.DELETE("/:id", h.deleteProject)

	tasks := rg.Group("/tasks")
	tasks.GET("", h.listTasks)
	tasks.POST("", h.createTask)
	tasks.GET("/:id", h.getTask)
	tasks.PATCH("/:id", h.updateTask)
	tasks.DELETE("/:id", h.deleteTask)

	milestones := rg.Group("/milestones")
	milestones.GET("", h.listMilestones)
	milestones.POST("", h.createMilestone)
	milestones.PATCH("/:id", h.updateMilestone)
	milestones.DELETE("/:id", h.deleteMilestone)

	analytics := rg.Group("/analytics")
	analytics.GET("/overview", h.overview)
	analytics.GET("/report", h.report)
}

// session leases the caller's store for the rest of the request. It writes
// the error response itself and returns nil when the request cannot continue.
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
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrProjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidEnum), errors.Is(err, domain.ErrTitleRequired),
		errors.Is(err, domain.ErrProjectIDRequired):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"ok": false, "error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": msg})
}

// respond answers a mutation. With ?wait=true it blocks until the remote
// write settles and reports its outcome; a rolled back write answers 502
// since the local change no longer exists. Otherwise sync is "pending".
func (h *Handler) respond(c *gin.Context, status int, body gin.H, r *store.Receipt) {
	body["ok"] = true
	body["sync"] = store.Pending.String()

	if c.Query("wait") == "true" {
		outcome, err := r.Wait(c.Request.Context())
		body["sync"] = outcome.String()
		if err != nil {
			body["syncError"] = err.Error()
		}
		if outcome == store.RolledBack {
			body["ok"] = false
			body["error"] = "remote write failed, local change rolled back"
			status = http.StatusBadGateway
		}
	}
	c.JSON(status, body)
}
