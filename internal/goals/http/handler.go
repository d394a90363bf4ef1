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
	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/goals"
)

// Sessions hands out the per-owner store that linked projects are checked against.
type Sessions interface {
	Acquire(ctx context.Context, owner string) (*store.Store, func(), error)
}

type Handler struct {
	svc      *goals.Service
	sessions Sessions
	clock    func() time.Time
	log      zerolog.Logger
}

func NewHandler(svc *goals.Service, sessions Sessions, clock func() time.Time, log zerolog.Logger) *Handler {
	if clock == nil {
		clock = time.Now
	}
	return &Handler{svc: svc, sessions: sessions, clock: clock, log: log}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/goals")
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

// goalView adds the derived fields a goal card shows.
type goalView struct {
	goals.Goal
	Progress  int  `json:"progress"`
	IsOverdue bool `json:"isOverdue"`
}

func (h *Handler) view(g goals.Goal) goalView {
	return goalView{Goal: g, Progress: g.Progress(), IsOverdue: g.IsOverdue(h.clock())}
}

func (h *Handler) list(c *gin.Context) {
	f := goals.Filter{
		Search:   c.Query("search"),
		Category: goals.Category(c.Query("category")),
		Status:   goals.Status(c.Query("status")),
		Priority: domain.Priority(c.Query("priority")),
	}
	owner := auth.UserFirebaseUID(c)
	if owner == "" {
		fail(c, domain.ErrIdentityRequired)
		return
	}

	list, stats, err := h.svc.List(c.Request.Context(), owner, f)
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]goalView, 0, len(list))
	for _, g := range list {
		out = append(out, h.view(g))
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "goals": out, "stats": stats})
}

func (h *Handler) get(c *gin.Context) {
	owner := auth.UserFirebaseUID(c)
	if owner == "" {
		fail(c, domain.ErrIdentityRequired)
		return
	}
	g, err := h.svc.Get(c.Request.Context(), owner, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "goal": h.view(g)})
}

func (h *Handler) create(c *gin.Context) {
	var req goals.NewGoal
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	s, release := h.session(c)
	if s == nil {
		return
	}
	defer release()

	g, err := h.svc.Create(c.Request.Context(), s.Owner(), s, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "goal": h.view(g)})
}

func (h *Handler) update(c *gin.Context) {
	var patch goals.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	s, release := h.session(c)
	if s == nil {
		return
	}
	defer release()

	g, err := h.svc.Update(c.Request.Context(), s.Owner(), s, c.Param("id"), patch)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "goal": h.view(g)})
}

func (h *Handler) delete(c *gin.Context) {
	owner := auth.UserFirebaseUID(c)
	if owner == "" {
		fail(c, domain.ErrIdentityRequired)
		return
	}
	if err := h.svc.Delete(c.Request.Context(), owner, c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
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
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrProjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrTitleRequired), errors.Is(err, domain.ErrInvalidEnum),
		errors.Is(err, goals.ErrUnitRequired), errors.Is(err, goals.ErrInvalidTarget),
		errors.Is(err, goals.ErrInvalidValue):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"ok": false, "error": err.Error()})
}
