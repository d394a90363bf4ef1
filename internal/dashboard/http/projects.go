package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/analytics"
	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/dashboard/domain"
)

type createProjectReq struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Category    domain.Category      `json:"category"`
	Deadline    time.Time            `json:"deadline"`
	Priority    domain.Priority      `json:"priority"`
	Status      domain.ProjectStatus `json:"status"`
	Color       string               `json:"color"`
	Tags        []string             `json:"tags"`
	Progress    int                  `json:"progress"`
}

func (h *Handler) listProjects(c *gin.Context) {
	s, release := h.session(c)
	if s == nil {
		return
	}
	defer release()
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": s.State().Projects})
}

func (h *Handler) createProject(c *gin.Context) {
	var req createProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	s, release := h.session(c)
	if s == nil {
		return
	}
	defer release()

	p, r, err := s.CreateProject(domain.NewProject{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Deadline:    req.Deadline,
		Priority:    req.Priority,
		Status:      req.Status,
		Color:       req.Color,
		Tags:        req.Tags,
		Progress:    req.Progress,
	})
	if err != nil {
		fail(c, err)
		return
	}
	h.respond(c, http.StatusCreated, gin.H{"project": p}, r)
}

// getProject returns the project with its tasks and milestones attached,
// plus progress derived from task completion.
func (h *Handler) getProject(c *gin.Context) {
	s, release := h.session(c)
	if s == nil {
		return
	}
	defer release()
	p, ok := s.Project(c.Param("id"))
	if !ok {
		fail(c, domain.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":           true,
		"project":      p,
		"taskProgress": analytics.ProjectProgress(p.Tasks),
		"overdue":      analytics.IsOverdue(p.Deadline, h.clock()) && p.Status != domain.ProjectComplete,
	})
}

func (h *Handler) updateProject(c *gin.Context) {
	var patch domain.ProjectPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "invalid body")
		return
	}
	s, release := h.session(c)
	if s == nil {
		return
	}
	defer release()
	p, r, err := s.UpdateProject(c.Param("id"), patch)
	if err != nil {
		fail(c, err)
		return
	}
	h.respond(c, http.StatusOK, gin.H{"project": p}, r)
}

func (h *Handler) deleteProject(c *gin.Context) {
	s, release := h.session(c)
	if s == nil {
		return
	}
	defer release()
	r, err := s.DeleteProject(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	h.respond(c, http.StatusOK, gin.H{}, r)
}

type currentProjectReq struct {
	ID string `json:"id"`
}

func (h *Handler) setCurrentProject(c *gin.Context) {
	var req currentProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	s, release := h.session(c)
	if s == nil {
		return
	}
	defer release()
	if err := s.SetCurrentProject(req.ID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "currentProject": s.State().CurrentProject})
}
