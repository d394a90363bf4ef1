package http

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/dashboard/domain"
)

type createMilestoneReq struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Deadline    time.Time              `json:"deadline"`
	Status      domain.MilestoneStatus `json:"status"`
	Progress    int                    `json:"progress"`
	ProjectID   string                 `json:"projectId"`
	Order       int                    `json:"order"`
}

// listMilestones filters by ?projectId= and orders by Order when it is set.
func (h *Handler) listMilestones(c *gin.Context) {
	s, release := h.session(c)
	if s == nil {
		return
	}
	defer release()
	ms := s.State().Milestones
	if pid := c.Query("projectId"); pid != "" {
		filtered := make([]domain.Milestone, 0, len(ms))
		for _, m := range ms {
			if m.ProjectID == pid {
				filtered = append(filtered, m)
			}
		}
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Order < filtered[j].Order })
		ms = filtered
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "milestones": ms})
}

func (h *Handler) createMilestone(c *gin.Context) {
	var req createMilestoneReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	s, release := h.session(c)
	if s == nil {
		return
	}
	defer release()

	m, r, err := s.CreateMilestone(domain.NewMilestone{
		Title:       req.Title,
		Description: req.Description,
		Deadline:    req.Deadline,
		Status:      req.Status,
		Progress:    req.Progress,
		ProjectID:   req.ProjectID,
		Order:       req.Order,
	})
	if err != nil {
		fail(c, err)
		return
	}
	h.respond(c, http.StatusCreated, gin.H{"milestone": m}, r)
}

func (h *Handler) updateMilestone(c *gin.Context) {
	var patch domain.MilestonePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "invalid body")
		return
	}
	s, release := h.session(c)
	if s == nil {
		return
	}
	defer release()
	m, r, err := s.UpdateMilestone(c.Param("id"), patch)
	if err != nil {
		fail(c, err)
		return
	}
	h.respond(c, http.StatusOK, gin.H{"milestone": m}, r)
}

func (h *Handler) deleteMilestone(c *gin.Context) {
	s, release := h.session(c)
	if s == nil {
		return
	}
	defer release()
	r, err := s.DeleteMilestone(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	h.respond(c, http.StatusOK, gin.H{}, r)
}
