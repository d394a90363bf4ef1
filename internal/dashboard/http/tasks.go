package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/dashboard/domain"
)

type createTaskReq struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Priority    domain.Priority   `json:"priority"`
	Status      domain.TaskStatus `json:"status"`
	Assignee    *string           `json:"assignee"`
	Deadline    *time.Time        `json:"deadline"`
	Tags        []string          `json:"tags"`
	ProjectID   *string           `json:"projectId"`
	TimeSpent   int               `json:"timeSpent"`
}

// listTasks returns every task, or only those of ?projectId=.
func (h *Handler) listTasks(c *gin.Context) {
	s, release := h.session(c)
	if s == nil {
		return
	}
	defer release()
	tasks := s.State().Tasks
	if pid := c.Query("projectId"); pid != "" {
		filtered := make([]domain.Task, 0, len(tasks))
		for _, t := range tasks {
			if t.InProject(pid) {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "tasks": tasks})
}

func (h *Handler) getTask(c *gin.Context) {
	s, release := h.session(c)
	if s == nil {
		return
	}
	defer release()
	t, ok := s.Task(c.Param("id"))
	if !ok {
		fail(c, domain.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "task": t})
}

func (h *Handler) createTask(c *gin.Context) {
	var req createTaskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	s, release := h.session(c)
	if s == nil {
		return
	}
	defer release()

	t, r, err := s.CreateTask(domain.NewTask{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		Assignee:    req.Assignee,
		Deadline:    req.Deadline,
		Tags:        req.Tags,
		ProjectID:   req.ProjectID,
		TimeSpent:   req.TimeSpent,
	})
	if err != nil {
		fail(c, err)
		return
	}
	h.respond(c, http.StatusCreated, gin.H{"task": t}, r)
}

func (h *Handler) updateTask(c *gin.Context) {
	var patch domain.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "invalid body")
		return
	}
	s, release := h.session(c)
	if s == nil {
		return
	}
	defer release()
	t, r, err := s.UpdateTask(c.Param("id"), patch)
	if err != nil {
		fail(c, err)
		return
	}
	h.respond(c, http.StatusOK, gin.H{"task": t}, r)
}

func (h *Handler) deleteTask(c *gin.Context) {
	s, release := h.session(c)
	if s == nil {
		return
	}
	defer release()
	r, err := s.DeleteTask(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	h.respond(c, http.StatusOK, gin.H{}, r)
}
