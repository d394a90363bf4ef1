package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/auth"
)

type Handler struct{}

func New() *Handler {
	return &Handler{}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/me", h.Me)
}

// Me returns the identity the request is scoped to.
func (h *Handler) Me(c *gin.Context) {
	uid := auth.UserFirebaseUID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "user not authenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": gin.H{
		"firebase_uid": uid,
		"email":        c.GetString(auth.CtxEmail),
	}})
}
