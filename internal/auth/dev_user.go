package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const DevFallbackUID = "demo-user"

// DevUser sets a firebase uid in context without verifying anything.
// The uid comes from X-User-Id and falls back to "demo-user".
// Use this ONLY for development/testing.
func DevUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader("X-User-Id"))
		if uid == "" {
			uid = DevFallbackUID
		}
		c.Set(CtxFirebaseUID, uid)
		if email := strings.TrimSpace(c.GetHeader("X-User-Email")); email != "" {
			c.Set(CtxEmail, email)
		}
		c.Next()
	}
}
