package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CtxFirebaseUID = "firebase_uid"
	CtxEmail       = "email"
	CtxToken       = "firebase_token"
)

// UserFirebaseUID extracts the Firebase UID from the Gin context.
// It is the owner identity every dashboard read and write is scoped by.
func UserFirebaseUID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxFirebaseUID))
}
