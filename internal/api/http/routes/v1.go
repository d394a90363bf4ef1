package routes

import (
	"github.com/gin-gonic/gin"

	authhttp "github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/auth/http"
	dashboardhttp "github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/dashboard/http"
	goalshttp "github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/goals/http"
	timehttp "github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/timetracking/http"
)

type V1Deps struct {
	// Auth resolves the caller into the firebase uid context key.
	Auth      gin.HandlerFunc
	RateLimit gin.HandlerFunc
	Dashboard *dashboardhttp.Handler
	Time      *timehttp.Handler
	Goals     *goalshttp.Handler
}

// RegisterV1 mounts every authenticated route under /api/v1.
func RegisterV1(r *gin.Engine, dep V1Deps) *gin.RouterGroup {
	api := r.Group("/api/v1")
	api.Use(dep.Auth)
	if dep.RateLimit != nil {
		api.Use(dep.RateLimit)
	}

	authhttp.New().Register(api)
	dep.Dashboard.Register(api)
	dep.Time.Register(api)
	if dep.Goals != nil {
		dep.Goals.Register(api)
	}
	return api
}
