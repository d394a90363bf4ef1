package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/GoSim-25-26J-441/creator-dashboard-backend/config"
	httpapi "github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/api/http"
	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/api/http/middleware"
	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/api/http/routes"
	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/auth"
	dashboardhttp "github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/dashboard/http"
	goalshttp "github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/goals/http"
	timehttp "github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/timetracking/http"
)

type RouterDeps struct {
	Config    *config.Config
	Log       zerolog.Logger
	DB        httpapi.Pinger
	Redis     httpapi.Pinger
	Sessions  func() int
	Auth      gin.HandlerFunc
	Limiter   *middleware.RateLimiter
	Dashboard *dashboardhttp.Handler
	Time      *timehttp.Handler
	Goals     *goalshttp.Handler
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware(dep.Log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     dep.Config.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-Id", "X-User-Id"},
		ExposeHeaders:    []string{"X-Request-Id", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	healthHandler := httpapi.NewHealthHandler(dep.Config.App.ServiceName, dep.Config.App.Version, dep.DB, dep.Redis, dep.Sessions)
	healthHandler.RegisterRoutes(r)

	var limit gin.HandlerFunc
	if dep.Limiter != nil {
		limit = dep.Limiter.Middleware(auth.UserFirebaseUID)
	}
	routes.RegisterV1(r, routes.V1Deps{
		Auth:      dep.Auth,
		RateLimit: limit,
		Dashboard: dep.Dashboard,
		Time:      dep.Time,
		Goals:     dep.Goals,
	})

	return r
}
