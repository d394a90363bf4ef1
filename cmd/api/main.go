package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/GoSim-25-26J-441/creator-dashboard-backend/config"
	httpapi "github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/api/http"
	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/api/http/middleware"
	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/auth"
	authmw "github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/auth/middleware"
	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/bootstrap"
	cronjob "github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/dashboard/cron"
	dashboardhttp "github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/dashboard/http"
	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/dashboard/repository"
	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/dashboard/session"
	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/dashboard/store"
	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/goals"
	goalshttp "github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/goals/http"
	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/logging"
	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/timetracking"
	timehttp "github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/timetracking/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stderrLog := zerolog.New(os.Stderr)
		stderrLog.Fatal().Err(err).Msg("load config")
	}

	log, closeLog, err := logging.New(cfg.App.LogLevel, cfg.App.LogFile)
	if err != nil {
		stderrLog := zerolog.New(os.Stderr)
		stderrLog.Fatal().Err(err).Msg("init logger")
	}
	defer closeLog()
	log = log.With().Str("service", cfg.App.ServiceName).Logger()

	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("api stopped")
		closeLog()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bootstrap.SetGinMode(cfg.App.Environment)

	stores, err := bootstrap.OpenStores(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer stores.Close()

	policy, err := store.ParseRollbackPolicy(cfg.Sync.Rollback)
	if err != nil {
		return err
	}
	repo := repository.New(stores.SQL)
	sessions := session.NewManager(repo, repo, store.Options{
		Policy:        policy,
		CascadeRemote: cfg.Sync.CascadeRemote,
		WriteTimeout:  cfg.Sync.WriteTimeout,
		Logger:        logging.Component(log, "store"),
	}, cfg.Sync.SessionIdleTTL)

	timeSvc := timetracking.NewService(
		timetracking.NewRepo(stores.Pool),
		timetracking.NewTimerStore(stores.Redis, nil),
		nil, nil,
		logging.Component(log, "timetracking"),
	)

	goalSvc := goals.NewService(goals.NewRepo(stores.SQL), nil, nil, logging.Component(log, "goals"))

	authMW, err := authMiddleware(ctx, cfg, log)
	if err != nil {
		return err
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, 10*time.Minute)

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		Config:    cfg,
		Log:       logging.Component(log, "http"),
		DB:        stores.Pool,
		Redis:     httpapi.PingFunc(func(ctx context.Context) error { return stores.Redis.Ping(ctx).Err() }),
		Sessions:  sessions.Len,
		Auth:      authMW,
		Limiter:   limiter,
		Dashboard: dashboardhttp.NewHandler(sessions, timeSvc, nil, logging.Component(log, "dashboard")),
		Time:      timehttp.NewHandler(timeSvc, sessions, nil, logging.Component(log, "timetracking")),
		Goals:     goalshttp.NewHandler(goalSvc, sessions, nil, logging.Component(log, "goals")),
	})

	go housekeep(ctx, limiter, sessions, log)

	var sched *cronjob.Scheduler
	if spec := cfg.Sync.ReconcileSchedule; spec != "" {
		sched = cronjob.NewScheduler(sessions, spec, cfg.Sync.WriteTimeout*3, logging.Component(log, "reconcile"))
		if err := sched.Start(); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("auth", cfg.Auth.Mode).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
	if sched != nil {
		sched.Stop(shutdownCtx)
	}
	// pending remote writes get until the deadline to settle
	if err := sessions.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("sessions did not drain")
	}
	return nil
}

func authMiddleware(ctx context.Context, cfg *config.Config, log zerolog.Logger) (gin.HandlerFunc, error) {
	if cfg.Auth.Mode == "dev" {
		log.Warn().Msg("AUTH_MODE=dev: trusting X-User-Id")
		return auth.DevUser(), nil
	}
	client, err := auth.InitializeFirebase(ctx, &cfg.Firebase)
	if err != nil {
		return nil, err
	}
	return authmw.FirebaseAuthMiddleware(client), nil
}

// housekeep drops idle limiter buckets and idle sessions once a minute.
func housekeep(ctx context.Context, l *middleware.RateLimiter, sessions *session.Manager, log zerolog.Logger) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			buckets := l.Sweep()
			if n := sessions.EvictIdle(ctx); n > 0 || buckets > 0 {
				log.Debug().Int("sessions", n).Int("buckets", buckets).Msg("housekeeping")
			}
		}
	}
}
