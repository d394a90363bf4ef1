package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/GoSim-25-26J-441/creator-dashboard-backend/config"
	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/bootstrap"
	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/logging"
)

// env is what every subcommand shares once Before has run.
type env struct {
	cfg    *config.Config
	stores *bootstrap.Stores
}

func main() {
	var (
		logLevel string
		logFile  string
		logClose = func() {}
		e        = &env{}
	)

	app := &cli.Command{
		Name:  "worker",
		Usage: "Maintenance tasks for the creator dashboard backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error)",
				Sources:     cli.EnvVars("LOG_LEVEL"),
				Value:       "info",
				Destination: &logLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to stdout)",
				Sources:     cli.EnvVars("LOG_FILE"),
				Destination: &logFile,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, closer, err := logging.New(logLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logClose = closer

			e.cfg = config.Read()
			if e.cfg.Database.DSN == "" && e.cfg.Database.Host == "" {
				return ctx, fmt.Errorf("DB_DSN or DB_HOST is required")
			}
			e.stores, err = bootstrap.OpenStores(ctx, e.cfg, false)
			if err != nil {
				return ctx, fmt.Errorf("open stores: %w", err)
			}
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if e.stores != nil {
				e.stores.Close()
			}
			logClose()
			return nil
		},
		Commands: []*cli.Command{
			migrateCmd(e),
			snapshotCmd(e),
			reportCmd(e),
			exportCmd(e),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Error().Err(err).Msg("worker failed")
		os.Exit(1)
	}
}
