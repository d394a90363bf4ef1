package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/storage/postgres"
)

func migrateCmd(e *env) *cli.Command {
	var down bool
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply pending schema migrations",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "down",
				Usage:       "revert the most recent migration instead",
				Destination: &down,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if down {
				reverted, err := postgres.Rollback(ctx, e.stores.Pool)
				if err != nil {
					return err
				}
				log.Info().Str("migration", reverted).Msg("migration reverted")
				return nil
			}

			applied, err := postgres.Migrate(ctx, e.stores.Pool)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			for _, name := range applied {
				log.Info().Str("migration", name).Msg("migration applied")
			}
			version, err := postgres.SchemaVersion(ctx, e.stores.Pool)
			if err != nil {
				return err
			}
			log.Info().Int64("version", version).Int("applied", len(applied)).Msg("schema up to date")
			return nil
		},
	}
}
