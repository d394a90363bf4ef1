package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/dashboard/fetch"
	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/dashboard/repository"
)

func ownerFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "owner",
		Usage:    "firebase uid the data belongs to",
		Required: true,
	}
}

// snapshotCmd performs the same three reads a session does on identify and
// reports what came back. It exits non-zero when any read fails.
func snapshotCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "snapshot",
		Usage: "Load one owner's projects, tasks and milestones and print the counts",
		Flags: []cli.Flag{ownerFlag()},
		Action: func(ctx context.Context, c *cli.Command) error {
			adapter := fetch.NewAdapter(repository.New(e.stores.SQL), log.Logger)
			snap := adapter.Load(ctx, c.String("owner"))

			out := map[string]interface{}{
				"owner":      snap.Owner,
				"projects":   len(snap.Projects),
				"tasks":      len(snap.Tasks),
				"milestones": len(snap.Milestones),
				"error":      snap.Error,
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(out); err != nil {
				return err
			}
			if snap.Error != nil {
				return errors.New(*snap.Error)
			}
			return nil
		},
	}
}
