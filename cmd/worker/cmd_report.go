package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/analytics"
	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/dashboard/fetch"
	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/dashboard/repository"
	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/timetracking"
)

func reportCmd(e *env) *cli.Command {
	var rangeName string
	return &cli.Command{
		Name:  "report",
		Usage: "Print the dashboard overview and a range report for one owner",
		Flags: []cli.Flag{
			ownerFlag(),
			&cli.StringFlag{
				Name:        "range",
				Usage:       "week, month, quarter or year",
				Value:       "month",
				Destination: &rangeName,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			r, err := analytics.ParseRange(rangeName)
			if err != nil {
				return err
			}
			owner := c.String("owner")
			snap := fetch.NewAdapter(repository.New(e.stores.SQL), log.Logger).Load(ctx, owner)
			if snap.Error != nil {
				return fmt.Errorf("load %s: %s", owner, *snap.Error)
			}
			entries, err := timetracking.NewRepo(e.stores.Pool).List(ctx, owner, timetracking.Filter{}, time.Time{}, time.Time{})
			if err != nil {
				return err
			}

			now := time.Now()
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]interface{}{
				"overview": analytics.BuildOverview(snap.Projects, snap.Tasks, now),
				"report": analytics.BuildReport(analytics.ReportInput{
					Projects: snap.Projects,
					Tasks:    snap.Tasks,
					Entries:  entries,
				}, r, now),
			})
		},
	}
}
