package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/dashboard/repository"
	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/timetracking"
)

func exportCmd(e *env) *cli.Command {
	var (
		period  string
		format  string
		outPath string
	)
	return &cli.Command{
		Name:      "export-time",
		Usage:     "Export one owner's time entries as CSV or JSON",
		UsageText: "worker export-time --owner UID [--period all] [--format csv] [--out FILE]",
		Flags: []cli.Flag{
			ownerFlag(),
			&cli.StringFlag{Name: "period", Usage: "today, week, month or all", Value: "all", Destination: &period},
			&cli.StringFlag{Name: "format", Usage: "csv or json", Value: "csv", Destination: &format},
			&cli.StringFlag{Name: "out", Usage: "output file (defaults to stdout)", Destination: &outPath},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			p, err := timetracking.ParsePeriod(period)
			if err != nil {
				return err
			}
			owner := c.String("owner")
			from, to := p.Bounds(time.Now())
			entries, err := timetracking.NewRepo(e.stores.Pool).List(ctx, owner, timetracking.Filter{Period: p}, from, to)
			if err != nil {
				return fmt.Errorf("list entries: %w", err)
			}

			titles, err := loadTitles(ctx, repository.New(e.stores.SQL), owner)
			if err != nil {
				return err
			}

			var w io.Writer = os.Stdout
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := timetracking.Export(w, format, entries, titles); err != nil {
				return err
			}
			log.Info().Str("owner", owner).Int("entries", len(entries)).Str("format", format).Msg("exported")
			return nil
		},
	}
}

func loadTitles(ctx context.Context, repo *repository.Repository, owner string) (timetracking.Titles, error) {
	titles := timetracking.Titles{Projects: map[string]string{}, Tasks: map[string]string{}}
	projects, err := repo.ListProjects(ctx, owner)
	if err != nil {
		return titles, fmt.Errorf("list projects: %w", err)
	}
	for _, p := range projects {
		titles.Projects[p.ID] = p.Title
	}
	tasks, err := repo.ListTasks(ctx, owner)
	if err != nil {
		return titles, fmt.Errorf("list tasks: %w", err)
	}
	for _, t := range tasks {
		titles.Tasks[t.ID] = t.Title
	}
	return titles, nil
}
