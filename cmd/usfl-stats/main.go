// Command usfl-stats fetches USFL game data and builds the game, season,
// play-by-play, schedule, standings and roster tables.
//
// Usage:
//
//	usfl-stats fetch
//	usfl-stats games --season 2023
//	usfl-stats season --season 2023 --save=false
//	usfl-stats standings --season 2024
//	usfl-stats rosters --season 2024
//	usfl-stats pipeline --season 2024
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/tyler180/usfl-stats/internal/app/usflstats"
	"github.com/tyler180/usfl-stats/internal/config"
)

func main() {
	root := &cobra.Command{
		Use:          "usfl-stats",
		Short:        "USFL stats pipeline",
		SilenceUsage: true,
	}

	root.AddCommand(
		modeCmd(usflstats.ModeFetch, "Download game payloads into DATA_DIR/gamelogs"),
		modeCmd(usflstats.ModeGames, "Build per-game player tables from saved payloads (season 0 = all)"),
		modeCmd(usflstats.ModeSeason, "Aggregate a season's game table into season totals"),
		modeCmd(usflstats.ModeSchedule, "Build the season schedule from saved payloads"),
		modeCmd(usflstats.ModeStandings, "Download division standings"),
		modeCmd(usflstats.ModePBP, "Build the season's play-by-play from saved payloads"),
		modeCmd(usflstats.ModeRosters, "Download the roster of every team in the standings"),
		modeCmd(usflstats.ModePipeline, "fetch, games, season, pbp and schedule in one run"),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func modeCmd(mode, short string) *cobra.Command {
	var (
		season int
		save   bool
	)
	cmd := &cobra.Command{
		Use:   mode,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(usflstats.Request{Mode: mode, Season: season, Save: save})
		},
	}
	cmd.Flags().IntVar(&season, "season", 0, "Season year (default SEASON)")
	cmd.Flags().BoolVar(&save, "save", true, "Write outputs to the configured sinks")
	return cmd
}

func run(req usflstats.Request) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := usflstats.NewLogger(os.Stdout, cfg.Debug)

	svc, err := usflstats.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	start := time.Now()
	res, err := svc.Run(ctx, req)
	if err != nil {
		logger.Error("run failed", "mode", req.Mode, "err", err)
		return err
	}
	logger.Info("done", "mode", res.Mode, "seasons", res.Seasons, "rows", res.Rows,
		"issues", res.Issues, "written", len(res.Written), "duration", time.Since(start).Round(time.Millisecond))
	for _, w := range res.Written {
		logger.Debug("wrote", "location", w)
	}
	return nil
}
