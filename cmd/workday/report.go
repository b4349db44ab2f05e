package main

import (
	"fmt"
	"os"
	"time"

	"github.com/goodtune/workday/internal/clock"
	"github.com/goodtune/workday/internal/config"
	"github.com/goodtune/workday/internal/report"
	"github.com/goodtune/workday/internal/source"
	"github.com/goodtune/workday/internal/timeline"
	"github.com/goodtune/workday/internal/workday"
	"github.com/spf13/cobra"
)

var (
	reportSource   string
	reportFile     string
	reportSince    int
	reportSessions bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print per-day working blocks",
	Long: `Report reconstructs sessions from the captured event stream and prints
each calendar day's activity coalesced into working blocks.`,
	Example: `  workday report
  workday report --since 7 --sessions
  workday report --source file --file events.jsonl`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportSource, "source", "store", "Event source: store, journal or file")
	reportCmd.Flags().StringVar(&reportFile, "file", "", "JSONL event log (required with --source file)")
	reportCmd.Flags().IntVar(&reportSince, "since", 0, "Limit the report to the last N days (0 = everything)")
	reportCmd.Flags().BoolVar(&reportSessions, "sessions", false, "Show the raw sessions inside each block")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	aggCfg, err := aggregatorConfig(cfg.Report)
	if err != nil {
		return err
	}
	rounding := parseDuration(cfg.Report.Rounding, 5*time.Minute)

	var since time.Time
	if reportSince > 0 {
		since = time.Now().AddDate(0, 0, -reportSince)
	}

	var src source.Source
	switch reportSource {
	case "store":
		store, err := openStorage(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
		defer store.Close()
		src = &source.StoreSource{Store: store.Events(), From: since}
	case "journal":
		src = &source.JournalSource{Since: since}
	case "file":
		if reportFile == "" {
			return fmt.Errorf("--file is required with --source file")
		}
		src = &source.JSONLSource{Path: reportFile}
	default:
		return fmt.Errorf("unknown event source: %s", reportSource)
	}

	sessions := timeline.Reduce(src.Events(cmd.Context()), rounding, clock.RealClock{})
	days := workday.Aggregate(sessions, aggCfg)

	renderer := report.NewRenderer(os.Stdout)
	renderer.ShowSessions = reportSessions
	return renderer.Render(days)
}

// aggregatorConfig parses the five report tunables.
func aggregatorConfig(cfg config.ReportConfig) (workday.Config, error) {
	workStart, err := workday.ParseTimeOfDay(cfg.WorkStart)
	if err != nil {
		return workday.Config{}, fmt.Errorf("invalid report.work_start: %w", err)
	}
	workEnd, err := workday.ParseTimeOfDay(cfg.WorkEnd)
	if err != nil {
		return workday.Config{}, fmt.Errorf("invalid report.work_end: %w", err)
	}

	return workday.Config{
		WorkStart: workStart,
		WorkEnd:   workEnd,
		WorkIdle:  parseDuration(cfg.WorkIdle, 4*time.Hour),
		AfterIdle: parseDuration(cfg.AfterIdle, 15*time.Minute),
	}, nil
}
