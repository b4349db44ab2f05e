package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/goodtune/workday/internal/config"
	"github.com/goodtune/workday/internal/metrics"
	"github.com/goodtune/workday/internal/source"
	"github.com/goodtune/workday/internal/storage"
	"github.com/goodtune/workday/internal/tracker"
	"github.com/spf13/cobra"
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Run the capture daemon",
	Long: `Track watches the systemd journal for session state changes
(suspend/resume, logind session starts and stops) and records them in the
configured event store for later reporting.`,
	RunE: runTrack,
}

func init() {
	rootCmd.AddCommand(trackCmd)
}

func runTrack(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	logger.Info().
		Str("version", version).
		Str("storage", cfg.Storage.Type).
		Msg("Starting workday tracker")

	store, err := openStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close storage")
		}
	}()

	events := store.Events()

	// Resume the journal read from the stored tail.
	var since time.Time
	last, err := events.Last(cmd.Context())
	switch {
	case err == nil:
		since = last.Timestamp
	case errors.Is(err, storage.ErrNotFound):
		// Fresh store: scan the whole journal.
	default:
		return fmt.Errorf("failed to query last event: %w", err)
	}

	src := &source.JournalSource{Since: since}

	trk, err := tracker.New(events, src, tracker.Config{
		PollInterval:  parseDuration(cfg.Tracker.PollInterval, tracker.DefaultPollInterval),
		Retention:     time.Duration(cfg.Tracker.RetentionDays) * 24 * time.Hour,
		SeenCacheSize: cfg.Tracker.SeenCacheSize,
		Origin:        cfg.Tracker.Origin,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize tracker: %w", err)
	}

	if err := trk.SeedFromBoot(cmd.Context()); err != nil {
		logger.Warn().Err(err).Msg("Could not seed store from boot time")
	}

	metricsServer := metrics.NewServer(cfg.Tracker.MetricsAddr, logger)
	if err := metricsServer.Start(); err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}

	// Notify systemd we are ready (no-op outside a systemd unit)
	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := trk.Run(ctx)

	logger.Info().Msg("Shutdown signal received, gracefully stopping...")
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)

	if err := metricsServer.Stop(); err != nil {
		logger.Error().Err(err).Msg("Error stopping metrics server")
	}

	logger.Info().Msg("Workday tracker stopped")
	return runErr
}
