package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodtune/workday/internal/metrics"
	"github.com/goodtune/workday/internal/source"
	"github.com/goodtune/workday/internal/storage"
	"github.com/goodtune/workday/internal/timeline"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/host"
)

const (
	// DefaultPollInterval is the pause between source polls
	DefaultPollInterval = 30 * time.Second

	// DefaultSeenCacheSize bounds the re-read deduplication cache
	DefaultSeenCacheSize = 4096

	// pruneInterval is the pause between retention sweeps
	pruneInterval = 6 * time.Hour
)

// Config holds tracker configuration
type Config struct {
	PollInterval  time.Duration
	Retention     time.Duration // 0 disables pruning
	SeenCacheSize int
	Origin        string // origin label recorded on captured events
}

// Tracker polls an event source and appends new state-change events to
// storage, keeping the stored stream ordered and free of consecutive
// duplicate kinds.
type Tracker struct {
	events storage.EventStore
	src    source.Source
	seen   *lru.Cache[string, struct{}]
	cfg    Config
	logger zerolog.Logger
}

// New creates a new tracker
func New(events storage.EventStore, src source.Source, cfg Config, logger zerolog.Logger) (*Tracker, error) {
	if cfg.PollInterval == 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.SeenCacheSize == 0 {
		cfg.SeenCacheSize = DefaultSeenCacheSize
	}

	seen, err := lru.New[string, struct{}](cfg.SeenCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create seen cache: %w", err)
	}

	return &Tracker{
		events: events,
		src:    src,
		seen:   seen,
		cfg:    cfg,
		logger: logger.With().Str("component", "tracker").Logger(),
	}, nil
}

// SeedFromBoot records an initial activate at host boot time when the
// store holds no events yet. The reducer discards the first observed day,
// so a fresh installation starts reporting from its second day.
func (t *Tracker) SeedFromBoot(ctx context.Context) error {
	_, err := t.events.Last(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("query last event: %w", err)
	}

	bootEpoch, err := host.BootTimeWithContext(ctx)
	if err != nil {
		return fmt.Errorf("query boot time: %w", err)
	}

	bootTime := time.Unix(int64(bootEpoch), 0)
	if err := t.events.Append(ctx, storage.Event{
		Timestamp: bootTime,
		Kind:      timeline.KindActivate,
		Origin:    "boot",
	}); err != nil {
		return fmt.Errorf("seed boot event: %w", err)
	}

	metrics.EventsCaptured.WithLabelValues(string(timeline.KindActivate), "boot").Inc()
	t.logger.Info().Time("boot_time", bootTime).Msg("Seeded empty store from host boot time")
	return nil
}

// Run polls the source until the context is cancelled.
func (t *Tracker) Run(ctx context.Context) error {
	t.logger.Info().
		Dur("poll_interval", t.cfg.PollInterval).
		Dur("retention", t.cfg.Retention).
		Msg("Tracker started")

	ticker := time.NewTicker(t.cfg.PollInterval)
	defer ticker.Stop()

	pruneTicker := time.NewTicker(pruneInterval)
	defer pruneTicker.Stop()

	if err := t.poll(ctx); err != nil {
		t.logger.Error().Err(err).Msg("Capture poll failed")
		metrics.CaptureErrors.Inc()
	}

	for {
		select {
		case <-ctx.Done():
			t.logger.Info().Msg("Tracker stopped")
			return nil
		case <-ticker.C:
			if err := t.poll(ctx); err != nil {
				t.logger.Error().Err(err).Msg("Capture poll failed")
				metrics.CaptureErrors.Inc()
			}
		case <-pruneTicker.C:
			if err := t.prune(ctx); err != nil {
				t.logger.Error().Err(err).Msg("Retention pruning failed")
			}
		}
	}
}

// poll reads the source and appends events newer than the stored tail.
func (t *Tracker) poll(ctx context.Context) error {
	var (
		lastTime time.Time
		lastKind timeline.Kind
	)

	last, err := t.events.Last(ctx)
	switch {
	case err == nil:
		lastTime = last.Timestamp
		lastKind = last.Kind
	case errors.Is(err, storage.ErrNotFound):
		// Empty store: take everything the source has.
	default:
		return fmt.Errorf("query last event: %w", err)
	}

	var batch []storage.Event
	for ev, err := range t.src.Events(ctx) {
		if err != nil {
			return err
		}

		if ev.Timestamp.Before(lastTime) {
			continue
		}

		key := ev.Timestamp.Format(time.RFC3339Nano) + "|" + string(ev.Kind)
		if _, ok := t.seen.Get(key); ok {
			continue
		}
		t.seen.Add(key, struct{}{})

		// Collapse duplicate kinds across the storage boundary.
		if ev.Kind == lastKind {
			continue
		}

		batch = append(batch, storage.Event{
			Timestamp: ev.Timestamp,
			Kind:      ev.Kind,
			Origin:    t.cfg.Origin,
		})
		lastTime = ev.Timestamp
		lastKind = ev.Kind
	}

	if len(batch) == 0 {
		return nil
	}

	if err := t.events.AppendBatch(ctx, batch); err != nil {
		return fmt.Errorf("append events: %w", err)
	}

	for _, ev := range batch {
		metrics.EventsCaptured.WithLabelValues(string(ev.Kind), ev.Origin).Inc()
	}
	metrics.LastEventTimestamp.Set(float64(batch[len(batch)-1].Timestamp.Unix()))

	t.logger.Debug().
		Int("count", len(batch)).
		Time("tail", batch[len(batch)-1].Timestamp).
		Msg("Captured events")

	return nil
}

// prune removes events older than the retention horizon.
func (t *Tracker) prune(ctx context.Context) error {
	if t.cfg.Retention == 0 {
		return nil
	}

	cutoff := time.Now().Add(-t.cfg.Retention)
	deleted, err := t.events.DeleteBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("delete events before %s: %w", cutoff.Format(time.RFC3339), err)
	}

	if deleted > 0 {
		metrics.EventsPruned.Add(float64(deleted))
		t.logger.Info().
			Int("deleted", deleted).
			Time("cutoff", cutoff).
			Msg("Pruned expired events")
	}
	return nil
}
