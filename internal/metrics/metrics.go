package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	// Capture metrics
	EventsCaptured = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workday_events_captured_total",
			Help: "Total session state-change events captured",
		},
		[]string{"kind", "origin"},
	)

	CaptureErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "workday_capture_errors_total",
			Help: "Total capture poll failures",
		},
	)

	EventsPruned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "workday_events_pruned_total",
			Help: "Total events removed by retention pruning",
		},
	)

	LastEventTimestamp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "workday_last_event_timestamp_seconds",
			Help: "Unix timestamp of the most recently captured event",
		},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(
		EventsCaptured,
		CaptureErrors,
		EventsPruned,
		LastEventTimestamp,
	)
}

// Server is the metrics HTTP server
type Server struct {
	server *http.Server
	logger zerolog.Logger
}

// NewServer creates a new metrics server
func NewServer(addr string, logger zerolog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return &Server{
		server: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
		logger: logger.With().Str("component", "metrics").Logger(),
	}
}

// Start starts the metrics server
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("Starting metrics server")
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("Metrics server error")
		}
	}()
	return nil
}

// Stop stops the metrics server
func (s *Server) Stop() error {
	s.logger.Info().Msg("Stopping metrics server")
	return s.server.Close()
}
