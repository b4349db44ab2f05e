package storage

import (
	"time"

	"github.com/goodtune/workday/internal/timeline"
)

// Event is a persisted session state-change event. Origin records which
// capture path produced it (journal, boot, import).
type Event struct {
	Timestamp time.Time     `json:"timestamp"`
	Kind      timeline.Kind `json:"kind"`
	Origin    string        `json:"origin,omitempty"`
}
