package source

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/goodtune/workday/internal/storage"
	"github.com/goodtune/workday/internal/timeline"
)

// StoreSource reads captured events back out of an event store.
type StoreSource struct {
	Store storage.EventStore
	From  time.Time // zero means from the beginning
	To    time.Time // zero means up to the latest event
}

func (s *StoreSource) Events(ctx context.Context) iter.Seq2[timeline.Event, error] {
	stored, err := s.Store.List(ctx, s.From, s.To)
	if err != nil {
		return emitErr(fmt.Errorf("list stored events: %w", err))
	}

	events := make([]timeline.Event, 0, len(stored))
	for _, ev := range stored {
		events = append(events, timeline.Event{Timestamp: ev.Timestamp, Kind: ev.Kind})
	}

	return emitAll(Normalize(events))
}
