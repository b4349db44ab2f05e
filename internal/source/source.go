// Package source supplies ordered, deduplicated event streams to the
// timeline reducer. Every implementation upholds the reducer's input
// contract: non-decreasing timestamps and no consecutive duplicate kinds.
package source

import (
	"context"
	"iter"
	"sort"

	"github.com/goodtune/workday/internal/timeline"
)

// Source produces a session state-change event stream.
type Source interface {
	Events(ctx context.Context) iter.Seq2[timeline.Event, error]
}

// Normalize sorts events by timestamp and collapses consecutive runs of the
// same kind, keeping the first event of each run. The input slice is
// modified in place.
func Normalize(events []timeline.Event) []timeline.Event {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})

	out := events[:0]
	for _, ev := range events {
		if len(out) > 0 && out[len(out)-1].Kind == ev.Kind {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// emitAll yields a materialized event slice through the lazy interface.
func emitAll(events []timeline.Event) iter.Seq2[timeline.Event, error] {
	return func(yield func(timeline.Event, error) bool) {
		for _, ev := range events {
			if !yield(ev, nil) {
				return
			}
		}
	}
}

// emitErr yields a single error and ends the sequence.
func emitErr(err error) iter.Seq2[timeline.Event, error] {
	return func(yield func(timeline.Event, error) bool) {
		yield(timeline.Event{}, err)
	}
}
