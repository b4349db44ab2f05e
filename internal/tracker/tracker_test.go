package tracker

import (
	"context"
	"errors"
	"iter"
	"path/filepath"
	"testing"
	"time"

	"github.com/goodtune/workday/internal/storage"
	"github.com/goodtune/workday/internal/storage/bolt"
	"github.com/goodtune/workday/internal/timeline"
	"github.com/rs/zerolog"
)

// fakeSource replays a fixed slice of events.
type fakeSource struct {
	events []timeline.Event
}

func (f *fakeSource) Events(ctx context.Context) iter.Seq2[timeline.Event, error] {
	return func(yield func(timeline.Event, error) bool) {
		for _, ev := range f.events {
			if !yield(ev, nil) {
				return
			}
		}
	}
}

func openTestStore(t *testing.T) storage.EventStore {
	t.Helper()
	store, err := bolt.Open(filepath.Join(t.TempDir(), "events.bolt"))
	if err != nil {
		t.Fatalf("open bolt store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store.Events()
}

func newTestTracker(t *testing.T, events storage.EventStore, src *fakeSource) *Tracker {
	t.Helper()
	trk, err := New(events, src, Config{Origin: "test"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}
	return trk
}

func collect(t *testing.T, events storage.EventStore) []storage.Event {
	t.Helper()
	got, err := events.List(context.Background(), time.Time{}, time.Now().Add(24*time.Hour))
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	return got
}

func ev(kind timeline.Kind, hour, min int) timeline.Event {
	return timeline.Event{
		Timestamp: time.Date(2024, 3, 4, hour, min, 0, 0, time.UTC),
		Kind:      kind,
	}
}

func TestPollCollapsesDuplicateKinds(t *testing.T) {
	events := openTestStore(t)
	src := &fakeSource{events: []timeline.Event{
		ev(timeline.KindActivate, 8, 0),
		ev(timeline.KindActivate, 8, 5), // same kind, must collapse
		ev(timeline.KindDeactivate, 12, 0),
	}}
	trk := newTestTracker(t, events, src)

	if err := trk.poll(context.Background()); err != nil {
		t.Fatalf("poll: %v", err)
	}

	got := collect(t, events)
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2: %+v", len(got), got)
	}
	if got[0].Kind != timeline.KindActivate || got[1].Kind != timeline.KindDeactivate {
		t.Errorf("kinds = %s, %s", got[0].Kind, got[1].Kind)
	}
	if got[0].Origin != "test" {
		t.Errorf("origin = %q, want test", got[0].Origin)
	}
}

func TestPollSkipsStoredTail(t *testing.T) {
	events := openTestStore(t)
	src := &fakeSource{events: []timeline.Event{
		ev(timeline.KindActivate, 8, 0),
		ev(timeline.KindDeactivate, 12, 0),
	}}
	trk := newTestTracker(t, events, src)

	if err := trk.poll(context.Background()); err != nil {
		t.Fatalf("first poll: %v", err)
	}

	// A second poll over the same source data must not duplicate anything.
	if err := trk.poll(context.Background()); err != nil {
		t.Fatalf("second poll: %v", err)
	}

	if got := collect(t, events); len(got) != 2 {
		t.Fatalf("got %d events after repoll, want 2: %+v", len(got), got)
	}

	// New events past the stored tail are still captured.
	src.events = append(src.events, ev(timeline.KindActivate, 13, 0))
	if err := trk.poll(context.Background()); err != nil {
		t.Fatalf("third poll: %v", err)
	}
	got := collect(t, events)
	if len(got) != 3 {
		t.Fatalf("got %d events, want 3: %+v", len(got), got)
	}
	if got[2].Kind != timeline.KindActivate {
		t.Errorf("tail kind = %s, want activate", got[2].Kind)
	}
}

func TestSeedFromBootNoopWhenPopulated(t *testing.T) {
	events := openTestStore(t)
	seeded := storage.Event{
		Timestamp: time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC),
		Kind:      timeline.KindActivate,
		Origin:    "test",
	}
	if err := events.Append(context.Background(), seeded); err != nil {
		t.Fatalf("append: %v", err)
	}

	trk := newTestTracker(t, events, &fakeSource{})
	if err := trk.SeedFromBoot(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got := collect(t, events)
	if len(got) != 1 {
		t.Fatalf("got %d events, want 1: %+v", len(got), got)
	}
	if got[0].Origin != "test" {
		t.Errorf("origin = %q, seed must not overwrite existing events", got[0].Origin)
	}
}

func TestPruneDeletesExpired(t *testing.T) {
	events := openTestStore(t)
	old := storage.Event{
		Timestamp: time.Now().Add(-72 * time.Hour),
		Kind:      timeline.KindActivate,
		Origin:    "test",
	}
	fresh := storage.Event{
		Timestamp: time.Now().Add(-time.Hour),
		Kind:      timeline.KindDeactivate,
		Origin:    "test",
	}
	if err := events.AppendBatch(context.Background(), []storage.Event{old, fresh}); err != nil {
		t.Fatalf("append: %v", err)
	}

	trk := newTestTracker(t, events, &fakeSource{})
	trk.cfg.Retention = 48 * time.Hour

	if err := trk.prune(context.Background()); err != nil {
		t.Fatalf("prune: %v", err)
	}

	got := collect(t, events)
	if len(got) != 1 {
		t.Fatalf("got %d events after prune, want 1: %+v", len(got), got)
	}
	if got[0].Kind != timeline.KindDeactivate {
		t.Errorf("survivor kind = %s, want deactivate", got[0].Kind)
	}
}

func TestPruneDisabledByZeroRetention(t *testing.T) {
	events := openTestStore(t)
	old := storage.Event{
		Timestamp: time.Now().Add(-1000 * time.Hour),
		Kind:      timeline.KindActivate,
		Origin:    "test",
	}
	if err := events.Append(context.Background(), old); err != nil {
		t.Fatalf("append: %v", err)
	}

	trk := newTestTracker(t, events, &fakeSource{})
	if err := trk.prune(context.Background()); err != nil {
		t.Fatalf("prune: %v", err)
	}

	if got := collect(t, events); len(got) != 1 {
		t.Fatalf("got %d events, want 1", len(got))
	}
}

// unreliableStore fails Last to verify poll error propagation.
type unreliableStore struct {
	storage.EventStore
}

func (u *unreliableStore) Last(ctx context.Context) (*storage.Event, error) {
	return nil, errors.New("backend unavailable")
}

func TestPollPropagatesStoreError(t *testing.T) {
	events := &unreliableStore{EventStore: openTestStore(t)}
	trk := newTestTracker(t, events, &fakeSource{})

	if err := trk.poll(context.Background()); err == nil {
		t.Fatal("expected error from failing store")
	}
}
