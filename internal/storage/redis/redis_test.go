package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/goodtune/workday/internal/config"
	"github.com/goodtune/workday/internal/storage"
	"github.com/goodtune/workday/internal/timeline"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	mr := miniredis.RunT(t)

	cfg := config.RedisConfig{
		Host:         mr.Addr(), // full "host:port" address
		Port:         0,         // not used when host contains port
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 5,
		DialTimeout:  "5s",
		ReadTimeout:  "3s",
		WriteTimeout: "3s",
	}

	store, err := Open(cfg)
	if err != nil {
		t.Fatalf("Failed to open Redis store: %v", err)
	}
	return store
}

func ts(hour int) time.Time {
	return time.Date(2024, 3, 4, hour, 0, 0, 0, time.UTC)
}

func TestEventStore_AppendAndList(t *testing.T) {
	store := setupTestStore(t)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	events := store.Events()

	input := []storage.Event{
		{Timestamp: ts(15), Kind: timeline.KindActivate, Origin: "journal"},
		{Timestamp: ts(8), Kind: timeline.KindActivate, Origin: "journal"},
		{Timestamp: ts(12), Kind: timeline.KindDeactivate, Origin: "journal"},
	}
	if err := events.AppendBatch(ctx, input); err != nil {
		t.Fatalf("append batch: %v", err)
	}

	listed, err := events.List(ctx, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("expected 3 events, got %d", len(listed))
	}
	for i := 1; i < len(listed); i++ {
		if listed[i].Timestamp.Before(listed[i-1].Timestamp) {
			t.Errorf("events out of order at %d", i)
		}
	}
	if listed[0].Kind != timeline.KindActivate || listed[0].Origin != "journal" {
		t.Errorf("first event = %+v, want activate from journal", listed[0])
	}
}

func TestEventStore_ListRange(t *testing.T) {
	store := setupTestStore(t)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	events := store.Events()

	for hour := 8; hour <= 16; hour += 2 {
		if err := events.Append(ctx, storage.Event{Timestamp: ts(hour), Kind: timeline.KindActivate}); err != nil {
			t.Fatalf("append event: %v", err)
		}
	}

	// Upper bound is exclusive.
	listed, err := events.List(ctx, ts(10), ts(14))
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 events in range, got %d", len(listed))
	}
}

func TestEventStore_Last(t *testing.T) {
	store := setupTestStore(t)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	events := store.Events()

	if _, err := events.Last(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty store, got %v", err)
	}

	if err := events.AppendBatch(ctx, []storage.Event{
		{Timestamp: ts(8), Kind: timeline.KindActivate},
		{Timestamp: ts(17), Kind: timeline.KindDeactivate},
	}); err != nil {
		t.Fatalf("append batch: %v", err)
	}

	last, err := events.Last(ctx)
	if err != nil {
		t.Fatalf("last event: %v", err)
	}
	if !last.Timestamp.Equal(ts(17)) {
		t.Errorf("last timestamp = %v, want 17:00", last.Timestamp)
	}
}

func TestEventStore_DeleteBefore(t *testing.T) {
	store := setupTestStore(t)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	events := store.Events()

	for hour := 8; hour <= 16; hour += 2 {
		if err := events.Append(ctx, storage.Event{Timestamp: ts(hour), Kind: timeline.KindActivate}); err != nil {
			t.Fatalf("append event: %v", err)
		}
	}

	deleted, err := events.DeleteBefore(ctx, ts(12))
	if err != nil {
		t.Fatalf("delete before: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2 deleted events, got %d", deleted)
	}

	remaining, err := events.List(ctx, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(remaining) != 3 {
		t.Fatalf("expected 3 remaining events, got %d", len(remaining))
	}
}
