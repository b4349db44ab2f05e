package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/goodtune/workday/internal/storage"
	"github.com/redis/go-redis/v9"
)

// keyEvents is the sorted set holding all events, scored by unix nanoseconds.
const keyEvents = "workday:events"

type eventStore struct {
	client *redis.Client
}

func score(t time.Time) float64 {
	return float64(t.UnixNano())
}

func (s *eventStore) Append(ctx context.Context, event storage.Event) error {
	return s.AppendBatch(ctx, []storage.Event{event})
}

func (s *eventStore) AppendBatch(ctx context.Context, events []storage.Event) error {
	if len(events) == 0 {
		return nil
	}

	members := make([]redis.Z, 0, len(events))
	for _, event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}
		members = append(members, redis.Z{
			Score:  score(event.Timestamp),
			Member: string(data),
		})
	}

	return s.client.ZAdd(ctx, keyEvents, members...).Err()
}

func (s *eventStore) List(ctx context.Context, from, to time.Time) ([]storage.Event, error) {
	min := "-inf"
	if !from.IsZero() {
		min = strconv.FormatInt(from.UnixNano(), 10)
	}
	max := "+inf"
	if !to.IsZero() {
		// Exclusive upper bound
		max = "(" + strconv.FormatInt(to.UnixNano(), 10)
	}

	members, err := s.client.ZRangeByScore(ctx, keyEvents, &redis.ZRangeBy{
		Min: min,
		Max: max,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	events := make([]storage.Event, 0, len(members))
	for _, member := range members {
		var event storage.Event
		if err := json.Unmarshal([]byte(member), &event); err != nil {
			return nil, fmt.Errorf("unmarshal event: %w", err)
		}
		events = append(events, event)
	}
	return events, nil
}

func (s *eventStore) Last(ctx context.Context) (*storage.Event, error) {
	members, err := s.client.ZRevRange(ctx, keyEvents, 0, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("last event: %w", err)
	}
	if len(members) == 0 {
		return nil, storage.ErrNotFound
	}

	var event storage.Event
	if err := json.Unmarshal([]byte(members[0]), &event); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	return &event, nil
}

func (s *eventStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int, error) {
	max := "(" + strconv.FormatInt(cutoff.UnixNano(), 10)
	deleted, err := s.client.ZRemRangeByScore(ctx, keyEvents, "-inf", max).Result()
	if err != nil {
		return 0, fmt.Errorf("delete events: %w", err)
	}
	return int(deleted), nil
}
