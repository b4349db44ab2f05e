package bolt

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/goodtune/workday/internal/storage"
	"go.etcd.io/bbolt"
)

// keyTimeLayout is fixed-width so keys sort chronologically.
const keyTimeLayout = "2006-01-02T15:04:05.000000000Z"

type eventStore struct {
	db *bbolt.DB
}

// keyPrefix returns the timestamp portion of an event key.
func keyPrefix(t time.Time) []byte {
	return []byte(t.UTC().Format(keyTimeLayout))
}

// eventKey builds a unique, chronologically sorted key for an event.
func eventKey(t time.Time) ([]byte, error) {
	suffix, err := randomSuffix()
	if err != nil {
		return nil, err
	}
	return append(keyPrefix(t), append([]byte("/"), suffix...)...), nil
}

func (s *eventStore) Append(ctx context.Context, event storage.Event) error {
	return s.AppendBatch(ctx, []storage.Event{event})
}

func (s *eventStore) AppendBatch(ctx context.Context, events []storage.Event) error {
	if len(events) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketEvents))
		for _, event := range events {
			key, err := eventKey(event.Timestamp)
			if err != nil {
				return err
			}
			value, err := marshal(event)
			if err != nil {
				return err
			}
			if err := bucket.Put(key, value); err != nil {
				return fmt.Errorf("put event: %w", err)
			}
		}
		return nil
	})
}

func (s *eventStore) List(ctx context.Context, from, to time.Time) ([]storage.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var events []storage.Event
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(bucketEvents)).Cursor()

		var k, v []byte
		if from.IsZero() {
			k, v = c.First()
		} else {
			k, v = c.Seek(keyPrefix(from))
		}

		var max []byte
		if !to.IsZero() {
			max = keyPrefix(to)
		}

		for ; k != nil; k, v = c.Next() {
			if max != nil && bytes.Compare(k, max) >= 0 {
				break
			}
			var event storage.Event
			if err := unmarshal(v, &event); err != nil {
				return err
			}
			events = append(events, event)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (s *eventStore) Last(ctx context.Context) (*storage.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var event *storage.Event
	err := s.db.View(func(tx *bbolt.Tx) error {
		_, v := tx.Bucket([]byte(bucketEvents)).Cursor().Last()
		if v == nil {
			return storage.ErrNotFound
		}
		event = &storage.Event{}
		return unmarshal(v, event)
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (s *eventStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	deleted := 0
	err := s.db.Update(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(bucketEvents)).Cursor()
		max := keyPrefix(cutoff)
		for k, _ := c.First(); k != nil && bytes.Compare(k, max) < 0; k, _ = c.Next() {
			if err := c.Delete(); err != nil {
				return fmt.Errorf("delete event: %w", err)
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}
