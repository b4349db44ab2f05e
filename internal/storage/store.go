package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a record is missing from storage.
var ErrNotFound = errors.New("storage: record not found")

// Store represents the root storage interface.
type Store interface {
	Close() error
	Events() EventStore
}

// EventStore persists the raw session state-change events captured by the
// tracker. Events are stored and listed in ascending timestamp order.
type EventStore interface {
	Append(ctx context.Context, event Event) error
	AppendBatch(ctx context.Context, events []Event) error

	// List returns events with from <= timestamp < to, ascending.
	// A zero from or to leaves that side of the range open.
	List(ctx context.Context, from, to time.Time) ([]Event, error)

	// Last returns the most recent stored event, or ErrNotFound.
	Last(ctx context.Context) (*Event, error)

	// DeleteBefore removes events older than cutoff and reports how many
	// were deleted.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int, error)
}
