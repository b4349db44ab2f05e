package timeline

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Kind labels a session state-change event.
type Kind string

const (
	// KindActivate marks the machine becoming active.
	KindActivate Kind = "activate"

	// KindDeactivate marks the machine becoming inactive.
	KindDeactivate Kind = "deactivate"
)

// Valid reports whether k is one of the two known event kinds.
func (k Kind) Valid() bool {
	return k == KindActivate || k == KindDeactivate
}

// UnmarshalJSON implements json.Unmarshaler to normalize the kind to lowercase.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	normalized := Kind(strings.ToLower(s))
	if !normalized.Valid() {
		return fmt.Errorf("invalid event kind: %s (must be activate or deactivate)", s)
	}

	*k = normalized
	return nil
}

// MarshalJSON implements json.Marshaler.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(k))
}

// Event is one session state change as delivered by an event source.
// Sources must supply events in non-decreasing timestamp order with
// consecutive duplicate kinds already collapsed.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Kind      Kind      `json:"kind"`
}

// InvalidEventKindError reports an event whose kind is outside the
// activate/deactivate enumeration. It aborts the reduction pass.
type InvalidEventKindError struct {
	Kind Kind
}

func (e *InvalidEventKindError) Error() string {
	return fmt.Sprintf("timeline: invalid event kind %q", string(e.Kind))
}

// Session is one closed activity interval after rounding.
// Immutable once emitted by the reducer.
type Session struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns the length of the session.
func (s Session) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// dayOf returns midnight of t's calendar day in t's location.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
