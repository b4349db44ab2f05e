package timeline

import (
	"iter"
	"time"

	"github.com/goodtune/workday/internal/clock"
)

// Reduce turns a raw event stream into a lazy sequence of non-overlapping
// sessions, snapping starts down and ends up to the rounding grid.
//
// Events dated on the same calendar day as the first observed event are
// discarded unconditionally: the stream cannot be known to contain that
// day's complete history, so no session ever starts on the first day.
//
// The input ordering contract (non-decreasing timestamps, no consecutive
// duplicate kinds) is not re-validated; violating it yields unspecified
// output. An event kind outside the enumeration ends the pass with
// *InvalidEventKindError.
//
// A trailing activate with no matching deactivate is closed at
// Ceil(clk.Now(), rounding).
func Reduce(events iter.Seq2[Event, error], rounding time.Duration, clk clock.Clock) iter.Seq2[Session, error] {
	return func(yield func(Session, error) bool) {
		var (
			firstDay     time.Time
			pendingStart *time.Time
			pendingEnd   *time.Time
		)

		for ev, err := range events {
			if err != nil {
				yield(Session{}, err)
				return
			}

			if firstDay.IsZero() {
				firstDay = dayOf(ev.Timestamp)
			}
			if dayOf(ev.Timestamp).Equal(firstDay) {
				continue
			}

			switch ev.Kind {
			case KindActivate:
				start := Floor(ev.Timestamp, rounding)
				switch {
				case pendingStart != nil && pendingEnd != nil && !pendingEnd.Before(start):
					// Rounding pushed the buffered end to or past the new
					// start: fuse the two raw sessions into one continuing
					// session. The pending start is preserved.
					pendingEnd = nil
				case pendingStart != nil && pendingEnd != nil:
					if !yield(Session{Start: *pendingStart, End: *pendingEnd}, nil) {
						return
					}
					pendingEnd = nil
					pendingStart = &start
				default:
					pendingStart = &start
				}
			case KindDeactivate:
				if pendingStart == nil {
					// A session must begin with an activate.
					continue
				}
				end := Ceil(ev.Timestamp, rounding)
				pendingEnd = &end
			default:
				yield(Session{}, &InvalidEventKindError{Kind: ev.Kind})
				return
			}
		}

		if pendingStart != nil {
			end := pendingEnd
			if end == nil {
				// Still active: close the open session at the current instant.
				now := Ceil(clk.Now(), rounding)
				end = &now
			}
			yield(Session{Start: *pendingStart, End: *end}, nil)
		}
	}
}
