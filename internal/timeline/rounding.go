package timeline

import "time"

// truncateMinute drops the sub-minute components of t in its local frame.
func truncateMinute(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
}

// Floor snaps t down to the interval grid. Sub-minute components are
// dropped first, then the remainder relative to local midnight is
// subtracted. Idempotent for any positive interval.
func Floor(t time.Time, interval time.Duration) time.Time {
	t = truncateMinute(t)
	rem := t.Sub(dayOf(t)) % interval
	return t.Add(-rem)
}

// Ceil snaps t up to the interval grid. Already-aligned instants are
// returned unchanged after minute truncation.
func Ceil(t time.Time, interval time.Duration) time.Time {
	t = truncateMinute(t)
	rem := t.Sub(dayOf(t)) % interval
	if rem == 0 {
		return t
	}
	return t.Add(interval - rem)
}
