package workday

import (
	"iter"
	"time"

	"github.com/goodtune/workday/internal/timeline"
)

// MergedSession is one or more chronologically adjacent sessions on the
// same calendar day, coalesced because the idle gap between them did not
// exceed the applicable threshold.
type MergedSession struct {
	Sessions []timeline.Session `json:"sessions"`
}

// Start returns the start of the first constituent session.
func (m MergedSession) Start() time.Time {
	if len(m.Sessions) == 0 {
		return time.Time{}
	}
	return m.Sessions[0].Start
}

// End returns the end of the last constituent session.
func (m MergedSession) End() time.Time {
	if len(m.Sessions) == 0 {
		return time.Time{}
	}
	return m.Sessions[len(m.Sessions)-1].End
}

// Duration spans from the first session's start to the last session's end,
// idle gaps included.
func (m MergedSession) Duration() time.Duration {
	return m.End().Sub(m.Start())
}

// WorkingDay holds one calendar day's activity as an ordered sequence of
// merged sessions.
type WorkingDay struct {
	Day    time.Time       `json:"day"`
	Merged []MergedSession `json:"merged_sessions"`
}

// Duration is the sum of the merged session durations.
func (d WorkingDay) Duration() time.Duration {
	var total time.Duration
	for _, m := range d.Merged {
		total += m.Duration()
	}
	return total
}

// Config holds the aggregation tunables.
type Config struct {
	WorkStart TimeOfDay     // start of the working-hours window
	WorkEnd   TimeOfDay     // end of the working-hours window
	WorkIdle  time.Duration // idle threshold within working hours
	AfterIdle time.Duration // idle threshold outside working hours
}

// withinWorkingHours reports whether s overlaps the working-hours window
// on a weekday. The comparisons at the window boundaries are inclusive.
func (c Config) withinWorkingHours(s timeline.Session) bool {
	switch s.Start.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return timeOfDay(s.Start) <= c.WorkEnd && timeOfDay(s.End) >= c.WorkStart
}

// idleThreshold selects the threshold applied to the gap preceding s.
func (c Config) idleThreshold(s timeline.Session) time.Duration {
	if c.withinWorkingHours(s) {
		return c.WorkIdle
	}
	return c.AfterIdle
}

// Aggregate groups an ascending, non-overlapping session sequence into
// per-calendar-day working days, coalescing sessions whose preceding gap
// does not exceed the idle threshold chosen for the incoming session.
// A gap exactly equal to the threshold does not start a new block.
// Errors from the upstream sequence propagate and end the pass.
func Aggregate(sessions iter.Seq2[timeline.Session, error], cfg Config) iter.Seq2[WorkingDay, error] {
	return func(yield func(WorkingDay, error) bool) {
		var (
			day    time.Time
			blocks [][]timeline.Session
		)

		for s, err := range sessions {
			if err != nil {
				yield(WorkingDay{}, err)
				return
			}

			d := dayOf(s.Start)

			if day.IsZero() {
				day = d
				blocks = [][]timeline.Session{{s}}
				continue
			}

			if !d.Equal(day) {
				if !yield(finalize(day, blocks), nil) {
					return
				}
				day = d
				blocks = [][]timeline.Session{{s}}
				continue
			}

			current := blocks[len(blocks)-1]
			if len(current) > 0 {
				gap := s.Start.Sub(current[len(current)-1].End)
				if gap > cfg.idleThreshold(s) {
					blocks = append(blocks, nil)
				}
			}
			blocks[len(blocks)-1] = append(blocks[len(blocks)-1], s)
		}

		if !day.IsZero() {
			yield(finalize(day, blocks), nil)
		}
	}
}

// finalize freezes the accumulated blocks into a WorkingDay.
func finalize(day time.Time, blocks [][]timeline.Session) WorkingDay {
	merged := make([]MergedSession, 0, len(blocks))
	for _, block := range blocks {
		if len(block) == 0 {
			continue
		}
		sessions := make([]timeline.Session, len(block))
		copy(sessions, block)
		merged = append(merged, MergedSession{Sessions: sessions})
	}
	return WorkingDay{Day: day, Merged: merged}
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
