package source

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/coreos/go-systemd/v22/sdjournal"
	"github.com/goodtune/workday/internal/timeline"
)

// systemd catalog message IDs marking session state changes
// (systemd/sd-messages.h).
const (
	msgSleepStart      = "6bbd95ee977941e497c48be27c254128" // entering sleep
	msgSleepStop       = "8811e6df2a8e40f58a94cea26f8ebf14" // leaving sleep
	msgSessionStart    = "8d45620c1a4348dbb17410da57c60c66" // logind session started
	msgSessionStop     = "3354939424b4456d9802ca8333ed424a" // logind session stopped
	msgStartupFinished = "b07a249cd024414a82dd00cd181378ff" // boot complete
	msgShutdown        = "98268866d1d54a499c4e98921d93bc40" // shutdown initiated
)

// kindByMessageID maps journal catalog entries to event kinds.
var kindByMessageID = map[string]timeline.Kind{
	msgSleepStart:      timeline.KindDeactivate,
	msgSleepStop:       timeline.KindActivate,
	msgSessionStart:    timeline.KindActivate,
	msgSessionStop:     timeline.KindDeactivate,
	msgStartupFinished: timeline.KindActivate,
	msgShutdown:        timeline.KindDeactivate,
}

// JournalSource reads machine active/inactive transitions from the systemd
// journal: logind session starts/stops, suspend/resume, boot and shutdown.
type JournalSource struct {
	Since time.Time // zero means the start of the journal
}

func (s *JournalSource) Events(ctx context.Context) iter.Seq2[timeline.Event, error] {
	journal, err := sdjournal.NewJournal()
	if err != nil {
		return emitErr(fmt.Errorf("open journal: %w", err))
	}
	defer journal.Close()

	if err := addMatches(journal); err != nil {
		return emitErr(err)
	}

	if s.Since.IsZero() {
		err = journal.SeekHead()
	} else {
		err = journal.SeekRealtimeUsec(uint64(s.Since.UnixMicro()))
	}
	if err != nil {
		return emitErr(fmt.Errorf("seek journal: %w", err))
	}

	var events []timeline.Event
	for {
		if err := ctx.Err(); err != nil {
			return emitErr(err)
		}

		n, err := journal.Next()
		if err != nil {
			return emitErr(fmt.Errorf("advance journal: %w", err))
		}
		if n == 0 {
			break
		}

		entry, err := journal.GetEntry()
		if err != nil {
			return emitErr(fmt.Errorf("read journal entry: %w", err))
		}

		if ev, ok := eventFromEntry(entry.Fields, entry.RealtimeTimestamp); ok {
			events = append(events, ev)
		}
	}

	return emitAll(Normalize(events))
}

// addMatches restricts the journal cursor to the catalog messages we map.
func addMatches(journal *sdjournal.Journal) error {
	for id := range kindByMessageID {
		if err := journal.AddMatch("MESSAGE_ID=" + id); err != nil {
			return fmt.Errorf("add journal match: %w", err)
		}
		if err := journal.AddDisjunction(); err != nil {
			return fmt.Errorf("add journal disjunction: %w", err)
		}
	}
	return nil
}

// eventFromEntry maps one journal entry to an event. Entries without a
// recognized MESSAGE_ID are skipped.
func eventFromEntry(fields map[string]string, realtimeUsec uint64) (timeline.Event, bool) {
	kind, ok := kindByMessageID[fields["MESSAGE_ID"]]
	if !ok {
		return timeline.Event{}, false
	}
	return timeline.Event{
		Timestamp: time.UnixMicro(int64(realtimeUsec)),
		Kind:      kind,
	}, true
}
