package source

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"os"
	"strings"

	"github.com/goodtune/workday/internal/timeline"
)

// JSONLSource reads events from a file with one JSON event per line:
//
//	{"timestamp": "2024-03-04T08:01:12+01:00", "kind": "activate"}
//
// Lines are sorted and deduplicated before emission, so exported logs do
// not need to be pre-sorted.
type JSONLSource struct {
	Path string
}

func (s *JSONLSource) Events(ctx context.Context) iter.Seq2[timeline.Event, error] {
	file, err := os.Open(s.Path)
	if err != nil {
		return emitErr(fmt.Errorf("open event log: %w", err))
	}
	defer file.Close()

	var events []timeline.Event

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return emitErr(err)
		}

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var ev timeline.Event
		if err := json.Unmarshal([]byte(text), &ev); err != nil {
			return emitErr(fmt.Errorf("%s:%d: %w", s.Path, line, err))
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return emitErr(fmt.Errorf("read event log: %w", err))
	}

	return emitAll(Normalize(events))
}
