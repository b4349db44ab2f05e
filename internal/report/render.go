package report

import (
	"fmt"
	"io"
	"iter"
	"time"

	"github.com/fatih/color"
	"github.com/goodtune/workday/internal/workday"
)

// Renderer writes working-day tables to a console.
type Renderer struct {
	out io.Writer

	// ShowSessions expands the raw sessions inside each merged block.
	ShowSessions bool
}

// NewRenderer creates a renderer writing to out.
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

// Render consumes the working-day sequence and prints one line per day,
// with optional per-session detail, followed by a grand total.
func (r *Renderer) Render(days iter.Seq2[workday.WorkingDay, error]) error {
	cyan := color.New(color.FgCyan, color.Bold)
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	var (
		total    time.Duration
		rendered int
	)

	cyan.Fprintf(r.out, "%-15s %-44s %8s\n", "DAY", "BLOCKS", "TOTAL")

	for day, err := range days {
		if err != nil {
			return err
		}
		rendered++
		total += day.Duration()

		bold.Fprintf(r.out, "%-15s", day.Day.Format("Mon 2006-01-02"))
		fmt.Fprintf(r.out, " %-44s %8s\n", formatBlocks(day.Merged), formatDuration(day.Duration()))

		if r.ShowSessions {
			for _, merged := range day.Merged {
				for _, session := range merged.Sessions {
					faint.Fprintf(r.out, "    %s-%s (%s)\n",
						session.Start.Format("15:04"),
						session.End.Format("15:04"),
						formatDuration(session.Duration()))
				}
			}
		}
	}

	if rendered == 0 {
		fmt.Fprintln(r.out, "no activity recorded")
		return nil
	}

	cyan.Fprintf(r.out, "%-15s %-44s %8s\n", "", fmt.Sprintf("%d days", rendered), formatDuration(total))
	return nil
}

// formatBlocks joins merged-session spans into one cell.
func formatBlocks(merged []workday.MergedSession) string {
	out := ""
	for i, m := range merged {
		if i > 0 {
			out += "  "
		}
		out += m.Start().Format("15:04") + "-" + m.End().Format("15:04")
	}
	return out
}

// formatDuration renders a duration as h:mm.
func formatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	return fmt.Sprintf("%d:%02d", minutes/60, minutes%60)
}
