package engine

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"
)

// Display handles terminal progress output for a process run. Lines are
// append-only so parallel fan-out branches can interleave safely.
type Display struct {
	w io.Writer
}

// NewDisplay creates a display that writes to stdout.
func NewDisplay() *Display {
	return &Display{w: os.Stdout}
}

// nameColumnWidth is the fixed display width for the task name column.
const nameColumnWidth = 28

func truncateName(name string) string {
	if utf8.RuneCountInString(name) <= nameColumnWidth {
		return name
	}
	runes := []rune(name)
	return string(runes[:nameColumnWidth-1]) + "…"
}

// Header prints the run header.
func (d *Display) Header(processID, title string) {
	fmt.Fprintf(d.w, "\n🍼 babysitter — %s\n", title)
	fmt.Fprintf(d.w, "   %s\n", processID)
	fmt.Fprintln(d.w, strings.Repeat("─", 76))
}

// TaskStart prints a task-dispatched line.
func (d *Display) TaskStart(name, title string) {
	fmt.Fprintf(d.w, "⏳ %-*s %s\n", nameColumnWidth, truncateName(name), title)
}

// TaskDone prints a completed task line.
func (d *Display) TaskDone(name, title string, cost float64, duration time.Duration) {
	costStr := "—"
	if cost > 0 {
		costStr = fmt.Sprintf("$%.4f", cost)
	}
	fmt.Fprintf(d.w, "✅ %-*s %-10s %.1fs\n", nameColumnWidth, truncateName(name), costStr, duration.Seconds())
}

// TaskFailed prints a failed task line.
func (d *Display) TaskFailed(name string, err error) {
	fmt.Fprintf(d.w, "❌ %-*s %s\n", nameColumnWidth, truncateName(name), err.Error())
}

// BreakpointWait prints a suspension notice.
func (d *Display) BreakpointWait(title string) {
	fmt.Fprintf(d.w, "⏸  %-*s awaiting approval\n", nameColumnWidth, truncateName(title))
}

// BreakpointResolved prints a resumption notice.
func (d *Display) BreakpointResolved(title string) {
	fmt.Fprintf(d.w, "▶  %-*s approved\n", nameColumnWidth, truncateName(title))
}

// Summary prints the final run summary.
func (d *Display) Summary(artifacts int, totalCost float64, totalDuration time.Duration) {
	fmt.Fprintln(d.w, strings.Repeat("─", 76))
	fmt.Fprintf(d.w, "✅ Done  %d artifacts  $%.4f  %.0fs\n\n", artifacts, totalCost, totalDuration.Seconds())
}

// Failed prints a failure summary.
func (d *Display) Failed(err error) {
	fmt.Fprintln(d.w, strings.Repeat("─", 76))
	fmt.Fprintf(d.w, "❌ Failed: %s\n\n", err.Error())
}
