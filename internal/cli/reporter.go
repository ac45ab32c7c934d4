// Package cli implements SweetByte's command-line surface: the encrypt and
// decrypt subcommands, a no-echo password prompt, and a terminal progress
// reporter, wired onto internal/orchestrator.
package cli

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hambosto/sweetbyte/internal/util"
)

// Reporter implements orchestrator.Reporter for terminal output.
// It displays progress updates on a single line that gets overwritten.
type Reporter struct {
	mu        sync.Mutex
	status    string
	done      int64
	total     int64
	start     time.Time // zero until the first SetProgress call
	quiet     bool
	cancelled atomic.Bool
	lastLine  int // Length of last printed line (for clearing)
}

// NewReporter creates a new CLI progress reporter.
// If quiet is true, only errors are printed.
func NewReporter(quiet bool) *Reporter {
	return &Reporter{
		quiet: quiet,
	}
}

// SetStatus updates the status message.
func (r *Reporter) SetStatus(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = text
}

// SetProgress records the cumulative bytes processed and the expected
// total. The first call starts the clock Update uses to compute speed
// and ETA.
func (r *Reporter) SetProgress(done, total int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.start.IsZero() {
		r.start = time.Now()
	}
	r.done = done
	r.total = total
}

// SetCanCancel enables/disables cancellation (no-op for CLI, always cancellable via Ctrl+C).
func (r *Reporter) SetCanCancel(can bool) {
	// No-op for CLI - cancellation is handled via OS signals
}

// Update triggers a UI refresh - prints current status to terminal.
func (r *Reporter) Update() {
	if r.quiet {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	start := r.start
	if start.IsZero() {
		start = time.Now()
	}
	fraction, speed, eta := util.Statify(r.done, r.total, start)

	// Build progress bar
	barWidth := 30
	filled := min(int(fraction*float32(barWidth)), barWidth)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	info := fmt.Sprintf("%s at %.2f MiB/s (ETA %s)", util.Sizeify(r.done), speed, eta)

	// Format: [████████░░░░░░░░░░░░░░░░░░░░░░]  25.0% | Encrypting | 12.34 MiB at 150.00 MiB/s (ETA 00:00:05)
	line := fmt.Sprintf("\r[%s] %5.1f%% | %s | %s", bar, fraction*100, r.status, info)

	// Clear previous line if it was longer
	if len(line) < r.lastLine {
		line += strings.Repeat(" ", r.lastLine-len(line))
	}
	r.lastLine = len(line)

	fmt.Fprint(os.Stderr, line)
}

// IsCancelled checks if the operation was cancelled.
func (r *Reporter) IsCancelled() bool {
	return r.cancelled.Load()
}

// Cancel marks the operation as cancelled.
func (r *Reporter) Cancel() {
	r.cancelled.Store(true)
}

// Finish prints a newline to move past the progress line.
func (r *Reporter) Finish() {
	if !r.quiet {
		fmt.Fprintln(os.Stderr)
	}
}

// PrintError prints an error message.
func (r *Reporter) PrintError(format string, args ...any) {
	// Move to new line if we were showing progress
	if !r.quiet && r.lastLine > 0 {
		fmt.Fprintln(os.Stderr)
	}
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// PrintSuccess prints a success message.
func (r *Reporter) PrintSuccess(format string, args ...any) {
	if r.quiet {
		return
	}
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
