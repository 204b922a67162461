package ui

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"tiktracker/pkg/models"
)

const (
	progressBar   = "█"
	progressEmpty = "░"
	barWidth      = 30
)

// Tracker renders a single progress line for a collection run. All
// concurrent fetch goroutines report through Done, which serializes
// updates behind one mutex; nothing else may write the progress line.
type Tracker struct {
	mu        sync.Mutex
	total     int
	completed int
	failed    int
	notFound  int
	start     time.Time
	quiet     bool
}

// NewTracker creates a tracker for total units.
func NewTracker(total int, quiet bool) *Tracker {
	return &Tracker{total: total, start: time.Now(), quiet: quiet}
}

// Done records one settled unit and redraws the progress line.
func (t *Tracker) Done(outcome models.FetchOutcome) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.completed++
	switch outcome.Status {
	case models.StatusFailed:
		t.failed++
	case models.StatusNotFound:
		t.notFound++
	}

	if t.quiet {
		return
	}
	t.render()
}

func (t *Tracker) render() {
	filled := 0
	if t.total > 0 {
		filled = t.completed * barWidth / t.total
	}
	bar := strings.Repeat(progressBar, filled) + strings.Repeat(progressEmpty, barWidth-filled)
	fmt.Fprintf(os.Stderr, "\r[%s] %d/%d profiles", bar, t.completed, t.total)
}

// Finish terminates the progress line and prints a short summary.
func (t *Tracker) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.quiet {
		return
	}
	fmt.Fprintf(os.Stderr, "\r[%s] %d/%d profiles in %s (%d failed, %d not found)\n",
		strings.Repeat(progressBar, barWidth),
		t.completed, t.total,
		time.Since(t.start).Round(time.Second),
		t.failed, t.notFound)
}
