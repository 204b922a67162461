// Package batch runs per-username fetch tasks in fixed-size concurrent
// groups with a barrier between groups, so at most one group's worth of
// fetches is ever in flight against the target site.
package batch

import (
	"context"
	"sync"
	"sync/atomic"

	"tiktracker/pkg/logger"
	"tiktracker/pkg/models"
)

// Task produces the outcome for one username. It must not panic; a slow
// or failing task only delays its own chunk's barrier, never siblings.
type Task func(ctx context.Context, username string) models.FetchOutcome

// Progress is invoked once per completed unit, in completion order.
// completed is the total number of settled units so far.
type Progress func(completed, total int, outcome models.FetchOutcome)

// Scheduler partitions work into chunks of at most Size.
type Scheduler struct {
	size       int
	log        logger.Logger
	onProgress Progress
}

// New creates a scheduler. size values below 1 are treated as 1.
func New(size int, log logger.Logger, onProgress Progress) *Scheduler {
	if size < 1 {
		size = 1
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Scheduler{size: size, log: log, onProgress: onProgress}
}

// Run executes task for every username and returns outcomes in input
// order, regardless of completion order. Chunk N+1 does not start until
// every member of chunk N has settled.
func (s *Scheduler) Run(ctx context.Context, usernames []string, task Task) []models.FetchOutcome {
	results := make([]models.FetchOutcome, len(usernames))
	var completed atomic.Int64

	for start := 0; start < len(usernames); start += s.size {
		end := min(start+s.size, len(usernames))

		s.log.DebugWithFields("starting chunk", map[string]interface{}{
			"from": start,
			"to":   end,
			"of":   len(usernames),
		})

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx int, name string) {
				defer wg.Done()
				outcome := task(ctx, name)
				results[idx] = outcome
				done := completed.Add(1)
				if s.onProgress != nil {
					s.onProgress(int(done), len(usernames), outcome)
				}
			}(i, usernames[i])
		}
		wg.Wait()
	}

	return results
}
