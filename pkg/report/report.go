// Package report assembles and persists per-run reports and rediscovers
// the most recent one on the next run.
package report

import (
	"time"

	"tiktracker/pkg/models"
)

// Build assembles the final report structure. Deltas is nil on a first
// run, which keeps the field out of the persisted document entirely.
func Build(ts time.Time, results []models.FetchOutcome, totals models.Totals, rankings map[string][]models.RankingEntry, deltas *models.Deltas) *models.Report {
	return &models.Report{
		Timestamp: ts.UTC().Format(time.RFC3339),
		Results:   results,
		Totals:    totals,
		Rankings:  rankings,
		Deltas:    deltas,
	}
}
