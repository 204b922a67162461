// Package stats computes deterministic aggregates, rankings and deltas
// over a run's outcome list.
package stats

import (
	"sort"

	"tiktracker/pkg/models"
)

// Aggregate computes run totals. TotalUsers counts every outcome; the
// remaining fields sum successful entries only, so failures contribute
// zero without shrinking the denominator.
func Aggregate(outcomes []models.FetchOutcome) models.Totals {
	totals := models.Totals{TotalUsers: len(outcomes)}
	for _, o := range outcomes {
		if !o.IsSuccess() {
			continue
		}
		totals.TotalVideos += o.Profile.TotalVideos
		totals.TotalFollowers += o.Profile.Followers
		totals.TotalLikes += o.Profile.Likes
		totals.TotalViews += o.Profile.TotalViews
	}
	return totals
}

// TopK ranks successful outcomes descending by metric, truncated to k.
// The sort is stable, so ties keep their original input order and the
// output is fully deterministic for identical inputs.
func TopK(outcomes []models.FetchOutcome, metric models.Metric, k int) []models.RankingEntry {
	if k < 1 {
		return nil
	}

	entries := make([]models.RankingEntry, 0, len(outcomes))
	for _, o := range outcomes {
		if !o.IsSuccess() {
			continue
		}
		entries = append(entries, models.RankingEntry{
			Username: o.Username,
			Value:    metric.ValueOf(o.Profile),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Value > entries[j].Value
	})

	if len(entries) > k {
		entries = entries[:k]
	}
	return entries
}

// Diff computes per-field changes against the previous totals. A nil
// previous means first-run semantics: every delta equals the current
// value.
func Diff(current models.Totals, previous *models.Totals) models.Deltas {
	var prev models.Totals
	if previous != nil {
		prev = *previous
	}
	return models.Deltas{
		TotalUsers:     current.TotalUsers - prev.TotalUsers,
		TotalVideos:    current.TotalVideos - prev.TotalVideos,
		TotalFollowers: current.TotalFollowers - prev.TotalFollowers,
		TotalLikes:     current.TotalLikes - prev.TotalLikes,
		TotalViews:     current.TotalViews - prev.TotalViews,
	}
}
