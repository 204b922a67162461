package collector

import (
	"context"

	"tiktracker/pkg/logger"
	"tiktracker/pkg/models"
)

// ProfileFetcher is the corrective-fetch dependency of the reconciler.
// Fetcher implements it.
type ProfileFetcher interface {
	Attempt(ctx context.Context, username string, maxRetries int) models.FetchOutcome
}

// Reconciler re-verifies suspicious metric regressions against the last
// persisted report. Video counts are expected to be non-decreasing absent
// deletions, so a drop beyond the tolerance likely signals a partial
// render rather than a real deletion event.
type Reconciler struct {
	fetcher   ProfileFetcher
	tolerance int
	log       logger.Logger
}

// NewReconciler creates a Reconciler with the given regression tolerance.
func NewReconciler(fetcher ProfileFetcher, tolerance int, log logger.Logger) *Reconciler {
	if tolerance < 0 {
		tolerance = 0
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Reconciler{fetcher: fetcher, tolerance: tolerance, log: log}
}

// Reconcile compares fresh outcomes against the previous report and issues
// at most one corrective re-fetch per suspicious entry. Corrective fetches
// run strictly sequentially, after the full batch has resolved, to avoid
// compounding concurrency against the target. Entries without a prior
// successful match pass through unchanged, as does everything when no
// previous report exists.
func (r *Reconciler) Reconcile(ctx context.Context, current []models.FetchOutcome, previous *models.Report) []models.FetchOutcome {
	if previous == nil {
		return current
	}

	prior := make(map[string]*models.ProfileSnapshot, len(previous.Results))
	for _, res := range previous.Results {
		if res.IsSuccess() {
			prior[res.Username] = res.Profile
		}
	}

	out := make([]models.FetchOutcome, len(current))
	copy(out, current)

	for i, cur := range current {
		if !cur.IsSuccess() {
			continue
		}
		prev, ok := prior[cur.Username]
		if !ok {
			continue
		}
		if cur.Profile.TotalVideos+r.tolerance >= prev.TotalVideos {
			continue
		}

		r.log.WarnWithFields("suspicious video count regression, re-verifying", map[string]interface{}{
			"username":        cur.Username,
			"current_videos":  cur.Profile.TotalVideos,
			"previous_videos": prev.TotalVideos,
			"tolerance":       r.tolerance,
		})

		corrected := r.fetcher.Attempt(ctx, cur.Username, 1)
		if corrected.IsSuccess() && corrected.Profile.TotalVideos >= prev.TotalVideos {
			out[i] = corrected
			r.log.InfoWithFields("regression corrected by re-fetch", map[string]interface{}{
				"username": cur.Username,
				"videos":   corrected.Profile.TotalVideos,
			})
			continue
		}

		// Non-fatal: keep the original entry, the drop may be real.
		r.log.WarnWithFields("regression could not be corrected, keeping original data", map[string]interface{}{
			"username":        cur.Username,
			"current_videos":  cur.Profile.TotalVideos,
			"previous_videos": prev.TotalVideos,
		})
	}

	return out
}
