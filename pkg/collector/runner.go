package collector

import (
	"context"
	"errors"
	"time"

	"tiktracker/internal/batch"
	"tiktracker/pkg/config"
	"tiktracker/pkg/extract"
	"tiktracker/pkg/logger"
	"tiktracker/pkg/models"
	"tiktracker/pkg/report"
	"tiktracker/pkg/stats"
	"tiktracker/pkg/ui"
)

// ErrNoUsernames is returned when the input list is empty; the run cannot
// produce a meaningful report.
var ErrNoUsernames = errors.New("username list is empty")

// Runner drives one full collection cycle: batched fetches, anomaly
// reconciliation, aggregation, ranking, diffing and report assembly.
type Runner struct {
	cfg     *config.Config
	fetcher *Fetcher
	store   *report.Store
	log     logger.Logger
	quiet   bool
}

// NewRunner wires a Runner from its collaborators.
func NewRunner(cfg *config.Config, svc extract.Service, store *report.Store, log logger.Logger, quiet bool) *Runner {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Runner{
		cfg:     cfg,
		fetcher: NewFetcher(svc, cfg.Collector.RetryDelay, log),
		store:   store,
		log:     log,
		quiet:   quiet,
	}
}

// Run collects every username and returns the assembled report. The
// report is not yet persisted; the caller decides where it goes.
func (r *Runner) Run(ctx context.Context, usernames []string) (*models.Report, error) {
	if len(usernames) == 0 {
		return nil, ErrNoUsernames
	}

	previous, err := r.store.Latest()
	if err != nil {
		r.log.WithError(err).Warn("could not load previous report, treating as first run")
		previous = nil
	}
	if previous != nil {
		r.log.InfoWithFields("previous report loaded", map[string]interface{}{
			"timestamp": previous.Timestamp,
			"results":   len(previous.Results),
		})
	}

	r.log.InfoWithFields("starting collection", map[string]interface{}{
		"usernames":  len(usernames),
		"batch_size": r.cfg.Collector.BatchSize,
		"retries":    r.cfg.Collector.Retries,
	})

	tracker := ui.NewTracker(len(usernames), r.quiet)
	sched := batch.New(r.cfg.Collector.BatchSize, r.log, func(completed, total int, outcome models.FetchOutcome) {
		tracker.Done(outcome)
	})

	outcomes := sched.Run(ctx, usernames, func(ctx context.Context, username string) models.FetchOutcome {
		return r.fetcher.Attempt(ctx, username, r.cfg.Collector.Retries)
	})
	tracker.Finish()

	recon := NewReconciler(r.fetcher, r.cfg.Collector.RegressionTolerance, r.log)
	outcomes = recon.Reconcile(ctx, outcomes, previous)

	totals := stats.Aggregate(outcomes)

	rankings := make(map[string][]models.RankingEntry, len(models.AllMetrics))
	for _, metric := range models.AllMetrics {
		rankings[metric.String()] = stats.TopK(outcomes, metric, r.cfg.Collector.RankLimit)
	}

	// Deltas are attached only when a previous report existed; a first
	// run is reported without the field rather than as "no change".
	var deltas *models.Deltas
	if previous != nil {
		d := stats.Diff(totals, &previous.Totals)
		deltas = &d
	}

	rep := report.Build(time.Now(), outcomes, totals, rankings, deltas)

	r.log.InfoWithFields("collection finished", map[string]interface{}{
		"total_users":     totals.TotalUsers,
		"total_followers": totals.TotalFollowers,
		"total_videos":    totals.TotalVideos,
	})
	return rep, nil
}
