package collector

import (
	"context"
	"fmt"
	"time"

	apperrors "tiktracker/pkg/errors"
	"tiktracker/pkg/extract"
	"tiktracker/pkg/logger"
	"tiktracker/pkg/models"
)

// Fetcher is the retry policy executor. One extraction session is held
// for all attempts against a single username and released on every exit
// path.
type Fetcher struct {
	svc        extract.Service
	retryDelay time.Duration
	log        logger.Logger
}

// NewFetcher creates a Fetcher. retryDelay is the pause between attempts.
func NewFetcher(svc extract.Service, retryDelay time.Duration, log logger.Logger) *Fetcher {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Fetcher{svc: svc, retryDelay: retryDelay, log: log}
}

// Attempt fetches one username with up to maxRetries attempts.
//
// Classification per attempt:
//   - not found: terminal, no retry budget spent on absent profiles
//   - transient / timeout / parsing error: record reason, try again
//   - success with an empty video list: incomplete render, try again
//   - success with videos: return immediately
//
// When the budget runs out the username degrades to a failed outcome;
// it never aborts the batch.
func (f *Fetcher) Attempt(ctx context.Context, username string, maxRetries int) models.FetchOutcome {
	if maxRetries < 1 {
		maxRetries = 1
	}

	sess, err := f.svc.OpenSession(ctx)
	if err != nil {
		f.log.WithError(err).WithField("username", username).Error("failed to open extraction session")
		return models.FailedOutcome(username, fmt.Sprintf("open session: %v", err))
	}
	defer sess.Close()

	var lastReason string
	for attempt := 1; attempt <= maxRetries; attempt++ {
		snap, err := sess.Fetch(ctx, username)
		if err != nil {
			if apperrors.TypeOf(err) == apperrors.ErrorTypeNotFound {
				f.log.InfoWithFields("profile not found", map[string]interface{}{
					"username": username,
					"attempt":  attempt,
				})
				return models.NotFoundOutcome(username)
			}

			lastReason = err.Error()
			f.log.WarnWithFields("fetch attempt failed", map[string]interface{}{
				"username": username,
				"attempt":  attempt,
				"of":       maxRetries,
				"error":    lastReason,
			})
			f.pause(ctx, attempt, maxRetries)
			continue
		}

		if len(snap.Videos) == 0 {
			// Render races leave the grid empty; they usually resolve on
			// the next attempt.
			lastReason = "profile rendered with no videos"
			f.log.WarnWithFields("empty video grid, treating as incomplete render", map[string]interface{}{
				"username": username,
				"attempt":  attempt,
				"of":       maxRetries,
			})
			f.pause(ctx, attempt, maxRetries)
			continue
		}

		return models.SuccessOutcome(snap)
	}

	reason := "exhausted retries"
	if lastReason != "" {
		reason = fmt.Sprintf("exhausted retries: %s", lastReason)
	}
	return models.FailedOutcome(username, reason)
}

// pause sleeps between attempts, skipping the wait after the final one.
func (f *Fetcher) pause(ctx context.Context, attempt, maxRetries int) {
	if f.retryDelay <= 0 || attempt >= maxRetries {
		return
	}
	select {
	case <-time.After(f.retryDelay):
	case <-ctx.Done():
	}
}
