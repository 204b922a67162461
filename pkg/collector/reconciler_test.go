package collector

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tiktracker/pkg/logger"
	"tiktracker/pkg/models"
	"tiktracker/pkg/report"
	"tiktracker/pkg/stats"
)

// fetcherFunc adapts a function to the ProfileFetcher interface.
type fetcherFunc func(ctx context.Context, username string, maxRetries int) models.FetchOutcome

func (f fetcherFunc) Attempt(ctx context.Context, username string, maxRetries int) models.FetchOutcome {
	return f(ctx, username, maxRetries)
}

func previousReport(results ...models.FetchOutcome) *models.Report {
	return report.Build(time.Now(), results, stats.Aggregate(results), nil, nil)
}

func TestReconcileNoPreviousReportPassesThrough(t *testing.T) {
	current := []models.FetchOutcome{models.SuccessOutcome(snapshot("alice", 10))}

	var fetches int
	r := NewReconciler(fetcherFunc(func(ctx context.Context, username string, maxRetries int) models.FetchOutcome {
		fetches++
		return models.FailedOutcome(username, "unexpected")
	}), 5, logger.Nop())

	out := r.Reconcile(context.Background(), current, nil)

	assert.Equal(t, current, out)
	assert.Zero(t, fetches)
}

func TestReconcileReplacesCorrectedRegression(t *testing.T) {
	previous := previousReport(models.SuccessOutcome(snapshot("alice", 20)))
	current := []models.FetchOutcome{models.SuccessOutcome(snapshot("alice", 10))}

	var fetches int
	var gotRetries int
	r := NewReconciler(fetcherFunc(func(ctx context.Context, username string, maxRetries int) models.FetchOutcome {
		fetches++
		gotRetries = maxRetries
		return models.SuccessOutcome(snapshot(username, 21))
	}), 5, logger.Nop())

	out := r.Reconcile(context.Background(), current, previous)

	require.Len(t, out, 1)
	assert.Equal(t, 1, fetches, "exactly one corrective fetch per suspicious entry")
	assert.Equal(t, 1, gotRetries, "corrective fetch gets a single attempt")
	assert.Equal(t, 21, out[0].Profile.TotalVideos)
}

func TestReconcileKeepsOriginalWhenCorrectionStillLow(t *testing.T) {
	previous := previousReport(models.SuccessOutcome(snapshot("alice", 20)))
	current := []models.FetchOutcome{models.SuccessOutcome(snapshot("alice", 10))}

	r := NewReconciler(fetcherFunc(func(ctx context.Context, username string, maxRetries int) models.FetchOutcome {
		return models.SuccessOutcome(snapshot(username, 12))
	}), 5, logger.Nop())

	out := r.Reconcile(context.Background(), current, previous)

	require.Len(t, out, 1)
	assert.Equal(t, 10, out[0].Profile.TotalVideos, "uncorrected regression keeps the original entry")
}

func TestReconcileKeepsOriginalWhenCorrectionFails(t *testing.T) {
	previous := previousReport(models.SuccessOutcome(snapshot("alice", 20)))
	current := []models.FetchOutcome{models.SuccessOutcome(snapshot("alice", 10))}

	r := NewReconciler(fetcherFunc(func(ctx context.Context, username string, maxRetries int) models.FetchOutcome {
		return models.FailedOutcome(username, "exhausted retries")
	}), 5, logger.Nop())

	out := r.Reconcile(context.Background(), current, previous)

	require.Len(t, out, 1)
	assert.True(t, out[0].IsSuccess())
	assert.Equal(t, 10, out[0].Profile.TotalVideos)
}

func TestReconcileToleranceBoundary(t *testing.T) {
	tests := []struct {
		name          string
		currentVideos int
		wantFetch     bool
	}{
		{"within tolerance", 15, false}, // 15+5 >= 20
		{"just below tolerance", 14, true},
		{"equal count", 20, false},
		{"count grew", 25, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			previous := previousReport(models.SuccessOutcome(snapshot("alice", 20)))
			current := []models.FetchOutcome{models.SuccessOutcome(snapshot("alice", tt.currentVideos))}

			var fetches int
			r := NewReconciler(fetcherFunc(func(ctx context.Context, username string, maxRetries int) models.FetchOutcome {
				fetches++
				return models.FailedOutcome(username, "nope")
			}), 5, logger.Nop())

			r.Reconcile(context.Background(), current, previous)
			assert.Equal(t, tt.wantFetch, fetches == 1)
		})
	}
}

func TestReconcileIgnoresNonSuccessAndUnmatchedEntries(t *testing.T) {
	previous := previousReport(
		models.SuccessOutcome(snapshot("alice", 20)),
		models.NotFoundOutcome("bob"),
	)
	current := []models.FetchOutcome{
		models.NotFoundOutcome("alice"),                  // no longer a success, passes through
		models.SuccessOutcome(snapshot("bob", 1)),        // prior entry was not a success
		models.SuccessOutcome(snapshot("newcomer", 2)),   // no prior match
		models.FailedOutcome("carol", "exhausted retries"),
	}

	var fetches int
	r := NewReconciler(fetcherFunc(func(ctx context.Context, username string, maxRetries int) models.FetchOutcome {
		fetches++
		return models.FailedOutcome(username, "unexpected")
	}), 5, logger.Nop())

	out := r.Reconcile(context.Background(), current, previous)

	assert.Equal(t, current, out)
	assert.Zero(t, fetches)
}
