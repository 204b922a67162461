package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tiktracker/pkg/models"
)

func success(username string, followers, likes, views, videos int) models.FetchOutcome {
	return models.SuccessOutcome(&models.ProfileSnapshot{
		Username:    username,
		Followers:   followers,
		Likes:       likes,
		TotalViews:  views,
		TotalVideos: videos,
	})
}

func TestAggregateSumsSuccessesOnly(t *testing.T) {
	outcomes := []models.FetchOutcome{
		success("alice", 100, 50, 1000, 4),
		models.NotFoundOutcome("ghost"),
		success("bob", 200, 150, 2000, 6),
		models.FailedOutcome("carol", "exhausted retries"),
	}

	totals := Aggregate(outcomes)

	assert.Equal(t, models.Totals{
		TotalUsers:     4, // errors count toward the denominator
		TotalVideos:    10,
		TotalFollowers: 300,
		TotalLikes:     200,
		TotalViews:     3000,
	}, totals)
}

func TestAggregateAllErrors(t *testing.T) {
	outcomes := []models.FetchOutcome{
		models.NotFoundOutcome("a"),
		models.FailedOutcome("b", "exhausted retries"),
		models.FailedOutcome("c", "exhausted retries"),
	}

	totals := Aggregate(outcomes)

	assert.Equal(t, models.Totals{TotalUsers: 3}, totals)

	for _, m := range models.AllMetrics {
		assert.Empty(t, TopK(outcomes, m, 5), "all-error input must yield empty rankings")
	}
}

func TestTopKSortsDescendingAndTruncates(t *testing.T) {
	outcomes := []models.FetchOutcome{
		success("low", 10, 0, 0, 0),
		success("high", 500, 0, 0, 0),
		success("mid", 100, 0, 0, 0),
		models.FailedOutcome("broken", "exhausted retries"),
		success("top", 900, 0, 0, 0),
	}

	ranking := TopK(outcomes, models.MetricFollowers, 3)

	require.Len(t, ranking, 3)
	assert.Equal(t, []models.RankingEntry{
		{Username: "top", Value: 900},
		{Username: "high", Value: 500},
		{Username: "mid", Value: 100},
	}, ranking)

	// No excluded success may beat the smallest ranked value.
	smallest := ranking[len(ranking)-1].Value
	for _, o := range outcomes {
		if !o.IsSuccess() {
			continue
		}
		ranked := false
		for _, r := range ranking {
			if r.Username == o.Username {
				ranked = true
			}
		}
		if !ranked {
			assert.LessOrEqual(t, o.Profile.Followers, smallest)
		}
	}
}

func TestTopKTiesKeepInputOrder(t *testing.T) {
	outcomes := []models.FetchOutcome{
		success("first", 100, 0, 0, 0),
		success("second", 100, 0, 0, 0),
		success("third", 100, 0, 0, 0),
	}

	ranking := TopK(outcomes, models.MetricFollowers, 5)

	require.Len(t, ranking, 3)
	assert.Equal(t, "first", ranking[0].Username)
	assert.Equal(t, "second", ranking[1].Username)
	assert.Equal(t, "third", ranking[2].Username)
}

func TestTopKPerMetricAccessor(t *testing.T) {
	outcomes := []models.FetchOutcome{
		success("a", 1, 300, 10, 0),
		success("b", 2, 200, 30, 0),
		success("c", 3, 100, 20, 0),
	}

	assert.Equal(t, "c", TopK(outcomes, models.MetricFollowers, 1)[0].Username)
	assert.Equal(t, "a", TopK(outcomes, models.MetricLikes, 1)[0].Username)
	assert.Equal(t, "b", TopK(outcomes, models.MetricTotalViews, 1)[0].Username)
}

func TestDiffFirstRunEqualsCurrentTotals(t *testing.T) {
	current := models.Totals{
		TotalUsers:     3,
		TotalVideos:    10,
		TotalFollowers: 500,
		TotalLikes:     200,
		TotalViews:     9000,
	}

	deltas := Diff(current, nil)

	assert.Equal(t, models.Deltas{
		TotalUsers:     3,
		TotalVideos:    10,
		TotalFollowers: 500,
		TotalLikes:     200,
		TotalViews:     9000,
	}, deltas)
}

func TestDiffAgainstPrevious(t *testing.T) {
	current := models.Totals{TotalFollowers: 500}
	previous := models.Totals{TotalFollowers: 420}

	deltas := Diff(current, &previous)

	assert.Equal(t, 80, deltas.TotalFollowers)
	assert.Zero(t, deltas.TotalViews)
}

func TestDiffNegativeDeltas(t *testing.T) {
	current := models.Totals{TotalUsers: 2, TotalLikes: 100}
	previous := models.Totals{TotalUsers: 3, TotalLikes: 250}

	deltas := Diff(current, &previous)

	assert.Equal(t, -1, deltas.TotalUsers)
	assert.Equal(t, -150, deltas.TotalLikes)
}
