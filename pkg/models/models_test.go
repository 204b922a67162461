package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricValueOf(t *testing.T) {
	p := &ProfileSnapshot{Followers: 1, Likes: 2, TotalViews: 3}

	tests := []struct {
		metric Metric
		name   string
		value  int
	}{
		{MetricFollowers, "followers", 1},
		{MetricLikes, "likes", 2},
		{MetricTotalViews, "total_views", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.metric.String())
			assert.Equal(t, tt.value, tt.metric.ValueOf(p))
		})
	}
}

func TestMetricValueOfNilProfile(t *testing.T) {
	for _, m := range AllMetrics {
		assert.Zero(t, m.ValueOf(nil))
	}
}

func TestOutcomeConstructors(t *testing.T) {
	snap := &ProfileSnapshot{Username: "alice"}

	success := SuccessOutcome(snap)
	assert.True(t, success.IsSuccess())
	assert.Equal(t, "alice", success.Username)

	notFound := NotFoundOutcome("ghost")
	assert.False(t, notFound.IsSuccess())
	assert.Equal(t, StatusNotFound, notFound.Status)
	assert.NotEmpty(t, notFound.Reason)

	failed := FailedOutcome("carol", "exhausted retries")
	assert.False(t, failed.IsSuccess())
	assert.Nil(t, failed.Profile)
}

func TestIsSuccessRequiresProfile(t *testing.T) {
	// A success status without a snapshot is not usable data.
	broken := FetchOutcome{Username: "x", Status: StatusSuccess}
	assert.False(t, broken.IsSuccess())
}
