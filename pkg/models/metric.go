package models

// Metric enumerates the profile fields that get ranked. Using a typed
// accessor instead of a string-keyed field lookup keeps ranking code
// extensible without dynamic field access.
type Metric int

const (
	MetricFollowers Metric = iota
	MetricLikes
	MetricTotalViews
)

// AllMetrics lists every tracked metric in report order.
var AllMetrics = []Metric{MetricFollowers, MetricLikes, MetricTotalViews}

func (m Metric) String() string {
	switch m {
	case MetricFollowers:
		return "followers"
	case MetricLikes:
		return "likes"
	case MetricTotalViews:
		return "total_views"
	default:
		return "unknown"
	}
}

// ValueOf returns the snapshot field this metric ranks by.
func (m Metric) ValueOf(p *ProfileSnapshot) int {
	if p == nil {
		return 0
	}
	switch m {
	case MetricFollowers:
		return p.Followers
	case MetricLikes:
		return p.Likes
	case MetricTotalViews:
		return p.TotalViews
	default:
		return 0
	}
}
