package models

// NoLink is the sentinel video link for posts whose URL could not be
// resolved from the rendered page.
const NoLink = "N/A"

// VideoRecord is a single post with its view count.
type VideoRecord struct {
	Views int    `json:"views"`
	Link  string `json:"link"`
}

// ProfileSnapshot holds the metrics extracted from one profile render.
// Invariant: TotalVideos == len(Videos) and TotalViews is the sum of the
// per-video view counts.
type ProfileSnapshot struct {
	Username    string        `json:"username"`
	Followers   int           `json:"followers"`
	Likes       int           `json:"likes"`
	TotalViews  int           `json:"total_views"`
	TotalVideos int           `json:"total_videos"`
	Videos      []VideoRecord `json:"videos"`
}

// Status tags the per-identifier result of a collection attempt.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusNotFound Status = "not_found"
	StatusFailed   Status = "failed"
)

// FetchOutcome is the result of collecting one username. Exactly one
// outcome exists per input username. Profile is set only on success.
type FetchOutcome struct {
	Username string           `json:"username"`
	Status   Status           `json:"status"`
	Profile  *ProfileSnapshot `json:"profile,omitempty"`
	Reason   string           `json:"reason,omitempty"`
}

// SuccessOutcome wraps a snapshot in a success outcome.
func SuccessOutcome(p *ProfileSnapshot) FetchOutcome {
	return FetchOutcome{Username: p.Username, Status: StatusSuccess, Profile: p}
}

// NotFoundOutcome marks a username as permanently absent.
func NotFoundOutcome(username string) FetchOutcome {
	return FetchOutcome{Username: username, Status: StatusNotFound, Reason: "profile not found"}
}

// FailedOutcome marks a username whose collection failed after retries.
func FailedOutcome(username, reason string) FetchOutcome {
	return FetchOutcome{Username: username, Status: StatusFailed, Reason: reason}
}

// IsSuccess reports whether the outcome carries a usable snapshot.
func (o FetchOutcome) IsSuccess() bool {
	return o.Status == StatusSuccess && o.Profile != nil
}

// Totals aggregates one run. Error outcomes count toward TotalUsers but
// contribute zero to every other field.
type Totals struct {
	TotalUsers     int `json:"total_users"`
	TotalVideos    int `json:"total_videos"`
	TotalFollowers int `json:"total_followers"`
	TotalLikes     int `json:"total_likes"`
	TotalViews     int `json:"total_views"`
}

// Deltas holds the per-field change against the previous run's totals.
type Deltas struct {
	TotalUsers     int `json:"total_users"`
	TotalVideos    int `json:"total_videos"`
	TotalFollowers int `json:"total_followers"`
	TotalLikes     int `json:"total_likes"`
	TotalViews     int `json:"total_views"`
}

// RankingEntry is one row of a per-metric top-K list.
type RankingEntry struct {
	Username string `json:"username"`
	Value    int    `json:"value"`
}

// Report is the persisted form of a run. A previous run's report is the
// only state that survives across runs.
type Report struct {
	Timestamp string                    `json:"timestamp"`
	Results   []FetchOutcome            `json:"results"`
	Totals    Totals                    `json:"totals"`
	Rankings  map[string][]RankingEntry `json:"rankings"`
	Deltas    *Deltas                   `json:"deltas,omitempty"`
}
