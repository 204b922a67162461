// Package extract turns a TikTok username into raw profile metrics.
//
// A Session wraps one headless browser page. The retry policy holds a
// single session for all attempts against one username and closes it on
// every exit path, so page state never leaks across usernames.
package extract

import (
	"context"

	"tiktracker/pkg/models"
)

// Session is one exclusively-owned extraction resource.
type Session interface {
	// Fetch renders the profile page and returns its metrics. Errors are
	// typed via pkg/errors: not_found for permanently absent profiles,
	// timeout/transient/parsing for recoverable render failures.
	Fetch(ctx context.Context, username string) (*models.ProfileSnapshot, error)

	// Close releases the underlying page.
	Close() error
}

// Service hands out extraction sessions.
type Service interface {
	OpenSession(ctx context.Context) (Session, error)
	Close() error
}
