package extract

import (
	"context"
	"errors"
	"time"

	"github.com/go-rod/rod"

	apperrors "tiktracker/pkg/errors"
	"tiktracker/pkg/models"
)

// pageSession owns one stealth page for the lifetime of one username's
// retry attempts.
type pageSession struct {
	svc  *Browser
	page *rod.Page
}

func (s *pageSession) Fetch(ctx context.Context, username string) (*models.ProfileSnapshot, error) {
	s.svc.waitForProfile()

	profileURL := s.svc.cfg.BaseURL + "/@" + username

	if err := s.svc.checkExists(ctx, profileURL); err != nil {
		return nil, err
	}

	page := s.page.Context(ctx).Timeout(s.svc.cfg.PageTimeout)

	if err := page.Navigate(profileURL); err != nil {
		return nil, classifyRodError("navigate profile page", err)
	}
	if err := page.WaitStable(time.Second); err != nil {
		return nil, classifyRodError("wait for profile render", err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, classifyRodError("read rendered html", err)
	}

	snap, err := parseProfile([]byte(html), username, s.svc.cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	s.svc.log.DebugWithFields("profile extracted", map[string]interface{}{
		"username":  username,
		"followers": snap.Followers,
		"videos":    snap.TotalVideos,
	})
	return snap, nil
}

func (s *pageSession) Close() error {
	return s.page.Close()
}

func classifyRodError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Wrap(apperrors.ErrorTypeTimeout, op+" timed out", err)
	}
	return apperrors.Wrap(apperrors.ErrorTypeTransient, op+" failed", err)
}
