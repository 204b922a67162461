package extract

import (
	"bytes"
	"encoding/json"
	"fmt"

	apperrors "tiktracker/pkg/errors"
	"tiktracker/pkg/models"
)

var (
	ssrTagOpen  = []byte(`<script id="__UNIVERSAL_DATA_FOR_REHYDRATION__" type="application/json">`)
	ssrTagClose = []byte(`</script>`)
)

// SSR data structs for __UNIVERSAL_DATA_FOR_REHYDRATION__. Field names
// match TikTok's JSON exactly.

type universalData struct {
	DefaultScope defaultScope `json:"__DEFAULT_SCOPE__"`
}

type defaultScope struct {
	UserDetail userDetailWrapper `json:"webapp.user-detail"`
}

type userDetailWrapper struct {
	UserInfo rawUserInfo `json:"userInfo"`
	ItemList []rawVideo  `json:"itemList"`
}

type rawUserInfo struct {
	User  rawUserDetail `json:"user"`
	Stats rawUserStats  `json:"stats"`
}

type rawUserDetail struct {
	ID       string `json:"id"`
	UniqueID string `json:"uniqueId"`
	Nickname string `json:"nickname"`
	Verified bool   `json:"verified"`
}

type rawUserStats struct {
	FollowerCount  int `json:"followerCount"`
	FollowingCount int `json:"followingCount"`
	Heart          int `json:"heart"`
	HeartCount     int `json:"heartCount"`
	VideoCount     int `json:"videoCount"`
}

type rawVideo struct {
	ID    string   `json:"id"`
	Desc  string   `json:"desc"`
	Stats rawStats `json:"stats"`
}

type rawStats struct {
	PlayCount    int `json:"playCount"`
	DiggCount    int `json:"diggCount"`
	CommentCount int `json:"commentCount"`
}

// extractUniversalData finds and parses the rehydration JSON embedded in
// the rendered HTML. A missing tag usually means an incomplete render,
// so the error is classified retryable.
func extractUniversalData(htmlBody []byte) (universalData, error) {
	start := bytes.Index(htmlBody, ssrTagOpen)
	if start == -1 {
		return universalData{}, apperrors.New(apperrors.ErrorTypeParsing, "rehydration script tag not found")
	}
	start += len(ssrTagOpen)

	end := bytes.Index(htmlBody[start:], ssrTagClose)
	if end == -1 {
		return universalData{}, apperrors.New(apperrors.ErrorTypeParsing, "closing script tag not found")
	}

	var data universalData
	if err := json.Unmarshal(htmlBody[start:start+end], &data); err != nil {
		return universalData{}, apperrors.Wrap(apperrors.ErrorTypeParsing, "unmarshal ssr data", err)
	}
	return data, nil
}

// parseProfile builds a ProfileSnapshot from the rendered page HTML.
func parseProfile(htmlBody []byte, username, baseURL string) (*models.ProfileSnapshot, error) {
	data, err := extractUniversalData(htmlBody)
	if err != nil {
		return nil, err
	}

	detail := data.DefaultScope.UserDetail
	if detail.UserInfo.User.UniqueID == "" {
		return nil, apperrors.New(apperrors.ErrorTypeParsing, "user data missing in ssr response")
	}

	likes := detail.UserInfo.Stats.HeartCount
	if likes == 0 {
		likes = detail.UserInfo.Stats.Heart
	}

	videos := make([]models.VideoRecord, 0, len(detail.ItemList))
	totalViews := 0
	for _, raw := range detail.ItemList {
		link := models.NoLink
		if raw.ID != "" {
			link = fmt.Sprintf("%s/@%s/video/%s", baseURL, username, raw.ID)
		}
		videos = append(videos, models.VideoRecord{Views: raw.Stats.PlayCount, Link: link})
		totalViews += raw.Stats.PlayCount
	}

	return &models.ProfileSnapshot{
		Username:    username,
		Followers:   detail.UserInfo.Stats.FollowerCount,
		Likes:       likes,
		TotalViews:  totalViews,
		TotalVideos: len(videos),
		Videos:      videos,
	}, nil
}
