package extract

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tiktracker/pkg/errors"
	"tiktracker/pkg/models"
)

const baseURL = "https://www.tiktok.com"

func profileHTML(payload string) []byte {
	return []byte(fmt.Sprintf(
		`<html><head></head><body><script id="__UNIVERSAL_DATA_FOR_REHYDRATION__" type="application/json">%s</script></body></html>`,
		payload,
	))
}

func TestParseProfile(t *testing.T) {
	payload := `{
		"__DEFAULT_SCOPE__": {
			"webapp.user-detail": {
				"userInfo": {
					"user": {"id": "1", "uniqueId": "alice"},
					"stats": {"followerCount": 1200, "heartCount": 560, "videoCount": 2}
				},
				"itemList": [
					{"id": "111", "stats": {"playCount": 300}},
					{"id": "", "stats": {"playCount": 200}}
				]
			}
		}
	}`

	snap, err := parseProfile(profileHTML(payload), "alice", baseURL)
	require.NoError(t, err)

	assert.Equal(t, "alice", snap.Username)
	assert.Equal(t, 1200, snap.Followers)
	assert.Equal(t, 560, snap.Likes)
	assert.Equal(t, 2, snap.TotalVideos)
	assert.Equal(t, 500, snap.TotalViews)
	require.Len(t, snap.Videos, 2)
	assert.Equal(t, "https://www.tiktok.com/@alice/video/111", snap.Videos[0].Link)
	assert.Equal(t, models.NoLink, snap.Videos[1].Link, "missing video id falls back to the sentinel link")
}

func TestParseProfileLegacyHeartField(t *testing.T) {
	payload := `{
		"__DEFAULT_SCOPE__": {
			"webapp.user-detail": {
				"userInfo": {
					"user": {"uniqueId": "bob"},
					"stats": {"followerCount": 10, "heart": 42}
				},
				"itemList": [{"id": "9", "stats": {"playCount": 1}}]
			}
		}
	}`

	snap, err := parseProfile(profileHTML(payload), "bob", baseURL)
	require.NoError(t, err)
	assert.Equal(t, 42, snap.Likes)
}

func TestParseProfileEmptyVideoGrid(t *testing.T) {
	payload := `{
		"__DEFAULT_SCOPE__": {
			"webapp.user-detail": {
				"userInfo": {
					"user": {"uniqueId": "carol"},
					"stats": {"followerCount": 5, "heartCount": 1}
				}
			}
		}
	}`

	snap, err := parseProfile(profileHTML(payload), "carol", baseURL)
	require.NoError(t, err)
	assert.Zero(t, snap.TotalVideos)
	assert.Empty(t, snap.Videos)
}

func TestParseProfileMissingScriptTag(t *testing.T) {
	_, err := parseProfile([]byte("<html><body>partial render</body></html>"), "alice", baseURL)

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeParsing, apperrors.TypeOf(err))
	assert.True(t, apperrors.IsRetryable(apperrors.TypeOf(err)), "incomplete renders must stay retryable")
}

func TestParseProfileMissingUserData(t *testing.T) {
	payload := `{"__DEFAULT_SCOPE__": {"webapp.user-detail": {"userInfo": {"user": {}}}}}`

	_, err := parseProfile(profileHTML(payload), "alice", baseURL)

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeParsing, apperrors.TypeOf(err))
}

func TestParseProfileMalformedJSON(t *testing.T) {
	_, err := parseProfile(profileHTML(`{"__DEFAULT_SCOPE__": `), "alice", baseURL)

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeParsing, apperrors.TypeOf(err))
}
