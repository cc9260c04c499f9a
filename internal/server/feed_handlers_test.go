package server

import (
	"net/http"
	"testing"

	"reelhub/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedPagination(t *testing.T) {
	ts := newTestServer(t)
	creator := ts.register(t, "creator")
	ts.insertVideos(t, creator.ID, 25)

	tests := []struct {
		name        string
		query       string
		wantPage    int
		wantItems   int
		wantPages   int
		wantHasMore bool
	}{
		{"first page", "?page=1&limit=10", 1, 10, 3, true},
		{"last page", "?page=3&limit=10", 3, 5, 3, false},
		{"past the end", "?page=4&limit=10", 4, 0, 3, false},
		{"defaults", "", 1, 20, 2, true},
		{"non-numeric falls back", "?page=x&limit=y", 1, 20, 2, true},
		{"page below one", "?page=0&limit=10", 1, 10, 3, true},
		{"limit capped", "?limit=500", 1, 25, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.do(t, http.MethodGet, "/api/videos/short"+tt.query, nil, "")
			require.Equal(t, http.StatusOK, resp.Status, "body: %s", resp.Body)

			var page models.VideoPage
			resp.decode(t, &page)
			assert.Equal(t, tt.wantPage, page.CurrentPage)
			assert.Len(t, page.Videos, tt.wantItems)
			assert.Equal(t, tt.wantPages, page.TotalPages)
			assert.Equal(t, int64(25), page.TotalVideos)
			assert.Equal(t, tt.wantHasMore, page.HasMore)
		})
	}
}

func TestFeedExactMultipleHasNoMore(t *testing.T) {
	ts := newTestServer(t)
	creator := ts.register(t, "creator")
	ts.insertVideos(t, creator.ID, 20)

	resp := ts.do(t, http.MethodGet, "/api/videos/recommended?page=2&limit=10", nil, "")
	require.Equal(t, http.StatusOK, resp.Status)
	var page models.VideoPage
	resp.decode(t, &page)
	assert.Len(t, page.Videos, 10)
	assert.False(t, page.HasMore)
}

func TestFeedsSplitByTypeAndHidePrivate(t *testing.T) {
	ts := newTestServer(t)
	creator := ts.register(t, "creator")
	ts.upload(t, creator, fiber.Map{"title": "short one"})
	ts.upload(t, creator, fiber.Map{"title": "long one", "videoType": "long"})
	ts.upload(t, creator, fiber.Map{"title": "secret", "isPublic": false})

	titles := func(path string) []string {
		resp := ts.do(t, http.MethodGet, path, nil, "")
		require.Equal(t, http.StatusOK, resp.Status)
		var page models.VideoPage
		resp.decode(t, &page)
		out := make([]string, 0, len(page.Videos))
		for _, v := range page.Videos {
			out = append(out, v.Title)
		}
		return out
	}

	assert.Equal(t, []string{"short one"}, titles("/api/videos/short"))
	assert.Equal(t, []string{"long one"}, titles("/api/videos/long"))
	assert.ElementsMatch(t, []string{"short one", "long one"}, titles("/api/videos/recommended"))
}

func TestFeedPersonalization(t *testing.T) {
	ts := newTestServer(t)
	creator := ts.register(t, "creator")
	viewer := ts.register(t, "viewer")
	video := ts.upload(t, creator, nil)

	resp := ts.do(t, http.MethodPost, "/api/videos/"+itoa(video.ID)+"/like", nil, viewer.Token)
	require.Equal(t, http.StatusOK, resp.Status)

	resp = ts.do(t, http.MethodGet, "/api/videos/recommended", nil, viewer.Token)
	var page models.VideoPage
	resp.decode(t, &page)
	require.Len(t, page.Videos, 1)
	got := page.Videos[0]
	require.NotNil(t, got.IsLiked)
	assert.True(t, *got.IsLiked)
	assert.Equal(t, int64(1), got.LikeCount)
	assert.Equal(t, creator.ID, got.Creator.ID)
	assert.Equal(t, "creator", got.Creator.Username)

	resp = ts.do(t, http.MethodGet, "/api/videos/recommended", nil, "")
	page = models.VideoPage{}
	resp.decode(t, &page)
	require.Len(t, page.Videos, 1)
	assert.Nil(t, page.Videos[0].IsLiked)
	assert.Equal(t, []uint{viewer.ID}, page.Videos[0].Likes)
}

func TestSearchVideos(t *testing.T) {
	ts := newTestServer(t)
	creator := ts.register(t, "creator")
	ts.upload(t, creator, fiber.Map{"title": "Cat piano", "category": "music"})
	ts.upload(t, creator, fiber.Map{"title": "Dog piano", "category": "music"})
	ts.upload(t, creator, fiber.Map{"title": "Cat tricks", "category": "comedy"})
	ts.upload(t, creator, fiber.Map{"title": "Hidden", "description": "a cat", "category": "music", "isPublic": false})

	resp := ts.do(t, http.MethodGet, "/api/videos/search?q=cat&category=music", nil, "")
	require.Equal(t, http.StatusOK, resp.Status, "body: %s", resp.Body)
	var page models.VideoPage
	resp.decode(t, &page)
	require.Len(t, page.Videos, 1)
	assert.Equal(t, "Cat piano", page.Videos[0].Title)

	resp = ts.do(t, http.MethodGet, "/api/videos/search?q=cat", nil, "")
	page = models.VideoPage{}
	resp.decode(t, &page)
	assert.Equal(t, int64(2), page.TotalVideos)

	resp = ts.do(t, http.MethodGet, "/api/videos/search?category=horror", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, models.CodeValidation, resp.errorBody(t).Code)

	resp = ts.do(t, http.MethodGet, "/api/videos/search?videoType=medium", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.Status)
}
