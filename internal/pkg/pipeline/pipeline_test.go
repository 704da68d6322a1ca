package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	assert.Equal(t, float64(0), Score(0, 0, 0))
	assert.Equal(t, float64(1000), Score(1000, 0, 0))
	assert.Equal(t, float64(1000+5*50+10*10), Score(1000, 50, 10))
}

func TestRelatedKeywords(t *testing.T) {
	titles := []string{
		"Sourdough starter guide for beginners",
		"Easy sourdough starter recipe",
		"Sourdough starter recipe from scratch",
	}

	got := relatedKeywords("sourdough", titles)

	// "starter" in three titles beats "recipe" in two; the searched word
	// itself never appears.
	require.NotEmpty(t, got)
	assert.Equal(t, "starter", got[0])
	assert.Contains(t, got, "recipe")
	assert.NotContains(t, got, "sourdough")
}

func TestRelatedKeywords_MinimumCount(t *testing.T) {
	got := relatedKeywords("bread", []string{"Unique title one", "Totally different two"})
	assert.Empty(t, got)
}

func TestRelatedKeywords_PerTitleDedup(t *testing.T) {
	// Repeating a word inside one title counts once.
	got := relatedKeywords("bread", []string{"Crust crust crust"})
	assert.Empty(t, got)
}

func TestTokenize(t *testing.T) {
	got := tokenize("How to Bake: Sourdough-Bread 101!")
	assert.Equal(t, []string{"how", "bake", "sourdough", "bread", "101"}, got)
}

func TestExcludedMatch(t *testing.T) {
	assert.True(t, excludedMatch("Sourdough SHORTS compilation", []string{"shorts"}))
	assert.True(t, excludedMatch("Sourdough basics", []string{" Basics "}))
	assert.False(t, excludedMatch("Sourdough basics", []string{"pizza"}))
	assert.False(t, excludedMatch("Sourdough basics", []string{"", "  "}))
}

func TestAnalyzeKeyword_RequiresAPIKey(t *testing.T) {
	c := NewYouTubeClient("")
	_, err := c.AnalyzeKeyword(context.Background(), "sourdough", nil)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestAnalyzeKeyword_ScoresAndFilters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search":
			assert.Equal(t, "sourdough", r.URL.Query().Get("q"))
			json.NewEncoder(w).Encode(map[string]interface{}{
				"items": []map[string]interface{}{
					{
						"id": map[string]string{"videoId": "vid1"},
						"snippet": map[string]string{
							"title":        "Sourdough starter guide",
							"channelTitle": "Bread Channel",
							"publishedAt":  "2026-01-15T10:00:00Z",
						},
					},
					{
						"id": map[string]string{"videoId": "vid2"},
						"snippet": map[string]string{
							"title":        "Sourdough SHORTS",
							"channelTitle": "Clips",
							"publishedAt":  "2026-02-01T10:00:00Z",
						},
					},
				},
			})
		case "/videos":
			assert.Equal(t, "vid1", r.URL.Query().Get("id"))
			json.NewEncoder(w).Encode(map[string]interface{}{
				"items": []map[string]interface{}{
					{
						"id": "vid1",
						"statistics": map[string]string{
							"viewCount":    "1000",
							"likeCount":    "50",
							"commentCount": "10",
						},
					},
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewYouTubeClient("test-key")
	c.baseURL = srv.URL

	result, err := c.AnalyzeKeyword(context.Background(), "sourdough", []string{"shorts"})
	require.NoError(t, err)
	require.Len(t, result.Videos, 1)

	v := result.Videos[0]
	assert.Equal(t, "vid1", v.VideoID)
	assert.Equal(t, "Bread Channel", v.ChannelTitle)
	assert.Equal(t, uint64(1000), v.ViewCount)
	assert.Equal(t, Score(1000, 50, 10), v.Score)
}

func TestAnalyzeKeyword_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewYouTubeClient("test-key")
	c.baseURL = srv.URL

	_, err := c.AnalyzeKeyword(context.Background(), "sourdough", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}
