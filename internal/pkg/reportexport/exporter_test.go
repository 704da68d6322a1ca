package reportexport

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mweidenbach/TubeRank/app/models"
)

func TestRenderCSV(t *testing.T) {
	round := &models.Round{ID: 1, UUID: "round-uuid", Keyword: "sourdough"}
	videos := []models.Video{
		{
			VideoID:      "vid1",
			Title:        "Sourdough, the easy way",
			ChannelTitle: "Bread Channel",
			ViewCount:    1000,
			LikeCount:    50,
			CommentCount: 10,
			Score:        1350,
			PublishedAt:  time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
		},
		{
			VideoID:   "vid2",
			Title:     "Starter basics",
			ViewCount: 500,
			Score:     500,
		},
	}

	data, err := renderCSV(round, videos)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"rank", "video_id", "title", "channel", "views", "likes", "comments", "score", "published_at"}, records[0])
	assert.Equal(t, "1", records[1][0])
	assert.Equal(t, "vid1", records[1][1])
	assert.Equal(t, "Sourdough, the easy way", records[1][2])
	assert.Equal(t, "1350.00", records[1][7])
	assert.Equal(t, "2026-01-15T10:00:00Z", records[1][8])
	assert.Equal(t, "2", records[2][0])
}

func TestRenderCSV_HeaderOnlyWithoutVideos(t *testing.T) {
	data, err := renderCSV(&models.Round{ID: 1}, nil)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestGetObjectKey(t *testing.T) {
	cfg := &Config{}
	key := cfg.GetObjectKey("round-uuid", 2026, 3)
	assert.Equal(t, "reports/2026/03/round-uuid.csv", key)
}
