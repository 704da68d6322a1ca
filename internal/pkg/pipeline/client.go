package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mweidenbach/TubeRank/internal/pkg/env"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("pipeline: youtube api key is required")

const defaultBaseURL = "https://www.googleapis.com/youtube/v3"

// ScoredVideo is one normalized result from the discovery pipeline.
type ScoredVideo struct {
	VideoID      string
	Title        string
	ChannelTitle string
	ViewCount    uint64
	LikeCount    uint64
	CommentCount uint64
	PublishedAt  time.Time
	Score        float64
}

// Result is everything a finished analysis produces for one keyword.
type Result struct {
	Videos          []ScoredVideo
	RelatedKeywords []string
}

// Client runs one keyword through the discovery pipeline. Implemented by the
// YouTube Data API client; faked in tests.
type Client interface {
	AnalyzeKeyword(ctx context.Context, keyword string, excluded []string) (*Result, error)
}

// YouTubeClient performs HTTP calls against the YouTube Data API v3.
type YouTubeClient struct {
	apiKey     string
	baseURL    string
	maxResults int
	httpClient *http.Client
}

// NewYouTubeClient creates a client with explicit credentials.
func NewYouTubeClient(apiKey string) *YouTubeClient {
	return &YouTubeClient{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		maxResults: 20,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// NewClientFromEnv creates a client configured from the environment.
func NewClientFromEnv() *YouTubeClient {
	c := NewYouTubeClient(env.GetEnv("YOUTUBE_API_KEY", ""))
	if base := env.GetEnv("YOUTUBE_API_BASE_URL", ""); base != "" {
		c.baseURL = strings.TrimRight(base, "/")
	}
	return c
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
			PublishedAt  string `json:"publishedAt"`
		} `json:"snippet"`
	} `json:"items"`
}

type videosResponse struct {
	Items []struct {
		ID         string `json:"id"`
		Statistics struct {
			ViewCount    string `json:"viewCount"`
			LikeCount    string `json:"likeCount"`
			CommentCount string `json:"commentCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// AnalyzeKeyword searches for the keyword, loads statistics for the hits and
// scores them. Videos whose title contains an excluded keyword are dropped.
func (c *YouTubeClient) AnalyzeKeyword(ctx context.Context, keyword string, excluded []string) (*Result, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	var search searchResponse
	params := url.Values{
		"part":       {"snippet"},
		"type":       {"video"},
		"q":          {keyword},
		"maxResults": {strconv.Itoa(c.maxResults)},
		"key":        {c.apiKey},
	}
	if err := c.getJSON(ctx, "/search", params, &search); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(search.Items))
	meta := make(map[string]ScoredVideo, len(search.Items))
	for _, item := range search.Items {
		id := item.ID.VideoID
		if id == "" || excludedMatch(item.Snippet.Title, excluded) {
			continue
		}
		published, _ := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
		ids = append(ids, id)
		meta[id] = ScoredVideo{
			VideoID:      id,
			Title:        item.Snippet.Title,
			ChannelTitle: item.Snippet.ChannelTitle,
			PublishedAt:  published,
		}
	}

	if len(ids) == 0 {
		return &Result{RelatedKeywords: relatedKeywords(keyword, nil)}, nil
	}

	var stats videosResponse
	params = url.Values{
		"part": {"statistics"},
		"id":   {strings.Join(ids, ",")},
		"key":  {c.apiKey},
	}
	if err := c.getJSON(ctx, "/videos", params, &stats); err != nil {
		return nil, err
	}

	videos := make([]ScoredVideo, 0, len(stats.Items))
	titles := make([]string, 0, len(stats.Items))
	for _, item := range stats.Items {
		v, ok := meta[item.ID]
		if !ok {
			continue
		}
		v.ViewCount = parseCount(item.Statistics.ViewCount)
		v.LikeCount = parseCount(item.Statistics.LikeCount)
		v.CommentCount = parseCount(item.Statistics.CommentCount)
		v.Score = Score(v.ViewCount, v.LikeCount, v.CommentCount)
		videos = append(videos, v)
		titles = append(titles, v.Title)
	}

	return &Result{
		Videos:          videos,
		RelatedKeywords: relatedKeywords(keyword, titles),
	}, nil
}

func (c *YouTubeClient) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("pipeline: request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pipeline: %s returned status %d", path, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func parseCount(s string) uint64 {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func excludedMatch(title string, excluded []string) bool {
	lower := strings.ToLower(title)
	for _, word := range excluded {
		word = strings.ToLower(strings.TrimSpace(word))
		if word != "" && strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
