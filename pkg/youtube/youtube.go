// Package youtube resolves movie trailers. The preferred path reads
// the TMDB videos endpoint (no extra quota); the Data API v3 search
// runs when a key is configured, and a constructed search URL is the
// last fallback so callers always get a usable link.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cinematch/backend/internal/cache"
	"github.com/cinematch/backend/pkg/tmdb"
)

const (
	defaultBaseURL = "https://www.googleapis.com/youtube/v3"

	// Trailers rarely change once published.
	trailerTTL = 7 * 24 * time.Hour
)

// Trailer is the resolved link set for a movie trailer. Source is
// "tmdb", "api" or "search_url"; only the last one leaves YouTubeID
// empty.
type Trailer struct {
	YouTubeID  string `json:"youtube_id,omitempty"`
	YouTubeURL string `json:"youtube_url"`
	EmbedURL   string `json:"embed_url,omitempty"`
	Thumbnail  string `json:"thumbnail,omitempty"`
	Name       string `json:"name,omitempty"`
	Source     string `json:"source"`
}

// Client resolves trailers through TMDB videos or the YouTube Data
// API.
//
// A Client should be created using NewClient.
type Client struct {
	baseURL string
	apiKey  string

	httpClient   *http.Client
	trailerCache *cache.TTLCache[Trailer]
}

// NewClientParams contains configuration options for creating a new Client.
type NewClientParams struct {
	// ApiKey is the YouTube Data API v3 key. Empty falls back to
	// constructed search URLs.
	ApiKey string

	// BaseURL overrides the API endpoint.
	BaseURL string
}

// NewClient creates a YouTube client with the given configuration.
func NewClient(params NewClientParams) *Client {
	baseURL := params.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  params.ApiKey,

		httpClient:   &http.Client{Timeout: 10 * time.Second},
		trailerCache: cache.New[Trailer](trailerTTL),
	}
}

// Enabled reports whether a Data API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// TrailerFromTMDB picks the best YouTube trailer from the TMDB videos
// endpoint, trying Spanish first and appending the English list when
// no proper trailer showed up.
func (c *Client) TrailerFromTMDB(ctx context.Context, api tmdb.API, movieID int) (Trailer, bool) {
	key := "tmdb:" + strconv.Itoa(movieID)
	if t, ok := c.trailerCache.Get(key); ok {
		return t, true
	}

	videos, err := api.MovieVideos(ctx, movieID, "es-ES")
	if err != nil {
		videos = nil
	}
	if !HasTrailer(videos) {
		if more, err := api.MovieVideos(ctx, movieID, "en-US"); err == nil {
			videos = append(videos, more...)
		}
	}

	v, ok := PickTrailer(videos)
	if !ok {
		return Trailer{}, false
	}

	name := v.Name
	if name == "" {
		name = "Trailer"
	}
	t := Trailer{
		YouTubeID:  v.Key,
		YouTubeURL: "https://www.youtube.com/watch?v=" + v.Key,
		EmbedURL:   "https://www.youtube.com/embed/" + v.Key,
		Thumbnail:  "https://img.youtube.com/vi/" + v.Key + "/hqdefault.jpg",
		Name:       name,
		Source:     "tmdb",
	}
	c.trailerCache.Put(key, t)
	return t, true
}

// TrailerBySearch resolves a trailer by title and year. With an API
// key it searches the Data API; without one, or when the search fails,
// it returns a constructed YouTube search URL.
func (c *Client) TrailerBySearch(ctx context.Context, title string, year int) Trailer {
	key := fmt.Sprintf("yt:%s:%d", title, year)
	if t, ok := c.trailerCache.Get(key); ok {
		return t
	}

	var t Trailer
	if c.Enabled() {
		found, err := c.searchViaAPI(ctx, title, year)
		if err == nil {
			t = found
		}
	}
	if t.YouTubeURL == "" {
		t = searchURLTrailer(title, year)
	}

	c.trailerCache.Put(key, t)
	return t
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

func (c *Client) searchViaAPI(ctx context.Context, title string, year int) (Trailer, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", fmt.Sprintf("%s %d trailer oficial", title, year))
	params.Set("type", "video")
	params.Set("maxResults", "1")
	params.Set("videoCategoryId", "1") // Film & Animation
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return Trailer{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Trailer{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Trailer{}, fmt.Errorf("youtube: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Trailer{}, err
	}

	var raw searchResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return Trailer{}, err
	}
	if len(raw.Items) == 0 {
		return Trailer{}, fmt.Errorf("youtube: no results")
	}

	id := raw.Items[0].ID.VideoID
	return Trailer{
		YouTubeID:  id,
		YouTubeURL: "https://www.youtube.com/watch?v=" + id,
		EmbedURL:   "https://www.youtube.com/embed/" + id,
		Thumbnail:  "https://img.youtube.com/vi/" + id + "/hqdefault.jpg",
		Source:     "api",
	}, nil
}

func searchURLTrailer(title string, year int) Trailer {
	query := url.Values{}
	query.Set("search_query", fmt.Sprintf("%s %d trailer oficial", title, year))
	return Trailer{
		YouTubeURL: "https://www.youtube.com/results?" + query.Encode(),
		Source:     "search_url",
	}
}

// PickTrailer chooses the best YouTube video: trailers beat other
// types, official beats unofficial, an "official" name breaks ties.
func PickTrailer(videos []tmdb.Video) (tmdb.Video, bool) {
	best := tmdb.Video{}
	bestRank := -1
	for _, v := range videos {
		if v.Site != "YouTube" {
			continue
		}
		if r := trailerRank(v); r > bestRank {
			best = v
			bestRank = r
		}
	}
	return best, bestRank >= 0
}

func trailerRank(v tmdb.Video) int {
	rank := 0
	if v.Type == "Trailer" {
		rank += 4
	}
	if v.Official {
		rank += 2
	}
	low := strings.ToLower(v.Name)
	if strings.Contains(low, "oficial") || strings.Contains(low, "official") {
		rank++
	}
	return rank
}

// HasTrailer reports whether any video is a proper trailer.
func HasTrailer(videos []tmdb.Video) bool {
	for _, v := range videos {
		if v.Type == "Trailer" {
			return true
		}
	}
	return false
}
