// Package omdb fetches supplemental ratings from the OMDb API
// (IMDb score, Rotten Tomatoes, Metacritic, awards). The whole package
// degrades to no-ops when no API key is configured, so enrichment can
// always call it.
package omdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cinematch/backend/internal/cache"
)

const (
	defaultBaseURL = "https://www.omdbapi.com/"
	responseTTL    = 24 * time.Hour
)

// Ratings aggregates the review scores and metadata OMDb knows about a
// film. Zero values mean the source had no data.
type Ratings struct {
	IMDbID         string  `json:"imdb_id,omitempty"`
	IMDbRating     float64 `json:"imdb_rating,omitempty"`
	IMDbVotes      string  `json:"imdb_votes,omitempty"`
	RottenTomatoes string  `json:"rotten_tomatoes,omitempty"`
	Metacritic     string  `json:"metacritic,omitempty"`
	Awards         string  `json:"awards,omitempty"`
	BoxOffice      string  `json:"box_office,omitempty"`
	Rated          string  `json:"rated,omitempty"`
	Director       string  `json:"director,omitempty"`
	Actors         string  `json:"actors,omitempty"`
}

// IsZero reports whether no field was populated.
func (r Ratings) IsZero() bool {
	return r == Ratings{}
}

type omdbResponse struct {
	Response   string `json:"Response"`
	IMDbID     string `json:"imdbID"`
	IMDbRating string `json:"imdbRating"`
	IMDbVotes  string `json:"imdbVotes"`
	Metascore  string `json:"Metascore"`
	Awards     string `json:"Awards"`
	BoxOffice  string `json:"BoxOffice"`
	Rated      string `json:"Rated"`
	Director   string `json:"Director"`
	Actors     string `json:"Actors"`
	Ratings    []struct {
		Source string `json:"Source"`
		Value  string `json:"Value"`
	} `json:"Ratings"`
}

// Client queries the OMDb API.
//
// A Client should be created using NewClient.
type Client struct {
	baseURL string
	apiKey  string

	httpClient *http.Client
	respCache  *cache.TTLCache[Ratings]
}

// NewClientParams contains configuration options for creating a new Client.
type NewClientParams struct {
	// ApiKey is the OMDb API key. Empty disables the client.
	ApiKey string

	// BaseURL overrides the API endpoint.
	BaseURL string
}

// NewClient creates an OMDb client with the given configuration.
func NewClient(params NewClientParams) *Client {
	baseURL := params.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  params.ApiKey,

		httpClient: &http.Client{Timeout: 10 * time.Second},
		respCache:  cache.New[Ratings](responseTTL),
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// RatingsByIMDbID looks up ratings using an IMDb identifier (tt...).
func (c *Client) RatingsByIMDbID(ctx context.Context, imdbID string) (Ratings, error) {
	if !c.Enabled() || imdbID == "" {
		return Ratings{}, nil
	}

	params := url.Values{}
	params.Set("i", imdbID)
	return c.fetch(ctx, params)
}

// RatingsByTitle looks up ratings by title and optional release year.
// It is the fallback when TMDB has no IMDb id for the movie.
func (c *Client) RatingsByTitle(ctx context.Context, title string, year int) (Ratings, error) {
	if !c.Enabled() || title == "" {
		return Ratings{}, nil
	}

	params := url.Values{}
	params.Set("t", title)
	if year > 0 {
		params.Set("y", strconv.Itoa(year))
	}
	return c.fetch(ctx, params)
}

func (c *Client) fetch(ctx context.Context, params url.Values) (Ratings, error) {
	key := params.Encode()
	if cached, ok := c.respCache.Get(key); ok {
		return cached, nil
	}

	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return Ratings{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Ratings{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Ratings{}, fmt.Errorf("omdb: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Ratings{}, err
	}

	var raw omdbResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return Ratings{}, err
	}

	ratings := parseResponse(raw)
	c.respCache.Put(key, ratings)
	return ratings, nil
}

// parseResponse maps the raw OMDb payload to Ratings, skipping every
// "N/A" placeholder the API uses for missing fields.
func parseResponse(raw omdbResponse) Ratings {
	if raw.Response == "False" {
		return Ratings{}
	}

	out := Ratings{
		IMDbID:    cleanField(raw.IMDbID),
		IMDbVotes: cleanField(raw.IMDbVotes),
		Awards:    cleanField(raw.Awards),
		BoxOffice: cleanField(raw.BoxOffice),
		Rated:     cleanField(raw.Rated),
		Director:  cleanField(raw.Director),
		Actors:    cleanField(raw.Actors),
	}

	if raw.IMDbRating != "" && raw.IMDbRating != "N/A" {
		if v, err := strconv.ParseFloat(raw.IMDbRating, 64); err == nil {
			out.IMDbRating = v
		}
	}

	for _, r := range raw.Ratings {
		switch r.Source {
		case "Rotten Tomatoes":
			out.RottenTomatoes = r.Value
		case "Metacritic":
			out.Metacritic = r.Value
		}
	}
	if out.Metacritic == "" && raw.Metascore != "" && raw.Metascore != "N/A" {
		out.Metacritic = raw.Metascore + "/100"
	}

	return out
}

func cleanField(v string) string {
	if v == "N/A" {
		return ""
	}
	return v
}
