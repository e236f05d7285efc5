// Package wikipedia pulls article summaries and trivia sentences from
// the Wikipedia REST API, with a search fallback when a direct title
// lookup misses. Used to enrich film records with context and fun facts.
package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cinematch/backend/internal/cache"
	"github.com/cinematch/backend/pkg/logger"
)

const (
	responseTTL = 24 * time.Hour
	userAgent   = "CineMatch/1.0 (https://github.com/cinematch/backend)"

	minExtractLen = 50
)

// Summary is a condensed Wikipedia article.
type Summary struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Extract     string `json:"extract"`
	URL         string `json:"url"`
}

type restSummary struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Extract     string `json:"extract"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

type searchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

// Client fetches article summaries from Wikipedia.
//
// A Client should be created using NewClient.
type Client struct {
	language string
	baseURL  string

	httpClient *http.Client
	respCache  *cache.TTLCache[Summary]
}

// NewClientParams contains configuration options for creating a new Client.
type NewClientParams struct {
	// Language selects the Wikipedia edition, e.g. "es". Defaults to "es".
	Language string

	// BaseURL overrides the Wikipedia host pattern for tests. When set it
	// is used verbatim for every language.
	BaseURL string
}

// NewClient creates a Wikipedia client with the given configuration.
func NewClient(params NewClientParams) *Client {
	lang := params.Language
	if lang == "" {
		lang = "es"
	}

	return &Client{
		language: lang,
		baseURL:  params.BaseURL,

		httpClient: &http.Client{Timeout: 10 * time.Second},
		respCache:  cache.New[Summary](responseTTL),
	}
}

func (c *Client) host(lang string) string {
	if c.baseURL != "" {
		return c.baseURL
	}
	return fmt.Sprintf("https://%s.wikipedia.org", lang)
}

// MovieSummary finds the Wikipedia article for a film, trying
// progressively looser title variants until one looks like a movie
// article with a usable extract.
func (c *Client) MovieSummary(ctx context.Context, title string, year int) (Summary, error) {
	cacheKey := fmt.Sprintf("movie|%s|%d", strings.ToLower(title), year)
	if cached, ok := c.respCache.Get(cacheKey); ok {
		return cached, nil
	}

	queries := []string{
		fmt.Sprintf("%s (película de %d)", title, year),
		fmt.Sprintf("%s (%d film)", title, year),
		title + " película",
		title,
	}

	for _, q := range queries {
		summary, err := c.lookup(ctx, c.language, q)
		if err != nil {
			if ctx.Err() != nil {
				return Summary{}, ctx.Err()
			}
			continue
		}
		if len(summary.Extract) >= minExtractLen && isMovieArticle(summary) {
			c.respCache.Put(cacheKey, summary)
			return summary, nil
		}
	}

	return Summary{}, fmt.Errorf("wikipedia: no movie article for %q (%d)", title, year)
}

// PersonSummary finds the article for a director or actor, falling
// back to the English edition when the configured one has nothing.
func (c *Client) PersonSummary(ctx context.Context, name string) (Summary, error) {
	cacheKey := "person|" + strings.ToLower(name)
	if cached, ok := c.respCache.Get(cacheKey); ok {
		return cached, nil
	}

	for _, lang := range []string{c.language, "en"} {
		summary, err := c.lookup(ctx, lang, name)
		if err != nil {
			if ctx.Err() != nil {
				return Summary{}, ctx.Err()
			}
			continue
		}
		if len(summary.Extract) >= minExtractLen {
			c.respCache.Put(cacheKey, summary)
			return summary, nil
		}
	}

	return Summary{}, fmt.Errorf("wikipedia: no article for %q", name)
}

// lookup tries the REST summary endpoint directly, then resolves the
// query through full-text search and retries with the found title.
func (c *Client) lookup(ctx context.Context, lang, query string) (Summary, error) {
	summary, err := c.restSummary(ctx, lang, query)
	if err == nil {
		return summary, nil
	}

	titles, searchErr := c.search(ctx, lang, query)
	if searchErr != nil || len(titles) == 0 {
		return Summary{}, err
	}

	for _, t := range titles {
		if s, err := c.restSummary(ctx, lang, t); err == nil {
			return s, nil
		}
	}
	return Summary{}, err
}

func (c *Client) restSummary(ctx context.Context, lang, title string) (Summary, error) {
	endpoint := c.host(lang) + "/api/rest_v1/page/summary/" + url.PathEscape(title)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Summary{}, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Summary{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Summary{}, fmt.Errorf("wikipedia: summary %q status %d", title, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Summary{}, err
	}

	var raw restSummary
	if err := json.Unmarshal(body, &raw); err != nil {
		return Summary{}, err
	}

	return Summary{
		Title:       raw.Title,
		Description: raw.Description,
		Extract:     raw.Extract,
		URL:         raw.ContentURLs.Desktop.Page,
	}, nil
}

func (c *Client) search(ctx context.Context, lang, query string) ([]string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("srlimit", "3")
	params.Set("format", "json")

	endpoint := c.host(lang) + "/w/api.php?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wikipedia: search %q status %d", query, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var raw searchResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	titles := make([]string, 0, len(raw.Query.Search))
	for _, r := range raw.Query.Search {
		titles = append(titles, r.Title)
	}
	logger.Debug("Wikipedia search fallback", "query", query, "results", len(titles))
	return titles, nil
}

var movieIndicators = []string{
	"película", "pelicula", "film", "movie", "largometraje", "cinta",
	"dirigida", "dirigido", "directed", "cortometraje", "drama", "comedia",
}

// isMovieArticle guards against the title lookup landing on a novel,
// person or disambiguation page with the same name.
func isMovieArticle(s Summary) bool {
	haystack := strings.ToLower(s.Description + " " + s.Extract)
	for _, word := range movieIndicators {
		if strings.Contains(haystack, word) {
			return true
		}
	}
	return false
}
