// Package tmdb is a minimal client for The Movie Database API v3,
// covering the endpoints the recommendation pipeline needs. Responses
// are cached in memory and rate-limited requests are retried with
// exponential backoff.
package tmdb

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cinematch/backend/internal/cache"
	"github.com/cinematch/backend/pkg/logger"

	"golang.org/x/sync/semaphore"
)

const (
	defaultBaseURL   = "https://api.themoviedb.org/3"
	defaultImageBase = "https://image.tmdb.org/t/p/w500"

	maxConcurrentRequests = 8
	maxAttempts           = 3

	responseTTL = 1 * time.Hour
	genreTTL    = 24 * time.Hour
)

// API is the surface of the TMDB client the pipeline depends on.
// It exists so tests can substitute a fake.
type API interface {
	GenreList(ctx context.Context, language string) ([]Genre, error)
	SearchKeyword(ctx context.Context, query string) ([]Keyword, error)
	DiscoverMovies(ctx context.Context, params url.Values) (*MovieList, error)
	SearchMovies(ctx context.Context, query, language string, page int) (*MovieList, error)
	MovieDetails(ctx context.Context, movieID int, language string) (*MovieDetails, error)
	MovieKeywords(ctx context.Context, movieID int) ([]Keyword, error)
	MovieReviews(ctx context.Context, movieID int, language string) ([]Review, error)
	MovieVideos(ctx context.Context, movieID int, language string) ([]Video, error)
	MovieExternalIDs(ctx context.Context, movieID int) (*ExternalIDs, error)
	ImageURL(posterPath string) string
}

// Client talks to the TMDB v3 API using bearer token auth.
//
// A Client should be created using NewClient.
type Client struct {
	baseURL   string
	imageBase string
	token     string

	httpClient *http.Client
	reqLock    *semaphore.Weighted

	respCache *cache.TTLCache[[]byte]
}

// NewClientParams contains configuration options for creating a new Client.
type NewClientParams struct {
	// Token is the TMDB API read access token (v4 bearer token).
	Token string

	// BaseURL overrides the API endpoint. Empty means the public API.
	BaseURL string

	// ImageBase overrides the poster image base URL.
	ImageBase string
}

// NewClient creates a TMDB client with the given configuration.
func NewClient(params NewClientParams) *Client {
	baseURL := params.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	imageBase := params.ImageBase
	if imageBase == "" {
		imageBase = defaultImageBase
	}

	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		imageBase: strings.TrimRight(imageBase, "/"),
		token:     params.Token,

		httpClient: &http.Client{Timeout: 15 * time.Second},
		reqLock:    semaphore.NewWeighted(maxConcurrentRequests),

		respCache: cache.New[[]byte](responseTTL),
	}
}

// ImageURL builds a full poster URL from a TMDB poster path. Empty
// paths yield an empty URL.
func (c *Client) ImageURL(posterPath string) string {
	if posterPath == "" {
		return ""
	}
	return c.imageBase + posterPath
}

// cacheKey derives a stable key from the request path and its sorted
// query parameters.
func cacheKey(path string, params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(path)
	for _, k := range keys {
		b.WriteString("&")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(params.Get(k))
	}

	sum := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// get performs a cached GET request against the API. Responses are
// cached for ttl; HTTP 429 honors Retry-After and network errors back
// off exponentially, up to maxAttempts tries.
func (c *Client) get(ctx context.Context, path string, params url.Values, ttl time.Duration, out any) error {
	key := cacheKey(path, params)
	if body, ok := c.respCache.Get(key); ok {
		return json.Unmarshal(body, out)
	}

	if err := c.reqLock.Acquire(ctx, 1); err != nil {
		return err
	}
	defer c.reqLock.Release(1)

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			logger.Warn("TMDB request failed", "path", path, "attempt", attempt+1, "err", err)
			if err := sleepCtx(ctx, backoff(attempt)); err != nil {
				return err
			}
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			wait := retryAfter(resp, attempt)
			logger.Warn("TMDB rate limited", "path", path, "wait", wait)
			if err := sleepCtx(ctx, wait); err != nil {
				return err
			}
			lastErr = fmt.Errorf("tmdb: rate limited on %s", path)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("tmdb: %s returned status %d", path, resp.StatusCode)
		}
		if readErr != nil {
			lastErr = readErr
			if err := sleepCtx(ctx, backoff(attempt)); err != nil {
				return err
			}
			continue
		}

		c.respCache.PutTTL(key, body, ttl)
		return json.Unmarshal(body, out)
	}

	return fmt.Errorf("tmdb: %s failed after %d attempts: %w", path, maxAttempts, lastErr)
}

func backoff(attempt int) time.Duration {
	return time.Duration(1<<attempt) * 2 * time.Second
}

func retryAfter(resp *http.Response, attempt int) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return backoff(attempt)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
