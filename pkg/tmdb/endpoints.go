package tmdb

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// GenreList returns the movie genre catalog for the given language.
// Genres change rarely, so they are cached for a full day.
func (c *Client) GenreList(ctx context.Context, language string) ([]Genre, error) {
	params := url.Values{}
	if language != "" {
		params.Set("language", language)
	}

	var resp genreListResponse
	if err := c.get(ctx, "/genre/movie/list", params, genreTTL, &resp); err != nil {
		return nil, err
	}
	return resp.Genres, nil
}

// SearchKeyword finds TMDB keyword records matching the query.
func (c *Client) SearchKeyword(ctx context.Context, query string) ([]Keyword, error) {
	params := url.Values{}
	params.Set("query", query)

	var resp keywordSearchResponse
	if err := c.get(ctx, "/search/keyword", params, responseTTL, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// DiscoverMovies runs a discover query with the caller-built filter
// parameters.
func (c *Client) DiscoverMovies(ctx context.Context, params url.Values) (*MovieList, error) {
	var resp MovieList
	if err := c.get(ctx, "/discover/movie", params, responseTTL, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SearchMovies performs a free-text movie title search.
func (c *Client) SearchMovies(ctx context.Context, query, language string, page int) (*MovieList, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")
	if language != "" {
		params.Set("language", language)
	}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}

	var resp MovieList
	if err := c.get(ctx, "/search/movie", params, responseTTL, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MovieDetails fetches the full record for a movie.
func (c *Client) MovieDetails(ctx context.Context, movieID int, language string) (*MovieDetails, error) {
	params := url.Values{}
	if language != "" {
		params.Set("language", language)
	}

	var resp MovieDetails
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", movieID), params, responseTTL, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MovieKeywords fetches the keywords attached to a movie.
func (c *Client) MovieKeywords(ctx context.Context, movieID int) ([]Keyword, error) {
	var resp movieKeywordsResponse
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/keywords", movieID), url.Values{}, responseTTL, &resp); err != nil {
		return nil, err
	}
	return resp.Keywords, nil
}

// MovieReviews fetches user reviews for a movie.
func (c *Client) MovieReviews(ctx context.Context, movieID int, language string) ([]Review, error) {
	params := url.Values{}
	if language != "" {
		params.Set("language", language)
	}

	var resp reviewListResponse
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/reviews", movieID), params, responseTTL, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// MovieVideos fetches trailers, teasers and clips for a movie.
func (c *Client) MovieVideos(ctx context.Context, movieID int, language string) ([]Video, error) {
	params := url.Values{}
	if language != "" {
		params.Set("language", language)
	}

	var resp videoListResponse
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/videos", movieID), params, responseTTL, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// MovieExternalIDs fetches cross-database identifiers for a movie.
func (c *Client) MovieExternalIDs(ctx context.Context, movieID int) (*ExternalIDs, error) {
	var resp ExternalIDs
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/external_ids", movieID), url.Values{}, responseTTL, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
