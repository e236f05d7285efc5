package recommend

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/cinematch/backend/pkg/common"
	"github.com/cinematch/backend/pkg/logger"
	"github.com/cinematch/backend/pkg/tmdb"
)

const (
	discoverMaxPages = 2
	pageSize         = 20
)

type dateRange struct {
	gte string
	lte string
}

// eraMap translates era phrases the extractor emits into release date
// ranges.
var eraMap = map[string]dateRange{
	"20s":      {"1920-01-01", "1929-12-31"},
	"30s":      {"1930-01-01", "1939-12-31"},
	"40s":      {"1940-01-01", "1949-12-31"},
	"50s":      {"1950-01-01", "1959-12-31"},
	"60s":      {"1960-01-01", "1969-12-31"},
	"70s":      {"1970-01-01", "1979-12-31"},
	"80s":      {"1980-01-01", "1989-12-31"},
	"90s":      {"1990-01-01", "1999-12-31"},
	"2000s":    {"2000-01-01", "2009-12-31"},
	"2010s":    {"2010-01-01", "2019-12-31"},
	"2020s":    {"2020-01-01", "2029-12-31"},
	"clásico":  {"1920-01-01", "1979-12-31"},
	"clasico":  {"1920-01-01", "1979-12-31"},
	"moderno":  {"2000-01-01", "2029-12-31"},
	"reciente": {"2018-01-01", "2029-12-31"},
}

// regionMap normalises country mentions to ISO 3166-1 alpha-2 codes.
var regionMap = map[string]string{
	"españa":         "ES",
	"spain":          "ES",
	"francia":        "FR",
	"france":         "FR",
	"italia":         "IT",
	"italy":          "IT",
	"alemania":       "DE",
	"germany":        "DE",
	"uk":             "GB",
	"reino unido":    "GB",
	"estados unidos": "US",
	"usa":            "US",
	"japón":          "JP",
	"japan":          "JP",
	"corea":          "KR",
	"korea":          "KR",
}

// darkMoodWords trigger a lower quality floor so indie and arthouse
// films with modest vote averages still surface.
var darkMoodWords = []string{"oscuro", "autor", "independiente", "indie", "dark"}

func resolveRegion(region string) string {
	low := strings.ToLower(strings.TrimSpace(region))
	if low == "" {
		return ""
	}
	if len(low) == 2 && isAlpha(low) {
		return strings.ToUpper(low)
	}
	return regionMap[low]
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// BuildDiscoverParams converts extracted entities and caller filters
// into TMDB /discover/movie parameters.
func BuildDiscoverParams(
	entities common.ExtractedEntities,
	language string,
	filters common.RecommendFilters,
	page int,
) url.Values {
	params := url.Values{}
	params.Set("language", language)
	params.Set("sort_by", "popularity.desc")
	params.Set("include_adult", "false")
	params.Set("page", strconv.Itoa(page))

	if len(entities.GenreIDs) > 0 {
		params.Set("with_genres", joinInts(entities.GenreIDs))
	}
	if len(entities.KeywordIDs) > 0 {
		params.Set("with_keywords", joinInts(entities.KeywordIDs))
	}

	if region := resolveRegion(entities.Region); region != "" {
		params.Set("region", region)
		params.Set("watch_region", region)
	}

	if entities.Language != "" {
		params.Set("with_original_language", entities.Language)
	}

	if entities.Era != "" {
		if r, ok := eraMap[strings.ToLower(strings.TrimSpace(entities.Era))]; ok {
			params.Set("primary_release_date.gte", r.gte)
			params.Set("primary_release_date.lte", r.lte)
		}
	}

	// Quality floor: dark/indie moods keep it low so arthouse films
	// surface, but an explicit caller minimum always wins.
	voteFloor := 6.0
	if hasDarkMood(entities.Mood) {
		voteFloor = 5.0
	}
	if filters.MinRating > 0 {
		voteFloor = filters.MinRating
	}
	params.Set("vote_average.gte", formatFloat(voteFloor))

	if filters.MinYear > 0 && params.Get("primary_release_date.gte") == "" {
		params.Set("primary_release_date.gte", fmt.Sprintf("%d-01-01", filters.MinYear))
	}

	return params
}

func hasDarkMood(mood string) bool {
	low := strings.ToLower(mood)
	for _, w := range darkMoodWords {
		if strings.Contains(low, w) {
			return true
		}
	}
	return false
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// QueryMovies decides which TMDB endpoint fits the entities and
// fetches candidates.
//
// Route A uses /discover/movie when genre or keyword IDs resolved,
// paging up to two pages and relaxing the filters once on zero
// results. Route B falls back to a free-text /search/movie. Route C
// returns plain popular movies when nothing at all was extracted.
func QueryMovies(
	ctx context.Context,
	client tmdb.API,
	entities common.ExtractedEntities,
	language string,
	filters common.RecommendFilters,
) ([]tmdb.Movie, error) {
	if len(entities.GenreIDs) > 0 || len(entities.KeywordIDs) > 0 {
		var all []tmdb.Movie
		for page := 1; page <= discoverMaxPages; page++ {
			params := BuildDiscoverParams(entities, language, filters, page)
			list, err := client.DiscoverMovies(ctx, params)
			if err != nil {
				return nil, err
			}
			all = append(all, list.Results...)
			if len(list.Results) < pageSize {
				break
			}
		}

		if len(all) == 0 {
			logger.Warn("Discover returned 0 results, relaxing filters")
			relaxed := BuildDiscoverParams(entities, language, common.RecommendFilters{}, 1)
			relaxed.Del("with_keywords")
			relaxed.Set("vote_average.gte", "5")
			list, err := client.DiscoverMovies(ctx, relaxed)
			if err != nil {
				return nil, err
			}
			all = list.Results
		}

		if len(all) > 0 {
			return all, nil
		}
	}

	searchTerm := strings.Join(firstN(entities.Keywords, 3), " ")
	if searchTerm == "" {
		searchTerm = strings.Join(firstN(entities.Genres, 2), " ")
	}
	if strings.TrimSpace(searchTerm) != "" {
		logger.Info("Falling back to title search", "query", searchTerm)
		list, err := client.SearchMovies(ctx, searchTerm, language, 1)
		if err != nil {
			return nil, err
		}
		return list.Results, nil
	}

	logger.Warn("No search criteria, returning popular movies")
	params := url.Values{}
	params.Set("language", language)
	params.Set("sort_by", "popularity.desc")
	params.Set("page", "1")
	list, err := client.DiscoverMovies(ctx, params)
	if err != nil {
		return nil, err
	}
	return list.Results, nil
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
