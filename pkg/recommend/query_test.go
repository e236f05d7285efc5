package recommend

import (
	"context"
	"fmt"
	"net/url"
	"testing"

	"github.com/cinematch/backend/pkg/common"
	"github.com/cinematch/backend/pkg/tmdb"
)

func TestBuildDiscoverParams(t *testing.T) {
	tests := []struct {
		name     string
		entities common.ExtractedEntities
		filters  common.RecommendFilters
		want     map[string]string
		absent   []string
	}{
		{
			name: "genres and keywords",
			entities: common.ExtractedEntities{
				GenreIDs:   []int{35, 18},
				KeywordIDs: []int{9714},
			},
			want: map[string]string{
				"with_genres":      "35,18",
				"with_keywords":    "9714",
				"sort_by":          "popularity.desc",
				"include_adult":    "false",
				"vote_average.gte": "6",
			},
		},
		{
			name:     "80s era sets date range",
			entities: common.ExtractedEntities{GenreIDs: []int{35}, Era: "80s"},
			want: map[string]string{
				"primary_release_date.gte": "1980-01-01",
				"primary_release_date.lte": "1989-12-31",
			},
		},
		{
			name:     "unknown era adds no date filter",
			entities: common.ExtractedEntities{GenreIDs: []int{35}, Era: "la época dorada"},
			absent:   []string{"primary_release_date.gte", "primary_release_date.lte"},
		},
		{
			name:     "dark mood lowers vote floor",
			entities: common.ExtractedEntities{GenreIDs: []int{18}, Mood: "oscuro, de autor"},
			want:     map[string]string{"vote_average.gte": "5"},
		},
		{
			name:     "explicit min rating wins over mood",
			entities: common.ExtractedEntities{GenreIDs: []int{18}, Mood: "oscuro"},
			filters:  common.RecommendFilters{MinRating: 7.5},
			want:     map[string]string{"vote_average.gte": "7.5"},
		},
		{
			name:     "min year fills missing date floor",
			entities: common.ExtractedEntities{GenreIDs: []int{18}},
			filters:  common.RecommendFilters{MinYear: 1995},
			want:     map[string]string{"primary_release_date.gte": "1995-01-01"},
		},
		{
			name:     "era wins over min year",
			entities: common.ExtractedEntities{GenreIDs: []int{18}, Era: "90s"},
			filters:  common.RecommendFilters{MinYear: 1950},
			want:     map[string]string{"primary_release_date.gte": "1990-01-01"},
		},
		{
			name:     "region name resolves to ISO code",
			entities: common.ExtractedEntities{GenreIDs: []int{35}, Region: "España"},
			want:     map[string]string{"region": "ES", "watch_region": "ES"},
		},
		{
			name:     "two letter region passes through uppercased",
			entities: common.ExtractedEntities{GenreIDs: []int{35}, Region: "fr"},
			want:     map[string]string{"region": "FR"},
		},
		{
			name:     "original language filter",
			entities: common.ExtractedEntities{GenreIDs: []int{35}, Language: "ko"},
			want:     map[string]string{"with_original_language": "ko"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := BuildDiscoverParams(tt.entities, "es-ES", tt.filters, 1)
			for k, v := range tt.want {
				if got := params.Get(k); got != v {
					t.Errorf("%s = %q, want %q", k, got, v)
				}
			}
			for _, k := range tt.absent {
				if params.Has(k) {
					t.Errorf("%s should be absent, got %q", k, params.Get(k))
				}
			}
		})
	}
}

func moviesNamed(n int, prefix string) []tmdb.Movie {
	movies := make([]tmdb.Movie, n)
	for i := range movies {
		movies[i] = tmdb.Movie{ID: i + 1, Title: fmt.Sprintf("%s %d", prefix, i+1)}
	}
	return movies
}

func TestQueryMoviesPagesDiscover(t *testing.T) {
	client := &fakeTMDB{discoverFn: func(params url.Values) (*tmdb.MovieList, error) {
		if params.Get("page") == "1" {
			return &tmdb.MovieList{Results: moviesNamed(20, "p1")}, nil
		}
		return &tmdb.MovieList{Results: moviesNamed(5, "p2")}, nil
	}}

	entities := common.ExtractedEntities{GenreIDs: []int{35}}
	movies, err := QueryMovies(context.Background(), client, entities, "es-ES", common.RecommendFilters{})
	if err != nil {
		t.Fatalf("QueryMovies error: %v", err)
	}
	if len(movies) != 25 {
		t.Errorf("movies = %d, want 25 across two pages", len(movies))
	}
	if len(client.discoverCalls) != 2 {
		t.Errorf("discover calls = %d, want 2", len(client.discoverCalls))
	}
}

func TestQueryMoviesStopsPagingOnShortPage(t *testing.T) {
	client := &fakeTMDB{discoverFn: func(params url.Values) (*tmdb.MovieList, error) {
		return &tmdb.MovieList{Results: moviesNamed(7, "only")}, nil
	}}

	entities := common.ExtractedEntities{GenreIDs: []int{35}}
	if _, err := QueryMovies(context.Background(), client, entities, "es-ES", common.RecommendFilters{}); err != nil {
		t.Fatalf("QueryMovies error: %v", err)
	}
	if len(client.discoverCalls) != 1 {
		t.Errorf("discover calls = %d, want 1 (short first page)", len(client.discoverCalls))
	}
}

func TestQueryMoviesRelaxesFiltersOnZeroResults(t *testing.T) {
	client := &fakeTMDB{discoverFn: func(params url.Values) (*tmdb.MovieList, error) {
		if params.Has("with_keywords") {
			return &tmdb.MovieList{}, nil
		}
		return &tmdb.MovieList{Results: moviesNamed(3, "relaxed")}, nil
	}}

	entities := common.ExtractedEntities{GenreIDs: []int{35}, KeywordIDs: []int{9714}}
	movies, err := QueryMovies(context.Background(), client, entities, "es-ES", common.RecommendFilters{})
	if err != nil {
		t.Fatalf("QueryMovies error: %v", err)
	}
	if len(movies) != 3 {
		t.Fatalf("movies = %d, want 3 from relaxed retry", len(movies))
	}

	last := client.discoverCalls[len(client.discoverCalls)-1]
	if last.Has("with_keywords") {
		t.Error("relaxed retry should drop with_keywords")
	}
	if got := last.Get("vote_average.gte"); got != "5" {
		t.Errorf("relaxed vote_average.gte = %q, want 5", got)
	}
}

func TestQueryMoviesFallsBackToSearch(t *testing.T) {
	client := &fakeTMDB{searchFn: func(query string) (*tmdb.MovieList, error) {
		return &tmdb.MovieList{Results: moviesNamed(2, "search")}, nil
	}}

	entities := common.ExtractedEntities{Keywords: []string{"viajes", "tiempo", "paradojas", "extra"}}
	movies, err := QueryMovies(context.Background(), client, entities, "es-ES", common.RecommendFilters{})
	if err != nil {
		t.Fatalf("QueryMovies error: %v", err)
	}
	if len(movies) != 2 {
		t.Fatalf("movies = %d, want 2", len(movies))
	}
	if len(client.searchCalls) != 1 || client.searchCalls[0] != "viajes tiempo paradojas" {
		t.Errorf("search calls = %v, want first three keywords joined", client.searchCalls)
	}
}

func TestQueryMoviesPopularityLastResort(t *testing.T) {
	client := &fakeTMDB{discoverFn: func(params url.Values) (*tmdb.MovieList, error) {
		return &tmdb.MovieList{Results: moviesNamed(4, "popular")}, nil
	}}

	movies, err := QueryMovies(context.Background(), client, common.ExtractedEntities{}, "es-ES", common.RecommendFilters{})
	if err != nil {
		t.Fatalf("QueryMovies error: %v", err)
	}
	if len(movies) != 4 {
		t.Fatalf("movies = %d, want 4", len(movies))
	}
	if len(client.searchCalls) != 0 {
		t.Errorf("search should not be called without criteria")
	}
	call := client.discoverCalls[0]
	if call.Get("sort_by") != "popularity.desc" {
		t.Errorf("sort_by = %q", call.Get("sort_by"))
	}
}
