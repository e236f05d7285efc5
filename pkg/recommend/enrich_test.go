package recommend

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/cinematch/backend/pkg/tmdb"
)

func TestEnrichOneBuildsFullRecord(t *testing.T) {
	client := &fakeTMDB{
		detailsFn: func(movieID int) (*tmdb.MovieDetails, error) {
			return &tmdb.MovieDetails{
				ID:            movieID,
				Title:         "El secreto de sus ojos",
				OriginalTitle: "El secreto de sus ojos",
				Overview:      "Un crimen sin resolver.",
				ReleaseDate:   "2009-08-13",
				Runtime:       129,
				VoteAverage:   8.1,
				VoteCount:     2500,
				PosterPath:    "/poster.jpg",
				Genres:        []tmdb.Genre{{ID: 18, Name: "Drama"}, {ID: 80, Name: "Crimen"}},
				OriginCountry: []string{"AR"},
			}, nil
		},
		movieKeywords: map[int][]tmdb.Keyword{
			77: {{ID: 1, Name: "justicia"}, {ID: 2, Name: "memoria"}},
		},
		reviews: map[int][]tmdb.Review{
			77: {
				{Content: "Regular.", AuthorDetails: tmdb.ReviewAuthorDetails{Rating: 5}},
				{Content: "Obra maestra absoluta.", AuthorDetails: tmdb.ReviewAuthorDetails{Rating: 9}},
			},
		},
		videos: map[int][]tmdb.Video{
			77: {
				{Key: "teaser1", Site: "YouTube", Type: "Teaser"},
				{Key: "trailer1", Site: "YouTube", Type: "Trailer", Official: true},
			},
		},
	}

	enricher := NewEnricher(client, nil, nil)
	film := enricher.EnrichOne(context.Background(), tmdb.Movie{ID: 77, Title: "basic"}, "es-ES", true)

	if film.Title != "El secreto de sus ojos" || film.ReleaseYear != 2009 || film.Runtime != 129 {
		t.Errorf("core fields wrong: %+v", film)
	}
	if len(film.Genres) != 2 || film.Genres[0] != "Drama" {
		t.Errorf("Genres = %v", film.Genres)
	}
	if len(film.OriginCountries) != 1 || film.OriginCountries[0] != "AR" {
		t.Errorf("OriginCountries = %v", film.OriginCountries)
	}
	if film.TopReview != "Obra maestra absoluta." {
		t.Errorf("TopReview = %q, want highest-rated review", film.TopReview)
	}
	if film.PosterURL != "https://image.tmdb.org/t/p/w500/poster.jpg" {
		t.Errorf("PosterURL = %q", film.PosterURL)
	}
	if film.TrailerURL != "https://www.youtube.com/watch?v=trailer1" {
		t.Errorf("TrailerURL = %q, want official trailer preferred", film.TrailerURL)
	}
}

func TestEnrichOneFallsBackToBasicOnDetailsFailure(t *testing.T) {
	client := &fakeTMDB{
		detailsFn: func(movieID int) (*tmdb.MovieDetails, error) {
			return nil, errors.New("boom")
		},
	}

	basic := tmdb.Movie{
		ID: 5, Title: "Airbag", Overview: "Tres amigos.", ReleaseDate: "1997-07-04",
		VoteAverage: 6.9, VoteCount: 400, PosterPath: "/airbag.jpg",
	}

	enricher := NewEnricher(client, nil, nil)
	film := enricher.EnrichOne(context.Background(), basic, "es-ES", true)

	if film.Title != "Airbag" || film.ReleaseYear != 1997 || film.VoteAverage != 6.9 {
		t.Errorf("basic fallback wrong: %+v", film)
	}
	if film.Runtime != 0 {
		t.Errorf("Runtime = %d, want 0 default", film.Runtime)
	}
}

func TestEnrichOneSkipsReviewsWhenDisabled(t *testing.T) {
	var reviewCalls atomic.Int32
	client := &fakeTMDB{
		reviewsFn: func(movieID int) ([]tmdb.Review, error) {
			reviewCalls.Add(1)
			return []tmdb.Review{{Content: "No debería aparecer."}}, nil
		},
	}

	enricher := NewEnricher(client, nil, nil)
	film := enricher.EnrichOne(context.Background(), tmdb.Movie{ID: 9, Title: "Airbag"}, "es-ES", false)

	if got := reviewCalls.Load(); got != 0 {
		t.Errorf("review calls = %d, want 0", got)
	}
	if film.TopReview != "" {
		t.Errorf("TopReview = %q, want empty", film.TopReview)
	}
}

func TestEnrichBatchCapsAndDrops(t *testing.T) {
	var detailCalls atomic.Int32
	client := &fakeTMDB{
		detailsFn: func(movieID int) (*tmdb.MovieDetails, error) {
			detailCalls.Add(1)
			if movieID == 3 || movieID == 7 {
				// Simulates a record so broken nothing useful remains.
				return &tmdb.MovieDetails{ID: movieID}, nil
			}
			return &tmdb.MovieDetails{ID: movieID, Title: "Film"}, nil
		},
	}

	movies := make([]tmdb.Movie, 12)
	for i := range movies {
		movies[i] = tmdb.Movie{ID: i + 1}
	}

	enricher := NewEnricher(client, nil, nil)
	enriched := enricher.EnrichBatch(context.Background(), movies, "es-ES", 10, true)

	if got := detailCalls.Load(); got != 10 {
		t.Errorf("detail calls = %d, want cap of 10", got)
	}
	if len(enriched) != 8 {
		t.Errorf("enriched = %d, want 8 (two dropped)", len(enriched))
	}
}

func TestBestReviewTruncatesAtWordBoundary(t *testing.T) {
	long := strings.Repeat("palabra ", 80) // 640 chars
	got := bestReview([]tmdb.Review{{Content: long}})
	if len(got) > reviewMaxLen+len("…") {
		t.Fatalf("review too long: %d chars", len(got))
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("review should end with ellipsis: %q", got)
	}
	if strings.Contains(got, "palabr…") {
		t.Errorf("review cut mid-word: %q", got)
	}
}

func TestParseRatingStrings(t *testing.T) {
	if got := parsePercent("71%"); got != 71 {
		t.Errorf("parsePercent = %d", got)
	}
	if got := parsePercent(""); got != 0 {
		t.Errorf("parsePercent empty = %d", got)
	}
	if got := parseFraction("82/100"); got != 82 {
		t.Errorf("parseFraction = %d", got)
	}
	if got := parseFraction("N/A"); got != 0 {
		t.Errorf("parseFraction N/A = %d", got)
	}
}
