package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/cinematch/backend/pkg/tmdb"
)

// videosStub implements tmdb.API; only MovieVideos matters here.
type videosStub struct {
	videos map[string][]tmdb.Video
}

func (s *videosStub) MovieVideos(ctx context.Context, movieID int, language string) ([]tmdb.Video, error) {
	return s.videos[language], nil
}

func (s *videosStub) GenreList(ctx context.Context, language string) ([]tmdb.Genre, error) {
	return nil, nil
}

func (s *videosStub) SearchKeyword(ctx context.Context, query string) ([]tmdb.Keyword, error) {
	return nil, nil
}

func (s *videosStub) DiscoverMovies(ctx context.Context, params url.Values) (*tmdb.MovieList, error) {
	return &tmdb.MovieList{}, nil
}

func (s *videosStub) SearchMovies(ctx context.Context, query, language string, page int) (*tmdb.MovieList, error) {
	return &tmdb.MovieList{}, nil
}

func (s *videosStub) MovieDetails(ctx context.Context, movieID int, language string) (*tmdb.MovieDetails, error) {
	return &tmdb.MovieDetails{ID: movieID}, nil
}

func (s *videosStub) MovieKeywords(ctx context.Context, movieID int) ([]tmdb.Keyword, error) {
	return nil, nil
}

func (s *videosStub) MovieReviews(ctx context.Context, movieID int, language string) ([]tmdb.Review, error) {
	return nil, nil
}

func (s *videosStub) MovieExternalIDs(ctx context.Context, movieID int) (*tmdb.ExternalIDs, error) {
	return &tmdb.ExternalIDs{}, nil
}

func (s *videosStub) ImageURL(posterPath string) string { return "" }

func TestPickTrailer(t *testing.T) {
	tests := []struct {
		name    string
		videos  []tmdb.Video
		wantKey string
		wantOK  bool
	}{
		{
			name: "official trailer beats teaser",
			videos: []tmdb.Video{
				{Key: "teaser", Site: "YouTube", Type: "Teaser"},
				{Key: "trailer", Site: "YouTube", Type: "Trailer", Official: true},
			},
			wantKey: "trailer",
			wantOK:  true,
		},
		{
			name: "oficial name breaks tie",
			videos: []tmdb.Video{
				{Key: "a", Site: "YouTube", Type: "Trailer"},
				{Key: "b", Site: "YouTube", Type: "Trailer", Name: "Tráiler oficial"},
			},
			wantKey: "b",
			wantOK:  true,
		},
		{
			name: "non-youtube sites skipped",
			videos: []tmdb.Video{
				{Key: "v", Site: "Vimeo", Type: "Trailer"},
			},
			wantOK: false,
		},
		{
			name:   "empty list",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PickTrailer(tt.videos)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got.Key != tt.wantKey {
				t.Errorf("key = %q, want %q", got.Key, tt.wantKey)
			}
		})
	}
}

func TestTrailerFromTMDB(t *testing.T) {
	stub := &videosStub{videos: map[string][]tmdb.Video{
		"en-US": {{Key: "abc123", Site: "YouTube", Type: "Trailer", Official: true, Name: "Official Trailer"}},
	}}

	client := NewClient(NewClientParams{})
	trailer, ok := client.TrailerFromTMDB(context.Background(), stub, 42)
	if !ok {
		t.Fatal("expected trailer from English fallback")
	}
	if trailer.YouTubeID != "abc123" || trailer.Source != "tmdb" {
		t.Errorf("trailer = %+v", trailer)
	}
	if trailer.EmbedURL != "https://www.youtube.com/embed/abc123" {
		t.Errorf("EmbedURL = %q", trailer.EmbedURL)
	}
}

func TestTrailerFromTMDBNoVideos(t *testing.T) {
	client := NewClient(NewClientParams{})
	if _, ok := client.TrailerFromTMDB(context.Background(), &videosStub{}, 42); ok {
		t.Fatal("expected no trailer")
	}
}

func TestTrailerBySearchWithoutKey(t *testing.T) {
	client := NewClient(NewClientParams{})
	trailer := client.TrailerBySearch(context.Background(), "Airbag", 1997)

	if trailer.Source != "search_url" {
		t.Fatalf("Source = %q, want search_url", trailer.Source)
	}
	if trailer.YouTubeID != "" {
		t.Errorf("YouTubeID = %q, want empty", trailer.YouTubeID)
	}
	want := "https://www.youtube.com/results?search_query=Airbag+1997+trailer+oficial"
	if trailer.YouTubeURL != want {
		t.Errorf("YouTubeURL = %q, want %q", trailer.YouTubeURL, want)
	}
}

func TestTrailerBySearchViaAPI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "Airbag 1997 trailer oficial" {
			t.Errorf("q = %q", got)
		}
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("key = %q", got)
		}
		w.Write([]byte(`{"items": [{"id": {"videoId": "xyz789"}}]}`))
	}))
	defer server.Close()

	client := NewClient(NewClientParams{ApiKey: "test-key", BaseURL: server.URL})
	trailer := client.TrailerBySearch(context.Background(), "Airbag", 1997)

	if trailer.Source != "api" || trailer.YouTubeID != "xyz789" {
		t.Fatalf("trailer = %+v", trailer)
	}
}

func TestTrailerBySearchAPIFailureFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(NewClientParams{ApiKey: "test-key", BaseURL: server.URL})
	trailer := client.TrailerBySearch(context.Background(), "Airbag", 1997)

	if trailer.Source != "search_url" {
		t.Fatalf("Source = %q, want search_url fallback", trailer.Source)
	}
}
