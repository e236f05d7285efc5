package recommend

import (
	"context"
	"errors"
	"net/url"

	"github.com/cinematch/backend/pkg/ai"
	"github.com/cinematch/backend/pkg/tmdb"
)

// fakeAI replays scripted chat responses and records the options of
// every call.
type fakeAI struct {
	responses []string
	err       error

	calls   []ai.GenerateOptions
	prompts []string

	streamTokens []string
}

func (f *fakeAI) record(messages []ai.ChatMessage, opts []ai.GenerateOption) ai.GenerateOptions {
	options := ai.GenerateOptions{}
	for _, o := range opts {
		o(&options)
	}
	f.calls = append(f.calls, options)
	if len(messages) > 0 {
		f.prompts = append(f.prompts, messages[len(messages)-1].Message)
	}
	return options
}

func (f *fakeAI) GenerateChat(ctx context.Context, messages []ai.ChatMessage, opts ...ai.GenerateOption) (string, error) {
	f.record(messages, opts)
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", errors.New("fakeAI: no scripted response left")
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

func (f *fakeAI) GenerateChatWithFormat(ctx context.Context, name, description string, messages []ai.ChatMessage, out any, opts ...ai.GenerateOption) error {
	f.record(messages, opts)
	if f.err != nil {
		return f.err
	}
	if len(f.responses) == 0 {
		return errors.New("fakeAI: no scripted response left")
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return ai.UnmarshalFlexible(resp, out)
}

func (f *fakeAI) GenerateChatStream(ctx context.Context, messages []ai.ChatMessage, opts ...ai.GenerateOption) (<-chan ai.StreamEvent, error) {
	f.record(messages, opts)
	if f.err != nil {
		return nil, f.err
	}
	ch := make(chan ai.StreamEvent, len(f.streamTokens))
	for _, t := range f.streamTokens {
		ch <- ai.StreamEvent{Type: "content", Content: t}
	}
	close(ch)
	return ch, nil
}

func (f *fakeAI) ResetMetrics()                {}
func (f *fakeAI) GetMetrics() ai.ModelMetrics  { return ai.ModelMetrics{} }

// fakeTMDB implements tmdb.API with overridable behavior per method.
// Unset methods return empty results.
type fakeTMDB struct {
	genres        map[string][]tmdb.Genre
	keywords      map[string][]tmdb.Keyword
	discoverFn    func(params url.Values) (*tmdb.MovieList, error)
	searchFn      func(query string) (*tmdb.MovieList, error)
	detailsFn     func(movieID int) (*tmdb.MovieDetails, error)
	movieKeywords map[int][]tmdb.Keyword
	reviews       map[int][]tmdb.Review
	reviewsFn     func(movieID int) ([]tmdb.Review, error)
	videos        map[int][]tmdb.Video
	externalIDs   map[int]*tmdb.ExternalIDs

	discoverCalls []url.Values
	searchCalls   []string
}

func (f *fakeTMDB) GenreList(ctx context.Context, language string) ([]tmdb.Genre, error) {
	return f.genres[language], nil
}

func (f *fakeTMDB) SearchKeyword(ctx context.Context, query string) ([]tmdb.Keyword, error) {
	return f.keywords[query], nil
}

func (f *fakeTMDB) DiscoverMovies(ctx context.Context, params url.Values) (*tmdb.MovieList, error) {
	copied := url.Values{}
	for k, v := range params {
		copied[k] = append([]string(nil), v...)
	}
	f.discoverCalls = append(f.discoverCalls, copied)
	if f.discoverFn != nil {
		return f.discoverFn(params)
	}
	return &tmdb.MovieList{}, nil
}

func (f *fakeTMDB) SearchMovies(ctx context.Context, query, language string, page int) (*tmdb.MovieList, error) {
	f.searchCalls = append(f.searchCalls, query)
	if f.searchFn != nil {
		return f.searchFn(query)
	}
	return &tmdb.MovieList{}, nil
}

func (f *fakeTMDB) MovieDetails(ctx context.Context, movieID int, language string) (*tmdb.MovieDetails, error) {
	if f.detailsFn != nil {
		return f.detailsFn(movieID)
	}
	return &tmdb.MovieDetails{ID: movieID, Title: "Untitled"}, nil
}

func (f *fakeTMDB) MovieKeywords(ctx context.Context, movieID int) ([]tmdb.Keyword, error) {
	return f.movieKeywords[movieID], nil
}

func (f *fakeTMDB) MovieReviews(ctx context.Context, movieID int, language string) ([]tmdb.Review, error) {
	if f.reviewsFn != nil {
		return f.reviewsFn(movieID)
	}
	return f.reviews[movieID], nil
}

func (f *fakeTMDB) MovieVideos(ctx context.Context, movieID int, language string) ([]tmdb.Video, error) {
	return f.videos[movieID], nil
}

func (f *fakeTMDB) MovieExternalIDs(ctx context.Context, movieID int) (*tmdb.ExternalIDs, error) {
	if ids, ok := f.externalIDs[movieID]; ok {
		return ids, nil
	}
	return &tmdb.ExternalIDs{}, nil
}

func (f *fakeTMDB) ImageURL(posterPath string) string {
	if posterPath == "" {
		return ""
	}
	return "https://image.tmdb.org/t/p/w500" + posterPath
}

var spanishGenres = map[string][]tmdb.Genre{
	"es-ES": {
		{ID: 35, Name: "Comedia"},
		{ID: 18, Name: "Drama"},
		{ID: 53, Name: "Suspense"},
	},
	"en-US": {
		{ID: 35, Name: "Comedy"},
		{ID: 18, Name: "Drama"},
		{ID: 53, Name: "Thriller"},
	},
}
