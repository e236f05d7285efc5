package common

// ExtractedEntities is the structured interpretation of a free-text movie
// request. Names come straight from the language model; the ID slices hold
// the TMDB identifiers they resolved to. Unresolvable names are simply
// absent from the ID slices.
type ExtractedEntities struct {
	Genres     []string `json:"genres"`
	GenreIDs   []int    `json:"genre_ids"`
	Keywords   []string `json:"keywords"`
	KeywordIDs []int    `json:"keyword_ids"`
	Region     string   `json:"region,omitempty"`
	Language   string   `json:"language,omitempty"`
	Mood       string   `json:"mood,omitempty"`
	Era        string   `json:"era,omitempty"`
	Exclude    []string `json:"exclude"`
}

// MergeEntities folds the entities of the previous conversation turn into
// the freshly extracted ones. New scalar values win; empty fields are
// filled from the previous turn. Keyword and exclude lists are unioned so
// refinements ("but nothing too violent") accumulate across turns.
func MergeEntities(prev, next ExtractedEntities) ExtractedEntities {
	merged := ExtractedEntities{
		Genres:     next.Genres,
		GenreIDs:   next.GenreIDs,
		Keywords:   next.Keywords,
		KeywordIDs: next.KeywordIDs,
		Region:     next.Region,
		Language:   next.Language,
		Mood:       next.Mood,
		Era:        next.Era,
	}

	if len(merged.Genres) == 0 {
		merged.Genres = prev.Genres
	}
	if len(merged.GenreIDs) == 0 {
		merged.GenreIDs = prev.GenreIDs
	}
	if len(next.Keywords) > 0 {
		merged.Keywords = unionStrings(prev.Keywords, next.Keywords)
		merged.KeywordIDs = unionInts(prev.KeywordIDs, next.KeywordIDs)
	} else {
		merged.Keywords = prev.Keywords
		merged.KeywordIDs = prev.KeywordIDs
	}
	if merged.Region == "" {
		merged.Region = prev.Region
	}
	if merged.Language == "" {
		merged.Language = prev.Language
	}
	if merged.Mood == "" {
		merged.Mood = prev.Mood
	}
	if merged.Era == "" {
		merged.Era = prev.Era
	}
	merged.Exclude = unionStrings(prev.Exclude, next.Exclude)

	return merged
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range a {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	for _, s := range b {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

func unionInts(a, b []int) []int {
	seen := make(map[int]struct{}, len(a)+len(b))
	out := make([]int, 0, len(a)+len(b))
	for _, n := range a {
		if _, ok := seen[n]; !ok {
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	for _, n := range b {
		if _, ok := seen[n]; !ok {
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	return out
}

// EnrichedFilm is a fully-enriched movie record ready for re-ranking.
// The core fields come from the metadata provider; the extended fields
// (trailer, cross-provider ratings, trivia) are best-effort and stay at
// their zero value when a source is unavailable.
type EnrichedFilm struct {
	TMDBID          int      `json:"tmdb_id"`
	Title           string   `json:"title"`
	OriginalTitle   string   `json:"original_title"`
	Overview        string   `json:"overview"`
	Genres          []string `json:"genres"`
	Keywords        []string `json:"keywords"`
	ReleaseYear     int      `json:"release_year"`
	VoteAverage     float64  `json:"vote_average"`
	VoteCount       int      `json:"vote_count"`
	Runtime         int      `json:"runtime"`
	OriginCountries []string `json:"origin_countries"`
	TopReview       string   `json:"top_review,omitempty"`
	PosterURL       string   `json:"poster_url,omitempty"`
	RelevanceScore  float64  `json:"relevance_score"`

	TrailerURL       string   `json:"trailer_url,omitempty"`
	TrailerEmbedURL  string   `json:"trailer_embed_url,omitempty"`
	TrailerThumbnail string   `json:"trailer_thumbnail,omitempty"`
	IMDbRating       float64  `json:"imdb_rating,omitempty"`
	RottenTomatoes   int      `json:"rotten_tomatoes,omitempty"`
	Metacritic       int      `json:"metacritic,omitempty"`
	Awards           string   `json:"awards,omitempty"`
	Director         string   `json:"director,omitempty"`
	Actors           string   `json:"actors,omitempty"`
	Trivia           []string `json:"trivia,omitempty"`
	WikipediaURL     string   `json:"wikipedia_url,omitempty"`
}

// RankedFilm is a film after the re-ranker has scored it.
type RankedFilm struct {
	TMDBID int     `json:"tmdb_id"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// RecommendFilters are optional hard constraints from the API caller.
// Zero values mean "not set".
type RecommendFilters struct {
	MinYear   int     `json:"min_year,omitempty"`
	MinRating float64 `json:"min_rating,omitempty"`
}

// RecommendationItem is a single recommendation in the API response.
type RecommendationItem struct {
	TMDBID    int      `json:"tmdb_id"`
	Title     string   `json:"title"`
	Year      int      `json:"year"`
	Score     float64  `json:"score"`
	PosterURL string   `json:"poster_url,omitempty"`
	Reason    string   `json:"reason"`
	Genres    []string `json:"genres"`
	Keywords  []string `json:"keywords"`

	TrailerURL       string   `json:"trailer_url,omitempty"`
	TrailerEmbedURL  string   `json:"trailer_embed_url,omitempty"`
	TrailerThumbnail string   `json:"trailer_thumbnail,omitempty"`
	IMDbRating       float64  `json:"imdb_rating,omitempty"`
	RottenTomatoes   int      `json:"rotten_tomatoes,omitempty"`
	Metacritic       int      `json:"metacritic,omitempty"`
	Awards           string   `json:"awards,omitempty"`
	Director         string   `json:"director,omitempty"`
	Actors           string   `json:"actors,omitempty"`
	Trivia           []string `json:"trivia,omitempty"`
	WikipediaURL     string   `json:"wikipedia_url,omitempty"`
}

// RecommendResponse is the full response of a recommendation run.
type RecommendResponse struct {
	SessionID        string               `json:"session_id"`
	Narrative        string               `json:"narrative"`
	Recommendations  []RecommendationItem `json:"recommendations"`
	ProcessingTimeMs int64                `json:"processing_time_ms"`
}

// ConversationTurn is one message in a conversation.
// Role is "user" or "assistant".
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SessionContext holds the multi-turn conversation state for one session.
type SessionContext struct {
	SessionID           string               `json:"session_id"`
	Turns               []ConversationTurn   `json:"turns"`
	LastEntities        *ExtractedEntities   `json:"last_entities,omitempty"`
	LastRecommendations []RecommendationItem `json:"last_recommendations"`
}
