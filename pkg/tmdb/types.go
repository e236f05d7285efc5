package tmdb

// Genre is a TMDB genre entry as returned by the genre list endpoint.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Keyword is a TMDB keyword entry.
type Keyword struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Movie is the compact movie representation returned by discover and
// search endpoints.
type Movie struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title"`
	OriginalLanguage string  `json:"original_language"`
	Overview         string  `json:"overview"`
	ReleaseDate      string  `json:"release_date"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	Popularity       float64 `json:"popularity"`
	PosterPath       string  `json:"poster_path"`
	GenreIDs         []int   `json:"genre_ids"`
}

// ProductionCountry is a country entry on a movie detail record.
type ProductionCountry struct {
	ISO3166_1 string `json:"iso_3166_1"`
	Name      string `json:"name"`
}

// MovieDetails is the full movie record from the details endpoint.
type MovieDetails struct {
	ID                  int                 `json:"id"`
	Title               string              `json:"title"`
	OriginalTitle       string              `json:"original_title"`
	OriginalLanguage    string              `json:"original_language"`
	Overview            string              `json:"overview"`
	ReleaseDate         string              `json:"release_date"`
	Runtime             int                 `json:"runtime"`
	VoteAverage         float64             `json:"vote_average"`
	VoteCount           int                 `json:"vote_count"`
	Popularity          float64             `json:"popularity"`
	PosterPath          string              `json:"poster_path"`
	Genres              []Genre             `json:"genres"`
	OriginCountry       []string            `json:"origin_country"`
	ProductionCountries []ProductionCountry `json:"production_countries"`
}

// ReviewAuthorDetails carries the optional rating a reviewer attached.
type ReviewAuthorDetails struct {
	Rating float64 `json:"rating"`
}

// Review is a user review from the movie reviews endpoint.
type Review struct {
	Author        string              `json:"author"`
	AuthorDetails ReviewAuthorDetails `json:"author_details"`
	Content       string              `json:"content"`
}

// Video is a trailer/teaser/clip entry from the movie videos endpoint.
type Video struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Official bool   `json:"official"`
}

// ExternalIDs maps a TMDB movie to other databases.
type ExternalIDs struct {
	IMDbID string `json:"imdb_id"`
}

// MovieList is the paged envelope for discover and search responses.
type MovieList struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

type genreListResponse struct {
	Genres []Genre `json:"genres"`
}

type keywordSearchResponse struct {
	Results []Keyword `json:"results"`
}

type movieKeywordsResponse struct {
	Keywords []Keyword `json:"keywords"`
}

type reviewListResponse struct {
	Results []Review `json:"results"`
}

type videoListResponse struct {
	Results []Video `json:"results"`
}
