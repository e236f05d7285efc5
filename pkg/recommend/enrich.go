package recommend

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/cinematch/backend/internal/util"
	"github.com/cinematch/backend/pkg/common"
	"github.com/cinematch/backend/pkg/logger"
	"github.com/cinematch/backend/pkg/omdb"
	"github.com/cinematch/backend/pkg/tmdb"
	"github.com/cinematch/backend/pkg/wikipedia"
	"github.com/cinematch/backend/pkg/youtube"

	"golang.org/x/sync/errgroup"
)

const (
	defaultMaxEnrich = 10
	reviewMaxLen     = 400
)

// Enricher aggregates per-movie data from TMDB plus the best-effort
// secondary sources. Everything beyond the core TMDB details degrades
// to zero values on failure.
type Enricher struct {
	tmdb tmdb.API
	omdb *omdb.Client
	wiki *wikipedia.Client
}

// NewEnricher creates an Enricher. The OMDb and Wikipedia clients may
// be nil-configured but must not be nil pointers.
func NewEnricher(tmdbClient tmdb.API, omdbClient *omdb.Client, wikiClient *wikipedia.Client) *Enricher {
	return &Enricher{tmdb: tmdbClient, omdb: omdbClient, wiki: wikiClient}
}

// EnrichOne builds a full film record from a discover/search result.
// Details, keywords and (when fetchReviews is set) reviews are fetched
// concurrently; a failed details fetch falls back to the basic record
// so the movie is never lost at this stage.
func (e *Enricher) EnrichOne(ctx context.Context, basic tmdb.Movie, language string, fetchReviews bool) common.EnrichedFilm {
	var (
		detailsRes util.Result[*tmdb.MovieDetails]
		kwRes      util.Result[[]tmdb.Keyword]
		reviewsRes util.Result[[]tmdb.Review]
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		detailsRes = util.Wrap(e.tmdb.MovieDetails(gctx, basic.ID, language))
		return nil
	})
	g.Go(func() error {
		kwRes = util.Wrap(e.tmdb.MovieKeywords(gctx, basic.ID))
		return nil
	})
	if fetchReviews {
		g.Go(func() error {
			reviewsRes = util.Wrap(e.tmdb.MovieReviews(gctx, basic.ID, language))
			return nil
		})
	}
	_ = g.Wait()

	details := detailsRes.OrZero()
	if details == nil {
		logger.Warn("Details fetch failed, using basic record", "movie_id", basic.ID, "err", detailsRes.Err())
		details = detailsFromBasic(basic)
	}

	keywords := []string{}
	for _, k := range kwRes.OrZero() {
		keywords = append(keywords, k.Name)
	}

	genres := []string{}
	for _, gn := range details.Genres {
		genres = append(genres, gn.Name)
	}

	posterPath := details.PosterPath
	if posterPath == "" {
		posterPath = basic.PosterPath
	}

	releaseDate := details.ReleaseDate
	if releaseDate == "" {
		releaseDate = basic.ReleaseDate
	}

	film := common.EnrichedFilm{
		TMDBID:          basic.ID,
		Title:           fallbackStr(details.Title, basic.Title),
		OriginalTitle:   fallbackStr(details.OriginalTitle, basic.OriginalTitle),
		Overview:        fallbackStr(details.Overview, basic.Overview),
		Genres:          genres,
		Keywords:        keywords,
		ReleaseYear:     extractYear(releaseDate),
		VoteAverage:     fallbackFloat(details.VoteAverage, basic.VoteAverage),
		VoteCount:       fallbackInt(details.VoteCount, basic.VoteCount),
		Runtime:         details.Runtime,
		OriginCountries: originCountries(details),
		TopReview:       bestReview(reviewsRes.OrZero()),
		PosterURL:       e.tmdb.ImageURL(posterPath),
	}

	e.enrichExtended(ctx, &film, language)
	return film
}

// enrichExtended fills the secondary-source fields. Every fetch is
// best effort; failures leave zero values.
func (e *Enricher) enrichExtended(ctx context.Context, film *common.EnrichedFilm, language string) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		videos := util.Wrap(e.tmdb.MovieVideos(gctx, film.TMDBID, language)).OrZero()
		if !youtube.HasTrailer(videos) {
			more := util.Wrap(e.tmdb.MovieVideos(gctx, film.TMDBID, "en-US")).OrZero()
			videos = append(videos, more...)
		}
		if v, ok := youtube.PickTrailer(videos); ok {
			film.TrailerURL = "https://www.youtube.com/watch?v=" + v.Key
			film.TrailerEmbedURL = "https://www.youtube.com/embed/" + v.Key
			film.TrailerThumbnail = "https://img.youtube.com/vi/" + v.Key + "/hqdefault.jpg"
		}
		return nil
	})

	g.Go(func() error {
		if e.omdb == nil || !e.omdb.Enabled() {
			return nil
		}
		ids := util.Wrap(e.tmdb.MovieExternalIDs(gctx, film.TMDBID)).OrZero()

		var ratings omdb.Ratings
		if ids != nil && ids.IMDbID != "" {
			ratings = util.Wrap(e.omdb.RatingsByIMDbID(gctx, ids.IMDbID)).OrZero()
		}
		if ratings.IsZero() {
			title := film.OriginalTitle
			if title == "" {
				title = film.Title
			}
			ratings = util.Wrap(e.omdb.RatingsByTitle(gctx, title, film.ReleaseYear)).OrZero()
		}

		film.IMDbRating = ratings.IMDbRating
		film.RottenTomatoes = parsePercent(ratings.RottenTomatoes)
		film.Metacritic = parseFraction(ratings.Metacritic)
		film.Awards = ratings.Awards
		film.Director = ratings.Director
		film.Actors = ratings.Actors
		return nil
	})

	g.Go(func() error {
		if e.wiki == nil {
			return nil
		}
		summary, err := e.wiki.MovieSummary(gctx, film.Title, film.ReleaseYear)
		if err != nil {
			return nil
		}
		film.WikipediaURL = summary.URL
		film.Trivia = wikipedia.ExtractFacts(summary.Extract)
		return nil
	})

	_ = g.Wait()
}

// EnrichBatch enriches up to maxEnrich movies in parallel, dropping
// the ones that failed entirely.
func (e *Enricher) EnrichBatch(ctx context.Context, movies []tmdb.Movie, language string, maxEnrich int, fetchReviews bool) []common.EnrichedFilm {
	if maxEnrich <= 0 {
		maxEnrich = defaultMaxEnrich
	}
	if len(movies) > maxEnrich {
		movies = movies[:maxEnrich]
	}

	results := make([]*common.EnrichedFilm, len(movies))

	g, gctx := errgroup.WithContext(ctx)
	for i, m := range movies {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			film := e.EnrichOne(gctx, m, language, fetchReviews)
			if film.Title == "" {
				logger.Warn("Enrichment produced empty record, dropping", "movie_id", m.ID)
				return nil
			}
			results[i] = &film
			return nil
		})
	}
	_ = g.Wait()

	enriched := make([]common.EnrichedFilm, 0, len(movies))
	for _, f := range results {
		if f != nil {
			enriched = append(enriched, *f)
		}
	}

	logger.Info("Enriched movies", "enriched", len(enriched), "requested", len(movies))
	return enriched
}

func detailsFromBasic(basic tmdb.Movie) *tmdb.MovieDetails {
	return &tmdb.MovieDetails{
		ID:            basic.ID,
		Title:         basic.Title,
		OriginalTitle: basic.OriginalTitle,
		Overview:      basic.Overview,
		ReleaseDate:   basic.ReleaseDate,
		VoteAverage:   basic.VoteAverage,
		VoteCount:     basic.VoteCount,
		PosterPath:    basic.PosterPath,
	}
}

func originCountries(details *tmdb.MovieDetails) []string {
	if len(details.OriginCountry) > 0 {
		return details.OriginCountry
	}
	countries := []string{}
	for _, c := range details.ProductionCountries {
		if c.ISO3166_1 != "" {
			countries = append(countries, c.ISO3166_1)
		}
	}
	return countries
}

// bestReview picks the highest author-rated review and truncates it at
// a word boundary.
func bestReview(reviews []tmdb.Review) string {
	if len(reviews) == 0 {
		return ""
	}

	rated := make([]tmdb.Review, 0, len(reviews))
	for _, r := range reviews {
		if r.AuthorDetails.Rating > 0 {
			rated = append(rated, r)
		}
	}
	best := reviews[0]
	if len(rated) > 0 {
		sort.SliceStable(rated, func(i, j int) bool {
			return rated[i].AuthorDetails.Rating > rated[j].AuthorDetails.Rating
		})
		best = rated[0]
	}

	content := best.Content
	if len(content) > reviewMaxLen {
		cut := content[:reviewMaxLen]
		if idx := strings.LastIndex(cut, " "); idx > 0 {
			cut = cut[:idx]
		}
		content = cut + "…"
	}
	return content
}

func extractYear(date string) int {
	if len(date) >= 4 {
		if y, err := strconv.Atoi(date[:4]); err == nil {
			return y
		}
	}
	return 0
}

// parsePercent turns "71%" into 71.
func parsePercent(s string) int {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// parseFraction turns "82/100" into 82.
func parseFraction(s string) int {
	num, _, _ := strings.Cut(strings.TrimSpace(s), "/")
	if num == "" {
		return 0
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return 0
	}
	return n
}

func fallbackStr(primary, fallback string) string {
	if primary != "" {
		return primary
	}
	return fallback
}

func fallbackFloat(primary, fallback float64) float64 {
	if primary != 0 {
		return primary
	}
	return fallback
}

func fallbackInt(primary, fallback int) int {
	if primary != 0 {
		return primary
	}
	return fallback
}
