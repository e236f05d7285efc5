package recommend

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cinematch/backend/pkg/ai"
	"github.com/cinematch/backend/pkg/common"
	"github.com/cinematch/backend/pkg/logger"
	"github.com/cinematch/backend/pkg/omdb"
	"github.com/cinematch/backend/pkg/tmdb"
	"github.com/cinematch/backend/pkg/wikipedia"
)

// Profiler is the taste-profile hook the pipeline consults between
// extraction and querying. A nil Profiler disables personalization.
type Profiler interface {
	// EnrichEntities fills gaps in the entities from the session's
	// accumulated taste profile.
	EnrichEntities(sessionID string, entities common.ExtractedEntities) common.ExtractedEntities

	// PersonalizeRanking nudges scores using the profile (seen-movie
	// penalties, favorite-genre boosts).
	PersonalizeRanking(sessionID string, ranked []common.RankedFilm, films []common.EnrichedFilm) []common.RankedFilm

	// NarrativeContext renders the profile block for the narrative
	// system prompt. Empty means no usable profile yet.
	NarrativeContext(sessionID string) string
}

// Request carries one recommendation query through the pipeline.
type Request struct {
	Query            string
	SessionID        string
	MaxResults       int
	Language         string
	Filters          common.RecommendFilters
	PreviousEntities *common.ExtractedEntities
}

// Pipeline wires the agents together: sentiment → extraction → profile
// → query → enrichment → re-rank → narrative.
type Pipeline struct {
	ai        ai.Client
	tmdb      tmdb.API
	extractor *Extractor
	enricher  *Enricher
	profiler  Profiler
}

// NewPipeline assembles a Pipeline from its collaborators. profiler
// may be nil.
func NewPipeline(
	aiClient ai.Client,
	tmdbClient tmdb.API,
	omdbClient *omdb.Client,
	wikiClient *wikipedia.Client,
	profiler Profiler,
) *Pipeline {
	return &Pipeline{
		ai:        aiClient,
		tmdb:      tmdbClient,
		extractor: NewExtractor(aiClient, tmdbClient),
		enricher:  NewEnricher(tmdbClient, omdbClient, wikiClient),
		profiler:  profiler,
	}
}

func tmdbLanguage(language string) string {
	if len(language) == 2 {
		return language + "-" + strings.ToUpper(language)
	}
	return language
}

// prepare runs the shared front half of the pipeline: sentiment,
// extraction, context merge, profile enrichment and the TMDB query.
func (p *Pipeline) prepare(ctx context.Context, req Request) (common.ExtractedEntities, []tmdb.Movie, error) {
	sentiment := AnalyzeSentiment(req.Query)
	logger.Info("Phase 0: sentiment", "label", sentiment.SentimentLabel, "intents", sentiment.Intents)

	logger.Info("Phase 1: extraction", "query", truncateRunes(req.Query, 80))
	entities, err := p.extractor.Extract(ctx, req.Query)
	if err != nil {
		return common.ExtractedEntities{}, nil, err
	}

	if req.PreviousEntities != nil {
		entities = common.MergeEntities(*req.PreviousEntities, entities)
	}

	if p.profiler != nil {
		entities = p.profiler.EnrichEntities(req.SessionID, entities)
	}

	logger.Info("Phase 2: TMDB query", "genres", len(entities.GenreIDs), "keywords", len(entities.KeywordIDs))
	movies, err := QueryMovies(ctx, p.tmdb, entities, tmdbLanguage(req.Language), req.Filters)
	if err != nil {
		return entities, nil, err
	}
	logger.Info("Phase 2 complete", "raw_movies", len(movies))

	return entities, movies, nil
}

// rank runs enrichment, re-ranking, personalization and selection.
func (p *Pipeline) rank(ctx context.Context, req Request, movies []tmdb.Movie) ([]common.EnrichedFilm, []common.RankedFilm, []common.EnrichedFilm) {
	lang := tmdbLanguage(req.Language)

	logger.Info("Phase 3: enrichment", "movies", min(len(movies), defaultMaxEnrich))
	enriched := p.enricher.EnrichBatch(ctx, movies, lang, defaultMaxEnrich, true)

	logger.Info("Phase 4: re-ranking", "films", len(enriched))
	ranked := Rerank(ctx, p.ai, req.Query, enriched)

	if p.profiler != nil {
		ranked = p.profiler.PersonalizeRanking(req.SessionID, ranked, enriched)
	}

	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = 3
	}
	selected := SelectTopN(ranked, enriched, maxResults)
	logger.Info("Phase 5: selection", "selected", len(selected))

	return enriched, ranked, selected
}

func (p *Pipeline) profileContext(sessionID string) string {
	if p.profiler == nil {
		return ""
	}
	return p.profiler.NarrativeContext(sessionID)
}

// Run executes the full pipeline and returns the response plus the
// merged entities and selected films, so the caller can persist the
// conversation state.
func (p *Pipeline) Run(ctx context.Context, req Request) (common.RecommendResponse, common.ExtractedEntities, []common.EnrichedFilm, error) {
	start := time.Now()

	entities, movies, err := p.prepare(ctx, req)
	if err != nil {
		return common.RecommendResponse{}, entities, nil, err
	}

	if len(movies) == 0 {
		return common.RecommendResponse{
			SessionID:        req.SessionID,
			Narrative:        NoResultsNarrative,
			Recommendations:  []common.RecommendationItem{},
			ProcessingTimeMs: time.Since(start).Milliseconds(),
		}, entities, []common.EnrichedFilm{}, nil
	}

	_, ranked, selected := p.rank(ctx, req, movies)

	logger.Info("Phase 6: narrative")
	narrative, err := GenerateNarrative(ctx, p.ai, req.Query, selected, ranked, p.profileContext(req.SessionID))
	if err != nil {
		return common.RecommendResponse{}, entities, selected, fmt.Errorf("narrative generation: %w", err)
	}

	narrative = FixTextQuality(ctx, p.ai, CleanNarrative(narrative))

	response := common.RecommendResponse{
		SessionID:        req.SessionID,
		Narrative:        narrative,
		Recommendations:  buildRecommendationItems(selected, ranked),
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}

	logger.Info("Pipeline complete", "elapsed_ms", response.ProcessingTimeMs)
	return response, entities, selected, nil
}

func buildRecommendationItems(selected []common.EnrichedFilm, ranked []common.RankedFilm) []common.RecommendationItem {
	rankMap := make(map[int]common.RankedFilm, len(ranked))
	for _, r := range ranked {
		rankMap[r.TMDBID] = r
	}

	items := make([]common.RecommendationItem, 0, len(selected))
	for _, f := range selected {
		items = append(items, common.RecommendationItem{
			TMDBID:    f.TMDBID,
			Title:     f.Title,
			Year:      f.ReleaseYear,
			Score:     math.Round(f.RelevanceScore*10) / 10,
			PosterURL: f.PosterURL,
			Reason:    rankMap[f.TMDBID].Reason,
			Genres:    f.Genres,
			Keywords:  firstN(f.Keywords, 8),

			TrailerURL:       f.TrailerURL,
			TrailerEmbedURL:  f.TrailerEmbedURL,
			TrailerThumbnail: f.TrailerThumbnail,
			IMDbRating:       f.IMDbRating,
			RottenTomatoes:   f.RottenTomatoes,
			Metacritic:       f.Metacritic,
			Awards:           f.Awards,
			Director:         f.Director,
			Actors:           f.Actors,
			Trivia:           f.Trivia,
			WikipediaURL:     f.WikipediaURL,
		})
	}
	return items
}

// truncateRunes cuts s to at most n runes. Byte slicing would split
// multibyte characters, which Spanish text hits constantly.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
