package recommend

import (
	"context"
	"strings"

	"github.com/cinematch/backend/internal/util"
	"github.com/cinematch/backend/pkg/ai"
	"github.com/cinematch/backend/pkg/common"
	"github.com/cinematch/backend/pkg/logger"
	"github.com/cinematch/backend/pkg/tmdb"
)

const (
	extractMaxAttempts = 3
	maxKeywordLookups  = 5
)

// genreNameMap translates common Spanish genre names to the English
// names TMDB uses internally, for when the localized genre list lookup
// misses.
var genreNameMap = map[string][]string{
	"acción":          {"Action"},
	"aventura":        {"Adventure"},
	"animación":       {"Animation"},
	"comedia":         {"Comedy"},
	"crimen":          {"Crime"},
	"documental":      {"Documentary"},
	"drama":           {"Drama"},
	"familia":         {"Family"},
	"fantasía":        {"Fantasy"},
	"historia":        {"History"},
	"terror":          {"Horror"},
	"música":          {"Music"},
	"misterio":        {"Mystery"},
	"romance":         {"Romance"},
	"ciencia ficción": {"Science Fiction"},
	"sci-fi":          {"Science Fiction"},
	"película de tv":  {"TV Movie"},
	"thriller":        {"Thriller"},
	"suspense":        {"Thriller"},
	"bélica":          {"War"},
	"guerra":          {"War"},
	"western":         {"Western"},
}

// rawEntities mirrors the JSON schema the extraction prompt demands.
type rawEntities struct {
	Genres   []string `json:"genres"`
	Keywords []string `json:"keywords"`
	Region   string   `json:"region"`
	Language string   `json:"language"`
	Mood     string   `json:"mood"`
	Era      string   `json:"era"`
	Exclude  []string `json:"exclude"`
}

// Extractor turns free-text movie requests into structured entities
// using a language model, then resolves genre and keyword names to
// TMDB identifiers.
type Extractor struct {
	ai   ai.Client
	tmdb tmdb.API
}

// NewExtractor creates an Extractor backed by the given model client
// and TMDB client.
func NewExtractor(aiClient ai.Client, tmdbClient tmdb.API) *Extractor {
	return &Extractor{ai: aiClient, tmdb: tmdbClient}
}

// Extract sends the user query to the model and returns structured
// entities. Invalid JSON is retried up to three attempts with the
// temperature dropped to 0.0; after that it fails closed with empty
// entities so the pipeline can continue.
func (e *Extractor) Extract(ctx context.Context, userQuery string) (common.ExtractedEntities, error) {
	messages := []ai.ChatMessage{
		{Role: "user", Message: userQuery},
	}

	attempt := 0
	raw, err := util.RetryWithContext(ctx, extractMaxAttempts, func(ctx context.Context) (rawEntities, error) {
		temperature := 0.1
		if attempt > 0 {
			temperature = 0.0
			logger.Warn("Extractor returned invalid JSON, retrying", "attempt", attempt+1)
		}
		attempt++

		response, err := e.ai.GenerateChat(ctx, messages,
			ai.WithSystemPrompts(extractSystemPrompt),
			ai.WithTemperature(temperature),
			ai.WithTopP(0.9),
			ai.WithMaxTokens(512),
		)
		if err != nil {
			return rawEntities{}, err
		}

		cleaned := ai.ExtractJSONObject(ai.StripFences(response))

		var parsed rawEntities
		if err := ai.UnmarshalFlexible(cleaned, &parsed); err != nil {
			return rawEntities{}, err
		}
		return parsed, nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return common.ExtractedEntities{}, ctx.Err()
		}
		logger.Error("Extractor failed to produce valid JSON, continuing with empty entities", "err", err)
		return emptyEntities(), nil
	}

	entities := common.ExtractedEntities{
		Genres:   emptySlice(raw.Genres),
		Keywords: emptySlice(raw.Keywords),
		Region:   raw.Region,
		Language: raw.Language,
		Mood:     raw.Mood,
		Era:      raw.Era,
		Exclude:  emptySlice(raw.Exclude),
	}

	entities.GenreIDs = e.resolveGenreIDs(ctx, entities.Genres)
	entities.KeywordIDs = e.resolveKeywordIDs(ctx, entities.Keywords)

	logger.Info("Extracted entities",
		"genre_ids", entities.GenreIDs,
		"keyword_ids", entities.KeywordIDs,
		"region", entities.Region,
		"mood", entities.Mood,
		"era", entities.Era,
	)
	return entities, nil
}

// resolveGenreIDs maps genre names (Spanish or English) to TMDB genre
// IDs via the localized genre catalogs. Unresolvable names are dropped.
func (e *Extractor) resolveGenreIDs(ctx context.Context, genreNames []string) []int {
	if len(genreNames) == 0 {
		return []int{}
	}

	inv := map[string]int{}
	for _, lang := range []string{"es-ES", "en-US"} {
		genres, err := e.tmdb.GenreList(ctx, lang)
		if err != nil {
			logger.Warn("Genre list fetch failed", "language", lang, "err", err)
			continue
		}
		for _, g := range genres {
			inv[strings.ToLower(g.Name)] = g.ID
		}
	}

	seen := map[int]struct{}{}
	ids := make([]int, 0, len(genreNames))
	add := func(id int) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	for _, name := range genreNames {
		low := strings.ToLower(strings.TrimSpace(name))
		if id, ok := inv[low]; ok {
			add(id)
			continue
		}
		for _, enName := range genreNameMap[low] {
			if id, ok := inv[strings.ToLower(enName)]; ok {
				add(id)
				break
			}
		}
	}
	return ids
}

// resolveKeywordIDs resolves up to five keywords through TMDB keyword
// search, taking the first hit as the closest match.
func (e *Extractor) resolveKeywordIDs(ctx context.Context, keywords []string) []int {
	ids := []int{}
	for i, kw := range keywords {
		if i >= maxKeywordLookups {
			break
		}
		results, err := e.tmdb.SearchKeyword(ctx, kw)
		if err != nil {
			logger.Warn("Keyword search failed", "keyword", kw, "err", err)
			continue
		}
		if len(results) > 0 {
			ids = append(ids, results[0].ID)
		}
	}
	return ids
}

func emptyEntities() common.ExtractedEntities {
	return common.ExtractedEntities{
		Genres:     []string{},
		GenreIDs:   []int{},
		Keywords:   []string{},
		KeywordIDs: []int{},
		Exclude:    []string{},
	}
}

func emptySlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
