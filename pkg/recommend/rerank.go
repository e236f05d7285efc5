package recommend

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cinematch/backend/pkg/ai"
	"github.com/cinematch/backend/pkg/common"
	"github.com/cinematch/backend/pkg/logger"
)

const overviewMaxLen = 300

// rankedItem mirrors the JSON array entries the re-rank prompt demands.
type rankedItem struct {
	ID     int     `json:"id"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

func buildRerankUserPrompt(userQuery string, films []common.EnrichedFilm) string {
	var b strings.Builder
	for _, f := range films {
		overview := truncateRunes(f.Overview, overviewMaxLen)
		fmt.Fprintf(&b,
			"- ID: %d | «%s» (%d) | Géneros: %s | Keywords: %s | Nota: %g/10 | Países: %s\n  Sinopsis: %s\n",
			f.TMDBID,
			f.Title,
			f.ReleaseYear,
			strings.Join(f.Genres, ", "),
			strings.Join(firstN(f.Keywords, 8), ", "),
			f.VoteAverage,
			strings.Join(f.OriginCountries, ", "),
			overview,
		)
	}

	return fmt.Sprintf(
		"PETICIÓN DEL USUARIO:\n%q\n\nPELÍCULAS CANDIDATAS:\n%s\nEvalúa y puntúa cada película. Responde SOLO con JSON.",
		userQuery,
		b.String(),
	)
}

// Rerank scores each candidate against the user request with one LLM
// call and returns the films ordered best-first. When the model output
// cannot be parsed, the films are ranked by their TMDB vote average
// instead of retrying.
func Rerank(ctx context.Context, aiClient ai.Client, userQuery string, films []common.EnrichedFilm) []common.RankedFilm {
	if len(films) == 0 {
		return []common.RankedFilm{}
	}

	messages := []ai.ChatMessage{
		{Role: "user", Message: buildRerankUserPrompt(userQuery, films)},
	}

	response, err := aiClient.GenerateChat(ctx, messages,
		ai.WithSystemPrompts(rerankSystemPrompt),
		ai.WithTemperature(0.3),
		ai.WithTopP(0.9),
		ai.WithMaxTokens(800),
	)

	var items []rankedItem
	if err == nil {
		cleaned := ai.ExtractJSONArray(ai.StripFences(response))
		err = ai.UnmarshalFlexible(cleaned, &items)
	}
	if err != nil {
		logger.Error("Re-ranker produced unusable output, falling back to vote average", "err", err)
		return fallbackRanking(films)
	}

	ranked := make([]common.RankedFilm, 0, len(items))
	for _, item := range items {
		if item.ID == 0 {
			logger.Warn("Skipping malformed ranking item", "item", item)
			continue
		}
		ranked = append(ranked, common.RankedFilm{
			TMDBID: item.ID,
			Score:  item.Score,
			Reason: item.Reason,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

func fallbackRanking(films []common.EnrichedFilm) []common.RankedFilm {
	ranked := make([]common.RankedFilm, 0, len(films))
	for _, f := range films {
		ranked = append(ranked, common.RankedFilm{
			TMDBID: f.TMDBID,
			Score:  f.VoteAverage,
			Reason: "Puntuación de TMDB (fallback)",
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// SelectTopN picks the n best films while skipping entries from the
// same franchise, judged by the case-folded title up to the first
// colon ("Mission: Impossible" counts once).
func SelectTopN(ranked []common.RankedFilm, films []common.EnrichedFilm, n int) []common.EnrichedFilm {
	filmMap := make(map[int]common.EnrichedFilm, len(films))
	for _, f := range films {
		filmMap[f.TMDBID] = f
	}

	selected := make([]common.EnrichedFilm, 0, n)
	seenTitles := map[string]struct{}{}

	for _, r := range ranked {
		if len(selected) >= n {
			break
		}
		film, ok := filmMap[r.TMDBID]
		if !ok {
			continue
		}
		root := strings.ToLower(strings.TrimSpace(strings.SplitN(film.Title, ":", 2)[0]))
		if _, dup := seenTitles[root]; dup {
			continue
		}
		film.RelevanceScore = r.Score
		selected = append(selected, film)
		seenTitles[root] = struct{}{}
	}

	return selected
}
