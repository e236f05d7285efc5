package recommend

import (
	"context"
	"fmt"
	"strings"

	"github.com/cinematch/backend/pkg/ai"
	"github.com/cinematch/backend/pkg/common"
)

func narrativeSystemPrompt(profileContext string) string {
	if profileContext == "" {
		profileContext = defaultProfileContext
	}
	return strings.Replace(narrativeSystemTemplate, "{profile_context}", profileContext, 1)
}

func buildNarrativeUserPrompt(userQuery string, films []common.EnrichedFilm, ranked []common.RankedFilm) string {
	rankMap := make(map[int]common.RankedFilm, len(ranked))
	for _, r := range ranked {
		rankMap[r.TMDBID] = r
	}

	var blocks strings.Builder
	for i, f := range films {
		reason := rankMap[f.TMDBID].Reason
		fmt.Fprintf(&blocks,
			"PELÍCULA %d:\n"+
				"  Título: %s (%d)\n"+
				"  Título original: %s\n"+
				"  Géneros: %s\n"+
				"  Keywords: %s\n"+
				"  Sinopsis: %s\n"+
				"  Nota TMDB: %g/10 (%d votos)\n"+
				"  Duración: %d min\n"+
				"  Países: %s\n"+
				"  Razón de selección: %s\n",
			i+1,
			f.Title, f.ReleaseYear,
			f.OriginalTitle,
			strings.Join(f.Genres, ", "),
			strings.Join(firstN(f.Keywords, 6), ", "),
			f.Overview,
			f.VoteAverage, f.VoteCount,
			f.Runtime,
			strings.Join(f.OriginCountries, ", "),
			reason,
		)
		if f.TopReview != "" {
			fmt.Fprintf(&blocks, "  Extracto de reseña: %s\n", f.TopReview)
		}
		blocks.WriteString("\n")
	}

	return fmt.Sprintf(
		"El usuario pidió: %q\n\nHas seleccionado estas películas:\n%s\nGenera una respuesta conversacional presentando estas recomendaciones.",
		userQuery,
		blocks.String(),
	)
}

func narrativeMessages(userQuery string, films []common.EnrichedFilm, ranked []common.RankedFilm) []ai.ChatMessage {
	return []ai.ChatMessage{
		{Role: "user", Message: buildNarrativeUserPrompt(userQuery, films, ranked)},
	}
}

func narrativeOptions(profileContext string) []ai.GenerateOption {
	return []ai.GenerateOption{
		ai.WithSystemPrompts(narrativeSystemPrompt(profileContext)),
		ai.WithTemperature(0.3),
		ai.WithMaxTokens(1500),
		ai.WithPresencePenalty(0.4),
		ai.WithFrequencyPenalty(0.3),
	}
}

// GenerateNarrative produces the conversational reply presenting the
// selected films. Reasoning-model think blocks are stripped from the
// result.
func GenerateNarrative(
	ctx context.Context,
	aiClient ai.Client,
	userQuery string,
	films []common.EnrichedFilm,
	ranked []common.RankedFilm,
	profileContext string,
) (string, error) {
	response, err := aiClient.GenerateChat(ctx,
		narrativeMessages(userQuery, films, ranked),
		narrativeOptions(profileContext)...,
	)
	if err != nil {
		return "", err
	}
	return ai.StripThinking(response), nil
}

// StreamNarrative streams the reply token by token through the
// think-block filter, so reasoning never reaches the caller. The
// returned channel closes when the model finishes or ctx is canceled.
func StreamNarrative(
	ctx context.Context,
	aiClient ai.Client,
	userQuery string,
	films []common.EnrichedFilm,
	ranked []common.RankedFilm,
	profileContext string,
) (<-chan string, error) {
	events, err := aiClient.GenerateChatStream(ctx,
		narrativeMessages(userQuery, films, ranked),
		narrativeOptions(profileContext)...,
	)
	if err != nil {
		return nil, err
	}

	tokens := make(chan string, 10)
	go func() {
		defer close(tokens)

		filter := &ai.ThinkFilter{}
		emit := func(chunk string) error {
			select {
			case tokens <- chunk:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		for event := range events {
			if event.Type != "content" {
				continue
			}
			if err := filter.Consume(event.Content, emit); err != nil {
				return
			}
		}
		_ = filter.Flush(emit)
	}()

	return tokens, nil
}
