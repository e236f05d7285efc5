package recommend

import (
	"context"

	"github.com/cinematch/backend/pkg/common"
	"github.com/cinematch/backend/pkg/logger"
)

// Event types emitted by RunStream, in order: a status event per
// phase, one recommendations batch, narrative token events, then done
// (or error at any point).
const (
	EventStatus          = "status"
	EventRecommendations = "recommendations"
	EventToken           = "token"
	EventDone            = "done"
	EventError           = "error"
)

// Pipeline phases reported through status events.
const (
	PhaseExtracting = "extracting"
	PhaseSearching  = "searching"
	PhaseEnriching  = "enriching"
	PhaseRanking    = "ranking"
	PhaseNarrating  = "narrating"
)

// StreamResult is attached to the done event so the caller can persist
// session state and update the taste profile after streaming ends.
type StreamResult struct {
	SessionID string
	Narrative string
	Entities  common.ExtractedEntities
	Selected  []common.EnrichedFilm
	Items     []common.RecommendationItem
}

// Event is one server-sent unit of pipeline progress.
type Event struct {
	Type            string
	Phase           string
	Token           string
	Recommendations []common.RecommendationItem
	Result          *StreamResult
	Err             error
}

// Canned token for streaming zero-result runs.
const noResultsStreamToken = "No encontré películas. Intenta con otra descripción."

// RunStream executes the pipeline and streams progress over the
// returned channel. The channel is closed after the done or error
// event; cancelling ctx stops token production.
func (p *Pipeline) RunStream(ctx context.Context, req Request) <-chan Event {
	events := make(chan Event, 10)

	go func() {
		defer close(events)

		send := func(e Event) bool {
			select {
			case events <- e:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !send(Event{Type: EventStatus, Phase: PhaseExtracting}) {
			return
		}

		entities, err := p.extractor.Extract(ctx, req.Query)
		if err != nil {
			send(Event{Type: EventError, Err: err})
			return
		}
		if req.PreviousEntities != nil {
			entities = common.MergeEntities(*req.PreviousEntities, entities)
		}
		if p.profiler != nil {
			entities = p.profiler.EnrichEntities(req.SessionID, entities)
		}

		if !send(Event{Type: EventStatus, Phase: PhaseSearching}) {
			return
		}
		movies, err := QueryMovies(ctx, p.tmdb, entities, tmdbLanguage(req.Language), req.Filters)
		if err != nil {
			send(Event{Type: EventError, Err: err})
			return
		}

		if len(movies) == 0 {
			if !send(Event{Type: EventToken, Token: noResultsStreamToken}) {
				return
			}
			send(Event{Type: EventDone, Result: &StreamResult{
				SessionID: req.SessionID,
				Narrative: noResultsStreamToken,
				Entities:  entities,
				Selected:  []common.EnrichedFilm{},
				Items:     []common.RecommendationItem{},
			}})
			return
		}

		if !send(Event{Type: EventStatus, Phase: PhaseEnriching}) {
			return
		}
		enriched := p.enricher.EnrichBatch(ctx, movies, tmdbLanguage(req.Language), defaultMaxEnrich, true)

		if !send(Event{Type: EventStatus, Phase: PhaseRanking}) {
			return
		}
		ranked := Rerank(ctx, p.ai, req.Query, enriched)
		if p.profiler != nil {
			ranked = p.profiler.PersonalizeRanking(req.SessionID, ranked, enriched)
		}

		maxResults := req.MaxResults
		if maxResults <= 0 {
			maxResults = 3
		}
		selected := SelectTopN(ranked, enriched, maxResults)
		items := buildRecommendationItems(selected, ranked)

		if !send(Event{Type: EventRecommendations, Recommendations: items}) {
			return
		}

		if !send(Event{Type: EventStatus, Phase: PhaseNarrating}) {
			return
		}
		tokens, err := StreamNarrative(ctx, p.ai, req.Query, selected, ranked, p.profileContext(req.SessionID))
		if err != nil {
			send(Event{Type: EventError, Err: err})
			return
		}

		var narrative []byte
		for token := range tokens {
			narrative = append(narrative, token...)
			if !send(Event{Type: EventToken, Token: token}) {
				return
			}
		}
		if ctx.Err() != nil {
			logger.Debug("Stream canceled before completion", "session_id", req.SessionID)
			return
		}

		send(Event{Type: EventDone, Result: &StreamResult{
			SessionID: req.SessionID,
			Narrative: CleanNarrative(string(narrative)),
			Entities:  entities,
			Selected:  selected,
			Items:     items,
		}})
	}()

	return events
}
