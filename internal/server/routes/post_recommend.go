package routes

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cinematch/backend/internal/server/middleware"
	"github.com/cinematch/backend/pkg/common"
	"github.com/cinematch/backend/pkg/logger"
	"github.com/cinematch/backend/pkg/recommend"
)

// recommendBody is the request payload shared by the plain and
// streaming recommendation endpoints.
type recommendBody struct {
	Query      string                  `json:"query" validate:"required,max=1000"`
	SessionID  string                  `json:"session_id"`
	MaxResults int                     `json:"max_results" validate:"omitempty,min=1,max=10"`
	Language   string                  `json:"language"`
	Filters    common.RecommendFilters `json:"filters"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// bindRecommendBody parses, validates and defaults the request payload.
func bindRecommendBody(c echo.Context) (*recommendBody, error) {
	data := new(recommendBody)
	if err := c.Bind(data); err != nil {
		return nil, err
	}
	if err := c.Validate(data); err != nil {
		return nil, err
	}
	if strings.TrimSpace(data.Query) == "" {
		return nil, fmt.Errorf("empty query")
	}
	if data.MaxResults == 0 {
		data.MaxResults = 3
	}
	if data.Language == "" {
		data.Language = "es"
	}
	return data, nil
}

// updateAfterRun persists the conversation turn and folds the
// interaction into the taste profile.
func updateAfterRun(
	app *middleware.App,
	sessionID, query, narrative string,
	entities common.ExtractedEntities,
	items []common.RecommendationItem,
	selected []common.EnrichedFilm,
) {
	app.Sessions.SaveTurn(sessionID, query, narrative, &entities, items)

	var enrichedGenres, enrichedKeywords []string
	for _, film := range selected {
		enrichedGenres = append(enrichedGenres, film.Genres...)
		kws := film.Keywords
		if len(kws) > 5 {
			kws = kws[:5]
		}
		enrichedKeywords = append(enrichedKeywords, kws...)
	}

	app.Profiles.UpdateFromInteraction(sessionID, query, &entities, items, enrichedGenres, enrichedKeywords)
}

// RecommendHandler runs the full pipeline and returns the narrative
// plus the recommendation list in one response.
func RecommendHandler(c echo.Context) error {
	data, err := bindRecommendBody(c)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Detail: "La query no puede estar vacía"})
	}

	app := c.(*middleware.AppContext).App
	session := app.Sessions.GetOrCreate(data.SessionID)

	response, entities, selected, err := app.Pipeline.Run(c.Request().Context(), recommend.Request{
		Query:            data.Query,
		SessionID:        session.SessionID,
		MaxResults:       data.MaxResults,
		Language:         data.Language,
		Filters:          data.Filters,
		PreviousEntities: session.LastEntities,
	})
	if err != nil {
		logger.Error("Pipeline failed", "err", err)
		return c.JSON(http.StatusServiceUnavailable, errorResponse{
			Detail: fmt.Sprintf("El servicio no pudo completar la petición: %v", err),
		})
	}

	updateAfterRun(app, session.SessionID, data.Query, response.Narrative, entities, response.Recommendations, selected)

	return c.JSON(http.StatusOK, response)
}
