package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cinematch/backend/internal/server/middleware"
	"github.com/cinematch/backend/pkg/recommend"
)

// writeSSE writes one server-sent event. Multi-line payloads become
// multiple data lines per the SSE framing rules.
func writeSSE(c echo.Context, event, data string) error {
	w := c.Response()
	if _, err := fmt.Fprintf(w, "event: %s\n", event); err != nil {
		return err
	}
	for _, line := range strings.Split(data, "\n") {
		if _, err := fmt.Fprintf(w, "data: %s\n", line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprint(w, "\n"); err != nil {
		return err
	}
	w.Flush()
	return nil
}

func writeSSEJSON(c echo.Context, event string, payload any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return writeSSE(c, event, string(encoded))
}

// RecommendStreamHandler runs the pipeline with live token streaming
// over server-sent events: one status event per phase, one
// recommendations batch, narrative tokens, then done.
func RecommendStreamHandler(c echo.Context) error {
	data, err := bindRecommendBody(c)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Detail: "La query no puede estar vacía"})
	}

	app := c.(*middleware.AppContext).App
	session := app.Sessions.GetOrCreate(data.SessionID)

	header := c.Response().Header()
	header.Set(echo.HeaderContentType, "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set(echo.HeaderConnection, "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	ctx := c.Request().Context()
	events := app.Pipeline.RunStream(ctx, recommend.Request{
		Query:            data.Query,
		SessionID:        session.SessionID,
		MaxResults:       data.MaxResults,
		Language:         data.Language,
		Filters:          data.Filters,
		PreviousEntities: session.LastEntities,
	})

	var result *recommend.StreamResult
	for event := range events {
		switch event.Type {
		case recommend.EventStatus:
			if err := writeSSEJSON(c, "status", map[string]string{"phase": event.Phase}); err != nil {
				return err
			}
		case recommend.EventToken:
			if err := writeSSE(c, "token", event.Token); err != nil {
				return err
			}
		case recommend.EventRecommendations:
			if err := writeSSEJSON(c, "recommendations", event.Recommendations); err != nil {
				return err
			}
		case recommend.EventDone:
			result = event.Result
			if err := writeSSEJSON(c, "done", map[string]string{"session_id": session.SessionID}); err != nil {
				return err
			}
		case recommend.EventError:
			return writeSSEJSON(c, "error", errorResponse{
				Detail: fmt.Sprintf("El servicio no pudo completar la petición: %v", event.Err),
			})
		}
	}

	// Persist only after the client got the full stream.
	if result != nil {
		updateAfterRun(app, session.SessionID, data.Query, result.Narrative, result.Entities, result.Items, result.Selected)
	}
	return nil
}
