package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cinematch/backend/internal/profile"
	"github.com/cinematch/backend/internal/server/middleware"
)

// GetGraphHandler returns the session's taste graph in a node-link
// shape ready for a force-directed layout.
func GetGraphHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	sessionID := c.Param("id")

	session, ok := app.Sessions.Get(sessionID)
	if !ok {
		return c.JSON(http.StatusOK, profile.Graph{
			Nodes: []profile.Node{},
			Links: []profile.Link{},
		})
	}

	graph := app.Profiles.BuildGraph(sessionID, session.LastRecommendations)
	return c.JSON(http.StatusOK, graph)
}
