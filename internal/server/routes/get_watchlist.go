package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cinematch/backend/internal/server/middleware"
	"github.com/cinematch/backend/pkg/common"
)

// GetWatchlistHandler returns the session's watchlist.
func GetWatchlistHandler(c echo.Context) error {
	type watchlistResponse struct {
		SessionID string                      `json:"session_id"`
		Movies    []common.RecommendationItem `json:"movies"`
	}

	app := c.(*middleware.AppContext).App
	sessionID := c.Param("id")

	return c.JSON(http.StatusOK, watchlistResponse{
		SessionID: sessionID,
		Movies:    app.Watchlists.Get(sessionID),
	})
}
