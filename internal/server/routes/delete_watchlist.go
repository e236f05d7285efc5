package routes

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/cinematch/backend/internal/server/middleware"
)

// RemoveFromWatchlistHandler drops a movie from the session's
// watchlist.
func RemoveFromWatchlistHandler(c echo.Context) error {
	tmdbID, err := strconv.Atoi(c.Param("tmdb_id"))
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Detail: "tmdb_id must be an integer"})
	}

	app := c.(*middleware.AppContext).App
	app.Watchlists.Remove(c.Param("id"), tmdbID)

	return c.JSON(http.StatusOK, map[string]string{"status": "removed"})
}
