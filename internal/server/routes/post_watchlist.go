package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cinematch/backend/internal/server/middleware"
	"github.com/cinematch/backend/pkg/common"
)

// AddToWatchlistHandler appends a movie to the session's watchlist,
// ignoring duplicates.
func AddToWatchlistHandler(c echo.Context) error {
	type addBody struct {
		Movie common.RecommendationItem `json:"movie"`
	}

	data := new(addBody)
	if err := c.Bind(data); err != nil || data.Movie.TMDBID == 0 {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Detail: "movie.tmdb_id required"})
	}

	app := c.(*middleware.AppContext).App
	total := app.Watchlists.Add(c.Param("id"), data.Movie)

	return c.JSON(http.StatusOK, map[string]any{"status": "added", "total": total})
}
