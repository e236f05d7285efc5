package routes

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/cinematch/backend/internal/server/middleware"
)

// GetTrailerHandler resolves a YouTube trailer for a movie. The TMDB
// videos endpoint is tried first (free); title search is the fallback.
func GetTrailerHandler(c echo.Context) error {
	tmdbID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Detail: "id must be an integer"})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	if trailer, ok := app.YouTube.TrailerFromTMDB(ctx, app.TMDB, tmdbID); ok {
		return c.JSON(http.StatusOK, trailer)
	}

	details, err := app.TMDB.MovieDetails(ctx, tmdbID, "es-ES")
	if err != nil || details.Title == "" {
		return c.JSON(http.StatusOK, map[string]any{
			"youtube_url": nil,
			"error":       "Trailer not found",
		})
	}

	year := 2024
	if len(details.ReleaseDate) >= 4 {
		if y, convErr := strconv.Atoi(details.ReleaseDate[:4]); convErr == nil {
			year = y
		}
	}

	return c.JSON(http.StatusOK, app.YouTube.TrailerBySearch(ctx, details.Title, year))
}
