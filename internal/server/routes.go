package server

import (
	"github.com/labstack/echo/v4"

	"github.com/cinematch/backend/internal/server/routes"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api")

	// Recommendation routes
	apiRoutes.POST("/recommend", routes.RecommendHandler)
	apiRoutes.POST("/recommend/stream", routes.RecommendStreamHandler)

	// Session routes
	apiRoutes.GET("/session/:id", routes.GetSessionHandler)
	apiRoutes.DELETE("/session/:id", routes.DeleteSessionHandler)
	apiRoutes.POST("/sessions/cleanup", routes.CleanupSessionsHandler)

	// Analysis routes
	apiRoutes.POST("/analyze/sentiment", routes.AnalyzeSentimentHandler)

	// Profile routes
	apiRoutes.GET("/profile/:id", routes.GetProfileHandler)
	apiRoutes.GET("/graph/:id", routes.GetGraphHandler)

	// Watchlist routes
	apiRoutes.GET("/watchlist/:id", routes.GetWatchlistHandler)
	apiRoutes.POST("/watchlist/:id", routes.AddToWatchlistHandler)
	apiRoutes.DELETE("/watchlist/:id/:tmdb_id", routes.RemoveFromWatchlistHandler)

	// Trailer and export routes
	apiRoutes.GET("/trailer/:id", routes.GetTrailerHandler)
	apiRoutes.GET("/export/:id", routes.ExportSessionHandler)
}
