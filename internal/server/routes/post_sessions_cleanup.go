package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cinematch/backend/internal/server/middleware"
)

// CleanupSessionsHandler removes sessions idle past their TTL.
func CleanupSessionsHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	return c.JSON(http.StatusOK, map[string]int{"removed": app.Sessions.CleanupExpired()})
}
