package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cinematch/backend/internal/server/middleware"
)

// DeleteSessionHandler removes a session and its taste profile.
func DeleteSessionHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App

	sessionID := c.Param("id")
	if !app.Sessions.Delete(sessionID) {
		return c.JSON(http.StatusNotFound, errorResponse{Detail: "Sesión no encontrada"})
	}
	app.Profiles.Delete(sessionID)

	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}
