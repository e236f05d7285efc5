package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cinematch/backend/internal/server/middleware"
)

// GetSessionHandler returns the stored conversation for a session.
func GetSessionHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App

	session, ok := app.Sessions.Get(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, errorResponse{Detail: "Sesión no encontrada"})
	}
	return c.JSON(http.StatusOK, session)
}
