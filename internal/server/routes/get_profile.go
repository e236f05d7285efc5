package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cinematch/backend/internal/profile"
	"github.com/cinematch/backend/internal/server/middleware"
)

// GetProfileHandler returns the taste profile for a session.
func GetProfileHandler(c echo.Context) error {
	type profileResponse struct {
		SessionID string            `json:"session_id"`
		Profile   *profile.Snapshot `json:"profile"`
		Message   string            `json:"message,omitempty"`
	}

	app := c.(*middleware.AppContext).App
	sessionID := c.Param("id")

	snapshot, ok := app.Profiles.Snapshot(sessionID)
	if !ok {
		return c.JSON(http.StatusOK, profileResponse{
			SessionID: sessionID,
			Message:   "No profile yet. Start a conversation first.",
		})
	}
	return c.JSON(http.StatusOK, profileResponse{SessionID: sessionID, Profile: &snapshot})
}
