package routes

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cinematch/backend/internal/server/middleware"
	"github.com/cinematch/backend/pkg/common"
)

// ExportSessionHandler serializes a conversation for download. The
// format query parameter selects json (default) or markdown.
func ExportSessionHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	sessionID := c.Param("id")

	session, ok := app.Sessions.Get(sessionID)
	if !ok {
		return c.JSON(http.StatusNotFound, errorResponse{Detail: "Sesión no encontrada"})
	}

	if c.QueryParam("format") == "markdown" {
		return c.JSON(http.StatusOK, map[string]string{
			"format":  "markdown",
			"content": renderMarkdown(sessionID, session),
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"format":          "json",
		"session_id":      sessionID,
		"turns":           session.Turns,
		"recommendations": session.LastRecommendations,
	})
}

func renderMarkdown(sessionID string, session common.SessionContext) string {
	var b strings.Builder
	b.WriteString("# CineMatch AI — Conversación\n\n")
	fmt.Fprintf(&b, "**Sesión**: %s\n\n---\n\n", sessionID)

	for _, turn := range session.Turns {
		label := "🎬 CineMatch"
		if turn.Role == "user" {
			label = "👤 Usuario"
		}
		fmt.Fprintf(&b, "### %s\n\n%s\n\n---\n\n", label, turn.Content)
	}

	if len(session.LastRecommendations) > 0 {
		b.WriteString("## Últimas recomendaciones\n\n")
		for _, rec := range session.LastRecommendations {
			fmt.Fprintf(&b, "- **%s** (%d) — %g/10\n  _%s_\n\n", rec.Title, rec.Year, rec.Score, rec.Reason)
		}
	}
	return b.String()
}
