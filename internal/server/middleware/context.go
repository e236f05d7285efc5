package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/cinematch/backend/internal/profile"
	"github.com/cinematch/backend/internal/sessions"
	"github.com/cinematch/backend/pkg/ai"
	"github.com/cinematch/backend/pkg/omdb"
	"github.com/cinematch/backend/pkg/recommend"
	"github.com/cinematch/backend/pkg/tmdb"
	"github.com/cinematch/backend/pkg/wikipedia"
	"github.com/cinematch/backend/pkg/youtube"
)

// App bundles the long-lived collaborators every handler needs.
type App struct {
	AiClient ai.Client
	TMDB     tmdb.API
	OMDb     *omdb.Client
	Wiki     *wikipedia.Client
	YouTube  *youtube.Client

	Sessions   *sessions.Store
	Watchlists *sessions.WatchlistStore
	Profiles   *profile.Store
	Pipeline   *recommend.Pipeline
}

// AppContext extends the echo context with the application state.
type AppContext struct {
	echo.Context
	App *App
}

// AppContextMiddleware wraps every request context in an AppContext.
func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return next(&AppContext{c, app})
		}
	}
}
