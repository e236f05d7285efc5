package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/cinematch/backend/internal/profile"
	mid "github.com/cinematch/backend/internal/server/middleware"
	"github.com/cinematch/backend/internal/sessions"
	"github.com/cinematch/backend/internal/util"
	"github.com/cinematch/backend/pkg/ai"
	oai "github.com/cinematch/backend/pkg/ai/ollama"
	gai "github.com/cinematch/backend/pkg/ai/openai"
	"github.com/cinematch/backend/pkg/logger"
	"github.com/cinematch/backend/pkg/omdb"
	"github.com/cinematch/backend/pkg/recommend"
	"github.com/cinematch/backend/pkg/tmdb"
	"github.com/cinematch/backend/pkg/wikipedia"
	"github.com/cinematch/backend/pkg/youtube"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

func newAiClient() ai.Client {
	adapter := util.GetEnv("AI_ADAPTER")

	switch adapter {
	case "ollama":
		client, err := oai.NewChatOllamaClient(oai.NewChatOllamaClientParams{
			ChatModel: util.GetEnv("AI_CHAT_MODEL"),

			BaseURL: util.GetEnv("AI_CHAT_URL"),
			ApiKey:  util.GetEnv("AI_CHAT_KEY"),

			MaxConcurrentRequests: int64(util.GetEnvInt("AI_PARALLEL_REQ", 15)),
		})
		if err != nil {
			logger.Fatal("Failed to create Ollama client", "err", err)
		}
		return client
	default:
		return gai.NewChatOpenAIClient(gai.NewChatOpenAIClientParams{
			ChatModel: util.GetEnv("AI_CHAT_MODEL"),

			ChatURL: util.GetEnv("AI_CHAT_URL"),
			ChatKey: util.GetEnv("AI_CHAT_KEY"),
		})
	}
}

func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tmdbToken := util.GetEnv("TMDB_API_TOKEN")
	if tmdbToken == "" {
		logger.Fatal("TMDB_API_TOKEN is required")
	}

	app := &mid.App{
		AiClient: newAiClient(),
		TMDB:     tmdb.NewClient(tmdb.NewClientParams{Token: tmdbToken}),
		OMDb:     omdb.NewClient(omdb.NewClientParams{ApiKey: util.GetEnv("OMDB_API_KEY")}),
		Wiki:     wikipedia.NewClient(wikipedia.NewClientParams{Language: util.GetEnvString("WIKIPEDIA_LANGUAGE", "es")}),
		YouTube:  youtube.NewClient(youtube.NewClientParams{ApiKey: util.GetEnv("YOUTUBE_API_KEY")}),

		Sessions:   sessions.NewStore(),
		Watchlists: sessions.NewWatchlistStore(),
		Profiles:   profile.NewStore(),
	}
	app.Pipeline = recommend.NewPipeline(app.AiClient, app.TMDB, app.OMDb, app.Wiki, app.Profiles)

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	RegisterRoutes(e)

	go func() {
		port := util.GetEnv("PORT")
		if port == "" {
			port = "8080"
		}
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}
