package routes

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cinematch/backend/internal/server/middleware"
	"github.com/cinematch/backend/pkg/recommend"
)

// AnalyzeSentimentHandler scores a message with the sentiment lexicon.
// Setting deep additionally runs the model-based analysis.
func AnalyzeSentimentHandler(c echo.Context) error {
	type sentimentBody struct {
		Text    string `json:"text"`
		Context string `json:"context"`
		Deep    bool   `json:"deep"`
	}

	type sentimentResponse struct {
		recommend.SentimentAnalysis
		Deep *recommend.DeepSentiment `json:"deep,omitempty"`
	}

	data := new(sentimentBody)
	if err := c.Bind(data); err != nil || strings.TrimSpace(data.Text) == "" {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Detail: "Text is required"})
	}

	response := sentimentResponse{SentimentAnalysis: recommend.AnalyzeSentiment(data.Text)}
	if data.Deep {
		app := c.(*middleware.AppContext).App
		deep := recommend.AnalyzeSentimentWithLLM(c.Request().Context(), app.AiClient, data.Text, data.Context)
		response.Deep = &deep
	}

	return c.JSON(http.StatusOK, response)
}
