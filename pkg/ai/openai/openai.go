package openai

import (
	"sync"

	"github.com/cinematch/backend/pkg/ai"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// ChatOpenAIClient is an ai.Client backed by an OpenAI-compatible chat
// endpoint. It is used against a vLLM server in production but works
// against the OpenAI API as well.
//
// A ChatOpenAIClient should be created using NewChatOpenAIClient.
type ChatOpenAIClient struct {
	chatModel string

	chatURL string
	chatKey string

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	ChatClient *openai.Client
}

// NewChatOpenAIClientParams defines the configuration parameters for
// creating a new ChatOpenAIClient.
//
// ChatModel specifies the default model for all generation calls.
// ChatURL and ChatKey configure the chat/completion API endpoint; vLLM
// deployments typically use a placeholder key.
type NewChatOpenAIClientParams struct {
	ChatModel string

	ChatURL string
	ChatKey string
}

// NewChatOpenAIClient creates and returns a new ChatOpenAIClient configured
// with the provided parameters.
//
// Example:
//
//	client := openai.NewChatOpenAIClient(openai.NewChatOpenAIClientParams{
//		ChatModel: "Qwen3-30B-A3B-Instruct",
//		ChatURL:   "http://localhost:8000/v1",
//		ChatKey:   "EMPTY",
//	})
func NewChatOpenAIClient(
	params NewChatOpenAIClientParams,
) *ChatOpenAIClient {
	chatClient := newOpenaiClient(params.ChatURL, params.ChatKey)

	return &ChatOpenAIClient{
		chatModel: params.ChatModel,

		chatURL: params.ChatURL,
		chatKey: params.ChatKey,

		metricsLock: sync.Mutex{},
		metrics: ai.ModelMetrics{
			InputTokens:  0,
			OutputTokens: 0,
			TotalTokens:  0,
			DurationMs:   0,
		},

		ChatClient: chatClient,
	}
}

func newOpenaiClient(
	baseURL string,
	apiKey string,
) *openai.Client {
	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}

	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(options...)

	return &client
}

func (c *ChatOpenAIClient) modifyMetrics(m ai.ModelMetrics) {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()

	c.metrics.InputTokens += m.InputTokens
	c.metrics.OutputTokens += m.OutputTokens
	c.metrics.TotalTokens += m.TotalTokens
	c.metrics.DurationMs += m.DurationMs
}

// ResetMetrics clears the accumulated model metrics.
func (c *ChatOpenAIClient) ResetMetrics() {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()

	c.metrics = ai.ModelMetrics{}
}

// GetMetrics returns the accumulated model metrics.
func (c *ChatOpenAIClient) GetMetrics() ai.ModelMetrics {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()

	return c.metrics
}
