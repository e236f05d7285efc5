package ai

import (
	"context"
)

// ChatMessage represents a single message in a chat conversation.
//
// Role must be one of:
//   - "user"      → a user-provided message
//   - "assistant" → a message from the AI assistant
type ChatMessage struct {
	Message string `json:"message"`
	Role    string `json:"role"`
}

// GenerateOptions holds configuration for AI generation requests.
type GenerateOptions struct {
	Model            string   // Model identifier to use for generation
	SystemPrompts    []string // System prompts prepended to the request
	Temperature      float64  // Sampling temperature (0.0-2.0)
	TopP             float64  // Nucleus sampling probability mass (0 = provider default)
	MaxTokens        int      // Completion token cap (0 = provider default)
	Stop             []string // Stop sequences
	PresencePenalty  float64  // Penalty for tokens already present
	FrequencyPenalty float64  // Penalty scaled by token frequency
}

// ModelMetrics contains performance metrics from AI model operations.
type ModelMetrics struct {
	InputTokens  int   `json:"input_tokens"`
	OutputTokens int   `json:"output_tokens"`
	TotalTokens  int   `json:"total_tokens"`
	DurationMs   int64 `json:"duration_ms"`
}

// StreamEvent represents an event in a streaming response
type StreamEvent struct {
	Type    string // "step" | "content"
	Step    string // step name (when Type="step")
	Content string // text content (when Type="content")
}

// GenerateOption is a functional option for configuring AI generation requests.
type GenerateOption func(*GenerateOptions)

// WithModel returns a GenerateOption that sets the model to use for generation.
func WithModel(model string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Model = model
	}
}

// WithSystemPrompts returns a GenerateOption that sets the system prompts
// to prepend to the generation request.
func WithSystemPrompts(prompts ...string) GenerateOption {
	return func(o *GenerateOptions) {
		o.SystemPrompts = prompts
	}
}

// WithTemperature returns a GenerateOption that sets the sampling temperature.
// Higher values (e.g., 1.0) produce more random outputs, while lower values
// (e.g., 0.2) make outputs more focused and deterministic.
func WithTemperature(temp float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = temp
	}
}

// WithTopP returns a GenerateOption that sets the nucleus sampling mass.
func WithTopP(topP float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.TopP = topP
	}
}

// WithMaxTokens returns a GenerateOption that caps the completion length.
func WithMaxTokens(maxTokens int) GenerateOption {
	return func(o *GenerateOptions) {
		o.MaxTokens = maxTokens
	}
}

// WithStop returns a GenerateOption that sets stop sequences.
func WithStop(stop ...string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Stop = stop
	}
}

// WithPresencePenalty returns a GenerateOption that penalizes tokens
// already present in the output, reducing repetition of topics.
func WithPresencePenalty(penalty float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.PresencePenalty = penalty
	}
}

// WithFrequencyPenalty returns a GenerateOption that penalizes tokens
// proportionally to how often they already occurred.
func WithFrequencyPenalty(penalty float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.FrequencyPenalty = penalty
	}
}

// Client defines the interface for the chat model operations used by the
// recommendation pipeline. Implementations exist for OpenAI-compatible
// servers (vLLM) and Ollama.
type Client interface {
	GenerateChat(
		ctx context.Context,
		messages []ChatMessage,
		opts ...GenerateOption,
	) (string, error)
	GenerateChatWithFormat(
		ctx context.Context,
		name string,
		description string,
		messages []ChatMessage,
		out any,
		opts ...GenerateOption,
	) error
	GenerateChatStream(
		ctx context.Context,
		messages []ChatMessage,
		opts ...GenerateOption,
	) (<-chan StreamEvent, error)

	ResetMetrics()
	GetMetrics() ModelMetrics
}
