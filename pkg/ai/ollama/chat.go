package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/cinematch/backend/pkg/ai"
	"github.com/cinematch/backend/pkg/logger"

	"github.com/ollama/ollama/api"
	"github.com/pkoukk/tiktoken-go"
)

func buildApiMessages(options ai.GenerateOptions, messages []ai.ChatMessage) []api.Message {
	msgs := make([]api.Message, 0, len(options.SystemPrompts)+len(messages))
	for _, sys := range options.SystemPrompts {
		msgs = append(msgs, api.Message{Role: "system", Content: sys})
	}
	for _, m := range messages {
		role := m.Role
		if role == "" {
			role = "user"
		}
		msgs = append(msgs, api.Message{Role: role, Content: m.Message})
	}
	return msgs
}

func buildRequestOptions(options ai.GenerateOptions) map[string]any {
	reqOptions := map[string]any{"temperature": options.Temperature}
	if options.TopP > 0 {
		reqOptions["top_p"] = options.TopP
	}
	if options.MaxTokens > 0 {
		reqOptions["num_predict"] = options.MaxTokens
	}
	if len(options.Stop) > 0 {
		reqOptions["stop"] = options.Stop
	}
	if options.PresencePenalty != 0 {
		reqOptions["presence_penalty"] = options.PresencePenalty
	}
	if options.FrequencyPenalty != 0 {
		reqOptions["frequency_penalty"] = options.FrequencyPenalty
	}
	return reqOptions
}

// setContextWindow grows num_ctx when the prompt alone would overflow the
// default 4096-token window.
func setContextWindow(reqOptions map[string]any, messages []ai.ChatMessage) error {
	enc, err := tiktoken.GetEncoding("o200k_base")
	if err != nil {
		return err
	}
	var chatString strings.Builder
	for _, m := range messages {
		chatString.WriteString(m.Message)
	}
	tokens := 200 + len(enc.Encode(chatString.String(), nil, nil))
	if tokens > 4096 {
		reqOptions["num_ctx"] = tokens
	}
	return nil
}

// GenerateChat sends a multi-turn conversation and returns assistant text.
func (c *ChatOllamaClient) GenerateChat(
	ctx context.Context,
	messages []ai.ChatMessage,
	opts ...ai.GenerateOption,
) (string, error) {
	options := ai.GenerateOptions{
		Model:         c.chatModel,
		SystemPrompts: []string{},
		Temperature:   0.2,
	}
	for _, o := range opts {
		o(&options)
	}

	stream := false
	req := &api.ChatRequest{
		Model:    options.Model,
		Messages: buildApiMessages(options, messages),
		Stream:   &stream,
		Options:  buildRequestOptions(options),
	}
	if err := setContextWindow(req.Options, messages); err != nil {
		return "", err
	}

	if err := c.reqLock.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer c.reqLock.Release(1)

	var final api.ChatResponse
	if err := c.Client.Chat(ctx, req, func(cr api.ChatResponse) error {
		final.Message.Content += cr.Message.Content
		if cr.Done {
			final.Done = true
			final.Metrics = cr.Metrics
		}
		return nil
	}); err != nil {
		return "", err
	}

	metrics := ai.ModelMetrics{
		InputTokens:  final.Metrics.PromptEvalCount,
		OutputTokens: final.Metrics.EvalCount,
		TotalTokens:  final.Metrics.PromptEvalCount + final.Metrics.EvalCount,
		DurationMs:   final.Metrics.TotalDuration.Milliseconds(),
	}
	c.modifyMetrics(metrics)

	return final.Message.Content, nil
}

// GenerateChatWithFormat enforces a JSON schema and unmarshals into out.
func (c *ChatOllamaClient) GenerateChatWithFormat(
	ctx context.Context,
	name string,
	description string,
	messages []ai.ChatMessage,
	out any,
	opts ...ai.GenerateOption,
) error {
	if out == nil {
		return errors.New("out must be a non-nil pointer")
	}
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.New("out must be a non-nil pointer")
	}

	schemaObj := ai.GenerateSchema(out)
	formatBytes, err := json.Marshal(schemaObj)
	if err != nil {
		return err
	}
	var format json.RawMessage = formatBytes

	options := ai.GenerateOptions{
		Model:         c.chatModel,
		SystemPrompts: []string{},
		Temperature:   0.1,
	}
	for _, o := range opts {
		o(&options)
	}

	stream := false
	req := &api.ChatRequest{
		Model:    options.Model,
		Messages: buildApiMessages(options, messages),
		Stream:   &stream,
		Format:   format,
		Options:  buildRequestOptions(options),
	}
	if err := setContextWindow(req.Options, messages); err != nil {
		return err
	}

	if err := c.reqLock.Acquire(ctx, 1); err != nil {
		return err
	}
	defer c.reqLock.Release(1)

	var final api.ChatResponse
	if err := c.Client.Chat(ctx, req, func(cr api.ChatResponse) error {
		final.Message.Content += cr.Message.Content
		if cr.Done {
			final.Done = true
			final.Metrics = cr.Metrics
		}
		return nil
	}); err != nil {
		return err
	}

	metrics := ai.ModelMetrics{
		InputTokens:  final.Metrics.PromptEvalCount,
		OutputTokens: final.Metrics.EvalCount,
		TotalTokens:  final.Metrics.PromptEvalCount + final.Metrics.EvalCount,
		DurationMs:   final.Metrics.TotalDuration.Milliseconds(),
	}
	c.modifyMetrics(metrics)

	return ai.UnmarshalFlexible(final.Message.Content, out)
}

// GenerateChatStream streams the assistant reply incrementally.
func (c *ChatOllamaClient) GenerateChatStream(
	ctx context.Context,
	messages []ai.ChatMessage,
	opts ...ai.GenerateOption,
) (<-chan ai.StreamEvent, error) {
	options := ai.GenerateOptions{
		Model:         c.chatModel,
		SystemPrompts: []string{},
		Temperature:   0.2,
	}
	for _, o := range opts {
		o(&options)
	}

	stream := true
	req := &api.ChatRequest{
		Model:    options.Model,
		Messages: buildApiMessages(options, messages),
		Stream:   &stream,
		Options:  buildRequestOptions(options),
	}
	if err := setContextWindow(req.Options, messages); err != nil {
		return nil, err
	}

	if err := c.reqLock.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	contentChan := make(chan ai.StreamEvent, 10)

	go func() {
		defer close(contentChan)
		defer c.reqLock.Release(1)

		var final api.ChatResponse
		err := c.Client.Chat(ctx, req, func(cr api.ChatResponse) error {
			if cr.Done {
				final.Done = true
				final.Metrics = cr.Metrics
			}
			if cr.Message.Content == "" {
				return nil
			}
			select {
			case contentChan <- ai.StreamEvent{Type: "content", Content: cr.Message.Content}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Ollama stream failed", "err", err)
			return
		}

		metrics := ai.ModelMetrics{
			InputTokens:  final.Metrics.PromptEvalCount,
			OutputTokens: final.Metrics.EvalCount,
			TotalTokens:  final.Metrics.PromptEvalCount + final.Metrics.EvalCount,
			DurationMs:   final.Metrics.TotalDuration.Milliseconds(),
		}
		c.modifyMetrics(metrics)
	}()

	return contentChan, nil
}
