package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/cinematch/backend/pkg/ai"

	"github.com/openai/openai-go/v3"
)

func buildMessages(options ai.GenerateOptions, messages []ai.ChatMessage) []openai.ChatCompletionMessageParamUnion {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(options.SystemPrompts)+len(messages))
	for _, message := range options.SystemPrompts {
		msgs = append(msgs, openai.SystemMessage(message))
	}
	for _, message := range messages {
		switch message.Role {
		case "assistant":
			msgs = append(msgs, openai.AssistantMessage(message.Message))
		default:
			msgs = append(msgs, openai.UserMessage(message.Message))
		}
	}
	return msgs
}

func applySampling(body *openai.ChatCompletionNewParams, options ai.GenerateOptions) {
	body.Temperature = openai.Float(options.Temperature)
	if options.TopP > 0 {
		body.TopP = openai.Float(options.TopP)
	}
	if options.MaxTokens > 0 {
		body.MaxTokens = openai.Int(int64(options.MaxTokens))
	}
	if len(options.Stop) > 0 {
		body.Stop = openai.ChatCompletionNewParamsStopUnion{
			OfStringArray: options.Stop,
		}
	}
	if options.PresencePenalty != 0 {
		body.PresencePenalty = openai.Float(options.PresencePenalty)
	}
	if options.FrequencyPenalty != 0 {
		body.FrequencyPenalty = openai.Float(options.FrequencyPenalty)
	}
}

// GenerateChat sends a multi-turn chat conversation to the model and
// returns the assistant's reply as plain text.
//
// Example:
//
//	msgs := []ai.ChatMessage{
//		{Role: "user", Message: "Recomiéndame una comedia de los 90"},
//	}
//	resp, err := client.GenerateChat(ctx, msgs, ai.WithTemperature(0.1))
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(resp)
func (c *ChatOpenAIClient) GenerateChat(
	ctx context.Context,
	messages []ai.ChatMessage,
	opts ...ai.GenerateOption,
) (string, error) {
	client := c.ChatClient

	options := ai.GenerateOptions{
		Model:         c.chatModel,
		SystemPrompts: []string{},
		Temperature:   0.2,
	}
	for _, o := range opts {
		o(&options)
	}

	body := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(options.Model),
		Messages: buildMessages(options, messages),
	}
	applySampling(&body, options)

	start := time.Now()
	response, err := client.Chat.Completions.New(ctx, body)
	if err != nil {
		return "", err
	}
	duration := time.Since(start).Milliseconds()

	metrics := ai.ModelMetrics{
		InputTokens:  int(response.Usage.PromptTokens),
		OutputTokens: int(response.Usage.CompletionTokens),
		TotalTokens:  int(response.Usage.TotalTokens),
		DurationMs:   duration,
	}
	c.modifyMetrics(metrics)

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices in response from model")
	}
	return response.Choices[0].Message.Content, nil
}

// GenerateChatWithFormat sends a conversation to the chat model and
// attempts to unmarshal the response into the provided output struct,
// using a JSON schema to enforce structure.
//
// This is useful when structured output is needed (e.g. extracted
// entities or an analysis report).
func (c *ChatOpenAIClient) GenerateChatWithFormat(
	ctx context.Context,
	name string,
	description string,
	messages []ai.ChatMessage,
	out any,
	opts ...ai.GenerateOption,
) error {
	schema := ai.GenerateSchema(out)
	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        name,
		Description: openai.String(description),
		Schema:      schema,
		Strict:      openai.Bool(true),
	}

	options := ai.GenerateOptions{
		Model:         c.chatModel,
		SystemPrompts: []string{},
		Temperature:   0.1,
	}
	for _, o := range opts {
		o(&options)
	}

	body := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(options.Model),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: schemaParam,
			},
		},
		Messages: buildMessages(options, messages),
	}
	applySampling(&body, options)

	start := time.Now()
	response, err := c.ChatClient.Chat.Completions.New(ctx, body)
	if err != nil {
		return err
	}
	duration := time.Since(start).Milliseconds()

	metrics := ai.ModelMetrics{
		InputTokens:  int(response.Usage.PromptTokens),
		OutputTokens: int(response.Usage.CompletionTokens),
		TotalTokens:  int(response.Usage.TotalTokens),
		DurationMs:   duration,
	}
	c.modifyMetrics(metrics)

	if len(response.Choices) == 0 {
		return fmt.Errorf("no choices in response from model")
	}
	message := response.Choices[0].Message.Content
	if message == "" {
		return fmt.Errorf("empty response from model (finish_reason: %s)", response.Choices[0].FinishReason)
	}
	return ai.UnmarshalFlexible(message, out)
}

// GenerateChatStream sends a multi-turn chat conversation to the model
// and returns a channel that streams the assistant's reply incrementally.
//
// The returned channel will be closed automatically when the stream ends
// or the context is canceled.
//
// Example:
//
//	stream, err := client.GenerateChatStream(ctx, msgs, ai.WithTemperature(0.3))
//	if err != nil {
//		log.Fatal(err)
//	}
//	for event := range stream {
//		fmt.Print(event.Content)
//	}
func (c *ChatOpenAIClient) GenerateChatStream(
	ctx context.Context,
	messages []ai.ChatMessage,
	opts ...ai.GenerateOption,
) (<-chan ai.StreamEvent, error) {
	client := c.ChatClient

	options := ai.GenerateOptions{
		Model:         c.chatModel,
		SystemPrompts: []string{},
		Temperature:   0.2,
	}
	for _, o := range opts {
		o(&options)
	}

	body := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(options.Model),
		Messages: buildMessages(options, messages),
		StreamOptions: openai.ChatCompletionStreamOptionsParam{
			IncludeUsage: openai.Bool(true),
		},
	}
	applySampling(&body, options)

	start := time.Now()
	stream := client.Chat.Completions.NewStreaming(ctx, body)
	contentChan := make(chan ai.StreamEvent, 10)

	go func() {
		defer close(contentChan)
		defer stream.Close()

		acc := openai.ChatCompletionAccumulator{}

		for stream.Next() {
			chunk := stream.Current()
			acc.AddChunk(chunk)

			if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
				select {
				case contentChan <- ai.StreamEvent{Type: "content", Content: chunk.Choices[0].Delta.Content}:
				case <-ctx.Done():
					return
				}
			}
		}

		duration := time.Since(start).Milliseconds()
		metrics := ai.ModelMetrics{
			InputTokens:  int(acc.Usage.PromptTokens),
			OutputTokens: int(acc.Usage.CompletionTokens),
			TotalTokens:  int(acc.Usage.TotalTokens),
			DurationMs:   duration,
		}
		c.modifyMetrics(metrics)
	}()

	return contentChan, nil
}
