package essay

import (
	"context"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIGrader calls any OpenAI-compatible chat completions endpoint.
type OpenAIGrader struct {
	api   *openai.Client
	model string
}

func NewOpenAIGrader(baseURL, apiKey, modelName string) *OpenAIGrader {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if modelName == "" {
		modelName = openai.GPT4oMini
	}
	return &OpenAIGrader{
		api:   openai.NewClientWithConfig(config),
		model: modelName,
	}
}

func (g *OpenAIGrader) Name() string { return "openai:" + g.model }

func (g *OpenAIGrader) Grade(ctx context.Context, topic, essay string) (*Evaluation, error) {
	systemPrompt, err := buildSystemPrompt(topic)
	if err != nil {
		return nil, err
	}

	resp, err := g.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildUserPrompt(essay)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("essay grading API call: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices returned", ErrMalformedResponse)
	}

	raw := resp.Choices[0].Message.Content
	slog.DebugContext(ctx, "Essay grader response", "provider", g.Name(), "raw", raw)

	return ParseEvaluation(raw)
}
