package essay

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-1.5-flash"

// GeminiGrader grades essays with a Gemini model in JSON response mode.
type GeminiGrader struct {
	client *genai.Client
	name   string
}

func NewGeminiGrader(ctx context.Context, apiKey, modelName string) (*GeminiGrader, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("initialize Gemini client: %w", err)
	}
	if modelName == "" {
		modelName = defaultGeminiModel
	}
	return &GeminiGrader{client: client, name: modelName}, nil
}

func (g *GeminiGrader) Name() string { return "gemini:" + g.name }

func (g *GeminiGrader) Grade(ctx context.Context, topic, essay string) (*Evaluation, error) {
	systemPrompt, err := buildSystemPrompt(topic)
	if err != nil {
		return nil, err
	}

	model := g.client.GenerativeModel(g.name)
	model.SetTemperature(0.2)
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = genai.NewUserContent(genai.Text(systemPrompt))

	resp, err := model.GenerateContent(ctx, genai.Text(buildUserPrompt(essay)))
	if err != nil {
		return nil, fmt.Errorf("essay grading API call: %w", err)
	}

	raw := responseText(resp)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedResponse)
	}
	slog.DebugContext(ctx, "Essay grader response", "provider", g.Name(), "raw", raw)

	return ParseEvaluation(raw)
}

// Close releases the underlying client connection.
func (g *GeminiGrader) Close() error {
	return g.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		break
	}
	return sb.String()
}
