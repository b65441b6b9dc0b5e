// Package essay grades free-text essays through an external text-generation service.
package essay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// MaxCriterionScore bounds each rubric criterion; the total is their sum.
const (
	MaxCriterionScore = 10
	MaxTotalScore     = 5 * MaxCriterionScore
)

var (
	ErrGraderDisabled    = errors.New("essay grader is disabled")
	ErrMalformedResponse = errors.New("malformed essay evaluation")
)

// Grader scores one essay against its topic.
type Grader interface {
	Grade(ctx context.Context, topic, essay string) (*Evaluation, error)
	Name() string
}

// Evaluation is the flat rubric the grading service returns.
type Evaluation struct {
	ContentScore     float64 `json:"content_score"`
	StructureScore   float64 `json:"structure_score"`
	StyleScore       float64 `json:"style_score"`
	OriginalityScore float64 `json:"originality_score"`
	GrammarScore     float64 `json:"grammar_score"`
	Total            float64 `json:"total"`
	Comment          string  `json:"comment"`
}

// Points is the total rounded to whole exam points.
func (e *Evaluation) Points() int {
	return int(math.Round(e.Total))
}

var numericKeys = []string{
	"content_score",
	"structure_score",
	"style_score",
	"originality_score",
	"grammar_score",
	"total",
}

// ParseEvaluation decodes a model response. The payload must be a flat JSON object with all
// six numeric keys and the comment string; anything else is ErrMalformedResponse.
func ParseEvaluation(raw string) (*Evaluation, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	values := make(map[string]float64, len(numericKeys))
	for _, key := range numericKeys {
		v, ok := fields[key]
		if !ok {
			return nil, fmt.Errorf("%w: missing %q", ErrMalformedResponse, key)
		}
		var f float64
		if err := json.Unmarshal(v, &f); err != nil || bytes.HasPrefix(bytes.TrimSpace(v), []byte(`"`)) {
			return nil, fmt.Errorf("%w: %q is not a number", ErrMalformedResponse, key)
		}
		if f < 0 || math.IsNaN(f) {
			return nil, fmt.Errorf("%w: %q is negative", ErrMalformedResponse, key)
		}
		values[key] = f
	}

	comment, ok := fields["comment"]
	if !ok {
		return nil, fmt.Errorf("%w: missing \"comment\"", ErrMalformedResponse)
	}
	var text string
	if err := json.Unmarshal(comment, &text); err != nil {
		return nil, fmt.Errorf("%w: \"comment\" is not a string", ErrMalformedResponse)
	}

	eval := &Evaluation{
		ContentScore:     values["content_score"],
		StructureScore:   values["structure_score"],
		StyleScore:       values["style_score"],
		OriginalityScore: values["originality_score"],
		GrammarScore:     values["grammar_score"],
		Total:            values["total"],
		Comment:          text,
	}
	if eval.Total > MaxTotalScore {
		return nil, fmt.Errorf("%w: total %.1f exceeds %d", ErrMalformedResponse, eval.Total, MaxTotalScore)
	}
	return eval, nil
}

// Disabled is the grader used when no provider is configured. Every call fails,
// so submissions take the fallback path.
type Disabled struct{}

func (Disabled) Grade(ctx context.Context, topic, essay string) (*Evaluation, error) {
	return nil, ErrGraderDisabled
}

func (Disabled) Name() string { return "disabled" }

// Config selects and configures a grading provider.
type Config struct {
	Provider string // openai, gemini or none
	APIKey   string
	BaseURL  string
	Model    string
}

// New builds the grader named by cfg.Provider.
func New(ctx context.Context, cfg Config) (Grader, error) {
	switch cfg.Provider {
	case "", "none":
		return Disabled{}, nil
	case "openai":
		return NewOpenAIGrader(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	case "gemini":
		return NewGeminiGrader(ctx, cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown essay provider %q", cfg.Provider)
	}
}
