package essay

import (
	"context"
	"errors"
	"testing"
)

func TestParseEvaluation(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    *Evaluation
		wantErr bool
	}{
		{
			name: "complete",
			raw:  `{"content_score": 6, "structure_score": 5, "style_score": 5, "originality_score": 5, "grammar_score": 6, "total": 27, "comment": "Solid argument."}`,
			want: &Evaluation{ContentScore: 6, StructureScore: 5, StyleScore: 5, OriginalityScore: 5, GrammarScore: 6, Total: 27, Comment: "Solid argument."},
		},
		{
			name: "fractional scores",
			raw:  `{"content_score": 7.5, "structure_score": 5, "style_score": 5, "originality_score": 5, "grammar_score": 4, "total": 26.5, "comment": ""}`,
			want: &Evaluation{ContentScore: 7.5, StructureScore: 5, StyleScore: 5, OriginalityScore: 5, GrammarScore: 4, Total: 26.5},
		},
		{name: "not json", raw: "The essay deserves 27 points.", wantErr: true},
		{name: "array", raw: `[1,2,3]`, wantErr: true},
		{name: "missing total", raw: `{"content_score": 6, "structure_score": 5, "style_score": 5, "originality_score": 5, "grammar_score": 6, "comment": "x"}`, wantErr: true},
		{name: "missing comment", raw: `{"content_score": 6, "structure_score": 5, "style_score": 5, "originality_score": 5, "grammar_score": 6, "total": 27}`, wantErr: true},
		{name: "numeric string", raw: `{"content_score": "6", "structure_score": 5, "style_score": 5, "originality_score": 5, "grammar_score": 6, "total": 27, "comment": "x"}`, wantErr: true},
		{name: "comment not string", raw: `{"content_score": 6, "structure_score": 5, "style_score": 5, "originality_score": 5, "grammar_score": 6, "total": 27, "comment": 3}`, wantErr: true},
		{name: "negative", raw: `{"content_score": -1, "structure_score": 5, "style_score": 5, "originality_score": 5, "grammar_score": 6, "total": 20, "comment": "x"}`, wantErr: true},
		{name: "total out of range", raw: `{"content_score": 6, "structure_score": 5, "style_score": 5, "originality_score": 5, "grammar_score": 6, "total": 270, "comment": "x"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEvaluation(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedResponse) {
					t.Fatalf("ParseEvaluation() error = %v, want ErrMalformedResponse", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseEvaluation() error = %v", err)
			}
			if *got != *tt.want {
				t.Errorf("ParseEvaluation() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEvaluationPoints(t *testing.T) {
	tests := []struct {
		total float64
		want  int
	}{
		{27, 27},
		{26.5, 27},
		{26.4, 26},
		{0, 0},
	}
	for _, tt := range tests {
		e := Evaluation{Total: tt.total}
		if got := e.Points(); got != tt.want {
			t.Errorf("Points(%v) = %d, want %d", tt.total, got, tt.want)
		}
	}
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	g, err := New(ctx, Config{Provider: "none"})
	if err != nil {
		t.Fatalf("New(none) error = %v", err)
	}
	if _, err := g.Grade(ctx, "topic", "essay"); !errors.Is(err, ErrGraderDisabled) {
		t.Errorf("disabled grader error = %v", err)
	}

	g, err = New(ctx, Config{Provider: "openai", APIKey: "k", Model: "m"})
	if err != nil || g.Name() != "openai:m" {
		t.Errorf("New(openai) = %v, %v", g, err)
	}

	if _, err := New(ctx, Config{Provider: "carrier-pigeon"}); err == nil {
		t.Error("New() accepted an unknown provider")
	}
}
