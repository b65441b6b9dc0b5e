package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/coursehub/exam-service/internal/essay"
	"github.com/coursehub/exam-service/internal/models"
	"github.com/coursehub/exam-service/internal/repositories"
)

const (
	OpenEndedPoints      = 2
	MultipleChoicePoints = 1
	PassingScore         = 30

	EssayFeedbackUnavailable = "Essay feedback is currently unavailable. Your essay was recorded with a score of 0."
	DefaultEssayTimeout      = 30 * time.Second
)

type gradingService struct {
	repo         repositories.Repository
	grader       essay.Grader
	logger       *slog.Logger
	essayTimeout time.Duration
}

func NewGradingService(repo repositories.Repository, grader essay.Grader, logger *slog.Logger, essayTimeout time.Duration) GradingService {
	if grader == nil {
		grader = essay.Disabled{}
	}
	if essayTimeout <= 0 {
		essayTimeout = DefaultEssayTimeout
	}
	return &gradingService{
		repo:         repo,
		grader:       grader,
		logger:       logger,
		essayTimeout: essayTimeout,
	}
}

// GradeSubmission scores every question of the exam and the essay. Only a missing exam is an
// error; essay grading failures degrade to a zero essay score with fallback feedback.
func (s *gradingService) GradeSubmission(ctx context.Context, examID uint, answers map[uint]string, essayText string) (*GradingResult, error) {
	exam, err := s.repo.Exam().GetByIDWithQuestions(ctx, nil, examID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to load exam: %w", err)
	}

	result := &GradingResult{
		ExamID:   examID,
		Answers:  make([]GradedAnswer, 0, len(exam.Questions)),
		GradedAt: time.Now(),
	}

	for i := range exam.Questions {
		q := &exam.Questions[i]
		answer := answers[q.ID]
		awarded := scoreQuestion(q, answer)

		if q.IsOpenEnded() {
			result.OpenScore += awarded
		} else {
			result.MCScore += awarded
		}
		result.Answers = append(result.Answers, GradedAnswer{QuestionID: q.ID, Answer: answer, Awarded: awarded})
	}

	s.gradeEssay(ctx, exam.EssayTopic, essayText, result)

	result.TotalScore = result.MCScore + result.OpenScore + result.EssayScore
	result.Passed = result.TotalScore >= PassingScore

	s.logger.Info("Submission graded",
		"exam_id", examID,
		"mc_score", result.MCScore,
		"open_score", result.OpenScore,
		"essay_score", result.EssayScore,
		"total_score", result.TotalScore,
		"passed", result.Passed,
		"essay_degraded", result.EssayDegraded)

	return result, nil
}

// scoreQuestion awards open-ended questions for any non-blank answer. Correctness of
// open-ended answers is not checked.
func scoreQuestion(q *models.Question, answer string) int {
	answer = strings.TrimSpace(answer)
	if q.IsOpenEnded() {
		if answer != "" {
			return OpenEndedPoints
		}
		return 0
	}
	if answer != "" && strings.EqualFold(answer, strings.TrimSpace(q.CorrectAnswer)) {
		return MultipleChoicePoints
	}
	return 0
}

type essayOutcome struct {
	eval *essay.Evaluation
	err  error
}

func (s *gradingService) gradeEssay(ctx context.Context, topic, text string, result *GradingResult) {
	ctx, cancel := context.WithTimeout(ctx, s.essayTimeout)
	defer cancel()

	done := make(chan essayOutcome, 1)
	go func() {
		eval, err := s.grader.Grade(ctx, topic, text)
		done <- essayOutcome{eval: eval, err: err}
	}()

	var outcome essayOutcome
	select {
	case outcome = <-done:
	case <-ctx.Done():
		outcome.err = ctx.Err()
	}

	if outcome.err == nil && outcome.eval == nil {
		outcome.err = essay.ErrMalformedResponse
	}
	if outcome.err != nil {
		level := slog.LevelWarn
		if errors.Is(outcome.err, essay.ErrGraderDisabled) {
			level = slog.LevelDebug
		}
		s.logger.Log(ctx, level, "Essay grading fell back", "grader", s.grader.Name(), "error", outcome.err)

		result.EssayScore = 0
		result.Feedback = EssayFeedbackUnavailable
		result.EssayDegraded = true
		return
	}

	result.EssayScore = outcome.eval.Points()
	result.Feedback = outcome.eval.Comment
	if rubric, err := json.Marshal(outcome.eval); err == nil {
		result.EssayRubric = rubric
	}
}
