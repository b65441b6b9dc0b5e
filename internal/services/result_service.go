package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/coursehub/exam-service/internal/events"
	"github.com/coursehub/exam-service/internal/models"
	"github.com/coursehub/exam-service/internal/repositories"
	"github.com/coursehub/exam-service/internal/validator"
	"gorm.io/datatypes"
)

type resultService struct {
	repo      repositories.Repository
	grading   GradingService
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewResultService(repo repositories.Repository, grading GradingService, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) ResultService {
	return &resultService{
		repo:      repo,
		grading:   grading,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// SubmitResult replaces the learner's current result for the exam. Only the latest
// submission is kept.
func (s *resultService) SubmitResult(ctx context.Context, input SubmitResultInput) (*models.ExamResult, error) {
	if err := validateResultInput(input); err != nil {
		return nil, err
	}

	var result *models.ExamResult
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		exists, err := txRepo.Exam().ExistsByID(ctx, nil, input.ExamID)
		if err != nil {
			return fmt.Errorf("failed to check exam: %w", err)
		}
		if !exists {
			return ErrExamNotFound
		}

		result, err = replaceResult(ctx, txRepo, input)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.repo.ExamResult().InvalidateCache(ctx, input.ExamID, input.LearnerID)

	s.logger.Info("Exam result stored",
		"exam_id", input.ExamID,
		"learner_id", input.LearnerID,
		"total_score", result.TotalScore,
		"passed", result.Passed)

	return result, nil
}

// replaceResult deletes any existing row for the pair and upserts the new one. Must run
// inside a transaction.
func replaceResult(ctx context.Context, txRepo repositories.Repository, input SubmitResultInput) (*models.ExamResult, error) {
	replaced, err := txRepo.ExamResult().DeleteByExamAndLearner(ctx, nil, input.ExamID, input.LearnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to remove previous result: %w", err)
	}

	result := &models.ExamResult{
		ExamID:      input.ExamID,
		LearnerID:   input.LearnerID,
		MCScore:     input.MCScore,
		OpenScore:   input.OpenScore,
		EssayScore:  input.EssayScore,
		TotalScore:  input.TotalScore,
		Passed:      input.Passed,
		Feedback:    input.Feedback,
		SubmittedAt: time.Now().UTC(),
	}
	if len(input.EssayRubric) > 0 {
		result.EssayRubric = datatypes.JSON(input.EssayRubric)
	}

	if err := txRepo.ExamResult().Upsert(ctx, nil, result); err != nil {
		return nil, fmt.Errorf("failed to store result: %w", err)
	}

	if replaced > 0 {
		slog.DebugContext(ctx, "Previous exam result replaced", "exam_id", input.ExamID, "learner_id", input.LearnerID)
	}
	return result, nil
}

func validateResultInput(input SubmitResultInput) error {
	var errs ValidationErrors
	if input.ExamID == 0 {
		errs = append(errs, *NewValidationError("exam_id", "is required", input.ExamID))
	}
	if strings.TrimSpace(input.LearnerID) == "" {
		errs = append(errs, *NewValidationError("learner_id", "is required", input.LearnerID))
	}
	if input.MCScore < 0 || input.OpenScore < 0 || input.EssayScore < 0 {
		errs = append(errs, *NewValidationError("scores", "must not be negative", nil))
	}
	if input.TotalScore != input.MCScore+input.OpenScore+input.EssayScore {
		errs = append(errs, *NewValidationError("total_score", "must equal the sum of the sub-scores", input.TotalScore))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (s *resultService) GetResult(ctx context.Context, examID uint, learnerID string) (*models.ExamResult, error) {
	result, err := s.repo.ExamResult().GetByExamAndLearner(ctx, nil, examID, learnerID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get exam result: %w", err)
	}
	return result, nil
}

func (s *resultService) ListResults(ctx context.Context, examID uint) ([]*models.ExamResult, error) {
	exists, err := s.repo.Exam().ExistsByID(ctx, nil, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to check exam: %w", err)
	}
	if !exists {
		return nil, ErrExamNotFound
	}

	results, err := s.repo.ExamResult().GetByExam(ctx, nil, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to list exam results: %w", err)
	}
	return results, nil
}

func (s *resultService) GetStats(ctx context.Context, examID uint) (*repositories.ExamResultStats, error) {
	stats, err := s.repo.ExamResult().GetStats(ctx, nil, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to get exam result stats: %w", err)
	}
	return stats, nil
}

// SubmitExam grades the submission outside any transaction, then records the answer logs
// and the result together.
func (s *resultService) SubmitExam(ctx context.Context, examID uint, learnerID string, req *SubmitExamRequest) (*SubmissionResponse, error) {
	s.logger.Info("Submitting exam", "exam_id", examID, "learner_id", learnerID)

	if errs := s.validator.GetBusinessValidator().ValidateSubmission(req); len(errs) > 0 {
		return nil, errs
	}

	graded, err := s.grading.GradeSubmission(ctx, examID, req.Answers, req.Essay)
	if err != nil {
		return nil, err
	}

	input := SubmitResultInput{
		ExamID:      examID,
		LearnerID:   learnerID,
		MCScore:     graded.MCScore,
		OpenScore:   graded.OpenScore,
		EssayScore:  graded.EssayScore,
		TotalScore:  graded.TotalScore,
		Passed:      graded.Passed,
		Feedback:    graded.Feedback,
		EssayRubric: graded.EssayRubric,
	}
	if err := validateResultInput(input); err != nil {
		return nil, err
	}

	var result *models.ExamResult
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		exists, err := txRepo.Exam().ExistsByID(ctx, nil, examID)
		if err != nil {
			return fmt.Errorf("failed to check exam: %w", err)
		}
		if !exists {
			return ErrExamNotFound
		}

		logs := make([]*models.AnswerLog, 0, len(graded.Answers))
		for _, a := range graded.Answers {
			logs = append(logs, &models.AnswerLog{
				QuestionID: a.QuestionID,
				LearnerID:  learnerID,
				Answer:     a.Answer,
				Awarded:    a.Awarded,
			})
		}
		if err := txRepo.AnswerLog().CreateBatch(ctx, nil, logs); err != nil {
			return fmt.Errorf("failed to record answers: %w", err)
		}

		result, err = replaceResult(ctx, txRepo, input)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.repo.ExamResult().InvalidateCache(ctx, examID, learnerID)

	event := events.NewEvent(events.ExamResultSubmitted, events.ResultSubmittedData{
		ExamID:     examID,
		LearnerID:  learnerID,
		TotalScore: result.TotalScore,
		Passed:     result.Passed,
		EssayScore: result.EssayScore,
		Degraded:   graded.EssayDegraded,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish result event", "exam_id", examID, "learner_id", learnerID, "error", err)
	}

	s.logger.Info("Exam submitted",
		"exam_id", examID,
		"learner_id", learnerID,
		"total_score", result.TotalScore,
		"passed", result.Passed)

	return &SubmissionResponse{Result: result, EssayDegraded: graded.EssayDegraded}, nil
}
