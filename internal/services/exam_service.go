package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/coursehub/exam-service/internal/events"
	"github.com/coursehub/exam-service/internal/models"
	"github.com/coursehub/exam-service/internal/repositories"
	"github.com/coursehub/exam-service/internal/validator"
	"gorm.io/gorm"
)

type examService struct {
	repo      repositories.Repository
	parser    QuestionParser
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewExamService(repo repositories.Repository, parser QuestionParser, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) ExamService {
	return &examService{
		repo:      repo,
		parser:    parser,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// ===== AUTHORING =====

func (s *examService) CreateExam(ctx context.Context, req *CreateExamRequest) (*ExamResponse, error) {
	s.logger.Info("Creating exam", "course_id", req.CourseID)

	if errs := s.validator.GetBusinessValidator().ValidateExamCreate(req); len(errs) > 0 {
		return nil, errs
	}

	questions, warnings := s.parser.ParseQuestions(req.QuestionsText, models.QuestionOwner{})
	if len(questions) == 0 {
		return nil, noQuestionsError(warnings)
	}

	courseID := req.CourseID
	exam := &models.Exam{
		CourseID:        &courseID,
		ExamDate:        req.ExamDate,
		DurationMinutes: req.DurationMinutes,
		EssayTopic:      req.EssayTopic,
	}

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		course, err := txRepo.Course().GetByID(ctx, nil, req.CourseID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrCourseNotFound
			}
			return fmt.Errorf("failed to get course: %w", err)
		}
		if course.ExamID != nil {
			return ErrCourseAlreadyHasExam
		}

		if err := txRepo.Exam().Create(ctx, nil, exam); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrCourseAlreadyHasExam
			}
			return fmt.Errorf("failed to create exam: %w", err)
		}

		for _, q := range questions {
			q.ExamID = &exam.ID
		}
		if err := txRepo.Question().CreateBatch(ctx, nil, questions); err != nil {
			return fmt.Errorf("failed to create questions: %w", err)
		}

		course.ExamID = &exam.ID
		if err := txRepo.Course().Update(ctx, nil, course); err != nil {
			return fmt.Errorf("failed to link course: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	exam.Questions = make([]models.Question, len(questions))
	for i, q := range questions {
		exam.Questions[i] = *q
	}

	s.logger.Info("Exam created",
		"exam_id", exam.ID,
		"course_id", req.CourseID,
		"questions", len(questions),
		"skipped_entries", len(warnings))

	return &ExamResponse{Exam: exam, QuestionCount: len(questions), Warnings: warnings}, nil
}

// AddQuestions appends parsed questions after the exam's current last position.
func (s *examService) AddQuestions(ctx context.Context, examID uint, req *AddQuestionsRequest) (*ExamResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	questions, warnings := s.parser.ParseQuestions(req.QuestionsText, models.ExamOwner(examID))
	if len(questions) == 0 {
		return nil, noQuestionsError(warnings)
	}

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		exists, err := txRepo.Exam().ExistsByID(ctx, nil, examID)
		if err != nil {
			return fmt.Errorf("failed to check exam: %w", err)
		}
		if !exists {
			return ErrExamNotFound
		}

		last, err := txRepo.Question().GetMaxPosition(ctx, nil, examID)
		if err != nil {
			return fmt.Errorf("failed to get question positions: %w", err)
		}
		for i, q := range questions {
			q.Position = last + 1 + i
		}

		if err := txRepo.Question().CreateBatch(ctx, nil, questions); err != nil {
			return fmt.Errorf("failed to create questions: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.repo.Exam().InvalidateCache(ctx, examID)
	s.logger.Info("Questions appended", "exam_id", examID, "added", len(questions), "skipped_entries", len(warnings))

	resp, err := s.GetExam(ctx, examID)
	if err != nil {
		return nil, err
	}
	resp.Warnings = warnings
	return resp, nil
}

func (s *examService) GetExam(ctx context.Context, examID uint) (*ExamResponse, error) {
	exam, err := s.repo.Exam().GetByIDWithQuestions(ctx, nil, examID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}
	return &ExamResponse{Exam: exam, QuestionCount: len(exam.Questions)}, nil
}

// PreviewQuestions parses without persisting anything.
func (s *examService) PreviewQuestions(ctx context.Context, req *ParseQuestionsRequest) (*ParseResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	questions, warnings := s.parser.ParseQuestions(req.QuestionsText, models.QuestionOwner{})
	if questions == nil {
		questions = []*models.Question{}
	}
	if warnings == nil {
		warnings = []ParseWarning{}
	}
	return &ParseResponse{Questions: questions, Warnings: warnings}, nil
}

func noQuestionsError(warnings []ParseWarning) error {
	return NewBusinessRuleError("questions_required", "no question definitions could be parsed", map[string]interface{}{
		"warnings": warnings,
	})
}

// ===== DELETION =====

// DeleteExam removes the exam and everything it owns in one transaction. Dependents go
// first so foreign keys hold at every step:
//  1. unlink the course (both directions)
//  2. delete the exam's results
//  3. delete the answer logs of every exam question
//  4. delete the questions
//  5. delete the exam row
func (s *examService) DeleteExam(ctx context.Context, examID uint) error {
	s.logger.Info("Deleting exam", "exam_id", examID)

	summary := events.ExamDeletedData{ExamID: examID}

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		exam, err := txRepo.Exam().GetByID(ctx, nil, examID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrExamNotFound
			}
			return fmt.Errorf("failed to get exam: %w", err)
		}
		summary.CourseID = exam.CourseID

		if exam.CourseID != nil {
			course, err := txRepo.Course().GetByID(ctx, nil, *exam.CourseID)
			switch {
			case err == nil:
				course.ExamID = nil
				if err := txRepo.Course().Update(ctx, nil, course); err != nil {
					return fmt.Errorf("failed to unlink course: %w", err)
				}
			case !repositories.IsNotFoundError(err):
				return fmt.Errorf("failed to get course: %w", err)
			}
			if err := txRepo.Exam().ClearCourse(ctx, nil, examID); err != nil {
				return fmt.Errorf("failed to clear exam course: %w", err)
			}
		}

		results, err := txRepo.ExamResult().GetByExam(ctx, nil, examID)
		if err != nil {
			return fmt.Errorf("failed to get exam results: %w", err)
		}
		if err := txRepo.ExamResult().DeleteBatch(ctx, nil, results); err != nil {
			return fmt.Errorf("failed to delete exam results: %w", err)
		}
		summary.ResultsDeleted = int64(len(results))

		questions, err := txRepo.Question().GetByExam(ctx, nil, examID)
		if err != nil {
			return fmt.Errorf("failed to get exam questions: %w", err)
		}
		for _, q := range questions {
			logs, err := txRepo.AnswerLog().GetByQuestionID(ctx, nil, q.ID)
			if err != nil {
				return fmt.Errorf("failed to get answer logs for question %d: %w", q.ID, err)
			}
			if err := txRepo.AnswerLog().DeleteBatch(ctx, nil, logs); err != nil {
				return fmt.Errorf("failed to delete answer logs for question %d: %w", q.ID, err)
			}
			summary.AnswerLogsDeleted += int64(len(logs))
		}

		deleted, err := txRepo.Question().DeleteByExam(ctx, nil, examID)
		if err != nil {
			return fmt.Errorf("failed to delete exam questions: %w", err)
		}
		summary.QuestionsDeleted = deleted

		if err := txRepo.Exam().Delete(ctx, nil, examID); err != nil {
			return fmt.Errorf("failed to delete exam: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.repo.Exam().InvalidateCache(ctx, examID)

	if err := s.publisher.Publish(ctx, events.NewEvent(events.ExamDeleted, summary)); err != nil {
		s.logger.Error("Failed to publish exam deleted event", "exam_id", examID, "error", err)
	}

	s.logger.Info("Exam deleted",
		"exam_id", examID,
		"questions_deleted", summary.QuestionsDeleted,
		"results_deleted", summary.ResultsDeleted,
		"answer_logs_deleted", summary.AnswerLogsDeleted)

	return nil
}
