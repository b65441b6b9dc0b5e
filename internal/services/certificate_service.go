package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/coursehub/exam-service/internal/certificate"
	"github.com/coursehub/exam-service/internal/crypto"
	"github.com/coursehub/exam-service/internal/repositories"
	"github.com/google/uuid"
)

type certificateService struct {
	repo      repositories.Repository
	decryptor crypto.Decryptor
	renderer  certificate.Renderer
	logger    *slog.Logger
}

func NewCertificateService(repo repositories.Repository, decryptor crypto.Decryptor, renderer certificate.Renderer, logger *slog.Logger) CertificateService {
	return &certificateService{
		repo:      repo,
		decryptor: decryptor,
		renderer:  renderer,
		logger:    logger,
	}
}

// GetCertificate issues the certificate for a passed exam. It never writes.
//
// Errors: ErrResultNotFound when the learner has no result, ErrCertificateNotPassed when the
// result is a fail, ErrEnrollmentNotFound when the learner never enrolled in the exam's course,
// and a *RenderError (matching ErrCertificateRender) when decryption or rendering fails.
func (s *certificateService) GetCertificate(ctx context.Context, examID uint, learnerID string) ([]byte, error) {
	result, err := s.repo.ExamResult().GetByExamAndLearner(ctx, nil, examID, learnerID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get exam result: %w", err)
	}

	if !result.Passed {
		return nil, ErrCertificateNotPassed
	}

	exam, err := s.repo.Exam().GetByID(ctx, nil, examID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}
	if exam.CourseID == nil {
		return nil, ErrEnrollmentNotFound
	}

	enrollment, err := s.repo.Enrollment().GetByLearnerAndCourse(ctx, nil, learnerID, *exam.CourseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}

	course, err := s.repo.Course().GetByID(ctx, nil, *exam.CourseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	pin, err := s.decryptor.Decrypt(enrollment.EncryptedPIN)
	if err != nil {
		s.logger.Error("Failed to decrypt learner identifier", "exam_id", examID, "learner_id", learnerID, "error", err)
		return nil, &RenderError{Stage: "decrypt", Err: err}
	}

	doc, err := s.renderer.Render(ctx, certificate.Data{
		Serial:      uuid.NewString(),
		LearnerName: enrollment.FullName,
		LearnerPIN:  pin,
		CourseTitle: course.Title,
		ExamDate:    exam.ExamDate,
		TotalScore:  result.TotalScore,
		IssuedAt:    time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error("Certificate rendering failed", "exam_id", examID, "learner_id", learnerID, "error", err)
		return nil, &RenderError{Stage: "render", Err: err}
	}
	if len(doc) == 0 {
		return nil, &RenderError{Stage: "render", Err: errors.New("renderer returned no output")}
	}

	s.logger.Info("Certificate issued", "exam_id", examID, "learner_id", learnerID, "bytes", len(doc))
	return doc, nil
}
