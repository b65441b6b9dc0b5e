package repositories

import (
	"context"
	"time"

	"github.com/coursehub/exam-service/internal/models"
	"gorm.io/gorm"
)

// ExamRepository persists exams and their course link
type ExamRepository interface {
	Create(ctx context.Context, tx *gorm.DB, exam *models.Exam) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error)
	GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error) // Questions ordered by position
	ClearCourse(ctx context.Context, tx *gorm.DB, examID uint) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	ExistsByID(ctx context.Context, tx *gorm.DB, id uint) (bool, error)

	InvalidateCache(ctx context.Context, examID uint)
}

// QuestionRepository persists questions owned by exams or lesson quizzes
type QuestionRepository interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, questions []*models.Question) error
	GetByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]*models.Question, error)
	GetMaxPosition(ctx context.Context, tx *gorm.DB, examID uint) (int, error)
	DeleteByExam(ctx context.Context, tx *gorm.DB, examID uint) (int64, error)
}

// ExamResultRepository stores the single current result per (exam, learner)
type ExamResultRepository interface {
	// Upsert inserts the result, overwriting any row with the same exam and learner
	Upsert(ctx context.Context, tx *gorm.DB, result *models.ExamResult) error
	GetByExamAndLearner(ctx context.Context, tx *gorm.DB, examID uint, learnerID string) (*models.ExamResult, error)
	GetByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]*models.ExamResult, error)
	DeleteByExamAndLearner(ctx context.Context, tx *gorm.DB, examID uint, learnerID string) (int64, error)
	DeleteBatch(ctx context.Context, tx *gorm.DB, results []*models.ExamResult) error
	GetStats(ctx context.Context, tx *gorm.DB, examID uint) (*ExamResultStats, error)

	InvalidateCache(ctx context.Context, examID uint, learnerID string)
	InvalidateExamCache(ctx context.Context, examID uint)
}

// AnswerLogRepository stores submitted-answer history per question
type AnswerLogRepository interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, logs []*models.AnswerLog) error
	GetByQuestionID(ctx context.Context, tx *gorm.DB, questionID uint) ([]*models.AnswerLog, error)
	DeleteBatch(ctx context.Context, tx *gorm.DB, logs []*models.AnswerLog) error
}

// CourseRepository exposes the course fields the exam lifecycle touches
type CourseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, course *models.Course) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error)
	Update(ctx context.Context, tx *gorm.DB, course *models.Course) error
}

// EnrollmentRepository looks up learner registrations
type EnrollmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error
	GetByLearnerAndCourse(ctx context.Context, tx *gorm.DB, learnerID string, courseID uint) (*models.Enrollment, error)
}

// ===== SHARED STATISTICS STRUCTS =====

type ExamResultStats struct {
	TotalResults  int        `json:"total_results"`
	PassedResults int        `json:"passed_results"`
	AverageScore  float64    `json:"average_score"`
	HighestScore  int        `json:"highest_score"`
	PassRate      float64    `json:"pass_rate"`
	LastSubmitted *time.Time `json:"last_submitted"`
}
