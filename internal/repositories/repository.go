package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repository aggregates the exam-lifecycle repositories
type Repository interface {
	// Exam domain
	Exam() ExamRepository
	Question() QuestionRepository
	ExamResult() ExamResultRepository
	AnswerLog() AnswerLogRepository

	// Course catalogue (read-mostly, owned by the course service)
	Course() CourseRepository
	Enrollment() EnrollmentRepository

	// User domain (read-only, backed by the identity provider)
	User() UserRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}

// IsNotFoundError reports whether err means the requested row does not exist
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, ErrUserNotFound)
}

var ErrUserNotFound = errors.New("user not found")
