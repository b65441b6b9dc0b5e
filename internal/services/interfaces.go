package services

import (
	"context"
	"time"

	"github.com/coursehub/exam-service/internal/models"
	"github.com/coursehub/exam-service/internal/repositories"
	"github.com/coursehub/exam-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

type CreateExamRequest = validator.ExamCreateRequest
type AddQuestionsRequest = validator.AddQuestionsRequest
type ParseQuestionsRequest = validator.ParseQuestionsRequest
type SubmitExamRequest = validator.SubmitExamRequest

// ParseWarning describes one question definition the parser skipped.
type ParseWarning struct {
	Entry  int    `json:"entry"` // 1-based index within the retained segment
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

type ParseResponse struct {
	Questions []*models.Question `json:"questions"`
	Warnings  []ParseWarning     `json:"warnings"`
}

type ExamResponse struct {
	*models.Exam
	QuestionCount int            `json:"question_count"`
	Warnings      []ParseWarning `json:"warnings,omitempty"`
}

// GradingResult is the scored outcome of one submission, before it is stored.
type GradingResult struct {
	ExamID        uint           `json:"exam_id"`
	MCScore       int            `json:"mc_score"`
	OpenScore     int            `json:"open_score"`
	EssayScore    int            `json:"essay_score"`
	TotalScore    int            `json:"total_score"`
	Passed        bool           `json:"passed"`
	Feedback      string         `json:"feedback"`
	EssayDegraded bool           `json:"essay_degraded"`
	EssayRubric   []byte         `json:"-"`
	Answers       []GradedAnswer `json:"answers"`
	GradedAt      time.Time      `json:"graded_at"`
}

type GradedAnswer struct {
	QuestionID uint   `json:"question_id"`
	Answer     string `json:"answer"`
	Awarded    int    `json:"awarded"`
}

type SubmitResultInput struct {
	ExamID      uint
	LearnerID   string
	MCScore     int
	OpenScore   int
	EssayScore  int
	TotalScore  int
	Passed      bool
	Feedback    string
	EssayRubric []byte
}

type SubmissionResponse struct {
	Result        *models.ExamResult `json:"result"`
	EssayDegraded bool               `json:"essay_degraded"`
}

// ===== SERVICE INTERFACES =====

type QuestionParser interface {
	ParseQuestions(text string, owner models.QuestionOwner) ([]*models.Question, []ParseWarning)
}

type GradingService interface {
	GradeSubmission(ctx context.Context, examID uint, answers map[uint]string, essay string) (*GradingResult, error)
}

type ResultService interface {
	SubmitResult(ctx context.Context, input SubmitResultInput) (*models.ExamResult, error)
	GetResult(ctx context.Context, examID uint, learnerID string) (*models.ExamResult, error)
	ListResults(ctx context.Context, examID uint) ([]*models.ExamResult, error)
	GetStats(ctx context.Context, examID uint) (*repositories.ExamResultStats, error)

	// SubmitExam grades, logs answers and stores the result for one learner.
	SubmitExam(ctx context.Context, examID uint, learnerID string, req *SubmitExamRequest) (*SubmissionResponse, error)
}

type CertificateService interface {
	GetCertificate(ctx context.Context, examID uint, learnerID string) ([]byte, error)
}

type ExamService interface {
	CreateExam(ctx context.Context, req *CreateExamRequest) (*ExamResponse, error)
	AddQuestions(ctx context.Context, examID uint, req *AddQuestionsRequest) (*ExamResponse, error)
	GetExam(ctx context.Context, examID uint) (*ExamResponse, error)
	PreviewQuestions(ctx context.Context, req *ParseQuestionsRequest) (*ParseResponse, error)
	DeleteExam(ctx context.Context, examID uint) error
}

type ExportService interface {
	ExportResults(ctx context.Context, examID uint) ([]byte, error)
}

type ServiceManager interface {
	Exam() ExamService
	Grading() GradingService
	Result() ResultService
	Certificate() CertificateService
	Export() ExportService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
