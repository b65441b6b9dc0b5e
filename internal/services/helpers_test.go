package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/coursehub/exam-service/internal/certificate"
	"github.com/coursehub/exam-service/internal/essay"
	"github.com/coursehub/exam-service/internal/events"
	"github.com/coursehub/exam-service/internal/models"
	"github.com/coursehub/exam-service/internal/repositories"
	"github.com/coursehub/exam-service/internal/repositories/postgres"
	"github.com/coursehub/exam-service/internal/validator"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubUsers struct{}

func (stubUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	return &models.User{ID: id, FullName: "Learner " + id}, nil
}

func (stubUsers) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	users := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		users = append(users, &models.User{ID: id, FullName: "Learner " + id})
	}
	return users, nil
}

func newTestRepo(t *testing.T) (repositories.Repository, *gorm.DB) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(models.Migratable()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db, UserRepository: stubUsers{}}), db
}

type seededExam struct {
	course *models.Course
	exam   *models.Exam
	mc     *models.Question // "Capital of France?" answer Paris
	open   *models.Question // "Explain consensus."
}

// seedExam creates a course with a linked exam holding one multiple-choice and one
// open-ended question.
func seedExam(t *testing.T, repo repositories.Repository) *seededExam {
	t.Helper()
	ctx := context.Background()

	course := &models.Course{Title: "Distributed Systems"}
	if err := repo.Course().Create(ctx, nil, course); err != nil {
		t.Fatalf("create course: %v", err)
	}
	exam := &models.Exam{
		CourseID:        &course.ID,
		ExamDate:        time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC),
		DurationMinutes: 90,
		EssayTopic:      "Consensus under partitions",
	}
	if err := repo.Exam().Create(ctx, nil, exam); err != nil {
		t.Fatalf("create exam: %v", err)
	}
	course.ExamID = &exam.ID
	if err := repo.Course().Update(ctx, nil, course); err != nil {
		t.Fatalf("link course: %v", err)
	}

	questions, _ := NewQuestionParser().ParseQuestions("Capital of France?---Paris=Rome=Madrid---Paris;Explain consensus.---***", models.ExamOwner(exam.ID))
	if err := repo.Question().CreateBatch(ctx, nil, questions); err != nil {
		t.Fatalf("create questions: %v", err)
	}

	return &seededExam{course: course, exam: exam, mc: questions[0], open: questions[1]}
}

func enroll(t *testing.T, repo repositories.Repository, learnerID string, courseID uint, encryptedPIN string) {
	t.Helper()
	err := repo.Enrollment().Create(context.Background(), nil, &models.Enrollment{
		LearnerID:    learnerID,
		CourseID:     courseID,
		FullName:     "Ada Lovelace",
		EncryptedPIN: encryptedPIN,
	})
	if err != nil {
		t.Fatalf("create enrollment: %v", err)
	}
}

// fakeGrader returns a fixed evaluation or error. With block set it waits for the context,
// with ignoreContext it sleeps for delay regardless of cancellation.
type fakeGrader struct {
	eval          *essay.Evaluation
	err           error
	block         bool
	ignoreContext bool
	delay         time.Duration

	mu    sync.Mutex
	calls int
}

func (g *fakeGrader) Grade(ctx context.Context, topic, text string) (*essay.Evaluation, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()

	if g.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if g.ignoreContext {
		time.Sleep(g.delay)
	}
	return g.eval, g.err
}

func (g *fakeGrader) Name() string { return "fake" }

func essayScoring(total float64) *fakeGrader {
	return &fakeGrader{eval: &essay.Evaluation{
		ContentScore: total / 5, StructureScore: total / 5, StyleScore: total / 5,
		OriginalityScore: total / 5, GrammarScore: total / 5,
		Total:   total,
		Comment: "Well argued.",
	}}
}

type fakeDecryptor struct {
	plain string
	err   error
}

func (d fakeDecryptor) Decrypt(ciphertext string) (string, error) {
	return d.plain, d.err
}

type fakeRenderer struct {
	out  []byte
	err  error
	got  *certificate.Data
	hits int
}

func (r *fakeRenderer) Render(ctx context.Context, data certificate.Data) ([]byte, error) {
	r.hits++
	r.got = &data
	return r.out, r.err
}

func newResultService(repo repositories.Repository, grader essay.Grader, publisher events.EventPublisher) ResultService {
	logger := testLogger()
	grading := NewGradingService(repo, grader, logger, 200*time.Millisecond)
	return NewResultService(repo, grading, publisher, logger, validator.New())
}
