package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/coursehub/exam-service/internal/models"
	"github.com/coursehub/exam-service/internal/repositories"
)

type stubUsers struct{}

func (stubUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	return &models.User{ID: id, FullName: "Learner " + id}, nil
}
func (stubUsers) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) { return nil, nil }
func (stubUsers) ExistsByID(ctx context.Context, id string) (bool, error)           { return true, nil }
func (stubUsers) HasRole(ctx context.Context, id string, role models.UserRole) (bool, error) {
	return true, nil
}

func newTestRepository(t *testing.T) (repositories.Repository, *gorm.DB) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
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

	return NewPostgreSQLRepository(RepositoryConfig{DB: db, UserRepository: stubUsers{}}), db
}

func seedExam(t *testing.T, repo repositories.Repository) (*models.Course, *models.Exam) {
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
		EssayTopic:      "Consensus",
	}
	if err := repo.Exam().Create(ctx, nil, exam); err != nil {
		t.Fatalf("create exam: %v", err)
	}
	course.ExamID = &exam.ID
	if err := repo.Course().Update(ctx, nil, course); err != nil {
		t.Fatalf("link course: %v", err)
	}
	return course, exam
}

func TestExamRepository_GetByIDWithQuestions(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()
	_, exam := seedExam(t, repo)

	questions := []*models.Question{
		{ExamID: &exam.ID, Position: 1, Prompt: "second", Options: []string{"a", "b"}, CorrectAnswer: "a"},
		{ExamID: &exam.ID, Position: 0, Prompt: "first"},
	}
	if err := repo.Question().CreateBatch(ctx, nil, questions); err != nil {
		t.Fatalf("CreateBatch() error = %v", err)
	}

	got, err := repo.Exam().GetByIDWithQuestions(ctx, nil, exam.ID)
	if err != nil {
		t.Fatalf("GetByIDWithQuestions() error = %v", err)
	}
	if len(got.Questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(got.Questions))
	}
	if got.Questions[0].Prompt != "first" || !got.Questions[0].IsOpenEnded() {
		t.Errorf("first question = %+v", got.Questions[0])
	}
	if opts := got.Questions[1].Options; len(opts) != 2 || opts[0] != "a" {
		t.Errorf("options did not round-trip: %v", opts)
	}

	maxPos, err := repo.Question().GetMaxPosition(ctx, nil, exam.ID)
	if err != nil || maxPos != 1 {
		t.Errorf("GetMaxPosition() = %d, %v; want 1", maxPos, err)
	}

	_, err = repo.Exam().GetByIDWithQuestions(ctx, nil, exam.ID+100)
	if !repositories.IsNotFoundError(err) {
		t.Errorf("missing exam error = %v, want not found", err)
	}
}

func TestQuestionRepository_GetMaxPositionEmpty(t *testing.T) {
	repo, _ := newTestRepository(t)
	_, exam := seedExam(t, repo)

	maxPos, err := repo.Question().GetMaxPosition(context.Background(), nil, exam.ID)
	if err != nil || maxPos != -1 {
		t.Errorf("GetMaxPosition() = %d, %v; want -1", maxPos, err)
	}
}

func TestExamResultRepository_UpsertKeepsOneRow(t *testing.T) {
	repo, db := newTestRepository(t)
	ctx := context.Background()
	_, exam := seedExam(t, repo)

	first := &models.ExamResult{ExamID: exam.ID, LearnerID: "u1", MCScore: 1, TotalScore: 1, SubmittedAt: time.Now()}
	if err := repo.ExamResult().Upsert(ctx, nil, first); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	second := &models.ExamResult{ExamID: exam.ID, LearnerID: "u1", MCScore: 4, EssayScore: 30, TotalScore: 34, Passed: true, SubmittedAt: time.Now()}
	if err := repo.ExamResult().Upsert(ctx, nil, second); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	var count int64
	db.Model(&models.ExamResult{}).Where("exam_id = ? AND learner_id = ?", exam.ID, "u1").Count(&count)
	if count != 1 {
		t.Fatalf("rows for pair = %d, want 1", count)
	}

	got, err := repo.ExamResult().GetByExamAndLearner(ctx, nil, exam.ID, "u1")
	if err != nil {
		t.Fatalf("GetByExamAndLearner() error = %v", err)
	}
	if got.TotalScore != 34 || !got.Passed || got.MCScore != 4 {
		t.Errorf("result = %+v, want second submission", got)
	}

	_, err = repo.ExamResult().GetByExamAndLearner(ctx, nil, exam.ID, "nobody")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("missing result error = %v, want ErrRecordNotFound", err)
	}
}

func TestExamResultRepository_GetStats(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()
	_, exam := seedExam(t, repo)

	for i, total := range []int{10, 30, 50} {
		res := &models.ExamResult{
			ExamID:      exam.ID,
			LearnerID:   fmt.Sprintf("u%d", i),
			TotalScore:  total,
			Passed:      total >= 30,
			SubmittedAt: time.Now().Add(time.Duration(i) * time.Minute),
		}
		if err := repo.ExamResult().Upsert(ctx, nil, res); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}

	stats, err := repo.ExamResult().GetStats(ctx, nil, exam.ID)
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}
	if stats.TotalResults != 3 || stats.PassedResults != 2 || stats.HighestScore != 50 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.AverageScore != 30 {
		t.Errorf("AverageScore = %v, want 30", stats.AverageScore)
	}
	if stats.LastSubmitted == nil {
		t.Error("LastSubmitted not set")
	}
}

func TestAnswerLogRepository(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	logs := []*models.AnswerLog{
		{QuestionID: 1, LearnerID: "a", Answer: "x"},
		{QuestionID: 1, LearnerID: "b", Answer: "y"},
		{QuestionID: 2, LearnerID: "a", Answer: "z"},
	}
	if err := repo.AnswerLog().CreateBatch(ctx, nil, logs); err != nil {
		t.Fatalf("CreateBatch() error = %v", err)
	}

	found, err := repo.AnswerLog().GetByQuestionID(ctx, nil, 1)
	if err != nil || len(found) != 2 {
		t.Fatalf("GetByQuestionID() = %d logs, %v; want 2", len(found), err)
	}
	if err := repo.AnswerLog().DeleteBatch(ctx, nil, found); err != nil {
		t.Fatalf("DeleteBatch() error = %v", err)
	}

	left, _ := repo.AnswerLog().GetByQuestionID(ctx, nil, 1)
	other, _ := repo.AnswerLog().GetByQuestionID(ctx, nil, 2)
	if len(left) != 0 || len(other) != 1 {
		t.Errorf("after delete: question 1 has %d, question 2 has %d", len(left), len(other))
	}
}

func TestWithTransaction_RollsBack(t *testing.T) {
	repo, db := newTestRepository(t)
	ctx := context.Background()
	_, exam := seedExam(t, repo)

	boom := errors.New("boom")
	err := repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.ExamResult().Upsert(ctx, nil, &models.ExamResult{ExamID: exam.ID, LearnerID: "u", SubmittedAt: time.Now()}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTransaction() error = %v, want boom", err)
	}

	var count int64
	db.Model(&models.ExamResult{}).Count(&count)
	if count != 0 {
		t.Errorf("rolled back transaction left %d rows", count)
	}
}

func TestEnrollmentRepository(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()
	course, _ := seedExam(t, repo)

	enrollment := &models.Enrollment{LearnerID: "u1", CourseID: course.ID, FullName: "Ada", EncryptedPIN: "sealed"}
	if err := repo.Enrollment().Create(ctx, nil, enrollment); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.Enrollment().GetByLearnerAndCourse(ctx, nil, "u1", course.ID)
	if err != nil || got.FullName != "Ada" {
		t.Fatalf("GetByLearnerAndCourse() = %+v, %v", got, err)
	}

	_, err = repo.Enrollment().GetByLearnerAndCourse(ctx, nil, "u2", course.ID)
	if !repositories.IsNotFoundError(err) {
		t.Errorf("missing enrollment error = %v", err)
	}
}
