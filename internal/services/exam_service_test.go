package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/coursehub/exam-service/internal/events"
	"github.com/coursehub/exam-service/internal/models"
	"github.com/coursehub/exam-service/internal/repositories"
	"github.com/coursehub/exam-service/internal/validator"
)

func newExamService(repo repositories.Repository, publisher events.EventPublisher) ExamService {
	return NewExamService(repo, NewQuestionParser(), publisher, testLogger(), validator.New())
}

func createExamRequest(courseID uint, text string) *CreateExamRequest {
	return &CreateExamRequest{
		CourseID:        courseID,
		ExamDate:        time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
		EssayTopic:      "Eventual consistency",
		QuestionsText:   text,
	}
}

func TestExamService_CreateExam(t *testing.T) {
	repo, _ := newTestRepo(t)
	svc := newExamService(repo, events.NewMockEventPublisher(testLogger()))
	ctx := context.Background()

	course := &models.Course{Title: "Databases"}
	if err := repo.Course().Create(ctx, nil, course); err != nil {
		t.Fatalf("create course: %v", err)
	}

	resp, err := svc.CreateExam(ctx, createExamRequest(course.ID, "What is 2+2?---2=3=4---4;broken entry;Explain.---***---"))
	if err != nil {
		t.Fatalf("CreateExam() error = %v", err)
	}
	if resp.QuestionCount != 2 || len(resp.Warnings) != 1 {
		t.Errorf("CreateExam() questions = %d warnings = %v", resp.QuestionCount, resp.Warnings)
	}

	linked, err := repo.Course().GetByID(ctx, nil, course.ID)
	if err != nil {
		t.Fatalf("get course: %v", err)
	}
	if linked.ExamID == nil || *linked.ExamID != resp.ID {
		t.Errorf("course exam link = %v, want %d", linked.ExamID, resp.ID)
	}

	got, err := svc.GetExam(ctx, resp.ID)
	if err != nil {
		t.Fatalf("GetExam() error = %v", err)
	}
	if len(got.Questions) != 2 || got.Questions[0].Prompt != "What is 2+2?" || !got.Questions[1].IsOpenEnded() {
		t.Errorf("GetExam() questions = %+v", got.Questions)
	}

	_, err = svc.CreateExam(ctx, createExamRequest(course.ID, "Q---a=b---a"))
	if !errors.Is(err, ErrCourseAlreadyHasExam) || !errors.Is(err, ErrConflict) {
		t.Errorf("second CreateExam() error = %v, want ErrCourseAlreadyHasExam", err)
	}
}

func TestExamService_CreateExamRejects(t *testing.T) {
	repo, db := newTestRepo(t)
	svc := newExamService(repo, events.NewMockEventPublisher(testLogger()))
	ctx := context.Background()

	course := &models.Course{Title: "Networks"}
	if err := repo.Course().Create(ctx, nil, course); err != nil {
		t.Fatalf("create course: %v", err)
	}

	if _, err := svc.CreateExam(ctx, createExamRequest(999, "Q---a=b---a")); !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("unknown course error = %v", err)
	}

	var rule *BusinessRuleError
	if _, err := svc.CreateExam(ctx, createExamRequest(course.ID, "nothing parsable;still nothing")); !errors.As(err, &rule) {
		t.Errorf("unparsable text error = %v, want BusinessRuleError", err)
	}

	req := createExamRequest(course.ID, "Q---a=b---a")
	req.DurationMinutes = 0
	var ve ValidationErrors
	if _, err := svc.CreateExam(ctx, req); !errors.As(err, &ve) {
		t.Errorf("invalid request error = %v, want ValidationErrors", err)
	}

	var exams int64
	db.Model(&models.Exam{}).Count(&exams)
	if exams != 0 {
		t.Errorf("rejected requests left %d exams behind", exams)
	}
}

func TestExamService_AddQuestions(t *testing.T) {
	repo, _ := newTestRepo(t)
	seed := seedExam(t, repo)
	svc := newExamService(repo, events.NewMockEventPublisher(testLogger()))
	ctx := context.Background()

	resp, err := svc.AddQuestions(ctx, seed.exam.ID, &AddQuestionsRequest{QuestionsText: "Largest ocean?---Atlantic=Pacific---Pacific;junk"})
	if err != nil {
		t.Fatalf("AddQuestions() error = %v", err)
	}
	if resp.QuestionCount != 3 || len(resp.Warnings) != 1 {
		t.Fatalf("AddQuestions() count = %d warnings = %v", resp.QuestionCount, resp.Warnings)
	}
	last := resp.Questions[2]
	if last.Prompt != "Largest ocean?" || last.Position != 2 {
		t.Errorf("appended question = %+v, want position 2", last)
	}

	if _, err := svc.AddQuestions(ctx, 999, &AddQuestionsRequest{QuestionsText: "Q---***"}); !errors.Is(err, ErrExamNotFound) {
		t.Errorf("unknown exam error = %v", err)
	}
}

func TestExamService_PreviewQuestions(t *testing.T) {
	repo, db := newTestRepo(t)
	svc := newExamService(repo, events.NewMockEventPublisher(testLogger()))

	resp, err := svc.PreviewQuestions(context.Background(), &ParseQuestionsRequest{QuestionsText: "A---***;B"})
	if err != nil {
		t.Fatalf("PreviewQuestions() error = %v", err)
	}
	if len(resp.Questions) != 1 || len(resp.Warnings) != 1 {
		t.Errorf("PreviewQuestions() = %+v", resp)
	}

	var stored int64
	db.Model(&models.Question{}).Count(&stored)
	if stored != 0 {
		t.Errorf("preview persisted %d questions", stored)
	}
}

func TestExamService_DeleteExamCascade(t *testing.T) {
	repo, db := newTestRepo(t)
	seed := seedExam(t, repo)
	other := seedExam(t, repo)
	publisher := events.NewMockEventPublisher(testLogger())
	ctx := context.Background()

	results := newResultService(repo, essayScoring(20), events.NewMockEventPublisher(testLogger()))
	for _, learner := range []string{"learner-1", "learner-2"} {
		if _, err := results.SubmitExam(ctx, seed.exam.ID, learner, &SubmitExamRequest{
			Answers: map[uint]string{seed.mc.ID: "Paris", seed.open.ID: "text"},
		}); err != nil {
			t.Fatalf("SubmitExam() error = %v", err)
		}
	}
	if _, err := results.SubmitExam(ctx, other.exam.ID, "learner-1", &SubmitExamRequest{
		Answers: map[uint]string{other.mc.ID: "Paris"},
	}); err != nil {
		t.Fatalf("SubmitExam() on other exam error = %v", err)
	}

	svc := newExamService(repo, publisher)
	if err := svc.DeleteExam(ctx, seed.exam.ID); err != nil {
		t.Fatalf("DeleteExam() error = %v", err)
	}

	count := func(model interface{}, query string, args ...interface{}) int64 {
		var n int64
		db.Model(model).Where(query, args...).Count(&n)
		return n
	}
	if n := count(&models.Exam{}, "id = ?", seed.exam.ID); n != 0 {
		t.Errorf("exam rows = %d", n)
	}
	if n := count(&models.Question{}, "exam_id = ?", seed.exam.ID); n != 0 {
		t.Errorf("question rows = %d", n)
	}
	if n := count(&models.ExamResult{}, "exam_id = ?", seed.exam.ID); n != 0 {
		t.Errorf("result rows = %d", n)
	}
	if n := count(&models.AnswerLog{}, "question_id IN ?", []uint{seed.mc.ID, seed.open.ID}); n != 0 {
		t.Errorf("answer log rows = %d", n)
	}

	course, err := repo.Course().GetByID(ctx, nil, seed.course.ID)
	if err != nil {
		t.Fatalf("get course: %v", err)
	}
	if course.ExamID != nil {
		t.Errorf("course still references exam %d", *course.ExamID)
	}

	// The other exam is untouched.
	if n := count(&models.ExamResult{}, "exam_id = ?", other.exam.ID); n != 1 {
		t.Errorf("other exam results = %d, want 1", n)
	}
	if n := count(&models.AnswerLog{}, "question_id = ?", other.mc.ID); n != 1 {
		t.Errorf("other exam answer logs = %d, want 1", n)
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 1 || published[0].Type != events.ExamDeleted {
		t.Fatalf("published = %+v", published)
	}
	summary := published[0].Data.(events.ExamDeletedData)
	if summary.QuestionsDeleted != 2 || summary.ResultsDeleted != 2 || summary.AnswerLogsDeleted != 4 {
		t.Errorf("deletion summary = %+v", summary)
	}

	if err := svc.DeleteExam(ctx, seed.exam.ID); !errors.Is(err, ErrExamNotFound) {
		t.Errorf("second DeleteExam() error = %v, want ErrExamNotFound", err)
	}
}

// A failure inside the cascade leaves every row in place.
func TestExamService_DeleteExamRollsBack(t *testing.T) {
	repo, db := newTestRepo(t)
	seed := seedExam(t, repo)
	ctx := context.Background()

	results := newResultService(repo, essayScoring(20), events.NewMockEventPublisher(testLogger()))
	if _, err := results.SubmitExam(ctx, seed.exam.ID, "learner-1", &SubmitExamRequest{
		Answers: map[uint]string{seed.mc.ID: "Paris"},
	}); err != nil {
		t.Fatalf("SubmitExam() error = %v", err)
	}

	if err := db.Migrator().DropTable(&models.AnswerLog{}); err != nil {
		t.Fatalf("drop answer logs: %v", err)
	}

	svc := newExamService(repo, events.NewMockEventPublisher(testLogger()))
	if err := svc.DeleteExam(ctx, seed.exam.ID); err == nil {
		t.Fatal("DeleteExam() succeeded without the answer log table")
	}

	var results64, questions int64
	db.Model(&models.ExamResult{}).Where("exam_id = ?", seed.exam.ID).Count(&results64)
	db.Model(&models.Question{}).Where("exam_id = ?", seed.exam.ID).Count(&questions)
	if results64 != 1 || questions != 2 {
		t.Errorf("after rollback results = %d questions = %d, want 1 and 2", results64, questions)
	}

	course, _ := repo.Course().GetByID(ctx, nil, seed.course.ID)
	if course.ExamID == nil {
		t.Error("course link cleared despite rollback")
	}
}
