package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/coursehub/exam-service/internal/events"
)

func TestExportService_ExportResults(t *testing.T) {
	repo, _ := newTestRepo(t)
	seed := seedExam(t, repo)
	results := newResultService(repo, essayScoring(0), events.NewMockEventPublisher(testLogger()))
	ctx := context.Background()

	for _, in := range []SubmitResultInput{
		{ExamID: seed.exam.ID, LearnerID: "learner-1", MCScore: 1, OpenScore: 2, EssayScore: 30, TotalScore: 33, Passed: true},
		{ExamID: seed.exam.ID, LearnerID: "learner-2", MCScore: 0, OpenScore: 2, EssayScore: 5, TotalScore: 7},
	} {
		if _, err := results.SubmitResult(ctx, in); err != nil {
			t.Fatalf("SubmitResult() error = %v", err)
		}
	}

	svc := NewExportService(repo, results, testLogger())
	data, err := svc.ExportResults(ctx, seed.exam.ID)
	if err != nil {
		t.Fatalf("ExportResults() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("workbook does not open: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(resultsSheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header plus 2", len(rows))
	}
	if rows[0][0] != "Learner ID" {
		t.Errorf("header = %v", rows[0])
	}

	byLearner := map[string][]string{}
	for _, row := range rows[1:] {
		byLearner[row[0]] = row
	}
	if row := byLearner["learner-1"]; row[1] != "Learner learner-1" || row[5] != "33" || row[6] != "yes" {
		t.Errorf("learner-1 row = %v", row)
	}
	if row := byLearner["learner-2"]; row[5] != "7" || row[6] != "no" {
		t.Errorf("learner-2 row = %v", row)
	}

	passed, err := f.GetCellValue(summarySheet, "B3")
	if err != nil || passed != "1" {
		t.Errorf("summary passed = %q, %v", passed, err)
	}
}

func TestExportService_UnknownExam(t *testing.T) {
	repo, _ := newTestRepo(t)
	results := newResultService(repo, essayScoring(0), events.NewMockEventPublisher(testLogger()))
	svc := NewExportService(repo, results, testLogger())

	if _, err := svc.ExportResults(context.Background(), 404); !errors.Is(err, ErrExamNotFound) {
		t.Fatalf("ExportResults() error = %v, want ErrExamNotFound", err)
	}
}
