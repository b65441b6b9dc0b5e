package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/coursehub/exam-service/internal/models"
	"github.com/coursehub/exam-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

const (
	resultsSheet = "Results"
	summarySheet = "Summary"
)

var resultsHeader = []interface{}{
	"Learner ID", "Learner", "Multiple choice", "Open ended", "Essay", "Total", "Passed", "Submitted at",
}

type exportService struct {
	repo    repositories.Repository
	results ResultService
	logger  *slog.Logger
}

func NewExportService(repo repositories.Repository, results ResultService, logger *slog.Logger) ExportService {
	return &exportService{repo: repo, results: results, logger: logger}
}

// ExportResults builds an xlsx workbook with one row per learner result and a summary sheet.
func (s *exportService) ExportResults(ctx context.Context, examID uint) ([]byte, error) {
	results, err := s.results.ListResults(ctx, examID)
	if err != nil {
		return nil, err
	}
	stats, err := s.results.GetStats(ctx, examID)
	if err != nil {
		return nil, err
	}

	names := s.learnerNames(ctx, results)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return nil, fmt.Errorf("failed to prepare workbook: %w", err)
	}
	if err := f.SetSheetRow(resultsSheet, "A1", &resultsHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(resultsHeader), 1)
	if err := f.SetCellStyle(resultsSheet, "A1", lastHeader, bold); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for i, r := range results {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			r.LearnerID,
			names[r.LearnerID],
			r.MCScore,
			r.OpenScore,
			r.EssayScore,
			r.TotalScore,
			yesNo(r.Passed),
			r.SubmittedAt.UTC().Format(time.RFC3339),
		}
		if err := f.SetSheetRow(resultsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("failed to add summary sheet: %w", err)
	}
	summary := [][]interface{}{
		{"Exam ID", examID},
		{"Results", stats.TotalResults},
		{"Passed", stats.PassedResults},
		{"Pass rate (%)", stats.PassRate},
		{"Average score", stats.AverageScore},
		{"Highest score", stats.HighestScore},
		{"Passing score", PassingScore},
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write summary: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.Info("Exam results exported", "exam_id", examID, "rows", len(results))
	return buf.Bytes(), nil
}

// learnerNames is best effort; a failed identity lookup leaves names blank.
func (s *exportService) learnerNames(ctx context.Context, results []*models.ExamResult) map[string]string {
	names := make(map[string]string, len(results))
	if len(results) == 0 {
		return names
	}

	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.LearnerID)
	}

	users, err := s.repo.User().GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("Failed to resolve learner names for export", "error", err)
		return names
	}
	for _, u := range users {
		names[u.ID] = u.FullName
	}
	return names
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
