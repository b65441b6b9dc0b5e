package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/coursehub/exam-service/internal/cache"
	"github.com/coursehub/exam-service/internal/models"
	"github.com/coursehub/exam-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ExamResultPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewExamResultPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.ExamResultRepository {
	return &ExamResultPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

// Upsert writes the result keyed by (exam_id, learner_id). A row inserted concurrently
// for the same pair is overwritten instead of duplicated.
func (r *ExamResultPostgreSQL) Upsert(ctx context.Context, tx *gorm.DB, result *models.ExamResult) error {
	db := r.getDB(tx)
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "exam_id"}, {Name: "learner_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"mc_score", "open_score", "essay_score", "total_score",
				"passed", "feedback", "essay_rubric", "submitted_at",
			}),
		}).
		Create(result).Error
	if err != nil {
		return err
	}
	r.InvalidateCache(ctx, result.ExamID, result.LearnerID)
	return nil
}

func (r *ExamResultPostgreSQL) GetByExamAndLearner(ctx context.Context, tx *gorm.DB, examID uint, learnerID string) (*models.ExamResult, error) {
	db := r.getDB(tx)
	var result models.ExamResult

	err := r.cacheManager.Result.CacheOrExecute(ctx, cache.ResultKey(examID, learnerID), &result, cache.ResultCacheConfig.TTL, func() (interface{}, error) {
		var dbResult models.ExamResult
		if err := db.WithContext(ctx).
			Where("exam_id = ? AND learner_id = ?", examID, learnerID).
			First(&dbResult).Error; err != nil {
			return nil, fmt.Errorf("failed to get exam result: %w", err)
		}
		return &dbResult, nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *ExamResultPostgreSQL) GetByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]*models.ExamResult, error) {
	db := r.getDB(tx)
	var results []*models.ExamResult
	err := db.WithContext(ctx).
		Where("exam_id = ?", examID).
		Order("submitted_at ASC, id ASC").
		Find(&results).Error
	return results, err
}

func (r *ExamResultPostgreSQL) DeleteByExamAndLearner(ctx context.Context, tx *gorm.DB, examID uint, learnerID string) (int64, error) {
	db := r.getDB(tx)
	res := db.WithContext(ctx).
		Where("exam_id = ? AND learner_id = ?", examID, learnerID).
		Delete(&models.ExamResult{})
	if res.Error != nil {
		return 0, res.Error
	}
	r.InvalidateCache(ctx, examID, learnerID)
	return res.RowsAffected, nil
}

func (r *ExamResultPostgreSQL) DeleteBatch(ctx context.Context, tx *gorm.DB, results []*models.ExamResult) error {
	if len(results) == 0 {
		return nil
	}
	db := r.getDB(tx)

	ids := make([]uint, len(results))
	for i, result := range results {
		ids[i] = result.ID
	}
	if err := db.WithContext(ctx).Delete(&models.ExamResult{}, ids).Error; err != nil {
		return err
	}

	for _, result := range results {
		r.InvalidateCache(ctx, result.ExamID, result.LearnerID)
	}
	return nil
}

func (r *ExamResultPostgreSQL) GetStats(ctx context.Context, tx *gorm.DB, examID uint) (*repositories.ExamResultStats, error) {
	db := r.getDB(tx)
	var stats repositories.ExamResultStats

	err := r.cacheManager.Stats.CacheOrExecute(ctx, cache.StatsKey(examID), &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		var row struct {
			Total   int
			Passed  int
			Average float64
			Highest int
		}
		if err := db.WithContext(ctx).
			Model(&models.ExamResult{}).
			Select("COUNT(*) AS total, "+
				"COALESCE(SUM(CASE WHEN passed THEN 1 ELSE 0 END), 0) AS passed, "+
				"COALESCE(AVG(total_score), 0) AS average, "+
				"COALESCE(MAX(total_score), 0) AS highest").
			Where("exam_id = ?", examID).
			Scan(&row).Error; err != nil {
			return nil, fmt.Errorf("failed to aggregate exam results: %w", err)
		}

		result := &repositories.ExamResultStats{
			TotalResults:  row.Total,
			PassedResults: row.Passed,
			AverageScore:  row.Average,
			HighestScore:  row.Highest,
		}
		if row.Total > 0 {
			result.PassRate = float64(row.Passed) / float64(row.Total) * 100

			var last models.ExamResult
			if err := db.WithContext(ctx).
				Where("exam_id = ?", examID).
				Order("submitted_at DESC").
				First(&last).Error; err == nil {
				submitted := last.SubmittedAt.UTC().Truncate(time.Second)
				result.LastSubmitted = &submitted
			}
		}
		return result, nil
	})
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

func (r *ExamResultPostgreSQL) InvalidateCache(ctx context.Context, examID uint, learnerID string) {
	cache.InvalidateResultCache(ctx, r.cacheManager, examID, learnerID)
}

func (r *ExamResultPostgreSQL) InvalidateExamCache(ctx context.Context, examID uint) {
	cache.InvalidateExamCache(ctx, r.cacheManager, examID)
}

func (r *ExamResultPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}
