package postgres

import (
	"context"

	"github.com/coursehub/exam-service/internal/models"
	"github.com/coursehub/exam-service/internal/repositories"
	"gorm.io/gorm"
)

type QuestionPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{db: db}
}

func (q *QuestionPostgreSQL) CreateBatch(ctx context.Context, tx *gorm.DB, questions []*models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	db := q.getDB(tx)
	return db.WithContext(ctx).CreateInBatches(questions, 100).Error
}

func (q *QuestionPostgreSQL) GetByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]*models.Question, error) {
	db := q.getDB(tx)
	var questions []*models.Question
	err := db.WithContext(ctx).
		Where("exam_id = ?", examID).
		Order("position ASC, id ASC").
		Find(&questions).Error
	return questions, err
}

// GetMaxPosition returns the highest position used by the exam's questions, -1 when it has none
func (q *QuestionPostgreSQL) GetMaxPosition(ctx context.Context, tx *gorm.DB, examID uint) (int, error) {
	db := q.getDB(tx)
	var maxPos int
	err := db.WithContext(ctx).
		Model(&models.Question{}).
		Where("exam_id = ?", examID).
		Select("COALESCE(MAX(position), -1)").
		Scan(&maxPos).Error
	return maxPos, err
}

func (q *QuestionPostgreSQL) DeleteByExam(ctx context.Context, tx *gorm.DB, examID uint) (int64, error) {
	db := q.getDB(tx)
	result := db.WithContext(ctx).
		Where("exam_id = ?", examID).
		Delete(&models.Question{})
	return result.RowsAffected, result.Error
}

func (q *QuestionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return q.db
}
