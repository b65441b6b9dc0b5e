package postgres

import (
	"context"

	"github.com/coursehub/exam-service/internal/models"
	"github.com/coursehub/exam-service/internal/repositories"
	"gorm.io/gorm"
)

type AnswerLogPostgreSQL struct {
	db *gorm.DB
}

func NewAnswerLogPostgreSQL(db *gorm.DB) repositories.AnswerLogRepository {
	return &AnswerLogPostgreSQL{db: db}
}

func (a *AnswerLogPostgreSQL) CreateBatch(ctx context.Context, tx *gorm.DB, logs []*models.AnswerLog) error {
	if len(logs) == 0 {
		return nil
	}
	db := a.getDB(tx)
	return db.WithContext(ctx).CreateInBatches(logs, 100).Error
}

func (a *AnswerLogPostgreSQL) GetByQuestionID(ctx context.Context, tx *gorm.DB, questionID uint) ([]*models.AnswerLog, error) {
	db := a.getDB(tx)
	var logs []*models.AnswerLog
	err := db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Order("id ASC").
		Find(&logs).Error
	return logs, err
}

func (a *AnswerLogPostgreSQL) DeleteBatch(ctx context.Context, tx *gorm.DB, logs []*models.AnswerLog) error {
	if len(logs) == 0 {
		return nil
	}
	db := a.getDB(tx)

	ids := make([]uint, len(logs))
	for i, log := range logs {
		ids[i] = log.ID
	}
	return db.WithContext(ctx).Delete(&models.AnswerLog{}, ids).Error
}

func (a *AnswerLogPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}
