package postgres

import (
	"context"

	"gorm.io/gorm"
)

// SharedHelpers contains common database operations
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// ExistsByID reports whether a row of model's table has the given primary key
func (h *SharedHelpers) ExistsByID(ctx context.Context, db *gorm.DB, model interface{}, id uint) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(model).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}
