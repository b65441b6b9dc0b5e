package repositories

import (
	"context"

	"github.com/coursehub/exam-service/internal/models"
)

// UserRepository interface for user operations (identity lives in the auth provider)
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)
}
