package repositories

import (
	"context"

	"apotek/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// UpdateColumns persists only the named columns of user.
	UpdateColumns(ctx context.Context, user *models.User, columns []string) error
}
