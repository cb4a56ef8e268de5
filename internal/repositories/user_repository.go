package repositories

import (
	"context"
	"errors"

	"quickshelf/internal/models"
)

// ErrUserNotFound is returned (wrapped) when no user matches a lookup.
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
