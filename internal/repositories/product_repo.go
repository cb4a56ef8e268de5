package repositories

import (
	"context"
	"errors"

	"quickshelf/internal/models"
)

// ErrProductNotFound is returned (wrapped) when no record has the requested id.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository defines the interface for product data access.
// Create always assigns a fresh id; any id already set on the product is replaced.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}
