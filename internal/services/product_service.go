package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"quickshelf/internal/apperrors"
	"quickshelf/internal/models"
	"quickshelf/internal/repositories"
)

// RecordValidator checks a record before it reaches the store.
type RecordValidator interface {
	Product(p *models.Product) error
}

// EventPublisher announces product changes to other systems.
type EventPublisher interface {
	PublishProductEvent(event models.ProductEvent) error
}

// NoopPublisher discards every event. It is used when no broker is configured.
type NoopPublisher struct{}

// PublishProductEvent implements EventPublisher.
func (NoopPublisher) PublishProductEvent(models.ProductEvent) error { return nil }

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	validator RecordValidator
	publisher EventPublisher
}

// NewProductService creates a new ProductService. A nil publisher disables
// change events.
func NewProductService(repo repositories.ProductRepository, validator RecordValidator, publisher EventPublisher) *ProductService {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &ProductService{
		repo:      repo,
		validator: validator,
		publisher: publisher,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAll(ctx)
}

// GetProductByID retrieves a single product by its ID. A missing product is
// reported through found, not through err.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (product *models.Product, found bool, err error) {
	product, err = s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return product, true, nil
}

// CreateProduct stores a new product. The store assigns its ID.
func (s *ProductService) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := s.validator.Product(product); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	s.publish(models.EventProductCreated, product)
	return product, nil
}

// UpdateProduct replaces every mutable field of the product with the given
// ID. The ID itself never changes.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, details *models.Product) (*models.Product, error) {
	product, found, err := s.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.NewNotFoundError("Product", "id", id)
	}

	product.Name = details.Name
	product.Description = details.Description
	product.Price = details.Price
	product.Category = details.Category
	product.StockQuantity = details.StockQuantity

	if err := s.validator.Product(product); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, product); err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return nil, apperrors.NewNotFoundError("Product", "id", id)
		}
		return nil, err
	}
	s.publish(models.EventProductUpdated, product)
	return product, nil
}

// DeleteProduct removes the product with the given ID and reports whether it existed.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) (bool, error) {
	product, found, err := s.GetProductByID(ctx, id)
	if err != nil || !found {
		return false, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return false, nil
		}
		return false, err
	}
	s.publish(models.EventProductDeleted, product)
	return true, nil
}

// SeedProducts inserts sample products into an empty store and returns how
// many were added.
func (s *ProductService) SeedProducts(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	laptop, keyboard, mouse := "High performance laptop", "Mechanical keyboard", "Ergonomic wireless mouse"
	samples := []models.Product{
		{Name: "Laptop", Description: &laptop, Price: 1200.00, Category: "Computers", StockQuantity: 10},
		{Name: "Keyboard", Description: &keyboard, Price: 75.00, Category: "Accessories", StockQuantity: 25},
		{Name: "Mouse", Description: &mouse, Price: 25.00, Category: "Accessories", StockQuantity: 50},
	}
	for i := range samples {
		if _, err := s.CreateProduct(ctx, &samples[i]); err != nil {
			return i, fmt.Errorf("failed to seed product %s: %w", samples[i].Name, err)
		}
		log.Printf("Seeded product: %s (ID: %s)", samples[i].Name, samples[i].ID)
	}
	return len(samples), nil
}

// publish never fails the caller; the change is already stored.
func (s *ProductService) publish(eventType string, product *models.Product) {
	if err := s.publisher.PublishProductEvent(models.NewProductEvent(eventType, product)); err != nil {
		log.Printf("Warning: failed to publish %s for product %s: %v", eventType, product.ID, err)
	}
}
