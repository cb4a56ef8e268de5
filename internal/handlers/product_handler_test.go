package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"quickshelf/internal/apperrors"
	"quickshelf/internal/models"
	"quickshelf/internal/services"
	"quickshelf/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductService) GetProductByID(ctx context.Context, id string) (*models.Product, bool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Product), args.Bool(1), args.Error(2)
}

func (m *MockProductService) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	args := m.Called(ctx, product)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductService) UpdateProduct(ctx context.Context, id string, details *models.Product) (*models.Product, error) {
	args := m.Called(ctx, id, details)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductService) DeleteProduct(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func newTestApp(service ProductService) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	NewProductHandler(service, validation.New(0)).RegisterRoutes(app)
	return app
}

func decodeError(t *testing.T, resp *http.Response) ErrorResponse {
	t.Helper()
	defer resp.Body.Close()
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestStoreFailureIsHidden(t *testing.T) {
	service := new(MockProductService)
	service.On("GetAllProducts", mock.Anything).Return(nil, errors.New("connection refused"))
	app := newTestApp(service)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/products", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	body := decodeError(t, resp)
	assert.Equal(t, http.StatusInternalServerError, body.Status)
	assert.Equal(t, "Internal server error", body.Message)
	assert.NotContains(t, body.Message, "connection refused")
	service.AssertExpectations(t)
}

func TestInvalidPayloadNeverReachesService(t *testing.T) {
	service := new(MockProductService)
	app := newTestApp(service)

	for _, method := range []string{http.MethodPost, http.MethodPut} {
		path := "/products"
		if method == http.MethodPut {
			path = "/products/abc"
		}
		req := httptest.NewRequest(method, path, strings.NewReader(`{"name":"Widget","category":"Tools"}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, map[string]string{
			"price":         "Price is required",
			"stockQuantity": "Stock quantity is required",
		}, body.Errors)
	}
	service.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
	service.AssertNotCalled(t, "UpdateProduct", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateProduct_PassesConvertedRecord(t *testing.T) {
	service := new(MockProductService)
	stored := &models.Product{ID: "p-1", Name: "Widget", Price: 2.5, Category: "Tools", StockQuantity: 4}
	service.On("CreateProduct", mock.Anything, mock.MatchedBy(func(p *models.Product) bool {
		return p.Name == "Widget" && p.Price == 2.5 && p.Category == "Tools" && p.StockQuantity == 4 && p.Description == nil
	})).Return(stored, nil)
	app := newTestApp(service)

	req := httptest.NewRequest(http.MethodPost, "/products",
		strings.NewReader(`{"name":"Widget","price":2.5,"category":"Tools","stockQuantity":4}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var dto models.ProductDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&dto))
	assert.Equal(t, "p-1", *dto.ID)
	service.AssertExpectations(t)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", apperrors.NewNotFoundError("Product", "id", "x"), fiber.StatusNotFound},
		{"validation", apperrors.NewValidationError(map[string]string{"name": "required"}), fiber.StatusBadRequest},
		{"duplicate user", services.ErrDuplicateUser, fiber.StatusConflict},
		{"bad credentials", services.ErrInvalidCredentials, fiber.StatusUnauthorized},
		{"fiber error", fiber.NewError(fiber.StatusMethodNotAllowed, "nope"), fiber.StatusMethodNotAllowed},
		{"malformed json", errMalformedJSON, fiber.StatusBadRequest},
		{"anything else", errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
