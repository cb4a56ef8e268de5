package handlers

import (
	"context"

	"quickshelf/internal/apperrors"
	"quickshelf/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ProductService is the behavior ProductHandler needs from the service layer.
type ProductService interface {
	GetAllProducts(ctx context.Context) ([]models.Product, error)
	GetProductByID(ctx context.Context, id string) (*models.Product, bool, error)
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, details *models.Product) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) (bool, error)
}

// PayloadValidator checks a decoded request body.
type PayloadValidator interface {
	Struct(s interface{}) error
}

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service  ProductService
	validate PayloadValidator
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service ProductService, validate PayloadValidator) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validate,
	}
}

// RegisterRoutes registers the product routes. writeGuards run before the
// handlers of the routes that modify products.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, writeGuards ...fiber.Handler) {
	guarded := func(handler fiber.Handler) []fiber.Handler {
		chain := make([]fiber.Handler, 0, len(writeGuards)+1)
		chain = append(chain, writeGuards...)
		return append(chain, handler)
	}

	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", guarded(h.HandleCreateProduct)...)
	productRoutes.Put("/:id", guarded(h.HandleUpdateProduct)...)
	productRoutes.Delete("/:id", guarded(h.HandleDeleteProduct)...)
}

// HandleGetProducts lists every stored product.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.NewProductDTOs(products))
}

// HandleGetProductByID returns one product or 404.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id := c.Params("id")
	product, found, err := h.service.GetProductByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	if !found {
		return respondError(c, apperrors.NewNotFoundError("Product", "id", id))
	}
	return c.JSON(models.NewProductDTO(product))
}

// HandleCreateProduct validates the payload and stores a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	payload, err := h.parsePayload(c)
	if err != nil {
		return respondError(c, err)
	}

	created, err := h.service.CreateProduct(c.UserContext(), payload.ToProduct())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.NewProductDTO(created))
}

// HandleUpdateProduct replaces every mutable field of an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	payload, err := h.parsePayload(c)
	if err != nil {
		return respondError(c, err)
	}

	updated, err := h.service.UpdateProduct(c.UserContext(), c.Params("id"), payload.ToProduct())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.NewProductDTO(updated))
}

// HandleDeleteProduct removes a product and answers 204, or 404 when absent.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	deleted, err := h.service.DeleteProduct(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	if !deleted {
		return respondError(c, apperrors.NewNotFoundError("Product", "id", id))
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// parsePayload decodes and validates the request body. The service is never
// reached with an invalid payload.
func (h *ProductHandler) parsePayload(c *fiber.Ctx) (models.ProductDTO, error) {
	var payload models.ProductDTO
	if err := c.BodyParser(&payload); err != nil {
		return payload, errMalformedJSON
	}
	if err := h.validate.Struct(payload); err != nil {
		return payload, err
	}
	return payload, nil
}
