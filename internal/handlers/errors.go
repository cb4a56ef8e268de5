package handlers

import (
	"errors"
	"log"
	"time"

	"quickshelf/internal/apperrors"
	"quickshelf/internal/services"

	"github.com/gofiber/fiber/v2"
)

// errMalformedJSON is returned for request bodies that cannot be decoded.
var errMalformedJSON = fiber.NewError(fiber.StatusBadRequest, "Malformed JSON request")

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Status    int               `json:"status"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	Errors    map[string]string `json:"errors,omitempty"`
}

func statusFor(err error) int {
	var fiberErr *fiber.Error
	switch {
	case apperrors.IsNotFound(err):
		return fiber.StatusNotFound
	case errors.As(err, new(*apperrors.ValidationError)):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrDuplicateUser):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err as an ErrorResponse with the status its kind maps to.
// Causes of 5xx responses are logged and not sent to the client.
func respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	body := ErrorResponse{
		Status:    status,
		Message:   err.Error(),
		Timestamp: time.Now(),
	}

	if ve, ok := apperrors.AsValidation(err); ok {
		body.Message = "Validation error"
		body.Errors = ve.Errors
	}
	if status >= fiber.StatusInternalServerError {
		log.Printf("Error handling %s %s: %v", c.Method(), c.Path(), err)
		body.Message = "Internal server error"
	}

	return c.Status(status).JSON(body)
}

// ErrorHandler renders errors that escape handlers and middleware, such as
// unknown routes, rejected tokens and recovered panics.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return respondError(c, err)
}
