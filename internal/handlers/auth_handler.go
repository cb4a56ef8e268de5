package handlers

import (
	"context"
	"log"

	"quickshelf/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AuthService is the behavior AuthHandler needs from the service layer.
type AuthService interface {
	RegisterUser(ctx context.Context, user *models.User) error
	LoginUser(ctx context.Context, username, password string) (string, error)
}

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService AuthService
	validate    PayloadValidator
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService AuthService, validate PayloadValidator) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validate,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var user models.User
	if err := c.BodyParser(&user); err != nil {
		return respondError(c, errMalformedJSON)
	}
	if err := h.validate.Struct(user); err != nil {
		return respondError(c, err)
	}

	if err := h.authService.RegisterUser(c.UserContext(), &user); err != nil {
		return respondError(c, err)
	}
	log.Printf("Registered user %s", user.Username)

	user.Password = ""
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
	})
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, errMalformedJSON)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondError(c, err)
	}

	token, err := h.authService.LoginUser(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
	})
}
