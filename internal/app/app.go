// Package app assembles the QuickShelf HTTP service from its configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"quickshelf/internal/config"
	"quickshelf/internal/database"
	"quickshelf/internal/handlers"
	"quickshelf/internal/middleware"
	"quickshelf/internal/repositories"
	"quickshelf/internal/services"
	"quickshelf/internal/validation"
	"quickshelf/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

// API metadata served on GET /.
const (
	apiName        = "QuickShelf API"
	apiDescription = "RESTful API for managing product inventory"
	apiVersion     = "1.0.0"
)

// App is a fully wired service ready to listen.
type App struct {
	Fiber *fiber.App

	cfg      *config.Config
	db       *gorm.DB
	mqClient *rabbitmq.Client
}

// New connects the configured store and broker and registers every route.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg}

	productRepo, userRepo, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	var publisher services.EventPublisher
	if cfg.RabbitMQEnabled {
		a.mqClient, err = rabbitmq.NewClient(ctx, rabbitmq.Config{
			URL:            cfg.RabbitMQURL,
			Exchange:       cfg.RabbitMQExchange,
			Queue:          cfg.RabbitMQQueue,
			ConnectTimeout: cfg.Database.ConnectTimeout,
		})
		if err != nil {
			a.Shutdown()
			return nil, err
		}
		publisher = a.mqClient
		if err := a.mqClient.ConsumeProductEvents(rabbitmq.LogProductEvent); err != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", err)
		}
	}

	validator := validation.New(cfg.DescriptionMaxLength)
	productService := services.NewProductService(productRepo, validator, publisher)

	if cfg.SeedData {
		if _, err := productService.SeedProducts(ctx); err != nil {
			a.Shutdown()
			return nil, err
		}
	}

	a.Fiber = fiber.New(fiber.Config{
		AppName:      apiName,
		ErrorHandler: handlers.ErrorHandler,
	})
	a.Fiber.Use(recover.New())
	a.Fiber.Use(logger.New())

	a.Fiber.Get("/", a.handleInfo)
	a.Fiber.Get("/health", a.handleHealth)

	var writeGuards []fiber.Handler
	if cfg.AuthEnabled {
		authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL)
		handlers.NewAuthHandler(authService, validator).RegisterRoutes(a.Fiber)
		writeGuards = append(writeGuards, middleware.AuthRequired(authService))
	}
	handlers.NewProductHandler(productService, validator).RegisterRoutes(a.Fiber, writeGuards...)

	return a, nil
}

func (a *App) openStore(ctx context.Context) (repositories.ProductRepository, repositories.UserRepository, error) {
	if a.cfg.Database.Driver == config.DriverMemory {
		log.Println("Using in-memory product store")
		return repositories.NewMemoryProductRepository(), repositories.NewMemoryUserRepository(), nil
	}

	db, err := database.Open(ctx, a.cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(db); err != nil {
		database.Close(db)
		return nil, nil, err
	}
	a.db = db
	return repositories.NewGORMProductRepository(db), repositories.NewGORMUserRepository(db), nil
}

// Listen serves HTTP on the configured port until Shutdown.
func (a *App) Listen() error {
	log.Printf("Starting server on port %s", a.cfg.AppPort)
	return a.Fiber.Listen(a.cfg.AppPort)
}

// Shutdown stops the HTTP server and releases the broker and database.
func (a *App) Shutdown() error {
	var errs []error
	if a.Fiber != nil {
		if err := a.Fiber.Shutdown(); err != nil {
			errs = append(errs, fmt.Errorf("fiber shutdown: %w", err))
		}
	}
	if a.mqClient != nil {
		if err := a.mqClient.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.db != nil {
		if err := database.Close(a.db); err != nil {
			errs = append(errs, fmt.Errorf("database close: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (a *App) handleInfo(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"name":        apiName,
		"description": apiDescription,
		"version":     apiVersion,
	})
}

func (a *App) handleHealth(c *fiber.Ctx) error {
	status, code := "healthy", fiber.StatusOK

	dbState := "memory"
	if a.db != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		dbState = "up"
		if err := database.Ping(ctx, a.db); err != nil {
			log.Printf("Health check: database ping failed: %v", err)
			dbState = "down"
			status, code = "unhealthy", fiber.StatusServiceUnavailable
		}
	}

	brokerState := "disabled"
	if a.mqClient != nil {
		brokerState = "connected"
	}

	return c.Status(code).JSON(fiber.Map{
		"status":   status,
		"time":     time.Now().Format(time.RFC3339),
		"database": dbState,
		"broker":   brokerState,
	})
}
