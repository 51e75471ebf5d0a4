package router

import (
	"errors"
	"time"

	"canedrop/internal/handlers"
	"canedrop/internal/logger"
	"canedrop/internal/middleware"
	"canedrop/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// Deps are the services the HTTP surface exposes.
type Deps struct {
	Auth     *services.AuthService
	Orders   *services.OrderService
	Shop     *services.ShopService
	Feedback *services.FeedbackService

	// Limiter guards login, registration and feedback. Nil disables rate limiting.
	Limiter *middleware.RateLimiter
	// BrokerConnected is reported by /health.
	BrokerConnected bool
}

// New builds the Fiber app with every route mounted under /api.
func New(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "canedrop",
		ErrorHandler: errorHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	app.Use(logger.Middleware())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		broker := "disabled"
		if deps.BrokerConnected {
			broker = "connected"
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"rabbitmq": broker,
		})
	})

	auth := middleware.AuthRequired(deps.Auth)
	limit := func(c *fiber.Ctx) error { return c.Next() }
	if deps.Limiter != nil {
		limit = deps.Limiter.Handler()
	}

	api := app.Group("/api")
	handlers.NewAuthHandler(deps.Auth).RegisterRoutes(api, auth, limit)
	handlers.NewShopHandler(deps.Shop).RegisterRoutes(api, auth)
	handlers.NewFeedbackHandler(deps.Feedback).RegisterRoutes(api, auth, limit)
	handlers.NewOrderHandler(deps.Orders).RegisterRoutes(api, auth)

	return app
}

// errorHandler answers errors that escape the handlers, such as unknown routes.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		logger.FromCtx(c.UserContext()).Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(code).JSON(fiber.Map{"message": "Internal server error"})
	}
	return c.Status(code).JSON(fiber.Map{"message": err.Error()})
}
