package handlers

import (
	"errors"

	"canedrop/internal/logger"
	"canedrop/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// respondError maps service errors onto HTTP statuses.
// Unexpected errors are logged and answered with a generic body.
func respondError(c *fiber.Ctx, err error) error {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  verr.Fields,
		})
	}

	var closed *services.ShopClosedError
	if errors.As(err, &closed) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": closed.Message,
			"error":   services.ErrShopClosed.Error(),
		})
	}

	status, message := fiber.StatusInternalServerError, ""
	switch {
	case errors.Is(err, services.ErrAuthenticationRequired):
		status, message = fiber.StatusUnauthorized, "Authentication required"
	case errors.Is(err, services.ErrInvalidCredentials):
		status, message = fiber.StatusUnauthorized, "Authentication failed"
	case errors.Is(err, services.ErrForbidden):
		status, message = fiber.StatusForbidden, "Forbidden"
	case errors.Is(err, services.ErrNotFound):
		status, message = fiber.StatusNotFound, "Not found"
	case errors.Is(err, services.ErrInvalidTransition):
		status, message = fiber.StatusConflict, "Invalid status transition"
	case errors.Is(err, services.ErrConflict):
		status, message = fiber.StatusConflict, "Conflict"
	case errors.Is(err, services.ErrPaymentNotVerified):
		status, message = fiber.StatusPaymentRequired, "Payment could not be verified"
	case errors.Is(err, services.ErrPaymentUnavailable):
		status, message = fiber.StatusServiceUnavailable, "Online payments are unavailable"
	}

	if status == fiber.StatusInternalServerError {
		logger.FromCtx(c.UserContext()).Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(status).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

// badBody answers a request whose body could not be parsed.
func badBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}
