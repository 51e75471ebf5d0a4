package handlers

import (
	"canedrop/internal/middleware"
	"canedrop/internal/models"
	"canedrop/internal/services"

	"github.com/gofiber/fiber/v2"
)

// FeedbackHandler handles the public contact form.
type FeedbackHandler struct {
	service *services.FeedbackService
}

// NewFeedbackHandler creates a new FeedbackHandler.
func NewFeedbackHandler(service *services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

// RegisterRoutes registers the feedback routes.
func (h *FeedbackHandler) RegisterRoutes(router fiber.Router, auth, limit fiber.Handler) {
	router.Post("/feedback", limit, h.HandleSubmit)
	router.Get("/feedback", auth, middleware.Require(models.CapViewFeedback), h.HandleList)
}

// HandleSubmit stores a feedback message.
func (h *FeedbackHandler) HandleSubmit(c *fiber.Ctx) error {
	var req services.FeedbackInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	feedback, err := h.service.Submit(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(feedback)
}

// HandleList returns all feedback for the owner.
func (h *FeedbackHandler) HandleList(c *fiber.Ctx) error {
	principal, _ := middleware.PrincipalFrom(c)
	items, err := h.service.List(c.UserContext(), principal)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}
