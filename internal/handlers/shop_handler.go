package handlers

import (
	"canedrop/internal/middleware"
	"canedrop/internal/models"
	"canedrop/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ShopHandler serves the shop settings and the evaluated opening status.
type ShopHandler struct {
	service *services.ShopService
}

// NewShopHandler creates a new ShopHandler.
func NewShopHandler(service *services.ShopService) *ShopHandler {
	return &ShopHandler{service: service}
}

// RegisterRoutes registers the shop routes. Reads are public.
func (h *ShopHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	router.Get("/shop-settings", h.HandleGetSettings)
	router.Patch("/shop-settings", auth, middleware.Require(models.CapManageShopSettings), h.HandleUpdateSettings)
	router.Get("/shop-status", h.HandleStatus)
}

// HandleGetSettings returns the current settings.
func (h *ShopHandler) HandleGetSettings(c *fiber.Ctx) error {
	settings, err := h.service.GetSettings(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(settings)
}

// HandleUpdateSettings merges the body into the settings.
func (h *ShopHandler) HandleUpdateSettings(c *fiber.Ctx) error {
	var patch services.ShopSettingsPatch
	if err := c.BodyParser(&patch); err != nil {
		return badBody(c, err)
	}

	principal, _ := middleware.PrincipalFrom(c)
	settings, err := h.service.UpdateSettings(c.UserContext(), principal, patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(settings)
}

// HandleStatus tells customers whether the shop is delivering right now.
func (h *ShopHandler) HandleStatus(c *fiber.Ctx) error {
	status, err := h.service.Status(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(status)
}
