package handlers

import (
	"canedrop/internal/middleware"
	"canedrop/internal/models"
	"canedrop/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// RegisterRoutes registers the order routes. Every route needs a signed-in user.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	orderRoutes := router.Group("/orders", auth)
	orderRoutes.Post("/", middleware.Require(models.CapPlaceOrder), h.HandleCreateOrder)
	orderRoutes.Get("/customer", middleware.Require(models.CapViewOwnOrders), h.HandleCustomerOrders)
	orderRoutes.Get("/pending", middleware.Require(models.CapViewOrderQueue), h.HandlePendingOrders)
	orderRoutes.Get("/completed", middleware.Require(models.CapViewOrderQueue), h.HandleCompletedOrders)
	orderRoutes.Get("/summary", middleware.Require(models.CapViewOrderSummary), h.HandleSummary)
	orderRoutes.Patch("/:id/status", middleware.Require(models.CapUpdateOrderStatus), h.HandleUpdateOrderStatus)
}

// HandleCreateOrder places an order for the signed-in customer.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req services.CreateOrderInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	principal, _ := middleware.PrincipalFrom(c)
	order, err := h.service.CreateOrder(c.UserContext(), principal, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleCustomerOrders lists the caller's orders, newest first.
func (h *OrderHandler) HandleCustomerOrders(c *fiber.Ctx) error {
	principal, _ := middleware.PrincipalFrom(c)
	orders, err := h.service.ListForCustomer(c.UserContext(), principal)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

// HandlePendingOrders lists the delivery queue, oldest first.
func (h *OrderHandler) HandlePendingOrders(c *fiber.Ctx) error {
	principal, _ := middleware.PrincipalFrom(c)
	orders, err := h.service.ListPending(c.UserContext(), principal)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

// HandleCompletedOrders lists delivered orders, newest first.
func (h *OrderHandler) HandleCompletedOrders(c *fiber.Ctx) error {
	principal, _ := middleware.PrincipalFrom(c)
	orders, err := h.service.ListCompleted(c.UserContext(), principal)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

// HandleSummary returns today's figures for the owner dashboard.
func (h *OrderHandler) HandleSummary(c *fiber.Ctx) error {
	principal, _ := middleware.PrincipalFrom(c)
	summary, err := h.service.Summary(c.UserContext(), principal)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}

// UpdateStatusRequest is the body of PATCH /orders/:id/status.
type UpdateStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

// HandleUpdateOrderStatus updates the status of an existing order.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	principal, _ := middleware.PrincipalFrom(c)
	order, err := h.service.UpdateStatus(c.UserContext(), principal, c.Params("id"), req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}
