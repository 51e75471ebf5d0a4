package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"canedrop/internal/events"
	"canedrop/internal/logger"
	"canedrop/internal/models"
	"canedrop/internal/payments"
	"canedrop/internal/repositories"
	"canedrop/pkg/rabbitmq"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventPublisher sends domain events to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orders    repositories.OrderRepository
	shop      *ShopService
	verifier  payments.Verifier
	publisher EventPublisher

	enforceHours bool
	now          func() time.Time
}

// NewOrderService creates a new OrderService. verifier and publisher may be nil.
func NewOrderService(orders repositories.OrderRepository, shop *ShopService, verifier payments.Verifier, publisher EventPublisher) *OrderService {
	if verifier == nil {
		verifier = payments.Disabled{}
	}
	return &OrderService{
		orders:    orders,
		shop:      shop,
		verifier:  verifier,
		publisher: publisher,
		now:       time.Now,
	}
}

// WithEnforcedHours rejects new orders while the shop is closed.
func (s *OrderService) WithEnforcedHours(enforce bool) *OrderService {
	s.enforceHours = enforce
	return s
}

// WithClock replaces the clock used for timestamps.
func (s *OrderService) WithClock(now func() time.Time) *OrderService {
	s.now = now
	return s
}

// CreateOrderInput is what a customer submits.
type CreateOrderInput struct {
	Quantity      int                  `json:"quantity" validate:"required,gt=0,lte=10000"`
	Amount        int64                `json:"amount" validate:"gte=0"`
	Address       string               `json:"address" validate:"required,max=500"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod" validate:"required,oneof=cod online"`
	PaymentID     string               `json:"paymentId" validate:"omitempty,max=100"`
}

// CreateOrder places a pending order priced at the current cane price.
func (s *OrderService) CreateOrder(ctx context.Context, principal models.Principal, in CreateOrderInput) (*models.Order, error) {
	if err := authorize(principal, models.CapPlaceOrder); err != nil {
		return nil, err
	}
	in.Address = strings.TrimSpace(in.Address)
	in.PaymentID = strings.TrimSpace(in.PaymentID)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	settings, err := s.shop.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	if in.Quantity < settings.MinOrderQuantity {
		return nil, NewValidationError("quantity", fmt.Sprintf("must be at least %d", settings.MinOrderQuantity))
	}
	if settings.CanePrice > math.MaxInt64/int64(in.Quantity) {
		return nil, NewValidationError("quantity", "is too large for the current price")
	}
	amount := int64(in.Quantity) * settings.CanePrice
	if in.Amount != 0 && in.Amount != amount {
		return nil, NewValidationError("amount", fmt.Sprintf("does not match current price, expected %d", amount))
	}

	now := s.now()
	if s.enforceHours && !IsShopOpen(now.In(s.shop.Location()), *settings) {
		return nil, &ShopClosedError{Message: settings.ClosedMessage}
	}

	var paymentID *string
	if in.PaymentMethod == models.PaymentOnline {
		if in.PaymentID == "" {
			return nil, NewValidationError("paymentId", "is required for online payment")
		}
		if err := s.verifyPayment(ctx, in.PaymentID, amount); err != nil {
			return nil, err
		}
		paymentID = &in.PaymentID
	}

	order := &models.Order{
		ID:            uuid.New().String(),
		CustomerID:    principal.UserID,
		Quantity:      in.Quantity,
		Amount:        amount,
		Address:       in.Address,
		PaymentMethod: in.PaymentMethod,
		PaymentID:     paymentID,
		Status:        models.StatusPending,
		CreatedAt:     now,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	logger.FromCtx(ctx).Info("order created",
		zap.String("order_id", order.ID),
		zap.String("customer_id", order.CustomerID),
		zap.Int("quantity", order.Quantity),
		zap.Int64("amount", order.Amount),
	)
	s.publish(ctx, rabbitmq.KeyOrderCreated, order)
	return order, nil
}

func (s *OrderService) verifyPayment(ctx context.Context, paymentID string, amount int64) error {
	ok, err := s.verifier.VerifyPayment(ctx, paymentID, amount)
	if err != nil {
		if errors.Is(err, payments.ErrUnavailable) {
			return ErrPaymentUnavailable
		}
		return fmt.Errorf("failed to verify payment %s: %w", paymentID, err)
	}
	if !ok {
		logger.FromCtx(ctx).Warn("payment not verified", zap.String("payment_id", paymentID), zap.Int64("amount", amount))
		return ErrPaymentNotVerified
	}
	return nil
}

// UpdateStatus applies a requested status change to an order.
func (s *OrderService) UpdateStatus(ctx context.Context, principal models.Principal, id string, status models.OrderStatus) (*models.Order, error) {
	if err := authorize(principal, models.CapUpdateOrderStatus); err != nil {
		return nil, err
	}
	t, err := lookupTransition(status)
	if err != nil {
		return nil, err
	}
	if err := authorize(principal, t.needs); err != nil {
		return nil, err
	}

	order, err := s.orders.TransitionStatus(ctx, id, t.from, t.to, s.now())
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	case errors.Is(err, repositories.ErrStaleStatus):
		return nil, fmt.Errorf("order %s is no longer %s: %w", id, t.from, ErrInvalidTransition)
	case err != nil:
		return nil, fmt.Errorf("failed to update order %s: %w", id, err)
	}

	logger.FromCtx(ctx).Info("order status changed",
		zap.String("order_id", order.ID),
		zap.String("from", string(t.from)),
		zap.String("to", string(t.to)),
		zap.String("by", principal.UserID),
	)
	if t.to == models.StatusDelivered {
		s.publish(ctx, rabbitmq.KeyOrderDelivered, order)
	}
	return order, nil
}

// MarkDelivered moves a pending order to delivered. A delivered order cannot be delivered again.
func (s *OrderService) MarkDelivered(ctx context.Context, principal models.Principal, id string) (*models.Order, error) {
	return s.UpdateStatus(ctx, principal, id, models.StatusDelivered)
}

// ListForCustomer returns the caller's own orders, newest first.
func (s *OrderService) ListForCustomer(ctx context.Context, principal models.Principal) ([]models.Order, error) {
	if err := authorize(principal, models.CapViewOwnOrders); err != nil {
		return nil, err
	}
	orders, err := s.orders.ListByCustomer(ctx, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// ListPending returns the delivery queue, oldest first.
func (s *OrderService) ListPending(ctx context.Context, principal models.Principal) ([]models.OrderWithCustomer, error) {
	return s.listByStatus(ctx, principal, models.StatusPending, true)
}

// ListCompleted returns delivered orders, most recent first.
func (s *OrderService) ListCompleted(ctx context.Context, principal models.Principal) ([]models.OrderWithCustomer, error) {
	return s.listByStatus(ctx, principal, models.StatusDelivered, false)
}

func (s *OrderService) listByStatus(ctx context.Context, principal models.Principal, status models.OrderStatus, oldestFirst bool) ([]models.OrderWithCustomer, error) {
	if err := authorize(principal, models.CapViewOrderQueue); err != nil {
		return nil, err
	}
	orders, err := s.orders.ListByStatus(ctx, status, oldestFirst)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s orders: %w", status, err)
	}
	return orders, nil
}

// Summary returns the owner dashboard figures.
func (s *OrderService) Summary(ctx context.Context, principal models.Principal) (*models.OrderSummary, error) {
	if err := authorize(principal, models.CapViewOrderSummary); err != nil {
		return nil, err
	}
	return s.SummaryAt(ctx, s.now())
}

// SummaryAt computes the summary for the shop-local day containing at.
func (s *OrderService) SummaryAt(ctx context.Context, at time.Time) (*models.OrderSummary, error) {
	pending, err := s.orders.CountByStatus(ctx, models.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending orders: %w", err)
	}

	local := at.In(s.shop.Location())
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
	delivered, err := s.orders.ListDeliveredBetween(ctx, start, start.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to list delivered orders: %w", err)
	}

	summary := &models.OrderSummary{
		PendingCount:   int(pending),
		DeliveredToday: len(delivered),
	}
	for _, o := range delivered {
		summary.RevenueToday += o.Amount
	}
	return summary, nil
}

func (s *OrderService) publish(ctx context.Context, key string, order *models.Order) {
	if s.publisher == nil {
		return
	}
	event := events.NewOrderEvent(order, s.now())
	if err := s.publisher.Publish(ctx, key, event); err != nil {
		logger.FromCtx(ctx).Warn("failed to publish order event",
			zap.String("routing_key", key),
			zap.String("order_id", order.ID),
			zap.Error(err),
		)
	}
}
