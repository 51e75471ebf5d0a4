package repositories

import (
	"context"
	"time"

	"canedrop/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	// ListByCustomer returns the customer's orders, newest first.
	ListByCustomer(ctx context.Context, customerID string) ([]models.Order, error)
	// ListByStatus returns orders in status joined with customer contact details,
	// ordered by creation time ascending when oldestFirst is set and descending otherwise.
	ListByStatus(ctx context.Context, status models.OrderStatus, oldestFirst bool) ([]models.OrderWithCustomer, error)
	// TransitionStatus moves an order from one status to another only if it is still in from.
	// It returns ErrNotFound for unknown ids and ErrStaleStatus when the order is in another state.
	TransitionStatus(ctx context.Context, id string, from, to models.OrderStatus, at time.Time) (*models.Order, error)
	CountByStatus(ctx context.Context, status models.OrderStatus) (int64, error)
	// ListDeliveredBetween returns orders delivered in [from, to).
	ListDeliveredBetween(ctx context.Context, from, to time.Time) ([]models.Order, error)
}
