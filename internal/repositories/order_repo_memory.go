package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"canedrop/internal/models"

	"github.com/google/uuid"
)

// MemoryOrderRepository is an in-memory implementation of OrderRepository.
// It resolves customer contacts through the given UserRepository.
type MemoryOrderRepository struct {
	orders map[string]models.Order
	users  UserRepository
	mu     sync.RWMutex
}

// NewMemoryOrderRepository creates a new instance of MemoryOrderRepository.
func NewMemoryOrderRepository(users UserRepository) *MemoryOrderRepository {
	return &MemoryOrderRepository{
		orders: make(map[string]models.Order),
		users:  users,
	}
}

// Create adds a new order.
func (r *MemoryOrderRepository) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	r.orders[order.ID] = *order
	return nil
}

// GetByID returns an order by its ID.
func (r *MemoryOrderRepository) GetByID(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	return &order, nil
}

// ListByCustomer returns the customer's orders, newest first.
func (r *MemoryOrderRepository) ListByCustomer(_ context.Context, customerID string) ([]models.Order, error) {
	out := r.filter(func(o models.Order) bool { return o.CustomerID == customerID })
	sortByCreated(out, false)
	return out, nil
}

// ListByStatus returns orders in status with customer contacts attached.
func (r *MemoryOrderRepository) ListByStatus(ctx context.Context, status models.OrderStatus, oldestFirst bool) ([]models.OrderWithCustomer, error) {
	orders := r.filter(func(o models.Order) bool { return o.Status == status })
	sortByCreated(orders, oldestFirst)

	out := make([]models.OrderWithCustomer, 0, len(orders))
	for _, o := range orders {
		row := models.OrderWithCustomer{Order: o}
		if r.users != nil {
			if u, err := r.users.GetByID(ctx, o.CustomerID); err == nil {
				row.Customer = &models.CustomerContact{Name: u.Name, Phone: u.Phone, Email: u.Email}
			}
		}
		out = append(out, row)
	}
	return out, nil
}

// TransitionStatus updates the status only if the order is still in from.
func (r *MemoryOrderRepository) TransitionStatus(_ context.Context, id string, from, to models.OrderStatus, at time.Time) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	if order.Status != from {
		return &order, fmt.Errorf("order %s is %s: %w", id, order.Status, ErrStaleStatus)
	}
	order.Status = to
	if to == models.StatusDelivered {
		delivered := at
		order.DeliveredAt = &delivered
	}
	r.orders[id] = order
	return &order, nil
}

// CountByStatus counts orders in a status.
func (r *MemoryOrderRepository) CountByStatus(_ context.Context, status models.OrderStatus) (int64, error) {
	return int64(len(r.filter(func(o models.Order) bool { return o.Status == status }))), nil
}

// ListDeliveredBetween returns orders delivered in [from, to).
func (r *MemoryOrderRepository) ListDeliveredBetween(_ context.Context, from, to time.Time) ([]models.Order, error) {
	out := r.filter(func(o models.Order) bool {
		return o.Status == models.StatusDelivered && o.DeliveredAt != nil &&
			!o.DeliveredAt.Before(from) && o.DeliveredAt.Before(to)
	})
	return out, nil
}

func (r *MemoryOrderRepository) filter(keep func(models.Order) bool) []models.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}

func sortByCreated(orders []models.Order, ascending bool) {
	sort.SliceStable(orders, func(i, j int) bool {
		if ascending {
			return orders[i].CreatedAt.Before(orders[j].CreatedAt)
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}
