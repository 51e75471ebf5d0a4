package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"canedrop/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// orderCustomerRow is the scan target of the orders/users join.
type orderCustomerRow struct {
	ID            string
	CustomerID    string
	Quantity      int
	Amount        int64
	Address       string
	PaymentMethod models.PaymentMethod
	PaymentID     *string
	Status        models.OrderStatus
	CreatedAt     time.Time
	DeliveredAt   *time.Time
	CustomerName  *string
	CustomerPhone *string
	CustomerEmail *string
}

func (row orderCustomerRow) toModel() models.OrderWithCustomer {
	out := models.OrderWithCustomer{
		Order: models.Order{
			ID:            row.ID,
			CustomerID:    row.CustomerID,
			Quantity:      row.Quantity,
			Amount:        row.Amount,
			Address:       row.Address,
			PaymentMethod: row.PaymentMethod,
			PaymentID:     row.PaymentID,
			Status:        row.Status,
			CreatedAt:     row.CreatedAt,
			DeliveredAt:   row.DeliveredAt,
		},
	}
	// LEFT JOIN: a missing user leaves the contact out
	if row.CustomerName != nil {
		out.Customer = &models.CustomerContact{Name: *row.CustomerName}
		if row.CustomerPhone != nil {
			out.Customer.Phone = *row.CustomerPhone
		}
		if row.CustomerEmail != nil {
			out.Customer.Email = *row.CustomerEmail
		}
	}
	return out
}

// Create inserts a new order.
func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// GetByID retrieves a single order by its ID.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// ListByCustomer retrieves a customer's orders, newest first.
func (r *GORMOrderRepository) ListByCustomer(ctx context.Context, customerID string) ([]models.Order, error) {
	orders := []models.Order{}
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for customer %s: %w", customerID, err)
	}
	return orders, nil
}

// ListByStatus retrieves orders in a status together with their customer's contact details.
func (r *GORMOrderRepository) ListByStatus(ctx context.Context, status models.OrderStatus, oldestFirst bool) ([]models.OrderWithCustomer, error) {
	direction := "DESC"
	if oldestFirst {
		direction = "ASC"
	}

	var rows []orderCustomerRow
	err := r.db.WithContext(ctx).
		Table("orders").
		Select("orders.*, users.name AS customer_name, users.phone AS customer_phone, users.email AS customer_email").
		Joins("LEFT JOIN users ON users.id = orders.customer_id").
		Where("orders.status = ?", status).
		Order("orders.created_at " + direction).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %s orders: %w", status, err)
	}

	out := make([]models.OrderWithCustomer, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

// TransitionStatus performs a guarded status update keyed by id and the expected current status.
func (r *GORMOrderRepository) TransitionStatus(ctx context.Context, id string, from, to models.OrderStatus, at time.Time) (*models.Order, error) {
	updates := map[string]interface{}{"status": to}
	if to == models.StatusDelivered {
		updates["delivered_at"] = at.UTC()
	}

	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update status of order %s: %w", id, res.Error)
	}

	order, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		return order, fmt.Errorf("order %s is %s: %w", id, order.Status, ErrStaleStatus)
	}
	return order, nil
}

// CountByStatus counts orders in a status.
func (r *GORMOrderRepository) CountByStatus(ctx context.Context, status models.OrderStatus) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Order{}).Where("status = ?", status).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count %s orders: %w", status, err)
	}
	return n, nil
}

// ListDeliveredBetween retrieves orders delivered in [from, to).
func (r *GORMOrderRepository) ListDeliveredBetween(ctx context.Context, from, to time.Time) ([]models.Order, error) {
	orders := []models.Order{}
	err := r.db.WithContext(ctx).
		Where("status = ? AND delivered_at >= ? AND delivered_at < ?", models.StatusDelivered, from.UTC(), to.UTC()).
		Order("delivered_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list delivered orders: %w", err)
	}
	return orders, nil
}
