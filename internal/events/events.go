package events

import (
	"time"

	"canedrop/internal/models"
)

// OrderEvent is the payload of order.created and order.delivered.
type OrderEvent struct {
	OrderID       string               `json:"orderId"`
	CustomerID    string               `json:"customerId"`
	Quantity      int                  `json:"quantity"`
	Amount        int64                `json:"amount"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
	Status        models.OrderStatus   `json:"status"`
	At            time.Time            `json:"at"`
}

// NewOrderEvent describes order as it is at the moment of the event.
func NewOrderEvent(order *models.Order, at time.Time) OrderEvent {
	return OrderEvent{
		OrderID:       order.ID,
		CustomerID:    order.CustomerID,
		Quantity:      order.Quantity,
		Amount:        order.Amount,
		PaymentMethod: order.PaymentMethod,
		Status:        order.Status,
		At:            at,
	}
}

// DailyReport is the payload of report.daily.
type DailyReport struct {
	Date string `json:"date"`
	models.OrderSummary
	GeneratedAt time.Time `json:"generatedAt"`
}
