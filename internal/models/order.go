package models

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusDelivered OrderStatus = "delivered"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	return s == StatusPending || s == StatusDelivered
}

// PaymentMethod is how the customer settles an order.
type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "cod"
	PaymentOnline PaymentMethod = "online"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	return m == PaymentCOD || m == PaymentOnline
}

// Order represents a jar delivery order. Amount is fixed at submission time.
type Order struct {
	ID            string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CustomerID    string        `json:"customerId" gorm:"type:varchar(36);not null;index"`
	Quantity      int           `json:"quantity" gorm:"not null"`
	Amount        int64         `json:"amount" gorm:"not null"`
	Address       string        `json:"address" gorm:"not null"`
	PaymentMethod PaymentMethod `json:"paymentMethod" gorm:"type:varchar(16);not null"`
	PaymentID     *string       `json:"paymentId"`
	Status        OrderStatus   `json:"status" gorm:"type:varchar(16);not null;default:pending;index"`
	CreatedAt     time.Time     `json:"createdAt" gorm:"not null;index"`
	DeliveredAt   *time.Time    `json:"deliveredAt,omitempty"`
}

// OrderWithCustomer is an order joined with the contact details of its customer.
type OrderWithCustomer struct {
	Order
	Customer *CustomerContact `json:"customer,omitempty"`
}

// OrderSummary feeds the owner dashboard.
type OrderSummary struct {
	PendingCount   int   `json:"pendingCount"`
	DeliveredToday int   `json:"deliveredToday"`
	RevenueToday   int64 `json:"revenueToday"`
}
