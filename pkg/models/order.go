package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed:
		return true
	}
	return false
}

type OrderStatus string

const (
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether an order may move from s to next.
// The graph is monotonic: processing -> shipped or cancelled,
// shipped -> delivered. Delivered and cancelled are terminal.
// Re-asserting the current status is a no-op and always allowed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case OrderProcessing:
		return next == OrderShipped || next == OrderCancelled
	case OrderShipped:
		return next == OrderDelivered
	}
	return false
}

type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaymentStatus   PaymentStatus   `json:"payment_status"`
	OrderStatus     OrderStatus     `json:"order_status"`
	ShippingAddress string          `json:"shipping_address"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Items           []OrderItem     `json:"items"`
}

type OrderItem struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type OrderItemCreate struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type OrderCreate struct {
	UserID          string            `json:"user_id"`
	Items           []OrderItemCreate `json:"items"`
	ShippingAddress string            `json:"shipping_address"`
}

// OrderUpdate carries only the fields the caller wants changed; nil means
// leave untouched.
type OrderUpdate struct {
	PaymentStatus   *PaymentStatus `json:"payment_status,omitempty"`
	OrderStatus     *OrderStatus   `json:"order_status,omitempty"`
	ShippingAddress *string        `json:"shipping_address,omitempty"`
}

type OrderStatusUpdate struct {
	OrderStatus OrderStatus `json:"order_status"`
}
