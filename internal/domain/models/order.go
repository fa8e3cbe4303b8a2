package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses.
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Payment statuses.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

func IsValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// ShippingAddress is snapshotted onto the order at placement time.
type ShippingAddress struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required"`
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	ZipCode string `json:"zipCode" validate:"required"`
	Country string `json:"country" validate:"required"`
}

// Order is a persisted purchase. All monetary fields are decimals rounded to
// two places at persistence.
type Order struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"user_id"`
	OrderNumber     string          `json:"order_number"`
	Status          string          `json:"status"`
	PaymentStatus   string          `json:"payment_status"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Shipping        decimal.Decimal `json:"shipping"`
	Tax             decimal.Decimal `json:"tax"`
	Total           decimal.Decimal `json:"total"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	CreatedAt       time.Time       `json:"created_at"`
	Items           []*OrderItem    `json:"items,omitempty"`
}

// OrderItem is an immutable snapshot of a cart line at purchase time. It must
// stay valid even if the product is later changed or deleted.
type OrderItem struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"order_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}
