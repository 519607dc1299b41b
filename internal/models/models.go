package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// MaxQuantity is the largest quantity a single line item may hold
const MaxQuantity = 1_000_000

// Product represents a catalog record. Carts and orders keep a copy taken at add time.
type Product struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Price         int64    `json:"price"`
	OriginalPrice int64    `json:"original_price"`
	Discount      int      `json:"discount"`
	Rating        float64  `json:"rating"`
	Reviews       int      `json:"reviews"`
	Category      string   `json:"category"`
	Brand         string   `json:"brand"`
	InStock       bool     `json:"in_stock"`
	Image         string   `json:"image"`
	Features      []string `json:"features,omitempty"`
}

// CartLineItem is a product snapshot with a quantity
type CartLineItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Subtotal returns price times quantity
func (li CartLineItem) Subtotal() int64 {
	return li.Product.Price * int64(li.Quantity)
}

// Validate checks a line item carried into an order
func (li CartLineItem) Validate() error {
	if strings.TrimSpace(li.Product.ID) == "" {
		return fmt.Errorf("%w: line item product id is required", ErrInvalidInput)
	}
	if li.Quantity < 1 {
		return fmt.Errorf("%w: line item %s quantity must be at least 1", ErrInvalidInput, li.Product.ID)
	}
	if li.Quantity > MaxQuantity {
		return fmt.Errorf("%w: line item %s quantity must be at most %d", ErrInvalidInput, li.Product.ID, MaxQuantity)
	}
	if li.Product.Price < 0 {
		return fmt.Errorf("%w: line item %s price must be non-negative", ErrInvalidInput, li.Product.ID)
	}
	if li.Product.Price > 0 && int64(li.Quantity) > math.MaxInt64/li.Product.Price {
		return fmt.Errorf("%w: line item %s subtotal overflows", ErrInvalidInput, li.Product.ID)
	}
	return nil
}

// CartTotal sums price times quantity over the given line items.
// Items are assumed valid; use CheckedCartTotal for unvalidated input.
func CartTotal(items []CartLineItem) int64 {
	var total int64
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}

// CheckedCartTotal validates every line item and sums them, rejecting totals that overflow int64
func CheckedCartTotal(items []CartLineItem) (int64, error) {
	var total int64
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return 0, err
		}
		sub := item.Subtotal()
		if total > math.MaxInt64-sub {
			return 0, fmt.Errorf("%w: cart total overflows", ErrInvalidInput)
		}
		total += sub
	}
	return total, nil
}

// OrderStatus is the lifecycle label of an order
type OrderStatus string

// Order statuses, in forward order
const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
)

var statusRank = map[OrderStatus]int{
	OrderStatusPending:   0,
	OrderStatusConfirmed: 1,
	OrderStatusShipped:   2,
	OrderStatusDelivered: 3,
}

// ParseOrderStatus accepts only the four known labels
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.TrimSpace(s))
	if _, ok := statusRank[status]; !ok {
		return "", fmt.Errorf("%w: invalid status %q", ErrInvalidInput, s)
	}
	return status, nil
}

// CanAdvanceTo reports whether next is strictly later in the lifecycle.
// Stores do not enforce it.
func (s OrderStatus) CanAdvanceTo(next OrderStatus) bool {
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	return ok && to > from
}

// IsTerminal reports whether no later status exists
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered
}

// PaymentMethod is an opaque label; no payment is processed
type PaymentMethod string

// Accepted payment methods
const (
	PaymentMethodCOD  PaymentMethod = "cod"
	PaymentMethodUPI  PaymentMethod = "upi"
	PaymentMethodCard PaymentMethod = "card"
)

// ParsePaymentMethod rejects missing or unknown labels
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	method := PaymentMethod(strings.ToLower(strings.TrimSpace(s)))
	switch method {
	case PaymentMethodCOD, PaymentMethodUPI, PaymentMethodCard:
		return method, nil
	case "":
		return "", fmt.Errorf("%w: payment method is required", ErrInvalidInput)
	default:
		return "", fmt.Errorf("%w: unsupported payment method %q", ErrInvalidInput, s)
	}
}

// Order is an immutable record of a checkout; only Status changes after creation
type Order struct {
	ID              string         `json:"id"`
	UserID          string         `json:"user_id"`
	Items           []CartLineItem `json:"items"`
	Total           int64          `json:"total"`
	CreatedAt       time.Time      `json:"created_at"`
	DeliveryAddress string         `json:"delivery_address"`
	PaymentMethod   PaymentMethod  `json:"payment_method"`
	Status          OrderStatus    `json:"status"`
	IdempotencyKey  string         `json:"idempotency_key,omitempty"`
}

// NewOrder carries the fields needed to create an order
type NewOrder struct {
	UserID          string         `json:"-"`
	Items           []CartLineItem `json:"items"`
	Total           int64          `json:"total"`
	DeliveryAddress string         `json:"delivery_address"`
	PaymentMethod   string         `json:"payment_method"`
	IdempotencyKey  string         `json:"idempotency_key,omitempty"`
}

// CartTotals is the result of a cart total query
type CartTotals struct {
	Total     int64 `json:"total"`
	ItemCount int   `json:"item_count"`
}
