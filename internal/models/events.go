package models

import "time"

// Event types
const (
	EventTypeOrderCreated       = "ORDER_CREATED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
	EventTypeCartCleared        = "CART_CLEARED"
	EventTypeCheckoutCompleted  = "CHECKOUT_COMPLETED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent published when an order is stored
type OrderCreatedEvent struct {
	BaseEvent
	OrderID       string        `json:"order_id"`
	UserID        string        `json:"user_id"`
	Total         int64         `json:"total"`
	ItemCount     int           `json:"item_count"`
	PaymentMethod PaymentMethod `json:"payment_method"`
}

// OrderStatusChangedEvent published when an order status is overwritten
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID string      `json:"order_id"`
	UserID  string      `json:"user_id"`
	From    OrderStatus `json:"from"`
	To      OrderStatus `json:"to"`
}

// CartClearedEvent published when a cart is cleared
type CartClearedEvent struct {
	BaseEvent
	UserID string `json:"user_id"`
}

// CheckoutCompletedEvent published by the gateway after a checkout created an order.
// CartCleared is false when the order exists but the cart still holds its items.
type CheckoutCompletedEvent struct {
	BaseEvent
	OrderID     string `json:"order_id"`
	UserID      string `json:"user_id"`
	Total       int64  `json:"total"`
	CartCleared bool   `json:"cart_cleared"`
	Warning     string `json:"warning,omitempty"`
}
