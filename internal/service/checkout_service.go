package service

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/broker"
	"storefront/internal/models"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// CartAPI is the cart side of a checkout
type CartAPI interface {
	GetCart(ctx context.Context, userID string) ([]models.CartLineItem, error)
	ClearCart(ctx context.Context, userID string) error
}

// OrderAPI is the order side of a checkout
type OrderAPI interface {
	// CreateOrder reports created=false when in.IdempotencyKey named an existing order
	CreateOrder(ctx context.Context, in models.NewOrder) (order *models.Order, created bool, err error)
}

// CheckoutRequest represents a checkout of the user's current cart
type CheckoutRequest struct {
	UserID          string `json:"-"`
	DeliveryAddress string `json:"delivery_address"`
	PaymentMethod   string `json:"payment_method"`
	ClientTotal     *int64 `json:"client_total,omitempty"`
	IdempotencyKey  string `json:"-"`
}

// CheckoutResult is the outcome of a checkout that created an order.
// CartCleared is false when the cart could not be emptied afterwards.
type CheckoutResult struct {
	Order       *models.Order `json:"order"`
	CartCleared bool          `json:"cart_cleared"`
	Warning     string        `json:"warning,omitempty"`
}

// CheckoutService turns a cart into an order. The two stores share no transaction:
// the order is created first and the cart cleared after, and a failed clear is reported
// in the result rather than undone.
type CheckoutService struct {
	carts  CartAPI
	orders OrderAPI
	events broker.Publisher
	logger *zap.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(carts CartAPI, orders OrderAPI, events broker.Publisher) *CheckoutService {
	if events == nil {
		events = broker.NopPublisher{}
	}
	return &CheckoutService{
		carts:  carts,
		orders: orders,
		events: events,
		logger: util.GetLogger(),
	}
}

// Checkout snapshots the cart, creates the order and clears the cart.
// When the idempotency key replays an earlier order, the cart is only cleared if it still
// holds exactly that order's items.
func (s *CheckoutService) Checkout(ctx context.Context, req *CheckoutRequest) (*CheckoutResult, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.Checkout")
	defer span.End()

	if strings.TrimSpace(req.UserID) == "" {
		util.CheckoutsTotal.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: user id is required", models.ErrInvalidInput)
	}

	items, err := s.carts.GetCart(ctx, req.UserID)
	if err != nil {
		util.CheckoutsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(items) == 0 {
		util.CheckoutsTotal.WithLabelValues("empty_cart").Inc()
		return nil, fmt.Errorf("%w: nothing to check out for user %s", models.ErrEmptyCart, req.UserID)
	}

	total, err := models.CheckedCartTotal(items)
	if err != nil {
		util.CheckoutsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}
	if req.ClientTotal != nil && *req.ClientTotal != total {
		s.logger.Warn("Client total differs from cart total",
			zap.String("user_id", req.UserID),
			zap.Int64("client_total", *req.ClientTotal),
			zap.Int64("cart_total", total))
	}

	order, created, err := s.orders.CreateOrder(ctx, models.NewOrder{
		UserID:          req.UserID,
		Items:           items,
		Total:           total,
		DeliveryAddress: req.DeliveryAddress,
		PaymentMethod:   req.PaymentMethod,
		IdempotencyKey:  req.IdempotencyKey,
	})
	if err != nil {
		if models.IsClientError(err) {
			util.CheckoutsTotal.WithLabelValues("invalid").Inc()
		} else {
			util.CheckoutsTotal.WithLabelValues("failed").Inc()
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if !created && !sameItems(items, order.Items) {
		util.CheckoutsTotal.WithLabelValues("replayed").Inc()
		s.logger.Warn("Idempotent checkout replay with a changed cart",
			zap.String("user_id", req.UserID),
			zap.String("order_id", order.ID))
		return &CheckoutResult{
			Order:   order,
			Warning: fmt.Sprintf("idempotency key already used for order %s; the cart changed since and was left untouched", order.ID),
		}, nil
	}

	result := &CheckoutResult{Order: order, CartCleared: true}
	if err := s.carts.ClearCart(ctx, req.UserID); err != nil {
		result.CartCleared = false
		result.Warning = fmt.Sprintf("order %s was created but the cart could not be cleared: %v", order.ID, err)
		util.CheckoutsTotal.WithLabelValues("uncleared").Inc()
		s.logger.Error("Cart not cleared after checkout",
			zap.String("user_id", req.UserID),
			zap.String("order_id", order.ID),
			zap.Error(err))
	} else {
		util.CheckoutsTotal.WithLabelValues("completed").Inc()
		s.logger.Info("Checkout completed",
			zap.String("user_id", req.UserID),
			zap.String("order_id", order.ID),
			zap.Int64("total", order.Total))
	}

	event := &models.CheckoutCompletedEvent{
		BaseEvent:   broker.NewBaseEvent(models.EventTypeCheckoutCompleted),
		OrderID:     order.ID,
		UserID:      req.UserID,
		Total:       order.Total,
		CartCleared: result.CartCleared,
		Warning:     result.Warning,
	}
	if err := s.events.PublishCheckoutCompleted(ctx, event); err != nil {
		s.logger.Error("Failed to publish CheckoutCompleted event", zap.Error(err))
	}

	return result, nil
}

// sameItems reports whether two carts hold the same products at the same quantities and prices
func sameItems(a, b []models.CartLineItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Product.ID != b[i].Product.ID ||
			a[i].Product.Price != b[i].Product.Price ||
			a[i].Quantity != b[i].Quantity {
			return false
		}
	}
	return true
}
