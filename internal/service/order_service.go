package service

import (
	"context"

	"storefront/internal/broker"
	"storefront/internal/models"
	"storefront/internal/store"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// OrderService handles order business logic
type OrderService struct {
	store  *store.OrderStore
	events broker.Publisher
	logger *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(store *store.OrderStore, events broker.Publisher) *OrderService {
	if events == nil {
		events = broker.NopPublisher{}
	}
	return &OrderService{
		store:  store,
		events: events,
		logger: util.GetLogger(),
	}
}

// UpdateStatusRequest represents a status overwrite
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// ListOrders returns the user's orders, newest first
func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	_, span := util.StartSpan(ctx, "OrderService.ListOrders")
	defer span.End()

	return s.store.ListOrders(userID), nil
}

// GetOrder retrieves one order of the user
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	_, span := util.StartSpan(ctx, "OrderService.GetOrder")
	defer span.End()

	order, err := s.store.GetOrder(userID, orderID)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateOrder stores a new pending order. A repeated idempotency key returns the existing order
// with created=false.
func (s *OrderService) CreateOrder(ctx context.Context, in models.NewOrder) (*models.Order, bool, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	order, created, err := s.store.CreateOrder(ctx, in)
	if err != nil {
		if !models.IsClientError(err) {
			s.logger.Error("Failed to create order", zap.String("user_id", in.UserID), zap.Error(err))
		}
		return nil, false, err
	}

	if !created {
		util.OrdersReplayedTotal.Inc()
		s.logger.Info("Duplicate order request detected",
			zap.String("idempotency_key", order.IdempotencyKey),
			zap.String("order_id", order.ID))
		return &order, false, nil
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.String("order_id", order.ID),
		zap.String("user_id", order.UserID),
		zap.Int64("total", order.Total))

	event := &models.OrderCreatedEvent{
		BaseEvent:     broker.NewBaseEvent(models.EventTypeOrderCreated),
		OrderID:       order.ID,
		UserID:        order.UserID,
		Total:         order.Total,
		ItemCount:     len(order.Items),
		PaymentMethod: order.PaymentMethod,
	}
	if err := s.events.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
	}

	return &order, true, nil
}

// UpdateStatus overwrites the order status
func (s *OrderService) UpdateStatus(ctx context.Context, userID, orderID string, req *UpdateStatusRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateStatus")
	defer span.End()

	order, previous, err := s.store.SetStatus(ctx, userID, orderID, req.Status)
	if err != nil {
		return nil, err
	}
	if previous == order.Status {
		return &order, nil
	}

	if !previous.CanAdvanceTo(order.Status) {
		s.logger.Warn("Order status moved backwards",
			zap.String("order_id", orderID),
			zap.String("from", string(previous)),
			zap.String("to", string(order.Status)))
	}
	util.OrderStatusChangesTotal.WithLabelValues(string(order.Status)).Inc()

	event := &models.OrderStatusChangedEvent{
		BaseEvent: broker.NewBaseEvent(models.EventTypeOrderStatusChanged),
		OrderID:   order.ID,
		UserID:    order.UserID,
		From:      previous,
		To:        order.Status,
	}
	if err := s.events.PublishOrderStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
	}

	return &order, nil
}
