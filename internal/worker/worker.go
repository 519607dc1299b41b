package worker

import (
	"context"

	"storefront/internal/broker"
	"storefront/internal/models"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// Notifier reacts to storefront events. It only logs and counts; delivering
// notifications to users is left to whatever consumes its logs.
type Notifier struct {
	logger *zap.Logger
}

func NewNotifier() *Notifier {
	return &Notifier{logger: util.GetLogger()}
}

// Register wires the notifier callbacks into eh
func (n *Notifier) Register(eh *broker.EventHandler) {
	eh.OnOrderCreated(n.HandleOrderCreated)
	eh.OnOrderStatusChanged(n.HandleOrderStatusChanged)
	eh.OnCartCleared(n.HandleCartCleared)
	eh.OnCheckoutCompleted(n.HandleCheckoutCompleted)
}

func (n *Notifier) HandleOrderCreated(_ context.Context, e *models.OrderCreatedEvent) error {
	n.logger.Info("Order placed",
		zap.String("order_id", e.OrderID),
		zap.String("user_id", e.UserID),
		zap.Int64("total", e.Total),
		zap.Int("item_count", e.ItemCount),
		zap.String("payment_method", string(e.PaymentMethod)))
	return nil
}

func (n *Notifier) HandleOrderStatusChanged(_ context.Context, e *models.OrderStatusChangedEvent) error {
	n.logger.Info("Order status changed",
		zap.String("order_id", e.OrderID),
		zap.String("user_id", e.UserID),
		zap.String("from", string(e.From)),
		zap.String("to", string(e.To)))
	if e.To.IsTerminal() {
		n.logger.Info("Order delivered", zap.String("order_id", e.OrderID))
	}
	return nil
}

func (n *Notifier) HandleCartCleared(_ context.Context, e *models.CartClearedEvent) error {
	n.logger.Debug("Cart cleared", zap.String("user_id", e.UserID))
	return nil
}

// HandleCheckoutCompleted flags checkouts whose cart still holds the ordered items
func (n *Notifier) HandleCheckoutCompleted(_ context.Context, e *models.CheckoutCompletedEvent) error {
	if e.CartCleared {
		return nil
	}
	util.CheckoutsUnclearedTotal.Inc()
	n.logger.Warn("Checkout left cart uncleared",
		zap.String("order_id", e.OrderID),
		zap.String("user_id", e.UserID),
		zap.String("warning", e.Warning))
	return nil
}

// NotifierWorker consumes the events topic and feeds the notifier
type NotifierWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	logger       *zap.Logger
}

// NewNotifierWorker creates a new notifier worker
func NewNotifierWorker(consumer *broker.Consumer, notifier *Notifier) *NotifierWorker {
	eventHandler := broker.NewEventHandler()
	notifier.Register(eventHandler)

	return &NotifierWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
		logger:       util.GetLogger(),
	}
}

// Start blocks consuming events until ctx is cancelled
func (w *NotifierWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting notifier worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *NotifierWorker) Stop() error {
	w.logger.Info("Stopping notifier worker")
	return w.consumer.Close()
}
