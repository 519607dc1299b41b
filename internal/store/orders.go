package store

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"storefront/internal/models"
)

// OrderStore owns the per-user order lists, newest first
type OrderStore struct {
	ledger *Ledger[[]models.Order]
	now    func() time.Time
	// lastID is only touched inside ledger updates, which are serialized.
	lastID int64
}

// NewOrderStore loads the orders persisted by snap
func NewOrderStore(ctx context.Context, snap Snapshotter) (*OrderStore, error) {
	ledger, err := OpenLedger[[]models.Order](ctx, "orders", snap)
	if err != nil {
		return nil, err
	}

	s := &OrderStore{ledger: ledger, now: time.Now}
	ledger.Range(func(_ string, orders []models.Order) bool {
		for _, o := range orders {
			if id, err := strconv.ParseInt(o.ID, 10, 64); err == nil && id > s.lastID {
				s.lastID = id
			}
		}
		return true
	})
	return s, nil
}

// Close flushes and closes the backing snapshot
func (s *OrderStore) Close(ctx context.Context) error {
	return s.ledger.Close(ctx)
}

// Users returns how many users have placed at least one order
func (s *OrderStore) Users() int {
	return s.ledger.Len()
}

// ListOrders returns the user's orders, most recent first
func (s *OrderStore) ListOrders(userID string) []models.Order {
	orders, _ := s.ledger.Get(userID)
	out := make([]models.Order, len(orders))
	copy(out, orders)
	return out
}

// GetOrder returns one order of the user
func (s *OrderStore) GetOrder(userID, orderID string) (models.Order, error) {
	orders, _ := s.ledger.Get(userID)
	for _, o := range orders {
		if o.ID == orderID {
			return o, nil
		}
	}
	return models.Order{}, orderNotFound(userID, orderID)
}

// CreateOrder validates and stores a new pending order.
// When in.IdempotencyKey matches an order the user already has, that order is returned
// with created=false and nothing is written.
func (s *OrderStore) CreateOrder(ctx context.Context, in models.NewOrder) (order models.Order, created bool, err error) {
	method, err := validateNewOrder(in)
	if err != nil {
		return models.Order{}, false, err
	}
	key := strings.TrimSpace(in.IdempotencyKey)

	_, err = s.ledger.Update(ctx, in.UserID, func(cur []models.Order, _ bool) ([]models.Order, bool, error) {
		if key != "" {
			for _, existing := range cur {
				if existing.IdempotencyKey == key {
					order = existing
					return nil, false, errNoChange
				}
			}
		}

		order = models.Order{
			ID:              s.nextID(),
			UserID:          in.UserID,
			Items:           slices.Clone(in.Items),
			Total:           in.Total,
			CreatedAt:       s.now().UTC(),
			DeliveryAddress: strings.TrimSpace(in.DeliveryAddress),
			PaymentMethod:   method,
			Status:          models.OrderStatusPending,
			IdempotencyKey:  key,
		}
		created = true

		next := make([]models.Order, 0, len(cur)+1)
		next = append(next, order)
		return append(next, cur...), true, nil
	})
	if err != nil {
		return models.Order{}, false, err
	}
	return order, created, nil
}

// SetStatus overwrites the status of an order and returns it with its previous status.
// Any of the known labels is accepted in any order.
func (s *OrderStore) SetStatus(ctx context.Context, userID, orderID, status string) (order models.Order, previous models.OrderStatus, err error) {
	newStatus, err := models.ParseOrderStatus(status)
	if err != nil {
		return models.Order{}, "", err
	}

	_, err = s.ledger.Update(ctx, userID, func(cur []models.Order, _ bool) ([]models.Order, bool, error) {
		idx := slices.IndexFunc(cur, func(o models.Order) bool { return o.ID == orderID })
		if idx < 0 {
			return nil, false, orderNotFound(userID, orderID)
		}
		previous = cur[idx].Status
		if previous == newStatus {
			order = cur[idx]
			return nil, false, errNoChange
		}
		next := slices.Clone(cur)
		next[idx].Status = newStatus
		order = next[idx]
		return next, true, nil
	})
	if err != nil {
		return models.Order{}, "", err
	}
	return order, previous, nil
}

// nextID derives ids from the clock, bumped past the last id so they never repeat
func (s *OrderStore) nextID() string {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return strconv.FormatInt(id, 10)
}

func validateNewOrder(in models.NewOrder) (models.PaymentMethod, error) {
	if err := requireUser(in.UserID); err != nil {
		return "", err
	}
	if len(in.Items) == 0 {
		return "", fmt.Errorf("%w: order must contain at least one item", models.ErrInvalidInput)
	}
	sum, err := models.CheckedCartTotal(in.Items)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(in.DeliveryAddress) == "" {
		return "", fmt.Errorf("%w: delivery address is required", models.ErrInvalidInput)
	}
	method, err := models.ParsePaymentMethod(in.PaymentMethod)
	if err != nil {
		return "", err
	}
	if sum != in.Total {
		return "", fmt.Errorf("%w: total %d does not match line items sum %d", models.ErrInvalidInput, in.Total, sum)
	}
	return method, nil
}

func orderNotFound(userID, orderID string) error {
	return fmt.Errorf("%w: order %s for user %s", models.ErrNotFound, orderID, userID)
}
