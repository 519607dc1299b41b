package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"storefront/internal/models"
	"storefront/internal/store"

	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []interface{}
}

func (r *recordingPublisher) record(e interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingPublisher) PublishOrderCreated(_ context.Context, e *models.OrderCreatedEvent) error {
	return r.record(e)
}

func (r *recordingPublisher) PublishOrderStatusChanged(_ context.Context, e *models.OrderStatusChangedEvent) error {
	return r.record(e)
}

func (r *recordingPublisher) PublishCartCleared(_ context.Context, e *models.CartClearedEvent) error {
	return r.record(e)
}

func (r *recordingPublisher) PublishCheckoutCompleted(_ context.Context, e *models.CheckoutCompletedEvent) error {
	return r.record(e)
}

func (r *recordingPublisher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func newCartStore(t *testing.T) *store.CartStore {
	t.Helper()
	snap, err := store.NewFileSnapshotter(filepath.Join(t.TempDir(), "carts.json"))
	require.NoError(t, err)
	s, err := store.NewCartStore(context.Background(), snap)
	require.NoError(t, err)
	return s
}

func newOrderStore(t *testing.T) *store.OrderStore {
	t.Helper()
	snap, err := store.NewFileSnapshotter(filepath.Join(t.TempDir(), "orders.json"))
	require.NoError(t, err)
	s, err := store.NewOrderStore(context.Background(), snap)
	require.NoError(t, err)
	return s
}

type staticProducts map[string]models.Product

func (s staticProducts) GetProduct(_ context.Context, id string) (models.Product, error) {
	p, ok := s[id]
	if !ok {
		return models.Product{}, models.ErrNotFound
	}
	return p, nil
}

// unclearableCart serves the cart but fails every clear
type unclearableCart struct {
	CartAPI
}

var errClearDown = errors.New("cart service down")

func (unclearableCart) ClearCart(context.Context, string) error {
	return errClearDown
}

func intPtr(v int) *int { return &v }
