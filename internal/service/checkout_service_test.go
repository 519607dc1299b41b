package service

import (
	"context"
	"testing"

	"storefront/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkoutFixture struct {
	carts    *CartService
	orders   *OrderService
	checkout *CheckoutService
	events   *recordingPublisher
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	events := &recordingPublisher{}
	carts := NewCartService(newCartStore(t), nil, events)
	orders := NewOrderService(newOrderStore(t), events)
	return &checkoutFixture{
		carts:    carts,
		orders:   orders,
		checkout: NewCheckoutService(carts, orders, events),
		events:   events,
	}
}

func (f *checkoutFixture) fillCart(t *testing.T, user string) {
	t.Helper()
	ctx := context.Background()
	_, err := f.carts.AddItem(ctx, user, &AddItemRequest{
		Product:  &models.Product{ID: "P1", Name: "Kettle", Price: 1000},
		Quantity: intPtr(2),
	})
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, user, &AddItemRequest{
		Product: &models.Product{ID: "P2", Name: "Mug", Price: 500},
	})
	require.NoError(t, err)
}

func TestCheckoutEndToEnd(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	f.fillCart(t, "u1")

	totals, err := f.carts.GetTotal(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.CartTotals{Total: 2500, ItemCount: 2}, totals)

	result, err := f.checkout.Checkout(ctx, &CheckoutRequest{
		UserID:          "u1",
		DeliveryAddress: "A",
		PaymentMethod:   "cod",
	})
	require.NoError(t, err)

	assert.True(t, result.CartCleared)
	assert.Empty(t, result.Warning)
	assert.Equal(t, int64(2500), result.Order.Total)
	assert.Equal(t, models.OrderStatusPending, result.Order.Status)
	assert.Len(t, result.Order.Items, 2)

	items, err := f.carts.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, items)

	orders, err := f.orders.ListOrders(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, result.Order.ID, orders[0].ID)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := f.checkout.Checkout(ctx, &CheckoutRequest{UserID: "u1", DeliveryAddress: "A", PaymentMethod: "cod"})
	assert.ErrorIs(t, err, models.ErrEmptyCart)

	orders, err := f.orders.ListOrders(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCheckoutInvalidOrderLeavesCart(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	f.fillCart(t, "u1")

	_, err := f.checkout.Checkout(ctx, &CheckoutRequest{UserID: "u1", DeliveryAddress: " ", PaymentMethod: "cod"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	items, err := f.carts.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestCheckoutUsesCartTotalOverClientTotal(t *testing.T) {
	f := newCheckoutFixture(t)
	f.fillCart(t, "u1")
	claimed := int64(1)

	result, err := f.checkout.Checkout(context.Background(), &CheckoutRequest{
		UserID:          "u1",
		DeliveryAddress: "A",
		PaymentMethod:   "card",
		ClientTotal:     &claimed,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2500), result.Order.Total)
}

func TestCheckoutClearFailureReportsWarning(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	f.fillCart(t, "u1")
	checkout := NewCheckoutService(unclearableCart{f.carts}, f.orders, f.events)

	result, err := checkout.Checkout(ctx, &CheckoutRequest{
		UserID:          "u1",
		DeliveryAddress: "A",
		PaymentMethod:   "cod",
		IdempotencyKey:  "attempt-1",
	})
	require.NoError(t, err)

	assert.False(t, result.CartCleared)
	assert.Contains(t, result.Warning, result.Order.ID)
	items, err := f.carts.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, items, 2, "the cart keeps its items")

	// retrying with the same key does not duplicate the order and clears the cart
	retry, err := f.checkout.Checkout(ctx, &CheckoutRequest{
		UserID:          "u1",
		DeliveryAddress: "A",
		PaymentMethod:   "cod",
		IdempotencyKey:  "attempt-1",
	})
	require.NoError(t, err)
	assert.True(t, retry.CartCleared)
	assert.Equal(t, result.Order.ID, retry.Order.ID)

	orders, err := f.orders.ListOrders(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestCheckoutReplayAfterCartChangedKeepsCart(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	f.fillCart(t, "u1")
	req := &CheckoutRequest{
		UserID:          "u1",
		DeliveryAddress: "A",
		PaymentMethod:   "cod",
		IdempotencyKey:  "k1",
	}

	first, err := f.checkout.Checkout(ctx, req)
	require.NoError(t, err)
	require.True(t, first.CartCleared)

	_, err = f.carts.AddItem(ctx, "u1", &AddItemRequest{
		Product: &models.Product{ID: "P9", Name: "Teapot", Price: 700},
	})
	require.NoError(t, err)

	replay, err := f.checkout.Checkout(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first.Order.ID, replay.Order.ID)
	assert.False(t, replay.CartCleared)
	assert.Contains(t, replay.Warning, first.Order.ID)

	items, err := f.carts.GetCart(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 1, "the new cart survives the replay")
	assert.Equal(t, "P9", items[0].Product.ID)

	orders, err := f.orders.ListOrders(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestSameItems(t *testing.T) {
	a := []models.CartLineItem{{Product: models.Product{ID: "P1", Price: 10}, Quantity: 2}}
	assert.True(t, sameItems(a, []models.CartLineItem{{Product: models.Product{ID: "P1", Price: 10, Features: []string{"x"}}, Quantity: 2}}))
	assert.False(t, sameItems(a, []models.CartLineItem{{Product: models.Product{ID: "P1", Price: 10}, Quantity: 3}}))
	assert.False(t, sameItems(a, []models.CartLineItem{{Product: models.Product{ID: "P1", Price: 11}, Quantity: 2}}))
	assert.False(t, sameItems(a, nil))
}

func TestCheckoutRequiresUser(t *testing.T) {
	f := newCheckoutFixture(t)
	_, err := f.checkout.Checkout(context.Background(), &CheckoutRequest{DeliveryAddress: "A", PaymentMethod: "cod"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}
