package store

import (
	"context"
	"math"
	"testing"
	"time"

	"storefront/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrderStore(t *testing.T, snap *memorySnapshotter) *OrderStore {
	t.Helper()
	s, err := NewOrderStore(context.Background(), snap)
	require.NoError(t, err)
	return s
}

func sampleNewOrder(user string) models.NewOrder {
	return models.NewOrder{
		UserID: user,
		Items: []models.CartLineItem{
			{Product: product("P1", 1000), Quantity: 2},
			{Product: product("P2", 500), Quantity: 1},
		},
		Total:           2500,
		DeliveryAddress: "A",
		PaymentMethod:   "cod",
	}
}

func TestCreateOrder(t *testing.T) {
	s := newOrderStore(t, &memorySnapshotter{})

	order, created, err := s.CreateOrder(context.Background(), sampleNewOrder("u1"))
	require.NoError(t, err)

	assert.True(t, created)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, int64(2500), order.Total)
	assert.Equal(t, models.PaymentMethodCOD, order.PaymentMethod)
	assert.Len(t, order.Items, 2)
	assert.False(t, order.CreatedAt.IsZero())

	stored, err := s.GetOrder("u1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, order, stored)
}

func TestCreateOrderValidation(t *testing.T) {
	s := newOrderStore(t, &memorySnapshotter{})
	ctx := context.Background()

	cases := map[string]func(*models.NewOrder){
		"no items":        func(o *models.NewOrder) { o.Items = nil },
		"blank address":   func(o *models.NewOrder) { o.DeliveryAddress = "  " },
		"no payment":      func(o *models.NewOrder) { o.PaymentMethod = "" },
		"unknown payment": func(o *models.NewOrder) { o.PaymentMethod = "bitcoin" },
		"total mismatch":  func(o *models.NewOrder) { o.Total = 1 },
		"bad quantity":    func(o *models.NewOrder) { o.Items[0].Quantity = 0 },
		"no user":         func(o *models.NewOrder) { o.UserID = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := sampleNewOrder("u1")
			mutate(&in)
			_, _, err := s.CreateOrder(ctx, in)
			assert.ErrorIs(t, err, models.ErrInvalidInput)
		})
	}
	assert.Empty(t, s.ListOrders("u1"))
}

func TestCreateOrderRejectsTotalOverflow(t *testing.T) {
	s := newOrderStore(t, &memorySnapshotter{})

	in := sampleNewOrder("u1")
	in.Items[0].Product.Price = math.MaxInt64 / 2
	in.Items[1].Product.Price = math.MaxInt64 / 2
	in.Items[1].Quantity = 2
	in.Items[0].Quantity = 1

	_, _, err := s.CreateOrder(context.Background(), in)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	assert.Empty(t, s.ListOrders("u1"))
}

func TestListOrdersNewestFirst(t *testing.T) {
	s := newOrderStore(t, &memorySnapshotter{})
	ctx := context.Background()

	assert.Empty(t, s.ListOrders("u1"))

	first, _, err := s.CreateOrder(ctx, sampleNewOrder("u1"))
	require.NoError(t, err)
	second, _, err := s.CreateOrder(ctx, sampleNewOrder("u1"))
	require.NoError(t, err)

	orders := s.ListOrders("u1")
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)
	assert.Empty(t, s.ListOrders("u2"))
}

func TestOrderIDsUniqueWithFrozenClock(t *testing.T) {
	s := newOrderStore(t, &memorySnapshotter{})
	frozen := time.UnixMilli(1_700_000_000_000)
	s.now = func() time.Time { return frozen }
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		order, _, err := s.CreateOrder(ctx, sampleNewOrder("u1"))
		require.NoError(t, err)
		assert.False(t, seen[order.ID], "duplicate id %s", order.ID)
		seen[order.ID] = true
	}
}

func TestOrderIDsContinueAfterRestart(t *testing.T) {
	snap := &memorySnapshotter{}
	ctx := context.Background()
	future := time.Now().Add(time.Hour)

	s := newOrderStore(t, snap)
	s.now = func() time.Time { return future }
	first, _, err := s.CreateOrder(ctx, sampleNewOrder("u1"))
	require.NoError(t, err)

	reopened := newOrderStore(t, snap)
	second, _, err := reopened.CreateOrder(ctx, sampleNewOrder("u2"))
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Greater(t, second.ID, first.ID)
	assert.Equal(t, 2, reopened.Users())
}

func TestGetOrderNotFound(t *testing.T) {
	s := newOrderStore(t, &memorySnapshotter{})
	order, _, err := s.CreateOrder(context.Background(), sampleNewOrder("u1"))
	require.NoError(t, err)

	_, err = s.GetOrder("u1", "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = s.GetOrder("u2", order.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSetStatus(t *testing.T) {
	s := newOrderStore(t, &memorySnapshotter{})
	ctx := context.Background()
	order, _, err := s.CreateOrder(ctx, sampleNewOrder("u1"))
	require.NoError(t, err)

	updated, previous, err := s.SetStatus(ctx, "u1", order.ID, "shipped")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, previous)
	assert.Equal(t, models.OrderStatusShipped, updated.Status)
	assert.Equal(t, order.Total, updated.Total)

	// backwards moves are accepted: ordering is not enforced
	updated, previous, err = s.SetStatus(ctx, "u1", order.ID, "confirmed")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, previous)
	assert.Equal(t, models.OrderStatusConfirmed, updated.Status)
}

func TestSetStatusRejectsUnknownLabel(t *testing.T) {
	s := newOrderStore(t, &memorySnapshotter{})
	ctx := context.Background()
	order, _, err := s.CreateOrder(ctx, sampleNewOrder("u1"))
	require.NoError(t, err)

	_, _, err = s.SetStatus(ctx, "u1", order.ID, "cancelled")
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	stored, err := s.GetOrder("u1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, stored.Status)

	_, _, err = s.SetStatus(ctx, "u1", "missing", "shipped")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCreateOrderIdempotencyKey(t *testing.T) {
	snap := &memorySnapshotter{}
	s := newOrderStore(t, snap)
	ctx := context.Background()

	in := sampleNewOrder("u1")
	in.IdempotencyKey = "checkout-1"

	first, created, err := s.CreateOrder(ctx, in)
	require.NoError(t, err)
	assert.True(t, created)
	saves := snap.saveCount()

	second, created, err := s.CreateOrder(ctx, in)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first, second)
	assert.Equal(t, saves, snap.saveCount())
	assert.Len(t, s.ListOrders("u1"), 1)

	// keys are scoped per user
	other := in
	other.UserID = "u2"
	_, created, err = s.CreateOrder(ctx, other)
	require.NoError(t, err)
	assert.True(t, created)
}

func TestCreateOrderPersistenceFailure(t *testing.T) {
	snap := &memorySnapshotter{}
	s := newOrderStore(t, snap)
	snap.setFail(errDiskFull)

	_, _, err := s.CreateOrder(context.Background(), sampleNewOrder("u1"))
	assert.ErrorIs(t, err, models.ErrPersistence)
	assert.Empty(t, s.ListOrders("u1"))
}

func TestOrderItemsAreSnapshots(t *testing.T) {
	s := newOrderStore(t, &memorySnapshotter{})
	in := sampleNewOrder("u1")

	order, _, err := s.CreateOrder(context.Background(), in)
	require.NoError(t, err)

	in.Items[0].Quantity = 99
	stored, err := s.GetOrder("u1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Items[0].Quantity)
	assert.Equal(t, int64(2500), stored.Total)
}
