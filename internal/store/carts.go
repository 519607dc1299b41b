package store

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"storefront/internal/models"
)

// CartStore owns the per-user carts. An empty cart is never stored.
type CartStore struct {
	ledger *Ledger[[]models.CartLineItem]
}

// NewCartStore loads the carts persisted by snap
func NewCartStore(ctx context.Context, snap Snapshotter) (*CartStore, error) {
	ledger, err := OpenLedger[[]models.CartLineItem](ctx, "carts", snap)
	if err != nil {
		return nil, err
	}
	return &CartStore{ledger: ledger}, nil
}

// Close flushes and closes the backing snapshot
func (s *CartStore) Close(ctx context.Context) error {
	return s.ledger.Close(ctx)
}

// Users returns how many users currently hold a cart
func (s *CartStore) Users() int {
	return s.ledger.Len()
}

// GetCart returns the user's line items in insertion order, or an empty slice
func (s *CartStore) GetCart(userID string) []models.CartLineItem {
	items, _ := s.ledger.Get(userID)
	return cloneItems(items)
}

// AddItem appends the product or increases the quantity of its existing line item.
// The stored product snapshot of an existing line item is kept as is.
func (s *CartStore) AddItem(ctx context.Context, userID string, product models.Product, quantity int) ([]models.CartLineItem, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	product.ID = normalizeID(product.ID)
	line := models.CartLineItem{Product: product, Quantity: quantity}
	if err := line.Validate(); err != nil {
		return nil, err
	}

	items, err := s.ledger.Update(ctx, userID, func(cur []models.CartLineItem, _ bool) ([]models.CartLineItem, bool, error) {
		next := slices.Clone(cur)
		if idx := indexOf(next, product.ID); idx >= 0 {
			if next[idx].Quantity > models.MaxQuantity-quantity {
				return nil, false, fmt.Errorf("%w: quantity of %s would exceed %d", models.ErrInvalidInput, product.ID, models.MaxQuantity)
			}
			next[idx].Quantity += quantity
		} else {
			next = append(next, line)
		}
		if _, err := models.CheckedCartTotal(next); err != nil {
			return nil, false, err
		}
		return next, true, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneItems(items), nil
}

// SetQuantity overwrites the quantity of a line item; quantity <= 0 removes it.
// An unknown product id leaves the cart unchanged.
func (s *CartStore) SetQuantity(ctx context.Context, userID, productID string, quantity int) ([]models.CartLineItem, error) {
	productID = normalizeID(productID)
	if quantity <= 0 {
		return s.RemoveItem(ctx, userID, productID)
	}
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	items, err := s.ledger.Update(ctx, userID, func(cur []models.CartLineItem, _ bool) ([]models.CartLineItem, bool, error) {
		if len(cur) == 0 {
			return nil, false, cartNotFound(userID)
		}
		idx := indexOf(cur, productID)
		if idx < 0 {
			return nil, false, errNoChange
		}
		next := slices.Clone(cur)
		next[idx].Quantity = quantity
		if _, err := models.CheckedCartTotal(next); err != nil {
			return nil, false, err
		}
		return next, true, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneItems(items), nil
}

// RemoveItem drops the line item for productID; removing an absent item is not an error
func (s *CartStore) RemoveItem(ctx context.Context, userID, productID string) ([]models.CartLineItem, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	productID = normalizeID(productID)

	items, err := s.ledger.Update(ctx, userID, func(cur []models.CartLineItem, _ bool) ([]models.CartLineItem, bool, error) {
		if len(cur) == 0 {
			return nil, false, cartNotFound(userID)
		}
		next := slices.DeleteFunc(slices.Clone(cur), func(item models.CartLineItem) bool {
			return item.Product.ID == productID
		})
		if len(next) == len(cur) {
			return nil, false, errNoChange
		}
		return next, len(next) > 0, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneItems(items), nil
}

// ClearCart deletes the user's cart; clearing a missing cart succeeds
func (s *CartStore) ClearCart(ctx context.Context, userID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}

	_, err := s.ledger.Update(ctx, userID, func(cur []models.CartLineItem, _ bool) ([]models.CartLineItem, bool, error) {
		if len(cur) == 0 {
			return nil, false, errNoChange
		}
		return nil, false, nil
	})
	return err
}

// GetTotal sums price x quantity; ItemCount counts distinct line items
func (s *CartStore) GetTotal(userID string) models.CartTotals {
	items, _ := s.ledger.Get(userID)
	return models.CartTotals{
		Total:     models.CartTotal(items),
		ItemCount: len(items),
	}
}

func indexOf(items []models.CartLineItem, productID string) int {
	return slices.IndexFunc(items, func(item models.CartLineItem) bool {
		return item.Product.ID == productID
	})
}

// normalizeID is applied to every product id entering the cart store
func normalizeID(id string) string {
	return strings.TrimSpace(id)
}

func cloneItems(items []models.CartLineItem) []models.CartLineItem {
	out := make([]models.CartLineItem, len(items))
	copy(out, items)
	return out
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user id is required", models.ErrInvalidInput)
	}
	return nil
}

func cartNotFound(userID string) error {
	return fmt.Errorf("%w: cart for user %s", models.ErrNotFound, userID)
}
