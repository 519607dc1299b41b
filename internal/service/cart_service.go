package service

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/broker"
	"storefront/internal/models"
	"storefront/internal/store"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// ProductLookup resolves a product id to its current catalog record
type ProductLookup interface {
	GetProduct(ctx context.Context, id string) (models.Product, error)
}

// CartService handles cart business logic on top of the cart store
type CartService struct {
	store    *store.CartStore
	products ProductLookup
	events   broker.Publisher
	logger   *zap.Logger
}

// NewCartService creates a new cart service. products may be nil, in which case
// add requests must carry the full product.
func NewCartService(store *store.CartStore, products ProductLookup, events broker.Publisher) *CartService {
	if events == nil {
		events = broker.NopPublisher{}
	}
	return &CartService{
		store:    store,
		products: products,
		events:   events,
		logger:   util.GetLogger(),
	}
}

// AddItemRequest represents a request to add a product to a cart.
// Either Product or ProductID must be set; Quantity defaults to 1.
type AddItemRequest struct {
	Product   *models.Product `json:"product,omitempty"`
	ProductID string          `json:"product_id,omitempty"`
	Quantity  *int            `json:"quantity,omitempty"`
}

// UpdateItemRequest represents a quantity overwrite
type UpdateItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// RemoveItemRequest represents a line item removal
type RemoveItemRequest struct {
	ProductID string `json:"product_id"`
}

// GetCart returns the user's cart
func (s *CartService) GetCart(ctx context.Context, userID string) ([]models.CartLineItem, error) {
	_, span := util.StartSpan(ctx, "CartService.GetCart")
	defer span.End()

	return s.store.GetCart(userID), nil
}

// AddItem resolves the product and adds it to the user's cart
func (s *CartService) AddItem(ctx context.Context, userID string, req *AddItemRequest) ([]models.CartLineItem, error) {
	ctx, span := util.StartSpan(ctx, "CartService.AddItem")
	defer span.End()

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	product, err := s.resolveProduct(ctx, req)
	if err != nil {
		return nil, err
	}

	items, err := s.store.AddItem(ctx, userID, product, quantity)
	if err != nil {
		return nil, s.fail("add", userID, err)
	}

	util.CartMutationsTotal.WithLabelValues("add").Inc()
	s.logger.Info("Item added to cart",
		zap.String("user_id", userID),
		zap.String("product_id", product.ID),
		zap.Int("quantity", quantity))
	return items, nil
}

// UpdateQuantity overwrites a line item quantity; zero or less removes the item
func (s *CartService) UpdateQuantity(ctx context.Context, userID string, req *UpdateItemRequest) ([]models.CartLineItem, error) {
	ctx, span := util.StartSpan(ctx, "CartService.UpdateQuantity")
	defer span.End()

	items, err := s.store.SetQuantity(ctx, userID, req.ProductID, req.Quantity)
	if err != nil {
		return nil, s.fail("update", userID, err)
	}

	util.CartMutationsTotal.WithLabelValues("update").Inc()
	return items, nil
}

// RemoveItem drops a line item from the cart
func (s *CartService) RemoveItem(ctx context.Context, userID string, req *RemoveItemRequest) ([]models.CartLineItem, error) {
	ctx, span := util.StartSpan(ctx, "CartService.RemoveItem")
	defer span.End()

	items, err := s.store.RemoveItem(ctx, userID, req.ProductID)
	if err != nil {
		return nil, s.fail("remove", userID, err)
	}

	util.CartMutationsTotal.WithLabelValues("remove").Inc()
	return items, nil
}

// ClearCart empties the cart and announces it
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	ctx, span := util.StartSpan(ctx, "CartService.ClearCart")
	defer span.End()

	if err := s.store.ClearCart(ctx, userID); err != nil {
		return s.fail("clear", userID, err)
	}

	util.CartMutationsTotal.WithLabelValues("clear").Inc()

	event := &models.CartClearedEvent{
		BaseEvent: broker.NewBaseEvent(models.EventTypeCartCleared),
		UserID:    userID,
	}
	if err := s.events.PublishCartCleared(ctx, event); err != nil {
		s.logger.Error("Failed to publish CartCleared event", zap.Error(err))
	}
	return nil
}

// GetTotal returns the cart total and its number of line items
func (s *CartService) GetTotal(ctx context.Context, userID string) (models.CartTotals, error) {
	_, span := util.StartSpan(ctx, "CartService.GetTotal")
	defer span.End()

	return s.store.GetTotal(userID), nil
}

func (s *CartService) resolveProduct(ctx context.Context, req *AddItemRequest) (models.Product, error) {
	if req.Product != nil && strings.TrimSpace(req.Product.ID) != "" {
		return *req.Product, nil
	}

	id := strings.TrimSpace(req.ProductID)
	if id == "" {
		return models.Product{}, fmt.Errorf("%w: product or product_id is required", models.ErrInvalidInput)
	}
	if s.products == nil {
		return models.Product{}, fmt.Errorf("%w: product lookup is not configured, send the full product", models.ErrInvalidInput)
	}

	product, err := s.products.GetProduct(ctx, id)
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to resolve product %s: %w", id, err)
	}
	return product, nil
}

func (s *CartService) fail(op, userID string, err error) error {
	if !models.IsClientError(err) {
		s.logger.Error("Cart mutation failed",
			zap.String("op", op),
			zap.String("user_id", userID),
			zap.Error(err))
	}
	return err
}
