package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"storefront/internal/models"
)

// CatalogClient looks up products in the catalog service
type CatalogClient struct {
	*base
}

func NewCatalogClient(baseURL string, timeout time.Duration) *CatalogClient {
	return &CatalogClient{base: newBase("catalog-service", baseURL, timeout)}
}

// GetProduct fetches the current record of one product
func (c *CatalogClient) GetProduct(ctx context.Context, id string) (models.Product, error) {
	var product models.Product
	_, err := c.do(ctx, http.MethodGet, "/api/v1/products/"+url.PathEscape(id), nil, nil, &product)
	return product, err
}

// CartClient talks to the cart service
type CartClient struct {
	*base
}

func NewCartClient(baseURL string, timeout time.Duration) *CartClient {
	return &CartClient{base: newBase("cart-service", baseURL, timeout)}
}

// GetCart returns the user's line items
func (c *CartClient) GetCart(ctx context.Context, userID string) ([]models.CartLineItem, error) {
	var items []models.CartLineItem
	if _, err := c.do(ctx, http.MethodGet, cartPath(userID), nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ClearCart empties the user's cart
func (c *CartClient) ClearCart(ctx context.Context, userID string) error {
	_, err := c.do(ctx, http.MethodPost, cartPath(userID)+"/clear", nil, nil, nil)
	return err
}

func cartPath(userID string) string {
	return "/api/v1/cart/" + url.PathEscape(userID)
}

// OrderClient talks to the order service
type OrderClient struct {
	*base
}

func NewOrderClient(baseURL string, timeout time.Duration) *OrderClient {
	return &OrderClient{base: newBase("order-service", baseURL, timeout)}
}

// CreateOrder creates an order for in.UserID, forwarding the idempotency key as a header.
// created is false when the order service answered from an already used key.
func (c *OrderClient) CreateOrder(ctx context.Context, in models.NewOrder) (*models.Order, bool, error) {
	header := http.Header{}
	if in.IdempotencyKey != "" {
		header.Set("Idempotency-Key", in.IdempotencyKey)
	}

	var order models.Order
	path := "/api/v1/orders/" + url.PathEscape(in.UserID)
	res, err := c.do(ctx, http.MethodPost, path, in, header, &order)
	if err != nil {
		return nil, false, err
	}
	created := res.status == http.StatusCreated && res.header.Get(replayHeader) == ""
	return &order, created, nil
}

// replayHeader matches the header the order service sets on idempotent replays
const replayHeader = "Idempotent-Replay"
