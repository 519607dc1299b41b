package api

import (
	"net/http"

	"storefront/internal/models"
	"storefront/internal/service"

	"github.com/gin-gonic/gin"
)

// ReplayHeader marks an order creation answered from an already used idempotency key
const ReplayHeader = "Idempotent-Replay"

// OrderHandler serves the order service routes
type OrderHandler struct {
	orders *service.OrderService
}

func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

func (h *OrderHandler) Register(rg *gin.RouterGroup) {
	orders := rg.Group("/orders/:userId")
	orders.GET("", h.listOrders)
	orders.POST("", h.createOrder)
	orders.GET("/:orderId", h.getOrder)
	orders.PATCH("/:orderId/status", h.updateStatus)
}

func (h *OrderHandler) listOrders(c *gin.Context) {
	userID, ok := param(c, "userId")
	if !ok {
		return
	}

	orders, err := h.orders.ListOrders(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// createOrder handles order creation: 201 for a new order, 200 for an idempotent replay
func (h *OrderHandler) createOrder(c *gin.Context) {
	userID, ok := param(c, "userId")
	if !ok {
		return
	}
	var req models.NewOrder
	if !bindJSON(c, &req) {
		return
	}
	req.UserID = userID

	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.GetHeader("Idempotency-Key")
	}

	order, created, err := h.orders.CreateOrder(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	if !created {
		c.Header(ReplayHeader, "true")
		c.JSON(http.StatusOK, order)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) getOrder(c *gin.Context) {
	userID, ok := param(c, "userId")
	if !ok {
		return
	}
	orderID, ok := param(c, "orderId")
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) updateStatus(c *gin.Context) {
	userID, ok := param(c, "userId")
	if !ok {
		return
	}
	orderID, ok := param(c, "orderId")
	if !ok {
		return
	}
	var req service.UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), userID, orderID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
