package api

import (
	"net/http"

	"storefront/internal/service"

	"github.com/gin-gonic/gin"
)

// CartHandler serves the cart service routes
type CartHandler struct {
	carts *service.CartService
}

func NewCartHandler(carts *service.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

func (h *CartHandler) Register(rg *gin.RouterGroup) {
	cart := rg.Group("/cart/:userId")
	cart.GET("", h.getCart)
	cart.POST("/add", h.addItem)
	cart.POST("/update", h.updateItem)
	cart.POST("/remove", h.removeItem)
	cart.POST("/clear", h.clearCart)
	cart.GET("/total", h.getTotal)
}

func (h *CartHandler) getCart(c *gin.Context) {
	userID, ok := param(c, "userId")
	if !ok {
		return
	}

	items, err := h.carts.GetCart(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *CartHandler) addItem(c *gin.Context) {
	userID, ok := param(c, "userId")
	if !ok {
		return
	}
	var req service.AddItemRequest
	if !bindJSON(c, &req) {
		return
	}

	items, err := h.carts.AddItem(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *CartHandler) updateItem(c *gin.Context) {
	userID, ok := param(c, "userId")
	if !ok {
		return
	}
	var req service.UpdateItemRequest
	if !bindJSON(c, &req) {
		return
	}

	items, err := h.carts.UpdateQuantity(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *CartHandler) removeItem(c *gin.Context) {
	userID, ok := param(c, "userId")
	if !ok {
		return
	}
	var req service.RemoveItemRequest
	if !bindJSON(c, &req) {
		return
	}

	items, err := h.carts.RemoveItem(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *CartHandler) clearCart(c *gin.Context) {
	userID, ok := param(c, "userId")
	if !ok {
		return
	}

	if err := h.carts.ClearCart(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, []struct{}{})
}

func (h *CartHandler) getTotal(c *gin.Context) {
	userID, ok := param(c, "userId")
	if !ok {
		return
	}

	totals, err := h.carts.GetTotal(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}
