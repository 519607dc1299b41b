package api

import (
	"net/http"

	"storefront/internal/service"

	"github.com/gin-gonic/gin"
)

// CheckoutHandler serves the gateway checkout route
type CheckoutHandler struct {
	checkout *service.CheckoutService
}

func NewCheckoutHandler(checkout *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

func (h *CheckoutHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/checkout/:userId", h.checkoutCart)
}

// checkoutCart answers 201 whenever an order exists, including when the cart was left uncleared
func (h *CheckoutHandler) checkoutCart(c *gin.Context) {
	userID, ok := param(c, "userId")
	if !ok {
		return
	}
	var req service.CheckoutRequest
	if !bindJSON(c, &req) {
		return
	}
	req.UserID = userID
	req.IdempotencyKey = c.GetHeader("Idempotency-Key")

	result, err := h.checkout.Checkout(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}
