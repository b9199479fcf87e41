package controllers

import (
	"net/http"

	"checkout-service/database"
	"checkout-service/middleware"
	"checkout-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CheckoutController struct {
	Checkout *services.CheckoutService
	Carts    *database.CartRepository
	Logger   *zap.Logger
}

// CreateOrder reads the caller's cart, creates a pending order and
// returns the gateway redirect URL. The cart is cleared only after the
// order is written.
func (cc *CheckoutController) CreateOrder(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	cart, err := cc.Carts.GetCart(c.Request.Context(), userID)
	if err != nil {
		cc.Logger.Error("Failed to read cart", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read cart"})
		return
	}
	if cart == nil || len(cart.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
		return
	}

	result, svcErr := cc.Checkout.Checkout(c.Request.Context(), userID, cart.Items, c.ClientIP())
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	if err := cc.Carts.DeleteCart(c.Request.Context(), userID); err != nil {
		// The order exists; a stale cart is recoverable.
		cc.Logger.Warn("Failed to clear cart after checkout",
			zap.String("user_id", userID),
			zap.String("order_number", result.Order.OrderNumber),
			zap.Error(err),
		)
	}

	c.JSON(http.StatusCreated, result)
}

// RetryPayment returns a fresh gateway URL for an existing pending
// order.
func (cc *CheckoutController) RetryPayment(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	orderNumber := c.Param("orderNumber")
	result, svcErr := cc.Checkout.RetryPayment(c.Request.Context(), userID, orderNumber, c.ClientIP())
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, result)
}
