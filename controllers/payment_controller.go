package controllers

import (
	"net/http"

	"checkout-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PaymentController struct {
	Payments    *services.PaymentService
	FrontendURL string
	Logger      *zap.Logger
}

// VNPayCallback handles the gateway's signed return redirect. Expected
// outcomes redirect the shopper to the frontend; only an unexpected
// storage failure answers 500 so the gateway retries delivery.
func (pc *PaymentController) VNPayCallback(c *gin.Context) {
	params := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	result, err := pc.Payments.ProcessCallback(c.Request.Context(), params, c.ClientIP())
	if err != nil {
		pc.Logger.Error("Callback processing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process payment callback"})
		return
	}

	c.Redirect(http.StatusFound, pc.FrontendURL+result.RedirectPath)
}
