package routes

import (
	"net/http"

	"checkout-service/controllers"
	"checkout-service/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.Engine,
	cc *controllers.CheckoutController,
	pc *controllers.PaymentController,
	oc *controllers.OrderController,
) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Gateway return redirect (no auth; authenticated by signature)
	r.GET("/payment/vnpay/callback", pc.VNPayCallback)

	authed := r.Group("/")
	authed.Use(middleware.AuthMiddleware())

	authed.POST("/checkout", cc.CreateOrder)
	authed.POST("/orders/:orderNumber/retry-payment", cc.RetryPayment)

	authed.GET("/orders", oc.ListMyOrders)
	authed.GET("/orders/:orderNumber", oc.GetOrder)
	authed.POST("/orders/:orderNumber/cancel", oc.CancelOrder)
	authed.GET("/courses/:courseId/access", oc.CheckCourseAccess)

	admin := authed.Group("/admin")
	admin.Use(middleware.AdminOnly())
	admin.GET("/orders", oc.ListAllOrders)
	admin.PATCH("/orders/:orderNumber/status", oc.UpdateOrderStatus)
}
