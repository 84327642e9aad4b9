package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/prakashtraders/checkout-service/internal/metrics"
)

// NewRouter wires the gin engine with metrics middleware and all checkout
// routes.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.Default()

	router.Use(metrics.PrometheusMiddleware("checkout-service"))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Checkout session lifecycle
	router.POST("/checkout/sessions", h.CreateSession)
	router.GET("/checkout/sessions/:sessionId", h.GetSession)
	router.POST("/checkout/sessions/:sessionId/items/:itemId/quantity", h.AdjustQuantity)
	router.POST("/checkout/sessions/:sessionId/address", h.SetAddressField)
	router.POST("/checkout/sessions/:sessionId/pay", h.Pay)
	router.POST("/checkout/sessions/:sessionId/reset", h.Reset)

	// Payment widget callbacks, addressed by gateway order id
	router.POST("/checkout/gateway/complete", h.GatewayComplete)
	router.POST("/checkout/gateway/dismiss", h.GatewayDismiss)

	// Operational endpoints
	router.GET("/checkout/circuit-status", h.CircuitStatus)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
