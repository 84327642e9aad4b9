package main

import (
	log "github.com/sirupsen/logrus"

	"github.com/prakashtraders/checkout-service/internal/checkout"
	"github.com/prakashtraders/checkout-service/internal/config"
	"github.com/prakashtraders/checkout-service/internal/gateway"
	"github.com/prakashtraders/checkout-service/internal/server"
)

func init() {
	// Initialize logger
	log.SetFormatter(&log.JSONFormatter{})
	log.SetLevel(log.InfoLevel)
}

func main() {
	cfg := config.Load()

	orders := gateway.NewOrderServiceClient(cfg.OrderServiceURL, cfg.RequestTimeout)
	verifier := gateway.NewVerifyServiceClient(cfg.VerifyServiceURL, cfg.RequestTimeout)
	widget := gateway.NewHostedWidget()

	ctrl := checkout.NewController(orders, verifier, widget, checkout.Config{
		GatewayKeyID:   cfg.GatewayKeyID,
		Currency:       cfg.Currency,
		RequestTimeout: cfg.RequestTimeout,
		GatewayWait:    cfg.GatewayWaitTimeout,
	})

	router := server.NewRouter(server.NewHandler(ctrl, widget, orders.Breaker(), verifier.Breaker()))

	log.WithFields(log.Fields{
		"order_service_url":  cfg.OrderServiceURL,
		"verify_service_url": cfg.VerifyServiceURL,
		"currency":           cfg.Currency,
	}).Info("Checkout Service starting on port " + cfg.Port)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
