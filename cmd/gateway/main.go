package main

import (
	"storefront/config"
	"storefront/internal/api"
	"storefront/internal/client"
	"storefront/internal/server"
	"storefront/internal/service"
	"storefront/internal/util"

	"go.uber.org/zap"
)

func main() {
	cfg, cleanup := server.Init(config.ServiceGateway)
	defer cleanup()

	logger := util.GetLogger()
	logger.Info("Starting gateway",
		zap.String("cart_service", cfg.Upstream.CartURL),
		zap.String("order_service", cfg.Upstream.OrderURL))

	carts := client.NewCartClient(cfg.Upstream.CartURL, cfg.Upstream.Timeout)
	orders := client.NewOrderClient(cfg.Upstream.OrderURL, cfg.Upstream.Timeout)

	publisher, closePublisher := server.NewPublisher(cfg)
	checkout := service.NewCheckoutService(carts, orders, publisher)

	router := server.NewRouter(cfg.Server.Env)
	api.SetupRoutes(router, nil, api.NewCheckoutHandler(checkout))

	if err := server.Run(cfg, router); err != nil {
		logger.Error("Server error", zap.Error(err))
	}

	if err := closePublisher(); err != nil {
		logger.Error("Failed to close publisher", zap.Error(err))
	}
	logger.Info("Server exited")
}
