package main

import (
	"context"
	"log"

	"storefront/config"
	"storefront/internal/api"
	"storefront/internal/server"
	"storefront/internal/service"
	"storefront/internal/store"
	"storefront/internal/util"

	"go.uber.org/zap"
)

func main() {
	cfg, cleanup := server.Init(config.ServiceOrder)
	defer cleanup()

	logger := util.GetLogger()
	logger.Info("Starting order service", zap.String("store", cfg.Store.Backend))

	ctx := context.Background()
	snap, err := store.OpenSnapshotter(ctx, cfg, "orders")
	if err != nil {
		log.Fatalf("Failed to open order snapshot: %v", err)
	}
	orders, err := store.NewOrderStore(ctx, snap)
	if err != nil {
		log.Fatalf("Failed to load orders: %v", err)
	}
	logger.Info("Store loaded", zap.Int("users", orders.Users()))

	publisher, closePublisher := server.NewPublisher(cfg)
	orderService := service.NewOrderService(orders, publisher)

	router := server.NewRouter(cfg.Server.Env)
	api.SetupRoutes(router, store.ReadyCheck(snap), api.NewOrderHandler(orderService))

	if err := server.Run(cfg, router); err != nil {
		logger.Error("Server error", zap.Error(err))
	}

	if err := orders.Close(context.Background()); err != nil {
		logger.Error("Failed to close order store", zap.Error(err))
	}
	if err := closePublisher(); err != nil {
		logger.Error("Failed to close publisher", zap.Error(err))
	}
	logger.Info("Server exited")
}
