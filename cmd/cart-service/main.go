package main

import (
	"context"
	"log"

	"storefront/config"
	"storefront/internal/api"
	"storefront/internal/client"
	"storefront/internal/server"
	"storefront/internal/service"
	"storefront/internal/store"
	"storefront/internal/util"

	"go.uber.org/zap"
)

func main() {
	cfg, cleanup := server.Init(config.ServiceCart)
	defer cleanup()

	logger := util.GetLogger()
	logger.Info("Starting cart service", zap.String("store", cfg.Store.Backend))

	ctx := context.Background()
	snap, err := store.OpenSnapshotter(ctx, cfg, "carts")
	if err != nil {
		log.Fatalf("Failed to open cart snapshot: %v", err)
	}
	carts, err := store.NewCartStore(ctx, snap)
	if err != nil {
		log.Fatalf("Failed to load carts: %v", err)
	}
	logger.Info("Store loaded", zap.Int("users", carts.Users()))

	publisher, closePublisher := server.NewPublisher(cfg)
	catalogClient := client.NewCatalogClient(cfg.Upstream.CatalogURL, cfg.Upstream.Timeout)
	cartService := service.NewCartService(carts, catalogClient, publisher)

	router := server.NewRouter(cfg.Server.Env)
	api.SetupRoutes(router, store.ReadyCheck(snap), api.NewCartHandler(cartService))

	if err := server.Run(cfg, router); err != nil {
		logger.Error("Server error", zap.Error(err))
	}

	if err := carts.Close(context.Background()); err != nil {
		logger.Error("Failed to close cart store", zap.Error(err))
	}
	if err := closePublisher(); err != nil {
		logger.Error("Failed to close publisher", zap.Error(err))
	}
	logger.Info("Server exited")
}
