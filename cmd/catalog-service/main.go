package main

import (
	"log"

	"storefront/config"
	"storefront/internal/api"
	"storefront/internal/catalog"
	"storefront/internal/server"
	"storefront/internal/util"

	"go.uber.org/zap"
)

func main() {
	cfg, cleanup := server.Init(config.ServiceCatalog)
	defer cleanup()

	logger := util.GetLogger()

	products, err := catalog.Load(cfg.Catalog.DataFile)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}
	logger.Info("Starting catalog service",
		zap.Int("products", len(products.List())),
		zap.String("file", cfg.Catalog.DataFile))

	router := server.NewRouter(cfg.Server.Env)
	api.SetupRoutes(router, nil, api.NewCatalogHandler(products))

	if err := server.Run(cfg, router); err != nil {
		logger.Error("Server error", zap.Error(err))
	}
	logger.Info("Server exited")
}
