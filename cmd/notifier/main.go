package main

import (
	"context"
	"log"

	"storefront/config"
	"storefront/internal/api"
	"storefront/internal/broker"
	"storefront/internal/server"
	"storefront/internal/util"
	"storefront/internal/worker"

	"go.uber.org/zap"
)

func main() {
	cfg, cleanup := server.Init(config.ServiceNotifier)
	defer cleanup()

	logger := util.GetLogger()
	if !cfg.Kafka.Enabled() {
		log.Fatalf("KAFKA_BROKERS is required for the notifier")
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents, cfg.Kafka.ConsumerGroup)
	notifierWorker := worker.NewNotifierWorker(consumer, worker.NewNotifier())
	go func() {
		if err := notifierWorker.Start(workerCtx); err != nil && workerCtx.Err() == nil {
			logger.Error("Notifier worker error", zap.Error(err))
		}
	}()

	// health and metrics only
	router := server.NewRouter(cfg.Server.Env)
	api.SetupRoutes(router, nil)

	if err := server.Run(cfg, router); err != nil {
		logger.Error("Server error", zap.Error(err))
	}

	workerCancel()
	if err := notifierWorker.Stop(); err != nil {
		logger.Error("Failed to stop notifier worker", zap.Error(err))
	}
	logger.Info("Notifier exited")
}
