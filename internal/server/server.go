package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/config"
	"storefront/internal/broker"
	"storefront/internal/util"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Init loads the configuration of service and starts logging and tracing.
// The returned cleanup flushes both and must be deferred by main.
func Init(service string) (*config.Config, func()) {
	cfg := config.Load(service)

	if err := util.InitLogger(cfg.Server.Env, service); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	tp, err := util.InitTracer(service, cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
		util.SyncLogger()
	}
	return cfg, cleanup
}

// NewRouter creates a gin engine in the mode matching env
func NewRouter(env string) *gin.Engine {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	return gin.New()
}

// NewPublisher returns a Kafka backed publisher, or a no-op one when no broker is configured
func NewPublisher(cfg *config.Config) (broker.Publisher, func() error) {
	if !cfg.Kafka.Enabled() {
		util.GetLogger().Info("Kafka disabled, events will not be published")
		return broker.NopPublisher{}, func() error { return nil }
	}

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents)
	util.GetLogger().Info("Kafka producer initialized",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.TopicEvents))
	return broker.NewEventPublisher(producer), producer.Close
}

// Run serves handler on the configured port until SIGINT or SIGTERM, then shuts down gracefully
func Run(cfg *config.Config, handler http.Handler) error {
	logger := util.GetLogger()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           otelhttp.NewHandler(handler, cfg.Service),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-quit:
	}

	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
