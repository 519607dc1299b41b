package util

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultServiceName = "storefront"

var (
	logger      *zap.Logger
	serviceName string
)

// ServiceName is the name the process was started as, shared by logs and traces
func ServiceName() string {
	if serviceName == "" {
		return defaultServiceName
	}
	return serviceName
}

// InitLogger initializes the global logger, tagging every entry with the service name
func InitLogger(env, service string) error {
	var err error
	var config zap.Config
	serviceName = service

	if env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	config.InitialFields = map[string]interface{}{"service": ServiceName()}

	logger, err = config.Build()
	if err != nil {
		return err
	}

	zap.ReplaceGlobals(logger)
	return nil
}

// GetLogger returns the global logger
func GetLogger() *zap.Logger {
	if logger == nil {
		logger, _ = zap.NewDevelopment(zap.Fields(zap.String("service", ServiceName())))
	}
	return logger
}

// SyncLogger flushes any buffered log entries
func SyncLogger() {
	if logger != nil {
		_ = logger.Sync()
	}
}
