package logger

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/straye-as/sales-assistant-api/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a new structured logger. Production and json format use the
// zap production encoder; everything else logs colored console output.
func NewLogger(cfg *config.LoggingConfig, appCfg *config.AppConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" || appCfg.Environment == "production" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(ParseLevel(cfg.Level))
	zapCfg.InitialFields = map[string]interface{}{
		"app":         appCfg.Name,
		"environment": appCfg.Environment,
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return logger, nil
}

// ParseLevel returns the zap level for name, defaulting to info
func ParseLevel(name string) zapcore.Level {
	level, err := zapcore.ParseLevel(name)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// WithRequest adds request context to logger
func WithRequest(logger *zap.Logger, method, path, requestID string) *zap.Logger {
	return logger.With(
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
	)
}

// WithTenant adds tenant context to logger
func WithTenant(logger *zap.Logger, tenantID uuid.UUID) *zap.Logger {
	return logger.With(zap.String("tenant_id", tenantID.String()))
}

// WithCustomer adds customer context to logger
func WithCustomer(logger *zap.Logger, customerID uuid.UUID, phone string) *zap.Logger {
	return logger.With(
		zap.String("customer_id", customerID.String()),
		zap.String("customer_phone", MaskPhone(phone)),
	)
}

// MaskPhone keeps the last four digits of a phone number
func MaskPhone(phone string) string {
	if len(phone) <= 4 {
		return phone
	}
	masked := make([]byte, len(phone))
	for i := range phone {
		if i < len(phone)-4 && phone[i] != '+' {
			masked[i] = '*'
		} else {
			masked[i] = phone[i]
		}
	}
	return string(masked)
}
