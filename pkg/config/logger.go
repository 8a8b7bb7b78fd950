package config

import (
	"context"
	"fmt"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a zap logger wrapped with otelzap so log lines carry the
// trace and span ids of the request context.
type Logger struct {
	*otelzap.Logger
	ServiceName string
}

func NewLogger(serviceName, level string) (*Logger, error) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.TimeKey = "timestamp"

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	config.Level = zap.NewAtomicLevelAt(lvl)

	zapLogger, err := config.Build(zap.Fields(zap.String("service", serviceName)))
	if err != nil {
		return nil, fmt.Errorf("failed to create zap logger: %w", err)
	}

	return &Logger{
		Logger:      otelzap.New(zapLogger),
		ServiceName: serviceName,
	}, nil
}

// NewNopLogger discards everything. Used by tests.
func NewNopLogger() *Logger {
	return &Logger{
		Logger:      otelzap.New(zap.NewNop()),
		ServiceName: "test",
	}
}

func (l *Logger) Sync() error {
	return l.Logger.Sync()
}

func LogError(ctx context.Context, logger *Logger, err error, msg string, fields ...zap.Field) {
	logger.Ctx(ctx).Error(msg, append(fields, zap.Error(err))...)
}
