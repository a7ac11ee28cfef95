package logger

import (
	"context"

	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey       contextKey = "logger"
	requestIDKey    contextKey = "request_id"
	salesChannelKey contextKey = "sales_channel_id"
)

// WithContext attaches a request-scoped logger to the context.
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger attached to the context, or a no-op logger
// when none is attached.
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID stores the request id on the context so downstream log
// entries can be correlated.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID returns the request id stored on the context, or "".
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithSalesChannelID stores the sales channel id on the context.
func WithSalesChannelID(ctx context.Context, channelID string) context.Context {
	return context.WithValue(ctx, salesChannelKey, channelID)
}

// GetSalesChannelID returns the sales channel id stored on the context, or "".
func GetSalesChannelID(ctx context.Context) string {
	if channelID, ok := ctx.Value(salesChannelKey).(string); ok {
		return channelID
	}
	return ""
}
