package logger

import (
	"context"
	"log/slog"
)

type ctxKey string

const loggerKey ctxKey = "logger"

// With returns a new context that includes a logger with fields.
func With(ctx context.Context, fields ...any) context.Context {
	l := From(ctx).With(fields...)
	return context.WithValue(ctx, loggerKey, l)
}

// WithScope tags the request logger with the resolved subject and tenant.
// A nil tenant is logged as "none" so bootstrap requests stay greppable.
func WithScope(ctx context.Context, userID int64, tenantID *int64) context.Context {
	if tenantID == nil {
		return With(ctx, "user_id", userID, "tenant_id", "none")
	}
	return With(ctx, "user_id", userID, "tenant_id", *tenantID)
}

// From returns the logger stored in context, or default if missing.
func From(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return LoggerWrapper()
	}
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return LoggerWrapper()
}
