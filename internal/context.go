package internal

import (
	"context"
	"time"
)

type ctxKey string

const ContextScopeKey ctxKey = "tenantScope"

// Scope is the per-request tenant context. TenantID is nil on the
// self-lookup and bootstrap paths.
type Scope struct {
	SubjectID int64
	TenantID  *int64
}

func (s Scope) HasTenant() bool {
	return s.TenantID != nil
}

func ContextWithScope(ctx context.Context, scope Scope) context.Context {
	if scope.TenantID != nil {
		tid := *scope.TenantID
		scope.TenantID = &tid
	}
	return context.WithValue(ctx, ContextScopeKey, scope)
}

func ScopeFromContext(ctx context.Context) (Scope, bool) {
	if ctx == nil {
		return Scope{}, false
	}
	scope, ok := ctx.Value(ContextScopeKey).(Scope)
	return scope, ok
}

// TenantIDFromContext reports the tenant the current request operates on.
func TenantIDFromContext(ctx context.Context) (int64, bool) {
	scope, ok := ScopeFromContext(ctx)
	if !ok || scope.TenantID == nil {
		return 0, false
	}
	return *scope.TenantID, true
}

func UserIDFromContext(ctx context.Context) int64 {
	scope, ok := ScopeFromContext(ctx)
	if !ok {
		return 0
	}
	return scope.SubjectID
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
