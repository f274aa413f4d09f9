package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/elementar/internal"
)

// Decision is the outcome of one Allow call for a fixed window.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error)
}

// New builds the limiter selected by the rate_limit section.
func New(cfg internal.RateLimitConfig) (Limiter, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryLimiter(MemoryLimiterConfig{}), nil
	case "redis":
		l, err := NewRedisLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, nil)
		if err != nil {
			return nil, err
		}
		return l, nil
	default:
		return nil, fmt.Errorf("ratelimit: unknown backend %q", cfg.Backend)
	}
}
