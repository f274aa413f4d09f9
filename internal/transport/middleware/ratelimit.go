package middleware

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/elementar/internal"
	"github.com/frahmantamala/elementar/internal/ratelimit"
)

// RateLimitConfig configures one limited route group.
type RateLimitConfig struct {
	Name       string
	Requests   int
	Window     time.Duration
	FailClosed bool
}

// RateLimit limits requests per client IP within cfg.Window. When the limiter
// is unavailable the request passes unless FailClosed is set.
func RateLimit(limiter ratelimit.Limiter, cfg RateLimitConfig, lg *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil || cfg.Requests <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := cfg.Name + ":" + clientIP(r)
			decision, err := limiter.Allow(r.Context(), key, cfg.Requests, cfg.Window)
			if err != nil {
				requestLogger(r, lg).Error("rate limiter unavailable", "limiter", cfg.Name, "error", err)
				if cfg.FailClosed {
					writeAppError(w, internal.NewRateLimitedError("rate limiter unavailable"))
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			writeRateLimitHeaders(w, decision)
			if !decision.Allowed {
				requestLogger(r, lg).Warn("rate limited", "limiter", cfg.Name, "client", clientIP(r))
				writeAppError(w, internal.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeRateLimitHeaders(w http.ResponseWriter, d ratelimit.Decision) {
	h := w.Header()
	h.Set("RateLimit-Limit", strconv.Itoa(d.Limit))
	h.Set("RateLimit-Remaining", strconv.Itoa(d.Remaining))
	if d.ResetAt.IsZero() {
		return
	}
	h.Set("RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))
	if !d.Allowed {
		retryAfter := int64(time.Until(d.ResetAt).Seconds())
		if retryAfter < 0 {
			retryAfter = 0
		}
		h.Set("Retry-After", strconv.FormatInt(retryAfter, 10))
	}
}

// clientIP keys on RemoteAddr, which TrustedRealIP rewrites only for
// requests arriving through a trusted proxy.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeAppError(w http.ResponseWriter, appErr *internal.AppError) {
	status, body := appErr.ToHTTPResponse()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
