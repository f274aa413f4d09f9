package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"time"

	"github.com/frahmantamala/elementar/internal"
	"github.com/frahmantamala/elementar/internal/ratelimit"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func decodeError(rec *httptest.ResponseRecorder) *internal.AppError {
	var body struct {
		Error struct {
			Type    internal.ErrorType `json:"type"`
			Code    internal.ErrorCode `json:"code"`
			Message string             `json:"message"`
		} `json:"error"`
	}
	Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
	return &internal.AppError{Type: body.Error.Type, Code: body.Error.Code, Message: body.Error.Message}
}

var _ = Describe("Middleware", func() {
	var lg *slog.Logger

	BeforeEach(func() {
		lg = slog.New(slog.NewTextHandler(GinkgoWriter, nil))
	})

	Describe("RequestID", func() {
		It("echoes the caller's trace id", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(TraceIDHeader, "trace-123")
			rec := httptest.NewRecorder()

			RequestID(okHandler).ServeHTTP(rec, req)
			Expect(rec.Header().Get(TraceIDHeader)).To(Equal("trace-123"))
		})

		It("mints a trace id when none is sent", func() {
			rec := httptest.NewRecorder()
			RequestID(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			Expect(rec.Header().Get(TraceIDHeader)).To(HaveLen(36))
		})
	})

	Describe("RecoveryMiddleware", func() {
		It("answers a panic with the internal error envelope", func() {
			boom := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
			rec := httptest.NewRecorder()

			RecoveryMiddleware(lg)(boom).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			Expect(rec.Code).To(Equal(http.StatusInternalServerError))
			Expect(decodeError(rec).Type).To(Equal(internal.ErrorTypeInternal))
			Expect(rec.Body.String()).NotTo(ContainSubstring("boom"))
		})

		It("lets an aborted handler propagate", func() {
			abort := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic(http.ErrAbortHandler) })
			Expect(func() {
				RecoveryMiddleware(lg)(abort).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
			}).To(PanicWith(http.ErrAbortHandler))
		})
	})

	Describe("RateLimit", func() {
		var (
			now     time.Time
			limiter ratelimit.Limiter
		)

		BeforeEach(func() {
			now = time.Now()
			limiter = ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{Now: func() time.Time { return now }})
		})

		serve := func(h http.Handler, remote string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
			req.RemoteAddr = remote
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			return rec
		}

		It("sets quota headers and rejects past the limit", func() {
			h := RateLimit(limiter, RateLimitConfig{Name: "login", Requests: 1, Window: time.Minute}, lg)(okHandler)

			first := serve(h, "10.0.0.1:5000")
			Expect(first.Code).To(Equal(http.StatusOK))
			Expect(first.Header().Get("RateLimit-Limit")).To(Equal("1"))
			Expect(first.Header().Get("RateLimit-Remaining")).To(Equal("0"))

			second := serve(h, "10.0.0.1:5001")
			Expect(second.Code).To(Equal(http.StatusTooManyRequests))
			Expect(second.Header().Get("Retry-After")).NotTo(BeEmpty())
			Expect(decodeError(second).Code).To(Equal(internal.ErrCodeRateLimited))
		})

		It("keys the quota by client address", func() {
			h := RateLimit(limiter, RateLimitConfig{Name: "login", Requests: 1, Window: time.Minute}, lg)(okHandler)
			Expect(serve(h, "10.0.0.1:5000").Code).To(Equal(http.StatusOK))
			Expect(serve(h, "10.0.0.2:5000").Code).To(Equal(http.StatusOK))
		})

		It("fails open or closed when the limiter errors", func() {
			full := ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{Now: func() time.Time { return now }, MaxKeys: 1})
			open := RateLimit(full, RateLimitConfig{Name: "a", Requests: 5, Window: time.Minute}, lg)(okHandler)
			Expect(serve(open, "10.0.0.1:1").Code).To(Equal(http.StatusOK))
			Expect(serve(open, "10.0.0.2:1").Code).To(Equal(http.StatusOK))

			closed := RateLimit(full, RateLimitConfig{Name: "a", Requests: 5, Window: time.Minute, FailClosed: true}, lg)(okHandler)
			Expect(serve(closed, "10.0.0.3:1").Code).To(Equal(http.StatusTooManyRequests))
		})
	})

	Describe("CORS", func() {
		It("answers preflight for allowed origins", func() {
			req := httptest.NewRequest(http.MethodOptions, "/api/v1/users", nil)
			req.Header.Set("Origin", "https://app.example")
			req.Header.Set("Access-Control-Request-Method", http.MethodGet)
			rec := httptest.NewRecorder()

			CORS("https://app.example", internal.DefaultTenantHeader)(okHandler).ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusNoContent))
			Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("https://app.example"))
			Expect(rec.Header().Get("Access-Control-Allow-Headers")).To(ContainSubstring(internal.DefaultTenantHeader))
		})

		It("omits headers for other origins", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
			req.Header.Set("Origin", "https://evil.example")
			rec := httptest.NewRecorder()

			CORS("https://app.example", internal.DefaultTenantHeader)(okHandler).ServeHTTP(rec, req)
			Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
		})
	})

	Describe("sensitive data filtering", func() {
		It("masks secrets in nested JSON bodies", func() {
			out := filterSensitiveBody([]byte(`{"email":"a@b.test","password":"x","nested":[{"refresh_token":"y"}]}`))
			Expect(out).To(ContainSubstring(`"email":"a@b.test"`))
			Expect(out).NotTo(ContainSubstring(`"x"`))
			Expect(out).NotTo(ContainSubstring(`"y"`))
		})

		It("masks the authorization header", func() {
			h := http.Header{}
			h.Set("Authorization", "Bearer abc")
			h.Set("Accept", "application/json")
			filtered := filterSensitiveHeaders(h)
			Expect(filtered["Authorization"]).To(Equal("[FILTERED]"))
			Expect(filtered["Accept"]).To(Equal("application/json"))
		})
	})

	Describe("TrustedRealIP", func() {
		echoRemote := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(r.RemoteAddr))
		})
		proxies := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}

		serve := func(h http.Handler, remote, forwarded string) string {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = remote
			req.Header.Set("X-Forwarded-For", forwarded)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			return rec.Body.String()
		}

		It("honours forwarding headers from a trusted proxy", func() {
			h := TrustedRealIP(proxies)(echoRemote)
			Expect(serve(h, "10.1.2.3:4000", "203.0.113.9")).To(Equal("203.0.113.9"))
		})

		It("keeps the socket address for other peers", func() {
			h := TrustedRealIP(proxies)(echoRemote)
			Expect(serve(h, "198.51.100.7:4000", "203.0.113.9")).To(Equal("198.51.100.7:4000"))
		})

		It("trusts nobody when no proxies are configured", func() {
			h := TrustedRealIP(nil)(echoRemote)
			Expect(serve(h, "10.1.2.3:4000", "203.0.113.9")).To(Equal("10.1.2.3:4000"))
		})
	})
})
