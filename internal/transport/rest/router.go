package rest

import (
	"database/sql"
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/frahmantamala/elementar/internal"
	"github.com/frahmantamala/elementar/internal/auth"
	"github.com/frahmantamala/elementar/internal/company"
	"github.com/frahmantamala/elementar/internal/employee"
	"github.com/frahmantamala/elementar/internal/invitation"
	"github.com/frahmantamala/elementar/internal/ratelimit"
	"github.com/frahmantamala/elementar/internal/role"
	"github.com/frahmantamala/elementar/internal/task"
	"github.com/frahmantamala/elementar/internal/transport"
	"github.com/frahmantamala/elementar/internal/transport/middleware"
	"github.com/frahmantamala/elementar/internal/transport/swagger"
	"github.com/frahmantamala/elementar/internal/usage"
	"github.com/frahmantamala/elementar/internal/user"
	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const APIPrefix = "/api/v1"

type RouterDeps struct {
	Base   *transport.BaseHandler
	Logger *slog.Logger

	DB           *sql.DB
	HealthChecks map[string]Pinger

	Auth       *auth.Handler
	RBAC       *auth.RBACAuthorization
	Usage      *usage.Guard
	Company    *company.Handler
	User       *user.Handler
	Invitation *invitation.Handler
	Role       *role.Handler
	Employee   *employee.Handler
	Task       *task.Handler

	Limiter   ratelimit.Limiter
	RateLimit internal.RateLimitConfig

	AllowedOrigins string
	TrustedProxies []netip.Prefix
	TenantHeader   string

	// MetricsPath mounts the Prometheus handler when non-empty.
	MetricsPath string
	// Docs serves the OpenAPI document and Swagger UI when set.
	Docs *swagger.Docs
}

// NewRouter wires every route with its pipeline:
// verify, resolve, permission guard, then usage guard where a plan caps the
// created resource.
func NewRouter(d RouterDeps) *chi.Mux {
	router := chi.NewRouter()

	router.Use(middleware.TrustedRealIP(d.TrustedProxies))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(d.Logger))
	router.Use(middleware.CORS(d.AllowedOrigins, d.TenantHeader))
	router.Use(middleware.Metrics)
	router.Use(middleware.LoggingMiddleware(d.Logger))

	if d.MetricsPath != "" {
		router.Handle(d.MetricsPath, promhttp.Handler())
	}
	if d.Docs != nil {
		router.Get(swagger.SpecRoute, d.Docs.SpecHandler())
		router.Handle("/swagger/*", swagger.Handler())
	}

	health := NewHealthHandler(d.Base, d.DB, d.HealthChecks)
	rbac := d.RBAC
	limited := func(name string) func(next http.Handler) http.Handler {
		if !d.RateLimit.Enabled {
			return passThrough
		}
		return middleware.RateLimit(d.Limiter, middleware.RateLimitConfig{
			Name:       name,
			Requests:   d.RateLimit.Requests,
			Window:     windowOrDefault(d.RateLimit.Window),
			FailClosed: d.RateLimit.FailClosed,
		}, d.Logger)
	}

	router.Route(APIPrefix, func(api chi.Router) {
		api.Get("/health", health.Health)
		api.Get("/ping", health.Ping)

		// Public and self-lookup routes.
		api.Post("/auth/register", d.Auth.Register)
		api.With(limited("login")).Post("/auth/login", d.Auth.Login)
		api.Post("/auth/refresh", d.Auth.RefreshToken)
		api.Post("/auth/logout", d.Auth.Logout)
		api.With(d.Auth.SelfLookupMiddleware).Get("/auth/me", d.Auth.Me)

		api.Get("/invitations/validate/{token}", d.Invitation.ValidateInvitation)
		api.With(limited("invitation_accept")).Post("/invitations/accept", d.Invitation.AcceptInvitation)

		api.With(d.Auth.BootstrapMiddleware, rbac.Require(auth.PermCompanyCreate)).
			Post("/companies", d.Company.CreateCompany)

		// Everything below runs inside a resolved tenant.
		api.Group(func(tr chi.Router) {
			tr.Use(d.Auth.AuthMiddleware)

			tr.With(rbac.Require(auth.PermCompanyRead)).Get("/companies/current", d.Company.GetCurrent)
			tr.With(rbac.Require(auth.PermCompanyUpdate)).Put("/companies/current", d.Company.UpdateCurrent)
			tr.With(rbac.Require(auth.PermCompanyInactivate)).Patch("/companies/current/inactivate", d.Company.InactivateCurrent)

			tr.With(rbac.Require(auth.PermIntegrationDominio)).Get("/integrations/dominio/config", d.Company.GetDominioConfig)
			tr.With(rbac.Require(auth.PermIntegrationDominio)).Put("/integrations/dominio/config", d.Company.UpdateDominioConfig)

			tr.With(rbac.Require(auth.PermUserRead)).Get("/users", d.User.ListUsers)
			tr.With(rbac.Require(auth.PermUserRead)).Get("/users/{id}", d.User.GetUser)
			tr.With(rbac.Require(auth.PermUserCreate), d.Usage.Require(usage.ResourceUsers)).Post("/users", d.User.CreateUser)
			tr.With(rbac.Require(auth.PermUserUpdate)).Put("/users/{id}/role", d.User.ChangeRole)
			tr.With(rbac.Require(auth.PermUserInactivate)).Patch("/users/{id}/inactivate", d.User.InactivateUser)

			tr.With(rbac.Require(auth.PermUserCreate), d.Usage.Require(usage.ResourceUsers)).Post("/invitations", d.Invitation.CreateInvitation)

			tr.Group(func(rr chi.Router) {
				rr.Use(rbac.Require(auth.PermRoleManage))
				rr.Get("/roles", d.Role.ListRoles)
				rr.Post("/roles", d.Role.CreateRole)
				rr.Get("/roles/{id}", d.Role.GetRole)
				rr.Put("/roles/{id}", d.Role.UpdateRole)
				rr.Delete("/roles/{id}", d.Role.DeleteRole)
			})
			tr.With(rbac.Require(auth.PermPermissionManage)).Get("/permissions", d.Role.ListPermissions)
			tr.With(rbac.Require(auth.PermFeatureManage)).Get("/features", d.Role.ListFeatures)

			tr.With(rbac.Require(auth.PermEmployeeRead)).Get("/employees", d.Employee.ListEmployees)
			tr.With(rbac.Require(auth.PermEmployeeRead)).Get("/employees/{id}", d.Employee.GetEmployee)
			tr.With(rbac.Require(auth.PermEmployeeCreate), d.Usage.Require(usage.ResourceEmployees)).Post("/employees", d.Employee.CreateEmployee)
			tr.With(rbac.Require(auth.PermEmployeeUpdate)).Put("/employees/{id}", d.Employee.UpdateEmployee)
			tr.With(rbac.Require(auth.PermEmployeeDelete)).Delete("/employees/{id}", d.Employee.DeleteEmployee)

			tr.With(rbac.Require(auth.PermTaskRead)).Get("/tasks", d.Task.ListTasks)
			tr.With(rbac.Require(auth.PermTaskRead)).Get("/tasks/{id}", d.Task.GetTask)
			tr.With(rbac.Require(auth.PermTaskCreate)).Post("/tasks", d.Task.CreateTask)
			tr.With(rbac.Require(auth.PermTaskUpdate)).Put("/tasks/{id}", d.Task.UpdateTask)
			tr.With(rbac.Require(auth.PermTaskDelete)).Delete("/tasks/{id}", d.Task.DeleteTask)
		})
	})

	return router
}

func passThrough(next http.Handler) http.Handler { return next }

func windowOrDefault(w time.Duration) time.Duration {
	if w <= 0 {
		return time.Minute
	}
	return w
}
