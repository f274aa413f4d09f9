package rest

import (
	"log/slog"

	"github.com/frahmantamala/elementar/internal"
	"github.com/frahmantamala/elementar/internal/auth"
	authPostgres "github.com/frahmantamala/elementar/internal/auth/postgres"
	"github.com/frahmantamala/elementar/internal/company"
	companyPostgres "github.com/frahmantamala/elementar/internal/company/postgres"
	"github.com/frahmantamala/elementar/internal/core/events"
	"github.com/frahmantamala/elementar/internal/employee"
	employeePostgres "github.com/frahmantamala/elementar/internal/employee/postgres"
	"github.com/frahmantamala/elementar/internal/invitation"
	invitationPostgres "github.com/frahmantamala/elementar/internal/invitation/postgres"
	"github.com/frahmantamala/elementar/internal/ratelimit"
	"github.com/frahmantamala/elementar/internal/role"
	rolePostgres "github.com/frahmantamala/elementar/internal/role/postgres"
	"github.com/frahmantamala/elementar/internal/task"
	taskPostgres "github.com/frahmantamala/elementar/internal/task/postgres"
	"github.com/frahmantamala/elementar/internal/transport"
	"github.com/frahmantamala/elementar/internal/transport/swagger"
	"github.com/frahmantamala/elementar/internal/usage"
	usagePostgres "github.com/frahmantamala/elementar/internal/usage/postgres"
	"github.com/frahmantamala/elementar/internal/user"
	userPostgres "github.com/frahmantamala/elementar/internal/user/postgres"
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

// Infra holds the process-wide resources the handlers are built on.
// Gorm must already carry the tenancy gateway plugin.
type Infra struct {
	Config       *internal.Config
	SQL          *sqlx.DB
	Gorm         *gorm.DB
	Logger       *slog.Logger
	Publisher    events.Publisher
	Limiter      ratelimit.Limiter
	Docs         *swagger.Docs
	HealthChecks map[string]Pinger
}

// BuildDependencies constructs repositories, services and handlers.
func BuildDependencies(in Infra) RouterDeps {
	cfg := in.Config
	lg := in.Logger
	if lg == nil {
		lg = slog.Default()
	}

	base := transport.NewBaseHandler(lg)
	base.Debug = cfg.App.DebugErrors || !cfg.IsProduction()

	authRepo := authPostgres.NewRepository(in.SQL)
	tokens := auth.NewJWTTokenGenerator(
		cfg.Security.JWTAccessSecret,
		cfg.Security.JWTRefreshSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authRepo, tokens, cfg.Security.BCryptCost, cfg.Tenancy.OwnerRoleName)
	resolver := auth.NewResolver(authRepo)

	roleService := role.NewService(rolePostgres.NewRoleRepository(in.Gorm), lg)
	companyService := company.NewService(companyPostgres.NewCompanyRepository(in.Gorm), in.Publisher, cfg.Tenancy.OwnerRoleName, lg)
	userService := user.NewService(userPostgres.NewUserRepository(in.Gorm), in.Publisher, cfg.Security.BCryptCost, lg)
	invitationService := invitation.NewService(
		invitationPostgres.NewInvitationRepository(in.Gorm),
		roleService,
		in.Publisher,
		cfg.Tenancy.InvitationTTL,
		cfg.Security.BCryptCost,
		lg,
	)
	employeeService := employee.NewService(employeePostgres.NewEmployeeRepository(in.Gorm), lg)
	taskService := task.NewService(taskPostgres.NewTaskRepository(in.Gorm), lg)

	limiter := in.Limiter
	if limiter == nil {
		limiter = ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{})
	}

	// Validate has already rejected malformed entries.
	trusted, _ := cfg.Server.TrustedProxyPrefixes()

	deps := RouterDeps{
		Base:         base,
		Logger:       lg,
		HealthChecks: in.HealthChecks,

		Auth:       auth.NewHandler(base, authService, tokens, resolver, cfg.Tenancy.Header),
		RBAC:       auth.NewRBACAuthorization(nil, base),
		Usage:      usage.NewGuard(base, usagePostgres.NewUsageRepository(in.Gorm)),
		Company:    company.NewHandler(base, companyService),
		User:       user.NewHandler(base, userService),
		Invitation: invitation.NewHandler(base, invitationService),
		Role:       role.NewHandler(base, roleService),
		Employee:   employee.NewHandler(base, employeeService),
		Task:       task.NewHandler(base, taskService),

		Limiter:   limiter,
		RateLimit: cfg.RateLimit,

		AllowedOrigins: cfg.Server.AllowedOrigins,
		TrustedProxies: trusted,
		TenantHeader:   cfg.Tenancy.Header,
		Docs:           in.Docs,
	}
	if in.SQL != nil {
		deps.DB = in.SQL.DB
	}
	if cfg.Observability.Metrics.Enabled {
		deps.MetricsPath = cfg.Observability.Metrics.Path
	}
	return deps
}
