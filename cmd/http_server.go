package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/elementar/internal"
	"github.com/frahmantamala/elementar/internal/core/events"
	"github.com/frahmantamala/elementar/internal/core/tenancy"
	"github.com/frahmantamala/elementar/internal/ratelimit"
	"github.com/frahmantamala/elementar/internal/transport/rest"
	"github.com/frahmantamala/elementar/internal/transport/swagger"
	"github.com/frahmantamala/elementar/pkg/logger"
	"github.com/frahmantamala/elementar/pkg/tracing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Gorm     *gorm.DB
	Bus      *events.EventBus
	Limiter  ratelimit.Limiter
	Handler  http.Handler
	Logger   *slog.Logger
	shutdown []func(context.Context) error
}

func startHTTPServer() {
	ctx := context.Background()
	deps, err := initializeDependencies(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	lg := deps.Logger

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	lg.Info("Starting HTTP server", "address", addr, "env", deps.Config.App.Env)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Handler,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		lg.Info("Received signal, shutting down...", "signal", sig)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", "error", err)
		}
		deps.Close(shutdownCtx)
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("Server failed to start", "error", err)
			deps.Close(context.Background())
			os.Exit(1)
		}
	}

	lg.Info("Server stopped")
}

// Close drains in-flight event handlers and releases resources in reverse
// order of acquisition.
func (d *Dependencies) Close(ctx context.Context) {
	d.Bus.Wait()
	for i := len(d.shutdown) - 1; i >= 0; i-- {
		if err := d.shutdown[i](ctx); err != nil {
			d.Logger.Error("shutdown step failed", "error", err)
		}
	}
}

func initializeDependencies(ctx context.Context) (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.LoggerWrapper()
	deps := &Dependencies{Config: config, Logger: lg}

	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		Enabled:      config.Observability.Tracing.Enabled,
		ServiceName:  config.Observability.Tracing.ServiceName,
		Endpoint:     config.Observability.Tracing.Endpoint,
		Insecure:     config.Observability.Tracing.Insecure,
		SamplingRate: config.Observability.Tracing.SamplingRate,
	})
	if err != nil {
		return nil, err
	}
	deps.shutdown = append(deps.shutdown, shutdownTracing)

	db, gormDB, err := openDatabase(config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	deps.DB, deps.Gorm = db, gormDB
	deps.shutdown = append(deps.shutdown, func(context.Context) error { return db.Close() })

	deps.Bus = events.NewEventBus(lg)
	events.RegisterAuditLog(deps.Bus, lg)

	limiter, err := ratelimit.New(config.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize rate limiter: %w", err)
	}
	deps.Limiter = limiter
	checks := map[string]rest.Pinger{}
	if redisLimiter, ok := limiter.(*ratelimit.RedisLimiter); ok {
		checks["redis"] = rest.PingFunc(redisLimiter.Ping)
		deps.shutdown = append(deps.shutdown, func(context.Context) error { return redisLimiter.Close() })
	}

	docs, err := swagger.Load(ctx, config.Server.OpenAPIPath)
	if err != nil {
		return nil, err
	}

	router := rest.NewRouter(rest.BuildDependencies(rest.Infra{
		Config:       config,
		SQL:          db,
		Gorm:         gormDB,
		Logger:       lg,
		Publisher:    deps.Bus,
		Limiter:      limiter,
		Docs:         docs,
		HealthChecks: checks,
	}))
	deps.Handler = otelhttp.NewHandler(router, config.Observability.Tracing.ServiceName)

	return deps, nil
}

// openDatabase opens one pgx pool and shares it between sqlx and gorm. The
// gorm handle carries the tenancy gateway.
func openDatabase(cfg *internal.Config) (*sqlx.DB, *gorm.DB, error) {
	db, err := initDB(cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to open gorm: %w", err)
	}
	if err := gormDB.Use(tenancy.NewScopedGateway(cfg.Tenancy.TenantTables...)); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to install tenancy gateway: %w", err)
	}
	return db, gormDB, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := internal.WithTimeout(context.Background(), cfg.QueryTimeout)
	defer cancel()
	if err := dbConn.PingContext(ctx); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
