package app

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

	"go.uber.org/multierr"

	"github.com/aussiebroadwan/iam/internal/iam/cache"
	httpapi "github.com/aussiebroadwan/iam/internal/iam/http"
	"github.com/aussiebroadwan/iam/internal/iam/service"
	"github.com/aussiebroadwan/iam/internal/iam/store"
	"github.com/aussiebroadwan/iam/internal/iam/store/drivers/postgres"
	"github.com/aussiebroadwan/iam/internal/iam/store/drivers/sqlite"
	"github.com/aussiebroadwan/iam/pkg/cryptox"
	"github.com/aussiebroadwan/iam/pkg/jwtx"
	"github.com/aussiebroadwan/iam/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires the IAM service together.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	cache  *cache.Tenants
	tokens *jwtx.HS256

	tenantService       *service.TenantService
	userService         *service.UserService
	groupService        *service.GroupService
	roleService         *service.RoleService
	housekeepingService *service.HousekeepingService
	housekeepingRunning bool

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "iam",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetPepperPath(app.cfg.PepperFile)

	tokens, err := jwtx.NewHS256([]byte(cfg.JWT.Secret), jwtx.VerifyOptions{
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		Leeway:   cfg.JWT.Leeway,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token verifier: %w", err)
	}
	app.tokens = tokens

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	tenants, err := cache.NewTenants(cfg.Cache.Size, cfg.Cache.TTL)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize tenant cache: %w", err)
	}
	app.cache = tenants

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler returns the root HTTP handler.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()
	app.housekeepingRunning = true

	app.logger.Info("iam service starting",
		"addr", app.cfg.Addr,
		"driver", app.cfg.Database.Driver,
		"version", BuildVersion,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return multierr.Append(fmt.Errorf("server failed: %w", err), app.Shutdown())
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains the HTTP server, stops housekeeping and releases the
// store and cache.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down iam service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	var err error
	if serr := app.server.Shutdown(ctx); serr != nil {
		app.logger.Error("graceful server shutdown failed", "error", serr)
		err = multierr.Append(err, serr)
		if cerr := app.server.Close(); cerr != nil {
			app.logger.Error("error closing server", "error", cerr)
		}
	}

	if app.housekeepingRunning {
		app.housekeepingService.Stop()
		app.housekeepingRunning = false
	}

	app.cache.Close()

	if cerr := app.db.Close(); cerr != nil {
		app.logger.Error("error closing database", "error", cerr)
		err = multierr.Append(err, cerr)
	}

	if err == nil {
		app.logger.Info("iam service stopped")
	}
	return err
}

// initDatabase opens the configured store and applies migrations.
func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)

	switch app.cfg.Database.Driver {
	case DriverPostgres:
		db, err = openPostgres(app.cfg.Database)
	default:
		db, err = openSQLite(app.cfg.Database)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.Database.Driver)
	return nil
}

func openSQLite(cfg DatabaseConfig) (store.Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", cfg.File)
	return sqlite.NewStore(dsn)
}

func openPostgres(cfg DatabaseConfig) (store.Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.URL, postgres.PoolConfig{MaxConns: cfg.MaxConns})
	if err != nil {
		return nil, err
	}
	return postgres.NewStore(pool, cfg.URL), nil
}

func (app *Application) initServices() {
	app.tenantService = &service.TenantService{Store: app.db, Cache: app.cache}
	app.userService = &service.UserService{Store: app.db, Cache: app.cache}
	app.groupService = &service.GroupService{Store: app.db, Cache: app.cache}
	app.roleService = &service.RoleService{Store: app.db, Cache: app.cache}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.cache,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP builds the router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.tokens,
		BuildVersion,
		app.db,
		app.logger,
		app.cfg.RateLimits,
	)

	router.TenantService = app.tenantService
	router.UserService = app.userService
	router.GroupService = app.groupService
	router.RoleService = app.roleService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              app.cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
