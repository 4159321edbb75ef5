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

	httpapi "github.com/tripnest/tripnest/internal/devapi/http"
	"github.com/tripnest/tripnest/internal/devapi/service"
	"github.com/tripnest/tripnest/internal/devapi/store"
	"github.com/tripnest/tripnest/internal/devapi/store/drivers/sqlite"
	"github.com/tripnest/tripnest/pkg/cryptox"
	"github.com/tripnest/tripnest/pkg/httpx"
	"github.com/tripnest/tripnest/pkg/jwtx"
	"github.com/tripnest/tripnest/pkg/slogx"
	"github.com/tripnest/tripnest/pkg/telemetry"
)

// BuildVersion is overridden at build time via ldflags.
var BuildVersion = "v0.1.0"

// Application is the development backend with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	tracerShutdown telemetry.ShutdownFunc

	db         store.Store
	keyManager *jwtx.KeyManager

	authService         *service.AuthService
	inviteService       *service.InviteService
	housekeepingService *service.HousekeepingService

	server *http.Server
}

func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "tripnest-devapi",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	shutdown, err := telemetry.InitTracer(context.Background(), telemetry.Config{
		ServiceName:    "tripnest-devapi",
		ServiceVersion: BuildVersion,
		Endpoint:       cfg.OTLPEndpoint,
		SampleRatio:    cfg.SampleRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	app.tracerShutdown = shutdown
	httpx.SetTrustProxyHeaders(cfg.TrustProxy)

	if err := cryptox.LoadPepper(cfg.PepperFile); err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	km, err := InitSigningKeys(cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize signing keys: %w", err)
	}
	app.keyManager = km

	app.initServices()
	if err := app.seed(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run serves until SIGINT or SIGTERM.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("devapi starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}
	return nil
}

func (app *Application) Shutdown() error {
	app.logger.Info("shutting down devapi...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.tracerShutdown(ctx); err != nil {
		app.logger.Error("tracer shutdown failed", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("devapi stopped")
	return nil
}

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "file", app.cfg.DatabaseFile)
	return nil
}

func (app *Application) initServices() {
	app.authService = &service.AuthService{
		Store:      app.db,
		KeyManager: app.keyManager,
		TTL:        app.cfg.SessionTTL,
	}
	app.inviteService = &service.InviteService{
		Store:   app.db,
		Mailer:  service.LogMailer{Logger: app.logger},
		TTL:     app.cfg.InviteTTL,
		BaseURL: app.cfg.WebBaseURL,
	}
	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.InviteRetention,
	)
}

// seed creates the platform admin on an empty database. Without seed
// credentials the backend still starts, but nobody can send invitations
// until an admin exists.
func (app *Application) seed() error {
	ctx := slogx.WithContext(context.Background(), app.logger)
	seeder := &service.SeedService{Store: app.db}

	created, err := seeder.EnsureAdmin(ctx, service.AdminSeed{
		Email:    app.cfg.SeedAdminEmail,
		Name:     app.cfg.SeedAdminName,
		Password: app.cfg.SeedAdminPassword,
	})
	switch {
	case errors.Is(err, service.ErrSeedIncomplete):
		app.logger.Warn("database is empty and SEED_ADMIN_EMAIL/SEED_ADMIN_PASSWORD are unset; no admin created")
		return nil
	case err != nil:
		return fmt.Errorf("failed to seed admin: %w", err)
	case created:
		app.logger.Info("platform admin seeded", "email", app.cfg.SeedAdminEmail)
	}
	return nil
}

func (app *Application) initHTTP() {
	verifier := jwtx.WithRevocation(app.keyManager.Verifier, app.authService.IsRevoked)

	router := httpapi.NewRouter(
		app.keyManager.KeySet,
		verifier,
		BuildVersion,
		app.db,
		app.logger,
		httpapi.CORSConfig{AllowedOrigins: app.cfg.CORSAllowedOrigins},
	)
	router.AuthService = app.authService
	router.InviteService = app.inviteService
	router.ApplyRoutes()

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
