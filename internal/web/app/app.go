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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	webhttp "github.com/tripnest/tripnest/internal/web/http"
	"github.com/tripnest/tripnest/internal/web/onboarding"
	"github.com/tripnest/tripnest/internal/web/session"
	"github.com/tripnest/tripnest/pkg/httpx"
	"github.com/tripnest/tripnest/pkg/slogx"
	"github.com/tripnest/tripnest/pkg/telemetry"
	"github.com/tripnest/tripnest/pkg/travelsdk"
)

// BuildVersion is overridden at build time via ldflags.
var BuildVersion = "v0.1.0"

// Application is the web tier with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	tracerShutdown telemetry.ShutdownFunc
	metrics        *prometheus.Registry

	sdk      *travelsdk.SDKClient
	cache    session.IdentityCache
	closers  []func() error
	registry *session.Registry

	server *http.Server
}

func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "tripnest-web",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		metrics: prometheus.NewRegistry(),
	}
	app.metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	shutdown, err := telemetry.InitTracer(context.Background(), telemetry.Config{
		ServiceName:    "tripnest-web",
		ServiceVersion: BuildVersion,
		Endpoint:       cfg.OTLPEndpoint,
		SampleRatio:    cfg.SampleRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	app.tracerShutdown = shutdown
	httpx.SetTrustProxyHeaders(cfg.TrustProxy)

	if err := app.initCache(); err != nil {
		return nil, err
	}
	app.initSession()
	if err := app.initHTTP(); err != nil {
		return nil, err
	}
	return app, nil
}

// Run serves until SIGINT or SIGTERM.
func (app *Application) Run() error {
	app.registry.Start()

	app.logger.Info("web tier starting", "port", app.cfg.Port, "api", app.cfg.APIBaseURL, "version", BuildVersion)

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
	app.logger.Info("shutting down web tier...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.registry.Stop()

	if err := app.tracerShutdown(ctx); err != nil {
		app.logger.Error("tracer shutdown failed", "error", err)
	}

	var errs []error
	for _, c := range app.closers {
		errs = append(errs, c())
	}

	app.logger.Info("web tier stopped")
	return errors.Join(errs...)
}

// initCache picks the identity cache: Redis when configured so that
// several web instances share resolved identities, memory otherwise.
func (app *Application) initCache() error {
	if app.cfg.RedisAddr == "" {
		app.cache = session.NewMemoryCache()
		app.logger.Info("identity cache: in-memory")
		return nil
	}

	rdb := session.NewRedisClient(session.RedisConfig{
		Addr:     app.cfg.RedisAddr,
		Password: app.cfg.RedisPassword,
		DB:       app.cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	app.cache = session.NewRedisCache(rdb)
	app.closers = append(app.closers, rdb.Close)
	app.logger.Info("identity cache: redis", "addr", app.cfg.RedisAddr)
	return nil
}

func (app *Application) initSession() {
	app.sdk = travelsdk.NewSDKClient(app.cfg.APIBaseURL)
	app.sdk.HTTPClient.Timeout = app.cfg.APITimeout
	app.sdk.Metrics = travelsdk.NewMetrics(app.metrics)

	cfg := session.DefaultConfig()
	cfg.ResolveBudget = app.cfg.ResolveBudget
	cfg.ResolveTimeout = app.cfg.ResolveTimeout
	cfg.CacheTTL = app.cfg.IdentityTTL
	cfg.IdleTTL = app.cfg.IdleTTL
	cfg.SweepInterval = app.cfg.SweepInterval

	app.registry = session.NewRegistry(app.sdk, app.cache, cfg, app.logger)
}

func (app *Application) initHTTP() error {
	pages, err := webhttp.LoadTemplates()
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	router := webhttp.NewRouter(webhttp.RouterConfig{
		Registry:       app.registry,
		Backend:        app.sdk,
		Workflow:       onboarding.NewWorkflow(app.sdk),
		Pages:          pages,
		Logger:         app.logger,
		Gatherer:       app.metrics,
		Registerer:     app.metrics,
		Version:        BuildVersion,
		CookieTTL:      app.cfg.CookieTTL,
		RefreshSeconds: app.cfg.RefreshSeconds,
	})

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return nil
}
