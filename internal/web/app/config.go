package app

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port       int           `env:"PORT"                 envDefault:"8080"`
	APIBaseURL string        `env:"TRIPNEST_API_URL"     envDefault:"http://localhost:8081"`
	APITimeout time.Duration `env:"TRIPNEST_API_TIMEOUT" envDefault:"10s"`

	// RedisAddr selects the shared identity cache; in-process memory when
	// empty.
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB"`

	CookieTTL      time.Duration `env:"SESSION_COOKIE_TTL"      envDefault:"12h"`
	ResolveBudget  time.Duration `env:"SESSION_RESOLVE_BUDGET"  envDefault:"300ms"`
	ResolveTimeout time.Duration `env:"SESSION_RESOLVE_TIMEOUT" envDefault:"10s"`
	IdentityTTL    time.Duration `env:"SESSION_IDENTITY_TTL"    envDefault:"5m"`
	IdleTTL        time.Duration `env:"SESSION_IDLE_TTL"        envDefault:"30m"`
	SweepInterval  time.Duration `env:"SESSION_SWEEP_INTERVAL"  envDefault:"1m"`
	RefreshSeconds int           `env:"SESSION_REFRESH_SECONDS" envDefault:"1"`

	// TrustProxy makes rate limits key on X-Forwarded-For. Set it only
	// behind a proxy that writes that header.
	TrustProxy bool `env:"TRUST_PROXY" envDefault:"false"`

	OTLPEndpoint string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	SampleRatio  float64 `env:"OTEL_TRACES_SAMPLER_RATIO" envDefault:"1"`

	Env                 string        `env:"ENV"                   envDefault:"dev"`
	LogLevel            string        `env:"LOG_LEVEL"             envDefault:"info"`
	LogFormat           string        `env:"LOG_FORMAT"            envDefault:"json"`
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
}

// LoadConfig reads the environment, preloaded from ./.env when present.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.APIBaseURL == "" {
		return Config{}, fmt.Errorf("TRIPNEST_API_URL is required")
	}
	return cfg, nil
}
