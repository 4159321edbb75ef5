package app

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port   int    `env:"PORT"   envDefault:"8081"`
	Issuer string `env:"ISSUER" envDefault:"tripnest-devapi"`

	DatabaseFile string `env:"DATABASE_FILE" envDefault:"devapi.db"`
	PepperFile   string `env:"PEPPER_FILE"   envDefault:"pepper"`

	// SigningKeyFile keeps the Ed25519 key across restarts; an ephemeral key
	// is generated when empty and every session dies with the process.
	SigningKeyFile string        `env:"SIGNING_KEY_FILE"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"12h"`

	SeedAdminEmail    string `env:"SEED_ADMIN_EMAIL"`
	SeedAdminName     string `env:"SEED_ADMIN_NAME"     envDefault:"Platform Admin"`
	SeedAdminPassword string `env:"SEED_ADMIN_PASSWORD"`

	// WebBaseURL is where onboarding links in invitation mail point.
	WebBaseURL         string        `env:"WEB_BASE_URL"         envDefault:"http://localhost:8080"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	InviteTTL          time.Duration `env:"INVITE_TTL"           envDefault:"168h"`

	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`
	InviteRetention      time.Duration `env:"INVITE_RETENTION"      envDefault:"720h"`

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
	if cfg.InviteTTL <= 0 {
		return Config{}, fmt.Errorf("INVITE_TTL must be positive")
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("SESSION_TTL must be positive")
	}
	return cfg, nil
}
