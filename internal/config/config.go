package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/Skotchmaster/news_website/internal/identity"
)

const minSecretLen = 32

type Config struct {
	ServiceName string `env:"SERVICE_NAME" env-default:"news-website"`
	ServerPort  int    `env:"SERVER_PORT" env-default:"8080"`
	LogLevel    string `env:"LOG_LEVEL" env-default:"info"`

	DatabaseURL string `env:"DATABASE_URL" env-required:"true"`
	JWTSecret   string `env:"JWT_SECRET" env-required:"true"`

	Google Google

	FrontendRedirectURL string   `env:"FRONTEND_REDIRECT_URL" env-default:"http://localhost:3000"`
	CookieSecure        bool     `env:"COOKIE_SECURE" env-default:"true"`
	CORSAllowedOrigins  []string `env:"CORS_ALLOWED_ORIGINS" env-default:"http://localhost:3000" env-separator:","`

	KafkaBrokers []string `env:"KAFKA_BROKERS" env-separator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC" env-default:"user_events"`

	AdminSubjects []string `env:"ADMIN_SUBJECTS" env-separator:","`
}

type Google struct {
	ClientID        string        `env:"GOOGLE_CLIENT_ID" env-required:"true"`
	ClientSecret    string        `env:"GOOGLE_CLIENT_SECRET" env-required:"true"`
	RedirectURL     string        `env:"GOOGLE_REDIRECT_URL" env-required:"true"`
	AuthURL         string        `env:"GOOGLE_AUTH_URL" env-default:"https://accounts.google.com/o/oauth2/v2/auth"`
	TokenURL        string        `env:"GOOGLE_TOKEN_URL" env-default:"https://oauth2.googleapis.com/token"`
	JWKSURL         string        `env:"GOOGLE_JWKS_URL" env-default:"https://www.googleapis.com/oauth2/v3/certs"`
	Issuers         []string      `env:"GOOGLE_ISSUERS" env-default:"accounts.google.com,https://accounts.google.com" env-separator:","`
	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" env-default:"10s"`
	JWKSCacheTTL    time.Duration `env:"JWKS_CACHE_TTL" env-default:"0s"`
}

// Load reads an optional env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	cfg.CORSAllowedOrigins = CSV(cfg.CORSAllowedOrigins)
	cfg.KafkaBrokers = CSV(cfg.KafkaBrokers)
	cfg.AdminSubjects = CSV(cfg.AdminSubjects)
	cfg.Google.Issuers = CSV(cfg.Google.Issuers)
	cfg.FrontendRedirectURL = strings.TrimRight(cfg.FrontendRedirectURL, "/")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	required := map[string]string{
		"DATABASE_URL":         c.DatabaseURL,
		"GOOGLE_CLIENT_ID":     c.Google.ClientID,
		"GOOGLE_CLIENT_SECRET": c.Google.ClientSecret,
		"GOOGLE_REDIRECT_URL":  c.Google.RedirectURL,
	}
	for name, v := range required {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("missing required env %s", name)
		}
	}
	if len(c.JWTSecret) < minSecretLen {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", minSecretLen)
	}
	if len(c.Google.Issuers) == 0 {
		return errors.New("GOOGLE_ISSUERS is empty")
	}
	if c.Google.ProviderTimeout <= 0 {
		return errors.New("PROVIDER_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) Identity() identity.Config {
	return identity.Config{
		ClientID:     c.Google.ClientID,
		ClientSecret: c.Google.ClientSecret,
		RedirectURL:  c.Google.RedirectURL,
		AuthURL:      c.Google.AuthURL,
		TokenURL:     c.Google.TokenURL,
		JWKSURL:      c.Google.JWKSURL,
		Issuers:      c.Google.Issuers,
		Timeout:      c.Google.ProviderTimeout,
		KeyCacheTTL:  c.Google.JWKSCacheTTL,
	}
}

// CSV trims entries and drops empty ones.
func CSV(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
