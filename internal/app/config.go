package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Auth provider names accepted in Config.AuthProvider.
const (
	AuthProviderAPIKey = "apikey"
	AuthProviderHeader = "header"
)

// Config holds the complete application configuration, loadable from
// environment variables (PZ_ prefix), flags, or YAML config files.
type Config struct {
	Addr         string        `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL  string        `usage:"PostgreSQL connection URL (PZ_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	ImageBaseURL string        `default:"" usage:"Base URL for poster images (e.g. https://cdn.example.com/posters)" flag:"image-base-url"`
	APIKeyPepper string        `usage:"HMAC pepper for API key hashing (PZ_API_KEY_PEPPER)" flag:"api-key-pepper"`
	AuthProvider string        `default:"apikey" usage:"Identity provider: apikey or header (header trusts X-User-* and is for development only)" flag:"auth-provider"`
	CartTTL      time.Duration `default:"24h" usage:"Idle lifetime of an anonymous cart session" flag:"cart-ttl"`
	RateLimit    RateLimitConfig
	CORS         CORSConfig
	Graceful     GracefulConfig
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "PZ",
		Files:     []string{"config.yaml", "/etc/posterzone/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set PZ_DATABASE_URL or DATABASE_URL")
	}
	switch cfg.AuthProvider {
	case AuthProviderAPIKey, AuthProviderHeader:
	default:
		return nil, errors.Errorf("unknown auth provider %q: want %q or %q",
			cfg.AuthProvider, AuthProviderAPIKey, AuthProviderHeader)
	}
	if cfg.AuthProvider == AuthProviderAPIKey && cfg.APIKeyPepper == "" {
		return nil, errors.New("API key pepper is required: set PZ_API_KEY_PEPPER")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's PZ_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
