package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/joestump/joe-events/internal/query"
)

type Config struct {
	HTTP struct {
		Addr string
	}
	DB struct {
		Driver string
		DSN    string
	}
	OIDC struct {
		Issuer       string
		ClientID     string
		ClientSecret string
		RedirectURL  string
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	Checkout struct {
		Rate  float64 // requests per second per client IP
		Burst int
	}
	AdminEmail      string
	SessionLifetime time.Duration
	InsecureCookies bool
	CacheTTL        time.Duration
	LogLevel        string
	CORSOrigins     []string
	Pagination      query.Pagination
}

// Load reads config from a .env file (if present), the environment
// (EVENTS_ prefix) and an optional joe-events.yaml. OIDC settings are
// required.
func Load() (*Config, error) {
	return load(true)
}

// LoadDB is Load without the OIDC requirement, for the migrate and seed
// commands.
func LoadDB() (*Config, error) {
	return load(false)
}

func load(requireOIDC bool) (*Config, error) {
	_ = godotenv.Load() // optional .env

	v := viper.New()
	v.SetEnvPrefix("EVENTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigName("joe-events")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional config file

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("db.driver", "sqlite3")
	v.SetDefault("db.dsn", "file:joe-events.db?_busy_timeout=5000")
	v.SetDefault("session.lifetime", "720h")
	v.SetDefault("cache.ttl", "1m")
	v.SetDefault("log.level", "info")
	v.SetDefault("checkout.rate", 1.0)
	v.SetDefault("checkout.burst", 5)
	v.SetDefault("pagination.limit", query.DefaultPagination.Limit)
	v.SetDefault("pagination.max_limit", query.DefaultPagination.MaxLimit)

	cfg := &Config{}
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.DB.Driver = v.GetString("db.driver")
	cfg.DB.DSN = v.GetString("db.dsn")
	cfg.OIDC.Issuer = v.GetString("oidc.issuer")
	cfg.OIDC.ClientID = v.GetString("oidc.client_id")
	cfg.OIDC.ClientSecret = v.GetString("oidc.client_secret")
	cfg.OIDC.RedirectURL = v.GetString("oidc.redirect_url")
	cfg.Redis.Addr = v.GetString("redis.addr")
	cfg.Redis.Password = v.GetString("redis.password")
	cfg.Redis.DB = v.GetInt("redis.db")
	cfg.Checkout.Rate = v.GetFloat64("checkout.rate")
	cfg.Checkout.Burst = v.GetInt("checkout.burst")
	cfg.AdminEmail = v.GetString("admin_email")
	cfg.InsecureCookies = v.GetBool("insecure_cookies")
	cfg.LogLevel = v.GetString("log.level")
	cfg.CORSOrigins = v.GetStringSlice("cors.origins")
	cfg.Pagination = query.Pagination{
		Page:     1,
		Limit:    v.GetInt("pagination.limit"),
		MaxLimit: v.GetInt("pagination.max_limit"),
	}

	lifetime, err := time.ParseDuration(v.GetString("session.lifetime"))
	if err != nil {
		return nil, fmt.Errorf("invalid EVENTS_SESSION_LIFETIME: %w", err)
	}
	cfg.SessionLifetime = lifetime

	ttl, err := time.ParseDuration(v.GetString("cache.ttl"))
	if err != nil {
		return nil, fmt.Errorf("invalid EVENTS_CACHE_TTL: %w", err)
	}
	cfg.CacheTTL = ttl

	if err := cfg.validate(requireOIDC); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate(requireOIDC bool) error {
	if c.DB.Driver == "" {
		return fmt.Errorf("EVENTS_DB_DRIVER is required (sqlite3, mysql, postgres)")
	}
	if c.DB.DSN == "" {
		return fmt.Errorf("EVENTS_DB_DSN is required")
	}
	if c.Pagination.Limit < 1 {
		return fmt.Errorf("EVENTS_PAGINATION_LIMIT must be at least 1")
	}
	if c.Pagination.MaxLimit < c.Pagination.Limit {
		return fmt.Errorf("EVENTS_PAGINATION_MAX_LIMIT must be at least EVENTS_PAGINATION_LIMIT")
	}
	if !requireOIDC {
		return nil
	}
	if c.OIDC.Issuer == "" {
		return fmt.Errorf("EVENTS_OIDC_ISSUER is required")
	}
	if c.OIDC.ClientID == "" {
		return fmt.Errorf("EVENTS_OIDC_CLIENT_ID is required")
	}
	if c.OIDC.ClientSecret == "" {
		return fmt.Errorf("EVENTS_OIDC_CLIENT_SECRET is required")
	}
	if c.OIDC.RedirectURL == "" {
		return fmt.Errorf("EVENTS_OIDC_REDIRECT_URL is required")
	}
	return nil
}
