package config

import (
	"testing"
	"time"

	"github.com/joestump/joe-events/internal/query"
)

// setOIDC fills the required OIDC settings and runs the test from an empty
// directory so no local .env or joe-events.yaml leaks in.
func setOIDC(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("EVENTS_OIDC_ISSUER", "https://idp.example.com")
	t.Setenv("EVENTS_OIDC_CLIENT_ID", "joe-events")
	t.Setenv("EVENTS_OIDC_CLIENT_SECRET", "secret")
	t.Setenv("EVENTS_OIDC_REDIRECT_URL", "http://localhost:8080/auth/callback")
}

func TestLoad_Defaults(t *testing.T) {
	setOIDC(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" || cfg.DB.Driver != "sqlite3" {
		t.Errorf("addr/driver = %q/%q", cfg.HTTP.Addr, cfg.DB.Driver)
	}
	if cfg.Pagination != query.DefaultPagination {
		t.Errorf("pagination = %+v, want %+v", cfg.Pagination, query.DefaultPagination)
	}
	if cfg.SessionLifetime != 720*time.Hour || cfg.CacheTTL != time.Minute {
		t.Errorf("lifetime/ttl = %v/%v", cfg.SessionLifetime, cfg.CacheTTL)
	}
	if cfg.Checkout.Rate != 1 || cfg.Checkout.Burst != 5 {
		t.Errorf("checkout = %+v", cfg.Checkout)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	setOIDC(t)
	t.Setenv("EVENTS_HTTP_ADDR", ":9090")
	t.Setenv("EVENTS_PAGINATION_LIMIT", "24")
	t.Setenv("EVENTS_PAGINATION_MAX_LIMIT", "48")
	t.Setenv("EVENTS_REDIS_ADDR", "localhost:6379")
	t.Setenv("EVENTS_CACHE_TTL", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Errorf("addr = %q", cfg.HTTP.Addr)
	}
	if want := (query.Pagination{Page: 1, Limit: 24, MaxLimit: 48}); cfg.Pagination != want {
		t.Errorf("pagination = %+v, want %+v", cfg.Pagination, want)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.CacheTTL != 30*time.Second {
		t.Errorf("redis/ttl = %q/%v", cfg.Redis.Addr, cfg.CacheTTL)
	}
}

func TestLoad_Rejects(t *testing.T) {
	tests := map[string]map[string]string{
		"missing issuer":       {"EVENTS_OIDC_ISSUER": ""},
		"limit above max":      {"EVENTS_PAGINATION_LIMIT": "50", "EVENTS_PAGINATION_MAX_LIMIT": "10"},
		"zero limit":           {"EVENTS_PAGINATION_LIMIT": "0"},
		"bad session lifetime": {"EVENTS_SESSION_LIFETIME": "forever"},
		"bad cache ttl":        {"EVENTS_CACHE_TTL": "soon"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			setOIDC(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadDB_SkipsOIDC(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, k := range []string{"EVENTS_OIDC_ISSUER", "EVENTS_OIDC_CLIENT_ID", "EVENTS_OIDC_CLIENT_SECRET", "EVENTS_OIDC_REDIRECT_URL"} {
		t.Setenv(k, "")
	}
	if _, err := Load(); err == nil {
		t.Error("Load should require OIDC settings")
	}
	if _, err := LoadDB(); err != nil {
		t.Errorf("LoadDB: %v", err)
	}
}
