package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("API_BASE_URL", "")
	t.Setenv("API_TIMEOUT", "")
	t.Setenv("QUOTE_VALIDITY_DAYS", "")
	t.Setenv("EMAIL_PROVIDER", "")
	t.Setenv("SENDGRID_FROM_NAME", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.APIBaseURL != "http://localhost:5000/api" {
		t.Fatalf("expected default api base url, got %s", cfg.APIBaseURL)
	}
	if cfg.APITimeout != 15*time.Second {
		t.Fatalf("expected default api timeout, got %s", cfg.APITimeout)
	}
	if cfg.QuoteValidityDays != 30 {
		t.Fatalf("expected 30 day quote validity, got %d", cfg.QuoteValidityDays)
	}
	if cfg.EmailProvider != "stub" {
		t.Fatalf("expected stub email provider, got %s", cfg.EmailProvider)
	}
	if cfg.SendGridFromName != "SportsTravel" {
		t.Fatalf("expected default from name, got %s", cfg.SendGridFromName)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected default origins %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("API_TIMEOUT", "3s")
	t.Setenv("QUOTE_VALIDITY_DAYS", "14")
	t.Setenv("CATALOG_CACHE_TTL", "90s")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("EMAIL_PROVIDER", " SES ")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://sportstravel.in, ,https://admin.sportstravel.in")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if cfg.APITimeout != 3*time.Second {
		t.Fatalf("expected api timeout override, got %s", cfg.APITimeout)
	}
	if cfg.QuoteValidityDays != 14 {
		t.Fatalf("expected validity override, got %d", cfg.QuoteValidityDays)
	}
	if cfg.CatalogCacheTTL != 90*time.Second {
		t.Fatalf("expected cache ttl override, got %s", cfg.CatalogCacheTTL)
	}
	if cfg.RateLimitRPS != 2.5 {
		t.Fatalf("expected rate override, got %v", cfg.RateLimitRPS)
	}
	if !cfg.RedisTLS {
		t.Fatalf("expected redis tls enabled")
	}
	if cfg.EmailProvider != "ses" {
		t.Fatalf("expected normalized provider, got %q", cfg.EmailProvider)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://admin.sportstravel.in" {
		t.Fatalf("unexpected origins %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("QUOTE_VALIDITY_DAYS", "thirty")
	t.Setenv("API_TIMEOUT", "soon")
	cfg := Load()
	if cfg.QuoteValidityDays != 30 {
		t.Fatalf("expected fallback validity, got %d", cfg.QuoteValidityDays)
	}
	if cfg.APITimeout != 15*time.Second {
		t.Fatalf("expected fallback timeout, got %s", cfg.APITimeout)
	}
}
