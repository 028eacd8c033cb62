package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/sports-travel-platform/internal/dashboard"
	httpmiddleware "github.com/wolfman30/sports-travel-platform/internal/http/middleware"
	"github.com/wolfman30/sports-travel-platform/internal/intake"
	"github.com/wolfman30/sports-travel-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	Intake             *intake.Handler
	Dashboard          *dashboard.Handler
	RateLimiter        *httpmiddleware.RateLimiter
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	AdminAuthSecret    string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))

	r.Get("/health", intake.Health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Public forms
	if cfg.Intake != nil {
		r.Route("/api", func(api chi.Router) {
			if cfg.RateLimiter != nil {
				api.Use(httpmiddleware.RateLimit(cfg.RateLimiter))
			}
			api.Post("/leads", cfg.Intake.SubmitLead)
			api.Post("/contact", cfg.Intake.SubmitContact)
		})
	}

	// Admin routes (protected by HMAC JWT)
	if cfg.AdminAuthSecret != "" && cfg.Dashboard != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Get("/dashboard", cfg.Dashboard.GetOverview)
		})
	}

	return r
}
