package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/sports-travel-platform/internal/api/router"
	"github.com/wolfman30/sports-travel-platform/internal/apiclient"
	"github.com/wolfman30/sports-travel-platform/internal/app/bootstrap"
	appconfig "github.com/wolfman30/sports-travel-platform/internal/config"
	"github.com/wolfman30/sports-travel-platform/internal/dashboard"
	httpmiddleware "github.com/wolfman30/sports-travel-platform/internal/http/middleware"
	"github.com/wolfman30/sports-travel-platform/internal/intake"
	"github.com/wolfman30/sports-travel-platform/internal/notify"
	"github.com/wolfman30/sports-travel-platform/internal/observability/metrics"
	"github.com/wolfman30/sports-travel-platform/pkg/logging"
)

func main() {
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting sports-travel intake server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv, cleanup, err := buildServer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build server", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// buildServer wires the intake HTTP server. The returned cleanup closes the
// database handle when one was opened.
func buildServer(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*http.Server, func(), error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	coreMetrics := metrics.NewCoreMetrics(registry)

	sender, err := bootstrap.BuildEmailSender(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	inquiries := notify.NewInquiryNotifier(sender, cfg.ReceiverEmail, logger)

	limiter := httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Run(ctx)

	db, err := bootstrap.OpenDatabase(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if db != nil {
			_ = db.Close()
		}
	}

	source, err := dashboardSource(db, cfg, logger, coreMetrics)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	handler := router.New(&router.Config{
		Logger:             logger,
		Intake:             intake.NewHandler(inquiries, coreMetrics, logger),
		Dashboard:          dashboard.NewHandler(source, logger),
		RateLimiter:        limiter,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		AdminAuthSecret:    cfg.AdminJWTSecret,
	})

	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, cleanup, nil
}

// dashboardSource reads aggregates from the local database when available
// and from the REST API otherwise.
func dashboardSource(db *sql.DB, cfg *appconfig.Config, logger *logging.Logger, m *metrics.CoreMetrics) (dashboard.Source, error) {
	if db != nil {
		return dashboard.NewSQLRepository(db, logger, nil), nil
	}
	client, err := bootstrap.BuildAPIClient(cfg, logger, m)
	if err != nil {
		return nil, err
	}
	return apiclient.NewDashboardSource(client), nil
}
