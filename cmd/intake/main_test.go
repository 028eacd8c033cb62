package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	appconfig "github.com/wolfman30/sports-travel-platform/internal/config"
	"github.com/wolfman30/sports-travel-platform/pkg/logging"
)

func testConfig() *appconfig.Config {
	return &appconfig.Config{
		Port:               "0",
		APIBaseURL:         "http://localhost:5000/api",
		EmailProvider:      "stub",
		ReceiverEmail:      "agency@sportstravel.in",
		RateLimitRPS:       5,
		RateLimitBurst:     5,
		CORSAllowedOrigins: []string{"https://sportstravel.in"},
	}
}

func TestBuildServerServesIntakeRoutes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv, cleanup, err := buildServer(ctx, testConfig(), logging.New("error"))
	if err != nil {
		t.Fatalf("build server: %v", err)
	}
	defer cleanup()

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected health 200, got %d", rr.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/leads", strings.NewReader(`{"name":"Asha","email":"asha@example.com","phone":"9876543210","eventInterest":"IPL Final"}`))
	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected lead 200, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rr.Body.String(), `sportstravel_intake_inquiries_total{form="lead",outcome="success"} 1`) {
		t.Fatalf("expected inquiry counter in metrics output")
	}
}

func TestBuildServerRejectsUnknownEmailProvider(t *testing.T) {
	cfg := testConfig()
	cfg.EmailProvider = "fax"
	if _, _, err := buildServer(context.Background(), cfg, logging.New("error")); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}
