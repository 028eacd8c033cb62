package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	appconfig "github.com/wolfman30/sports-travel-platform/internal/config"
	"github.com/wolfman30/sports-travel-platform/pkg/logging"
)

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, body)
}

// fakeAPI serves the handful of endpoints the commands read.
func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/leads/l-1":
			writeJSON(w, `{"success":true,"data":{"_id":"l-1","name":"Asha","email":"asha@example.com","eventId":{"_id":"ev-1","name":"IPL Final"},"packageId":"p-1","numberOfTravelers":2,"status":"Contacted"}}`)
		case "/api/leads/l-1/history":
			writeJSON(w, `{"success":true,"data":{"history":[
				{"_id":"h-1","fromStatus":"New","toStatus":"Contacted","notes":"called","createdAt":"2026-03-02T10:00:00Z"}
			]}}`)
		case "/api/quotes":
			writeJSON(w, `{"success":true,"data":{"quotes":[
				{"_id":"q-old","leadId":"l-1","status":"Sent","validUntil":"2020-01-31T00:00:00Z","finalPrice":150000},
				{"_id":"q-new","leadId":"l-1","status":"Draft","validUntil":"2999-01-31T00:00:00Z","finalPrice":90000}
			],"pagination":{"total":2,"page":1,"pages":1}}}`)
		case "/api/quotes/q-1":
			writeJSON(w, `{"success":true,"data":{"_id":"q-1","leadId":"l-1","eventId":"ev-1","packageId":"p-1","numberOfTravelers":2,"basePrice":50000,"finalPrice":100000,"status":"Draft","validUntil":"2999-01-31T00:00:00Z"}}`)
		case "/api/events/ev-1":
			writeJSON(w, `{"success":true,"data":{"_id":"ev-1","name":"IPL Final","location":"Ahmedabad"}}`)
		case "/api/packages/p-1":
			writeJSON(w, `{"success":true,"data":{"_id":"p-1","eventId":"ev-1","name":"Pavilion","tier":"premium","basePrice":50000}}`)
		case "/api/dashboard/stats":
			writeJSON(w, `{"success":true,"data":{"totalLeads":12,"activeEvents":3,"totalPackages":9,"conversionRate":25,"statusBreakdown":{"new":4,"closedWon":3}}}`)
		case "/api/dashboard/revenue":
			writeJSON(w, `{"success":true,"data":{"totalRevenue":360000,"pendingRevenue":90000,"acceptedQuotesCount":2,"pendingQuotesCount":1,"averageQuoteValue":150000}}`)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func testConfig(baseURL string) *appconfig.Config {
	return &appconfig.Config{
		APIBaseURL:        baseURL + "/api",
		APITimeout:        5 * time.Second,
		EmailProvider:     "stub",
		QuoteValidityDays: 30,
		CatalogCacheTTL:   time.Minute,
	}
}

func runAdmin(t *testing.T, cfg *appconfig.Config, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), cfg, logging.NewWithWriter("error", io.Discard), args, &out)
	return out.String(), err
}

func TestLeadsHistoryPrintsAndAudits(t *testing.T) {
	server := fakeAPI(t)
	out, err := runAdmin(t, testConfig(server.URL), "leads", "history", "-id", "l-1")
	if err != nil {
		t.Fatalf("leads history: %v", err)
	}
	if !strings.Contains(out, "New") || !strings.Contains(out, "Contacted") || !strings.Contains(out, "called") {
		t.Fatalf("history table missing transition:\n%s", out)
	}
	if !strings.Contains(out, "history consistent") {
		t.Fatalf("expected audit result, got:\n%s", out)
	}
}

func TestLeadsStatusRejectsUnknownStatus(t *testing.T) {
	server := fakeAPI(t)
	if _, err := runAdmin(t, testConfig(server.URL), "leads", "status", "-id", "l-1", "-to", "Maybe"); err == nil {
		t.Fatal("expected unknown status error")
	}
	if _, err := runAdmin(t, testConfig(server.URL), "leads", "status", "-id", "l-1"); err == nil || !strings.Contains(err.Error(), "-to") {
		t.Fatalf("expected missing -to error, got %v", err)
	}
}

func TestQuotesExpiredListsLapsedQuotes(t *testing.T) {
	server := fakeAPI(t)
	out, err := runAdmin(t, testConfig(server.URL), "quotes", "expired")
	if err != nil {
		t.Fatalf("quotes expired: %v", err)
	}
	if !strings.Contains(out, "q-old") {
		t.Fatalf("expected lapsed quote in output:\n%s", out)
	}
	if strings.Contains(out, "q-new") {
		t.Fatalf("open quote listed as expired:\n%s", out)
	}
}

func TestQuotesPDFWritesFile(t *testing.T) {
	server := fakeAPI(t)
	path := filepath.Join(t.TempDir(), "quote.pdf")

	out, err := runAdmin(t, testConfig(server.URL), "quotes", "pdf", "-id", "q-1", "-out", path)
	if err != nil {
		t.Fatalf("quotes pdf: %v", err)
	}
	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	if !bytes.HasPrefix(body, []byte("%PDF")) {
		t.Fatalf("expected a PDF, got %q", body[:min(len(body), 8)])
	}
	if !strings.Contains(out, path) {
		t.Fatalf("expected output to name the file, got %q", out)
	}
}

func TestDashboardPrintsSummary(t *testing.T) {
	server := fakeAPI(t)
	out, err := runAdmin(t, testConfig(server.URL), "dashboard")
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	for _, want := range []string{"Total leads", "12", "25.0%", "₹3,60,000"} {
		if !strings.Contains(out, want) {
			t.Errorf("dashboard output missing %q:\n%s", want, out)
		}
	}
}

func TestRunRejectsBadInvocations(t *testing.T) {
	cfg := testConfig("http://localhost:5000")
	cases := map[string][]string{
		"no command":      nil,
		"unknown command": {"bookings"},
		"unknown backend": {"-backend", "mongo", "dashboard"},
		"leads no sub":    {"leads"},
		"quotes unknown":  {"quotes", "send"},
		"generate no id":  {"quotes", "generate"},
		"bad date":        {"leads", "create", "-date", "29/05/2026"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := runAdmin(t, cfg, args...); err == nil {
				t.Fatalf("expected error for %v", args)
			}
		})
	}
}

func TestDBBackendRequiresDatabaseURL(t *testing.T) {
	_, err := runAdmin(t, testConfig("http://localhost:5000"), "-backend", "db", "leads", "history", "-id", "l-1")
	if err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("expected DATABASE_URL error, got %v", err)
	}
}
