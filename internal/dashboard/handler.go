package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/wolfman30/sports-travel-platform/pkg/logging"
)

// Overview is the JSON body served to the admin dashboard.
type Overview struct {
	Stats   *Stats   `json:"stats"`
	Revenue *Revenue `json:"revenue"`
}

// Handler serves dashboard aggregates as JSON.
type Handler struct {
	source Source
	logger *logging.Logger
}

// NewHandler creates a dashboard handler. A nil source answers 503.
func NewHandler(source Source, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{source: source, logger: logger}
}

// GetOverview handles GET /admin/dashboard.
func (h *Handler) GetOverview(w http.ResponseWriter, r *http.Request) {
	if h.source == nil {
		http.Error(w, `{"error":"dashboard disabled (no data source configured)"}`, http.StatusServiceUnavailable)
		return
	}
	stats, err := h.source.Stats(r.Context())
	if err != nil {
		h.logger.Error("failed to load dashboard stats", "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	revenue, err := h.source.Revenue(r.Context())
	if err != nil {
		h.logger.Error("failed to load dashboard revenue", "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": Overview{Stats: stats, Revenue: revenue}})
}
