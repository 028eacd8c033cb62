// Package intake serves the public lead and contact forms of the marketing
// site and forwards each submission to the agency inbox.
package intake

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/sports-travel-platform/internal/notify"
	"github.com/wolfman30/sports-travel-platform/internal/observability/metrics"
	"github.com/wolfman30/sports-travel-platform/internal/validation"
	"github.com/wolfman30/sports-travel-platform/pkg/logging"
)

const maxFormBytes = 64 << 10

var tracer = otel.Tracer("sportstravel.internal.intake")

// Notifier delivers a validated inquiry.
type Notifier interface {
	Notify(ctx context.Context, in notify.Inquiry) error
}

// LeadForm is the body of POST /api/leads.
type LeadForm struct {
	Name          string `json:"name" validate:"required,min=2"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"required,min=6"`
	EventInterest string `json:"eventInterest"`
	Message       string `json:"message" validate:"omitempty,min=5"`
}

// ContactForm is the body of POST /api/contact.
type ContactForm struct {
	Name      string `json:"name" validate:"required,min=2"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,min=6"`
	EventType string `json:"eventType"`
	Message   string `json:"message" validate:"omitempty,min=5"`
}

// Response is the envelope both forms answer with.
type Response struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Error   map[string]string `json:"error,omitempty"`
}

// Handler handles the public form endpoints.
type Handler struct {
	notifier Notifier
	metrics  *metrics.CoreMetrics
	logger   *logging.Logger
}

// NewHandler creates a form handler. metrics may be nil.
func NewHandler(notifier Notifier, m *metrics.CoreMetrics, logger *logging.Logger) *Handler {
	if notifier == nil {
		panic("intake: notifier required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{notifier: notifier, metrics: m, logger: logger}
}

// SubmitLead handles POST /api/leads.
func (h *Handler) SubmitLead(w http.ResponseWriter, r *http.Request) {
	var form LeadForm
	if !h.decode(w, r, notify.FormLead, &form) {
		return
	}
	form.Name, form.Email, form.Phone = strings.TrimSpace(form.Name), strings.TrimSpace(form.Email), strings.TrimSpace(form.Phone)
	form.EventInterest = strings.TrimSpace(form.EventInterest)
	h.submit(w, r, &form, notify.Inquiry{
		Form:          notify.FormLead,
		Name:          form.Name,
		Email:         form.Email,
		Phone:         form.Phone,
		EventInterest: form.EventInterest,
		Message:       form.Message,
	}, "Lead received. We will contact you shortly.", "Failed to send lead email")
}

// SubmitContact handles POST /api/contact.
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var form ContactForm
	if !h.decode(w, r, notify.FormContact, &form) {
		return
	}
	form.Name, form.Email, form.Phone = strings.TrimSpace(form.Name), strings.TrimSpace(form.Email), strings.TrimSpace(form.Phone)
	form.EventType = strings.TrimSpace(form.EventType)
	h.submit(w, r, &form, notify.Inquiry{
		Form:          notify.FormContact,
		Name:          form.Name,
		Email:         form.Email,
		Phone:         form.Phone,
		EventInterest: form.EventType,
		Message:       form.Message,
	}, "Thanks! We received your message and will contact you shortly.", "Server error")
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, form notify.Form, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.Warn("intake: invalid request body", "form", form, "error", err)
		h.metrics.ObserveInquiry(string(form), "decode_error")
		writeJSON(w, http.StatusBadRequest, Response{Message: "Invalid request body"})
		return false
	}
	return true
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request, form any, in notify.Inquiry, okMsg, failMsg string) {
	ctx, span := tracer.Start(r.Context(), "intake.submit")
	defer span.End()
	span.SetAttributes(attribute.String("intake.form", string(in.Form)))

	if errs := validation.Fields(form); len(errs) > 0 {
		h.metrics.ObserveInquiry(string(in.Form), "validation_error")
		writeJSON(w, http.StatusBadRequest, Response{Error: validation.Map(errs)})
		return
	}

	if err := h.notifier.Notify(ctx, in); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "notify failed")
		h.metrics.ObserveInquiry(string(in.Form), "notify_error")
		if errors.Is(err, notify.ErrReceiverNotConfigured) {
			h.logger.Error("intake: email service not configured", "form", in.Form)
			writeJSON(w, http.StatusInternalServerError, Response{Message: "Email service not configured."})
			return
		}
		h.logger.Error("intake: forwarding inquiry failed", "form", in.Form, "error", err)
		writeJSON(w, http.StatusInternalServerError, Response{Message: failMsg})
		return
	}

	h.metrics.ObserveInquiry(string(in.Form), "success")
	h.logger.Info("intake: inquiry accepted", "form", in.Form, "interest", in.EventInterest)
	writeJSON(w, http.StatusOK, Response{Success: true, Message: okMsg})
}

// Health handles GET /health.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
