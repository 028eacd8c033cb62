package quotes

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/sports-travel-platform/internal/apperr"
	"github.com/wolfman30/sports-travel-platform/internal/catalog"
	"github.com/wolfman30/sports-travel-platform/internal/leads"
	"github.com/wolfman30/sports-travel-platform/internal/observability/metrics"
	"github.com/wolfman30/sports-travel-platform/internal/validation"
	"github.com/wolfman30/sports-travel-platform/pkg/logging"
)

var quotesTracer = otel.Tracer("sportstravel.internal.quotes")

// DefaultValidityDays is how long a generated quote stays open when no
// validUntil is given.
const DefaultValidityDays = 30

// LeadSource resolves the lead a quote is generated from.
type LeadSource interface {
	Get(ctx context.Context, id string) (*leads.Lead, error)
}

// PackageSource resolves the package whose price a quote copies.
type PackageSource interface {
	GetPackage(ctx context.Context, id string) (*catalog.Package, error)
}

// Service generates and maintains quotes.
type Service struct {
	repo         Repository
	leads        LeadSource
	packages     PackageSource
	metrics      *metrics.CoreMetrics
	logger       *logging.Logger
	now          func() time.Time
	validityDays int
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

func WithMetrics(m *metrics.CoreMetrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithValidityDays sets the default validity window.
func WithValidityDays(days int) ServiceOption {
	return func(s *Service) {
		if days > 0 {
			s.validityDays = days
		}
	}
}

func NewService(repo Repository, leadSource LeadSource, packages PackageSource, logger *logging.Logger, opts ...ServiceOption) *Service {
	if repo == nil {
		panic("quotes: repository required")
	}
	if leadSource == nil || packages == nil {
		panic("quotes: lead and package sources required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{
		repo:         repo,
		leads:        leadSource,
		packages:     packages,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
		validityDays: DefaultValidityDays,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate prices a new Draft quote from a lead and its selected package.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*Quote, error) {
	ctx, span := quotesTracer.Start(ctx, "quotes.generate")
	defer span.End()
	span.SetAttributes(attribute.String("sportstravel.lead_id", req.LeadID))

	if err := validation.Struct(req); err != nil {
		span.RecordError(err)
		return nil, err
	}

	lead, err := s.leads.Get(ctx, req.LeadID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if strings.TrimSpace(lead.EventID) == "" || strings.TrimSpace(lead.PackageID) == "" {
		span.RecordError(ErrLeadMissingPackage)
		return nil, ErrLeadMissingPackage
	}
	if lead.NumberOfTravelers < 1 {
		span.RecordError(ErrInvalidTravelers)
		return nil, ErrInvalidTravelers
	}

	pkg, err := s.packages.GetPackage(ctx, lead.PackageID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if pkg.EventID != lead.EventID {
		span.RecordError(catalog.ErrPackageEventMismatch)
		return nil, catalog.ErrPackageEventMismatch
	}

	now := s.now()
	validUntil := dateOnly(now).AddDate(0, 0, s.validityDays)
	if req.ValidUntil != nil {
		if err := s.checkValidUntil(*req.ValidUntil); err != nil {
			span.RecordError(err)
			return nil, err
		}
		validUntil = *req.ValidUntil
	}

	q := &Quote{
		LeadID:            lead.ID,
		EventID:           lead.EventID,
		PackageID:         lead.PackageID,
		NumberOfTravelers: lead.NumberOfTravelers,
		BasePrice:         pkg.BasePrice,
		Adjustments:       NewAdjustments(),
		TravelDate:        lead.TravelDate,
		ValidUntil:        validUntil,
		Status:            StatusDraft,
		Notes:             strings.TrimSpace(req.Notes),
		CreatedAt:         now,
	}
	q.Recompute()

	created, err := s.repo.Create(ctx, q)
	if err != nil {
		span.RecordError(err)
		return nil, apperr.Wrap("quotes: generate", err)
	}
	s.metrics.ObserveQuoteGenerated()
	span.SetAttributes(attribute.String("sportstravel.quote_id", created.ID))
	s.logger.Info("quote generated",
		"quote_id", created.ID,
		"lead_id", created.LeadID,
		"final_price", created.FinalPrice.String(),
	)
	return s.decorate(created), nil
}

func (s *Service) Get(ctx context.Context, id string) (*Quote, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.decorate(q), nil
}

// List returns a page of quotes, newest first. Status filtering uses the
// effective status.
func (s *Service) List(ctx context.Context, filter ListQuotesFilter) ([]*Quote, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	f := filter.Normalize()
	all, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}

	now := s.now()
	matched := make([]*Quote, 0, len(all))
	for _, q := range all {
		if !f.matchesRefs(q) {
			continue
		}
		if f.Status != "" && q.EffectiveStatus(now) != f.Status {
			continue
		}
		if f.ExpiredOnly && !q.IsExpired(now) {
			continue
		}
		matched = append(matched, s.decorate(q))
	}

	start := (f.Page - 1) * f.Limit
	if start >= len(matched) {
		return []*Quote{}, nil
	}
	end := start + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

// Update edits status, validity, notes and adjustments, then recomputes
// the final price. Accepted and rejected quotes are read-only.
func (s *Service) Update(ctx context.Context, id string, req UpdateQuoteRequest) (*Quote, error) {
	ctx, span := quotesTracer.Start(ctx, "quotes.update")
	defer span.End()
	span.SetAttributes(attribute.String("sportstravel.quote_id", id))

	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if q.Status.IsTerminal() {
		span.RecordError(ErrQuoteClosed)
		return nil, ErrQuoteClosed
	}

	if req.Status != nil {
		st, err := ParseStatus(string(*req.Status))
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		q.Status = st
	}
	if req.ValidUntil != nil {
		if err := s.checkValidUntil(*req.ValidUntil); err != nil {
			span.RecordError(err)
			return nil, err
		}
		q.ValidUntil = *req.ValidUntil
	}
	if req.Notes != nil {
		q.Notes = strings.TrimSpace(*req.Notes)
	}
	if req.Adjustments != nil {
		q.Adjustments = req.Adjustments.Clone()
	}
	q.Recompute()

	updated, err := s.repo.Update(ctx, q)
	if err != nil {
		span.RecordError(err)
		return nil, apperr.Wrap("quotes: update", err)
	}
	s.metrics.ObserveQuoteUpdate(string(updated.Status))
	s.logger.Info("quote updated",
		"quote_id", updated.ID,
		"status", updated.Status,
		"final_price", updated.FinalPrice.String(),
	)
	return s.decorate(updated), nil
}

// Delete removes a quote. Deleting an accepted or rejected quote is allowed
// but logged as a warning.
func (s *Service) Delete(ctx context.Context, id string) error {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if q.Status.IsTerminal() {
		s.logger.Warn("deleting closed quote", "quote_id", id, "status", q.Status)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("quote deleted", "quote_id", id)
	return nil
}

// Expired lists up to one full page of lapsed quotes.
func (s *Service) Expired(ctx context.Context) ([]*Quote, error) {
	return s.List(ctx, ListQuotesFilter{ExpiredOnly: true, Limit: maxPageSize})
}

func (s *Service) checkValidUntil(t time.Time) error {
	if t.IsZero() {
		return apperr.Validation("validUntil", "is required")
	}
	if dateOnly(t).Before(dateOnly(s.now())) {
		return ErrValidUntilPast
	}
	return nil
}

func (s *Service) decorate(q *Quote) *Quote {
	q.Expired = q.IsExpired(s.now())
	return q
}
