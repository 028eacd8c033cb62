package leads

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/sports-travel-platform/internal/apperr"
	"github.com/wolfman30/sports-travel-platform/internal/catalog"
	"github.com/wolfman30/sports-travel-platform/internal/observability/metrics"
	"github.com/wolfman30/sports-travel-platform/internal/validation"
	"github.com/wolfman30/sports-travel-platform/pkg/logging"
)

var leadsTracer = otel.Tracer("sportstravel.internal.leads")

// PackageResolver confirms that a package belongs to an event.
type PackageResolver interface {
	ResolvePackageForEvent(ctx context.Context, eventID, packageID string) (*catalog.Package, error)
}

// Notifier is told about new leads. Failures never fail the write.
type Notifier interface {
	LeadCreated(ctx context.Context, lead *Lead) error
}

// Service owns the lead lifecycle: creation, edits, status transitions and
// the history trail they produce.
type Service struct {
	repo     Repository
	packages PackageResolver
	policy   TransitionPolicy
	notifier Notifier
	metrics  *metrics.CoreMetrics
	logger   *logging.Logger
	now      func() time.Time
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithPolicy replaces the default OpenPolicy.
func WithPolicy(p TransitionPolicy) ServiceOption {
	return func(s *Service) {
		if p != nil {
			s.policy = p
		}
	}
}

func WithNotifier(n Notifier) ServiceOption {
	return func(s *Service) { s.notifier = n }
}

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

// NewService wires a lead service. packages may be nil to skip the
// event/package consistency check.
func NewService(repo Repository, packages PackageResolver, logger *logging.Logger, opts ...ServiceOption) *Service {
	if repo == nil {
		panic("leads: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{
		repo:     repo,
		packages: packages,
		policy:   OpenPolicy{},
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates the request and stores a lead in status New.
func (s *Service) Create(ctx context.Context, req CreateLeadRequest) (*Lead, error) {
	ctx, span := leadsTracer.Start(ctx, "leads.create")
	defer span.End()
	span.SetAttributes(
		attribute.String("sportstravel.event_id", req.EventID),
		attribute.String("sportstravel.package_id", req.PackageID),
	)

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	if err := validation.Struct(req); err != nil {
		s.metrics.ObserveLeadCreated("invalid")
		span.RecordError(err)
		return nil, err
	}
	if !dateOnly(req.TravelDate).After(dateOnly(s.now())) {
		s.metrics.ObserveLeadCreated("invalid")
		span.RecordError(ErrTravelDateNotFuture)
		return nil, ErrTravelDateNotFuture
	}
	if err := s.checkPackage(ctx, req.EventID, req.PackageID); err != nil {
		s.metrics.ObserveLeadCreated("invalid")
		span.RecordError(err)
		return nil, err
	}

	lead, err := s.repo.Create(ctx, &Lead{
		Name:              req.Name,
		Email:             req.Email,
		Phone:             req.Phone,
		EventID:           req.EventID,
		PackageID:         req.PackageID,
		NumberOfTravelers: req.NumberOfTravelers,
		TravelDate:        req.TravelDate,
		Status:            StatusNew,
		Notes:             req.Notes,
	})
	if err != nil {
		s.metrics.ObserveLeadCreated("error")
		span.RecordError(err)
		return nil, apperr.Wrap("leads: create", err)
	}
	s.metrics.ObserveLeadCreated("created")
	span.SetAttributes(attribute.String("sportstravel.lead_id", lead.ID))
	s.logger.Info("lead created", "lead_id", lead.ID, "event_id", lead.EventID, "package_id", lead.PackageID)

	if s.notifier != nil {
		if err := s.notifier.LeadCreated(ctx, lead); err != nil {
			s.logger.Warn("lead notification failed", "lead_id", lead.ID, "error", err)
		}
	}
	return lead, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Lead, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListLeadsFilter) ([]*Lead, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.repo.List(ctx, filter.Normalize())
}

// Update applies an admin edit. When the status changes the transition is
// checked against the policy and recorded in history atomically with the edit.
func (s *Service) Update(ctx context.Context, id string, req UpdateLeadRequest) (*Lead, error) {
	ctx, span := leadsTracer.Start(ctx, "leads.update")
	defer span.End()
	span.SetAttributes(attribute.String("sportstravel.lead_id", id))

	if err := validation.Struct(req); err != nil {
		span.RecordError(err)
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var change *StatusChange
	if req.Status != nil {
		to, err := ParseStatus(string(*req.Status))
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		if err := s.policy.Allow(current.Status, to); err != nil {
			span.RecordError(err)
			return nil, err
		}
		if to != current.Status {
			change = &StatusChange{To: to, Notes: strings.TrimSpace(req.StatusNotes), At: s.now()}
		}
	}

	if req.EventID != nil || req.PackageID != nil {
		next := *current
		req.Patch.Apply(&next)
		if err := s.checkPackage(ctx, next.EventID, next.PackageID); err != nil {
			span.RecordError(err)
			return nil, err
		}
	}

	if change == nil && req.Patch.Empty() {
		return current, nil
	}

	updated, err := s.repo.Update(ctx, id, req.Patch, change)
	if err != nil {
		span.RecordError(err)
		return nil, apperr.Wrap("leads: update", err)
	}
	if change != nil {
		s.metrics.ObserveLeadTransition(string(current.Status), string(change.To))
		s.logger.Info("lead status changed",
			"lead_id", id,
			"from_status", current.Status,
			"to_status", change.To,
		)
	}
	return updated, nil
}

// ChangeStatus moves a lead to a new status with optional operator notes.
func (s *Service) ChangeStatus(ctx context.Context, id string, to Status, notes string) (*Lead, error) {
	return s.Update(ctx, id, UpdateLeadRequest{Status: &to, StatusNotes: notes})
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("lead deleted", "lead_id", id)
	return nil
}

// History returns the lead's transitions, most recent first.
func (s *Service) History(ctx context.Context, id string) ([]StatusHistoryEntry, error) {
	entries, err := s.repo.History(ctx, id)
	if err != nil {
		return nil, err
	}
	SortHistoryDesc(entries)
	return entries, nil
}

// Audit replays the lead's history against its current status.
func (s *Service) Audit(ctx context.Context, id string) error {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	entries, err := s.repo.History(ctx, id)
	if err != nil {
		return err
	}
	if err := VerifyHistoryChain(lead, entries); err != nil {
		s.logger.Error("lead history inconsistent", "lead_id", id, "error", err)
		return err
	}
	return nil
}

func (s *Service) checkPackage(ctx context.Context, eventID, packageID string) error {
	if s.packages == nil {
		return nil
	}
	if _, err := s.packages.ResolvePackageForEvent(ctx, eventID, packageID); err != nil {
		return err
	}
	return nil
}
