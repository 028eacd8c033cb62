package catalog

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/sports-travel-platform/internal/apperr"
	"github.com/wolfman30/sports-travel-platform/internal/validation"
	"github.com/wolfman30/sports-travel-platform/pkg/logging"
)

var catalogTracer = otel.Tracer("sportstravel.internal.catalog")

// Service applies the catalog rules in front of a Repository.
type Service struct {
	repo   Repository
	logger *logging.Logger
}

// NewService constructs a catalog service.
func NewService(repo Repository, logger *logging.Logger) *Service {
	if repo == nil {
		panic("catalog: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, logger: logger}
}

func (s *Service) GetEvent(ctx context.Context, id string) (*Event, error) {
	return s.repo.GetEvent(ctx, id)
}

func (s *Service) ListEvents(ctx context.Context, filter EventFilter) ([]*Event, error) {
	return s.repo.ListEvents(ctx, filter)
}

func (s *Service) GetPackage(ctx context.Context, id string) (*Package, error) {
	return s.repo.GetPackage(ctx, id)
}

func (s *Service) ListPackages(ctx context.Context, filter PackageFilter) ([]*Package, error) {
	return s.repo.ListPackages(ctx, filter)
}

// CreateEvent validates and stores a new event.
func (s *Service) CreateEvent(ctx context.Context, in EventInput) (*Event, error) {
	if err := validateEvent(in); err != nil {
		return nil, err
	}
	e, err := s.repo.CreateEvent(ctx, in)
	if err != nil {
		return nil, apperr.Wrap("catalog: create event", err)
	}
	s.logger.Info("event created", "event_id", e.ID, "name", e.Name)
	return e, nil
}

// UpdateEvent validates and replaces an event.
func (s *Service) UpdateEvent(ctx context.Context, id string, in EventInput) (*Event, error) {
	if err := validateEvent(in); err != nil {
		return nil, err
	}
	return s.repo.UpdateEvent(ctx, id, in)
}

// DeleteEvent removes an event and, at the storage layer, its packages.
func (s *Service) DeleteEvent(ctx context.Context, id string) error {
	if err := s.repo.DeleteEvent(ctx, id); err != nil {
		return err
	}
	s.logger.Info("event deleted", "event_id", id)
	return nil
}

// CreatePackage enforces the one-package-per-tier rule before anything is persisted.
func (s *Service) CreatePackage(ctx context.Context, in PackageInput) (*Package, error) {
	ctx, span := catalogTracer.Start(ctx, "catalog.create_package")
	defer span.End()
	span.SetAttributes(
		attribute.String("sportstravel.event_id", in.EventID),
		attribute.String("sportstravel.tier", string(in.Tier)),
	)

	if err := s.checkPackage(ctx, "", in); err != nil {
		span.RecordError(err)
		return nil, err
	}
	p, err := s.repo.CreatePackage(ctx, in)
	if err != nil {
		span.RecordError(err)
		return nil, apperr.Wrap("catalog: create package", err)
	}
	s.logger.Info("package created", "package_id", p.ID, "event_id", p.EventID, "tier", p.Tier)
	return p, nil
}

// UpdatePackage re-checks placement, since both event and tier are editable.
func (s *Service) UpdatePackage(ctx context.Context, id string, in PackageInput) (*Package, error) {
	if _, err := s.repo.GetPackage(ctx, id); err != nil {
		return nil, err
	}
	if err := s.checkPackage(ctx, id, in); err != nil {
		return nil, err
	}
	return s.repo.UpdatePackage(ctx, id, in)
}

func (s *Service) DeletePackage(ctx context.Context, id string) error {
	return s.repo.DeletePackage(ctx, id)
}

// AvailableTiers lists tiers an event can still take.
func (s *Service) AvailableTiers(ctx context.Context, eventID string) ([]Tier, error) {
	existing, err := s.repo.ListPackages(ctx, PackageFilter{EventID: eventID})
	if err != nil {
		return nil, err
	}
	return AvailableTiers(deref(existing), eventID), nil
}

// ResolvePackageForEvent returns packageID after checking it belongs to eventID.
func (s *Service) ResolvePackageForEvent(ctx context.Context, eventID, packageID string) (*Package, error) {
	if strings.TrimSpace(eventID) == "" {
		return nil, apperr.Validation("eventId", "is required")
	}
	if strings.TrimSpace(packageID) == "" {
		return nil, apperr.Validation("packageId", "is required")
	}
	if _, err := s.repo.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	p, err := s.repo.GetPackage(ctx, packageID)
	if err != nil {
		return nil, err
	}
	if p.EventID != eventID {
		return nil, ErrPackageEventMismatch
	}
	return p, nil
}

func (s *Service) checkPackage(ctx context.Context, id string, in PackageInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	if !in.BasePrice.IsPositive() {
		return ErrInvalidBasePrice
	}
	if _, err := s.repo.GetEvent(ctx, in.EventID); err != nil {
		return err
	}
	existing, err := s.repo.ListPackages(ctx, PackageFilter{EventID: in.EventID})
	if err != nil {
		return apperr.Wrap("catalog: list packages", err)
	}
	candidate := Package{ID: id, EventID: in.EventID, Tier: in.Tier}
	if err := ValidatePlacement(deref(existing), candidate); err != nil {
		s.logger.Warn("package placement rejected", "event_id", in.EventID, "tier", in.Tier, "error", err)
		return err
	}
	return nil
}

func validateEvent(in EventInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	if !in.EndDate.IsZero() && in.EndDate.Before(in.StartDate) {
		return apperr.InvalidDate("endDate", "must not be before startDate")
	}
	return nil
}

func deref(pkgs []*Package) []Package {
	out := make([]Package, 0, len(pkgs))
	for _, p := range pkgs {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out
}
