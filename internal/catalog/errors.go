package catalog

import "github.com/wolfman30/sports-travel-platform/internal/apperr"

var (
	// ErrEventNotFound is returned when an event id does not resolve.
	ErrEventNotFound = apperr.NotFound("event")

	// ErrPackageNotFound is returned when a package id does not resolve.
	ErrPackageNotFound = apperr.NotFound("package")

	// ErrInvalidTier is returned for a tier outside Premium/Standard/Basic/Economy.
	ErrInvalidTier = apperr.Validation("tier", "must be one of Premium, Standard, Basic, Economy")

	// ErrTierTaken is returned when the event already has a package of that tier.
	ErrTierTaken = apperr.Conflict("event already has a package of this tier")

	// ErrEventFull is returned when the event already offers all four tiers.
	ErrEventFull = apperr.Conflict("event already has the maximum of 4 packages")

	// ErrPackageEventMismatch is returned when a package does not belong to the given event.
	ErrPackageEventMismatch = apperr.Validation("packageId", "package does not belong to the selected event")

	// ErrInvalidBasePrice is returned for non-positive package prices.
	ErrInvalidBasePrice = apperr.Validation("basePrice", "must be greater than 0")
)
