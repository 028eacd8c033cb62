package quotes

import "github.com/wolfman30/sports-travel-platform/internal/apperr"

var (
	// ErrQuoteNotFound is returned when a quote id does not resolve.
	ErrQuoteNotFound = apperr.NotFound("quote")

	// ErrInvalidStatus is returned for a status outside Draft/Sent/Accepted/Rejected/Expired.
	ErrInvalidStatus = apperr.InvalidStatus("status must be one of Draft, Sent, Accepted, Rejected, Expired")

	// ErrQuoteClosed is returned when editing an accepted or rejected quote.
	ErrQuoteClosed = apperr.InvalidStatus("accepted or rejected quotes cannot be edited")

	// ErrLeadMissingPackage is returned when generating a quote for a lead without an event or package.
	ErrLeadMissingPackage = apperr.MissingPrerequisite("lead has no event or package selected")

	// ErrValidUntilPast is returned when validUntil is before today.
	ErrValidUntilPast = apperr.InvalidDate("validUntil", "must not be before today")

	// ErrInvalidTravelers is returned when a lead carries no travellers to price.
	ErrInvalidTravelers = apperr.MissingPrerequisite("lead has no travellers to price")
)
