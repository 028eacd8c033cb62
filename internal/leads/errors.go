package leads

import "github.com/wolfman30/sports-travel-platform/internal/apperr"

var (
	// ErrLeadNotFound is returned when a lead is not found
	ErrLeadNotFound = apperr.NotFound("lead")

	// ErrInvalidStatus is returned for a status outside the pipeline enumeration
	ErrInvalidStatus = apperr.InvalidStatus("status must be one of New, Contacted, Quote Sent, Interested, Closed Won, Closed Lost")

	// ErrStatusLocked is returned by TerminalLockPolicy when a closed lead is moved
	ErrStatusLocked = apperr.InvalidStatus("closed leads cannot change status")

	// ErrTravelDateNotFuture is returned when a new lead's travel date is today or earlier
	ErrTravelDateNotFuture = apperr.Validation("travelDate", "must be after today")

	// ErrBrokenHistory is returned when a lead's history does not chain to its status
	ErrBrokenHistory = apperr.Consistency("lead status history does not match the lead")
)
