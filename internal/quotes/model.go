package quotes

import (
	"strings"
	"time"

	"github.com/wolfman30/sports-travel-platform/internal/money"
)

// Status is a quote's stage.
type Status string

const (
	StatusDraft    Status = "Draft"
	StatusSent     Status = "Sent"
	StatusAccepted Status = "Accepted"
	StatusRejected Status = "Rejected"
	StatusExpired  Status = "Expired"
)

var statusOrder = []Status{StatusDraft, StatusSent, StatusAccepted, StatusRejected, StatusExpired}

func Statuses() []Status {
	out := make([]Status, len(statusOrder))
	copy(out, statusOrder)
	return out
}

// ParseStatus matches a status label case-insensitively.
func ParseStatus(s string) (Status, error) {
	trimmed := strings.TrimSpace(s)
	for _, st := range statusOrder {
		if strings.EqualFold(trimmed, string(st)) {
			return st, nil
		}
	}
	return "", ErrInvalidStatus
}

func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

// IsTerminal reports whether the customer has answered the quote.
func (s Status) IsTerminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// Quote is a priced, time-bounded offer generated from a lead.
type Quote struct {
	ID                string       `json:"_id"`
	LeadID            string       `json:"leadId"`
	EventID           string       `json:"eventId"`
	PackageID         string       `json:"packageId"`
	NumberOfTravelers int          `json:"numberOfTravelers"`
	BasePrice         money.Amount `json:"basePrice"`
	Adjustments       Adjustments  `json:"adjustments"`
	FinalPrice        money.Amount `json:"finalPrice"`
	TravelDate        time.Time    `json:"travelDate"`
	ValidUntil        time.Time    `json:"validUntil"`
	Status            Status       `json:"status"`
	Notes             string       `json:"notes,omitempty"`
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt"`

	// Expired is derived at read time from ValidUntil and Status.
	Expired bool `json:"isExpired"`
}

// IsExpired reports whether the quote is past its validity day and still
// open. Accepted and rejected quotes never expire; a stored Expired status
// always counts.
func (q *Quote) IsExpired(now time.Time) bool {
	if q.Status == StatusExpired {
		return true
	}
	if q.Status.IsTerminal() || q.ValidUntil.IsZero() {
		return false
	}
	return dateOnly(now).After(dateOnly(q.ValidUntil))
}

// EffectiveStatus is the status to display and filter by.
func (q *Quote) EffectiveStatus(now time.Time) Status {
	if q.IsExpired(now) {
		return StatusExpired
	}
	return q.Status
}

// Breakdown recomputes the price explanation from the stored inputs.
func (q *Quote) Breakdown() PriceBreakdown {
	return Breakdown(q.BasePrice, q.NumberOfTravelers, q.Adjustments)
}

// Recompute refreshes FinalPrice from the stored inputs.
func (q *Quote) Recompute() {
	q.FinalPrice = ComputeFinalPrice(q.BasePrice, q.NumberOfTravelers, q.Adjustments)
}

func (q *Quote) clone() *Quote {
	cp := *q
	cp.Adjustments = q.Adjustments.Clone()
	return &cp
}

// GenerateRequest asks for a quote for a lead. ValidUntil defaults to the
// configured validity window.
type GenerateRequest struct {
	LeadID     string     `json:"leadId" validate:"required"`
	ValidUntil *time.Time `json:"validUntil,omitempty"`
	Notes      string     `json:"notes,omitempty"`
}

// UpdateQuoteRequest edits the mutable parts of a quote. Nil fields are left
// unchanged; Adjustments replaces the whole set.
type UpdateQuoteRequest struct {
	Status      *Status      `json:"status,omitempty"`
	ValidUntil  *time.Time   `json:"validUntil,omitempty"`
	Notes       *string      `json:"notes,omitempty"`
	Adjustments *Adjustments `json:"adjustments,omitempty"`
}

// ListQuotesFilter narrows quote listings. Status matches the effective
// status, so Expired includes quotes that lapsed without being updated.
type ListQuotesFilter struct {
	Status      Status
	LeadID      string
	EventID     string
	ExpiredOnly bool
	Page        int
	Limit       int
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Normalize fills paging defaults.
func (f ListQuotesFilter) Normalize() ListQuotesFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = defaultPageSize
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
	return f
}

// matchesRefs applies the lead and event parts of the filter.
func (f ListQuotesFilter) matchesRefs(q *Quote) bool {
	if f.LeadID != "" && q.LeadID != f.LeadID {
		return false
	}
	if f.EventID != "" && q.EventID != f.EventID {
		return false
	}
	return true
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
