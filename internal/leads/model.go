package leads

import (
	"strings"
	"time"
)

// Status is a lead's position in the sales pipeline.
type Status string

const (
	StatusNew        Status = "New"
	StatusContacted  Status = "Contacted"
	StatusQuoteSent  Status = "Quote Sent"
	StatusInterested Status = "Interested"
	StatusClosedWon  Status = "Closed Won"
	StatusClosedLost Status = "Closed Lost"
)

var statusOrder = []Status{
	StatusNew,
	StatusContacted,
	StatusQuoteSent,
	StatusInterested,
	StatusClosedWon,
	StatusClosedLost,
}

// Statuses returns every status in pipeline order.
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

// Rank is the advisory pipeline position used for sorting and badges.
// Unknown statuses sort last.
func (s Status) Rank() int {
	for i, st := range statusOrder {
		if st == s {
			return i
		}
	}
	return len(statusOrder)
}

// IsClosed reports whether the lead has been won or lost.
func (s Status) IsClosed() bool {
	return s == StatusClosedWon || s == StatusClosedLost
}

// Lead is a prospective customer's inquiry tied to an event and package.
type Lead struct {
	ID                string    `json:"_id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone"`
	EventID           string    `json:"eventId"`
	PackageID         string    `json:"packageId"`
	NumberOfTravelers int       `json:"numberOfTravelers"`
	TravelDate        time.Time `json:"travelDate"`
	Status            Status    `json:"status"`
	Notes             string    `json:"notes,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// StatusHistoryEntry records one status transition of a lead.
type StatusHistoryEntry struct {
	ID         string    `json:"_id"`
	LeadID     string    `json:"leadId"`
	FromStatus Status    `json:"fromStatus"`
	ToStatus   Status    `json:"toStatus"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CreateLeadRequest is the payload for a new lead.
type CreateLeadRequest struct {
	Name              string    `json:"name" validate:"required,min=2"`
	Email             string    `json:"email" validate:"required,email"`
	Phone             string    `json:"phone" validate:"required,min=6"`
	EventID           string    `json:"eventId" validate:"required"`
	PackageID         string    `json:"packageId" validate:"required"`
	NumberOfTravelers int       `json:"numberOfTravelers" validate:"gte=1"`
	TravelDate        time.Time `json:"travelDate" validate:"required"`
	Notes             string    `json:"notes,omitempty"`
}

// Patch carries editable lead fields. Nil fields are left unchanged.
type Patch struct {
	Name              *string    `json:"name,omitempty" validate:"omitempty,min=2"`
	Email             *string    `json:"email,omitempty" validate:"omitempty,email"`
	Phone             *string    `json:"phone,omitempty" validate:"omitempty,min=6"`
	EventID           *string    `json:"eventId,omitempty"`
	PackageID         *string    `json:"packageId,omitempty"`
	NumberOfTravelers *int       `json:"numberOfTravelers,omitempty" validate:"omitempty,gte=1"`
	TravelDate        *time.Time `json:"travelDate,omitempty"`
	Notes             *string    `json:"notes,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil && p.EventID == nil &&
		p.PackageID == nil && p.NumberOfTravelers == nil && p.TravelDate == nil && p.Notes == nil
}

// Apply copies the set fields onto lead.
func (p Patch) Apply(lead *Lead) {
	if p.Name != nil {
		lead.Name = *p.Name
	}
	if p.Email != nil {
		lead.Email = *p.Email
	}
	if p.Phone != nil {
		lead.Phone = *p.Phone
	}
	if p.EventID != nil {
		lead.EventID = *p.EventID
	}
	if p.PackageID != nil {
		lead.PackageID = *p.PackageID
	}
	if p.NumberOfTravelers != nil {
		lead.NumberOfTravelers = *p.NumberOfTravelers
	}
	if p.TravelDate != nil {
		lead.TravelDate = *p.TravelDate
	}
	if p.Notes != nil {
		lead.Notes = *p.Notes
	}
}

// UpdateLeadRequest is the admin edit payload. A Status different from the
// stored one is recorded in the lead's history together with StatusNotes.
type UpdateLeadRequest struct {
	Patch
	Status      *Status `json:"status,omitempty"`
	StatusNotes string  `json:"statusNotes,omitempty"`
}

// StatusChange asks a repository to move a lead to To and append a history
// entry in the same write. From is filled by the repository from the stored
// status.
type StatusChange struct {
	To    Status
	Notes string
	At    time.Time
}

// ListLeadsFilter narrows lead listings.
type ListLeadsFilter struct {
	Status  Status
	EventID string
	Search  string
	Page    int
	Limit   int
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Normalize fills paging defaults.
func (f ListLeadsFilter) Normalize() ListLeadsFilter {
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

// Offset is the zero-based index of the first row on the page.
func (f ListLeadsFilter) Offset() int {
	n := f.Normalize()
	return (n.Page - 1) * n.Limit
}

// Matches applies the non-paging parts of the filter in memory.
func (f ListLeadsFilter) Matches(l Lead) bool {
	if f.Status != "" && l.Status != f.Status {
		return false
	}
	if f.EventID != "" && l.EventID != f.EventID {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(l.Name), q) && !strings.Contains(strings.ToLower(l.Email), q) {
			return false
		}
	}
	return true
}

// dateOnly truncates t to its calendar day in UTC.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
