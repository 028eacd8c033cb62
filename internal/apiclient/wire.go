package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wolfman30/sports-travel-platform/internal/catalog"
	"github.com/wolfman30/sports-travel-platform/internal/leads"
	"github.com/wolfman30/sports-travel-platform/internal/money"
	"github.com/wolfman30/sports-travel-platform/internal/quotes"
)

// ref is a reference the API returns either as an id or as the populated
// document.
type ref struct {
	ID   string
	Name string
}

func (r *ref) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*r = ref{}
		return nil
	}
	if b[0] == '"' {
		return json.Unmarshal(b, &r.ID)
	}
	var doc struct {
		ID   string `json:"_id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("apiclient: decode reference: %w", err)
	}
	r.ID, r.Name = doc.ID, doc.Name
	return nil
}

type pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Limit int `json:"limit"`
}

type remotePackage struct {
	ID           string       `json:"_id"`
	EventID      ref          `json:"eventId"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Tier         catalog.Tier `json:"tier"`
	BasePrice    money.Amount `json:"basePrice"`
	MaxTravelers int          `json:"maxTravelers"`
	Features     []string     `json:"features"`
}

func (p remotePackage) toPackage() *catalog.Package {
	return &catalog.Package{
		ID:           p.ID,
		EventID:      p.EventID.ID,
		Name:         p.Name,
		Description:  p.Description,
		Tier:         p.Tier,
		BasePrice:    p.BasePrice,
		MaxTravelers: p.MaxTravelers,
		Features:     p.Features,
	}
}

type remoteLead struct {
	ID                string       `json:"_id"`
	Name              string       `json:"name"`
	Email             string       `json:"email"`
	Phone             string       `json:"phone"`
	EventID           ref          `json:"eventId"`
	PackageID         ref          `json:"packageId"`
	NumberOfTravelers int          `json:"numberOfTravelers"`
	TravelDate        time.Time    `json:"travelDate"`
	Status            leads.Status `json:"status"`
	Notes             string       `json:"notes"`
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt"`
}

func (l remoteLead) toLead() *leads.Lead {
	return &leads.Lead{
		ID:                l.ID,
		Name:              l.Name,
		Email:             l.Email,
		Phone:             l.Phone,
		EventID:           l.EventID.ID,
		PackageID:         l.PackageID.ID,
		NumberOfTravelers: l.NumberOfTravelers,
		TravelDate:        l.TravelDate,
		Status:            l.Status,
		Notes:             l.Notes,
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
	}
}

type remoteHistoryEntry struct {
	ID         string       `json:"_id"`
	LeadID     ref          `json:"leadId"`
	FromStatus leads.Status `json:"fromStatus"`
	ToStatus   leads.Status `json:"toStatus"`
	Notes      string       `json:"notes"`
	CreatedAt  time.Time    `json:"createdAt"`
}

func (h remoteHistoryEntry) toEntry() leads.StatusHistoryEntry {
	return leads.StatusHistoryEntry{
		ID:         h.ID,
		LeadID:     h.LeadID.ID,
		FromStatus: h.FromStatus,
		ToStatus:   h.ToStatus,
		Notes:      h.Notes,
		CreatedAt:  h.CreatedAt,
	}
}

type remoteQuote struct {
	ID                string             `json:"_id"`
	LeadID            ref                `json:"leadId"`
	EventID           ref                `json:"eventId"`
	PackageID         ref                `json:"packageId"`
	NumberOfTravelers int                `json:"numberOfTravelers"`
	BasePrice         money.Amount       `json:"basePrice"`
	Adjustments       quotes.Adjustments `json:"adjustments"`
	FinalPrice        money.Amount       `json:"finalPrice"`
	TravelDate        time.Time          `json:"travelDate"`
	ValidUntil        time.Time          `json:"validUntil"`
	Status            quotes.Status      `json:"status"`
	Notes             string             `json:"notes"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

func (q remoteQuote) toQuote() *quotes.Quote {
	adj := q.Adjustments
	if adj.Len() == 0 {
		adj = quotes.NewAdjustments()
	}
	return &quotes.Quote{
		ID:                q.ID,
		LeadID:            q.LeadID.ID,
		EventID:           q.EventID.ID,
		PackageID:         q.PackageID.ID,
		NumberOfTravelers: q.NumberOfTravelers,
		BasePrice:         q.BasePrice,
		Adjustments:       adj,
		FinalPrice:        q.FinalPrice,
		TravelDate:        q.TravelDate,
		ValidUntil:        q.ValidUntil,
		Status:            q.Status,
		Notes:             q.Notes,
		CreatedAt:         q.CreatedAt,
		UpdatedAt:         q.UpdatedAt,
	}
}

func toLeads(in []remoteLead) []*leads.Lead {
	out := make([]*leads.Lead, 0, len(in))
	for _, l := range in {
		out = append(out, l.toLead())
	}
	return out
}

func toQuotes(in []remoteQuote) []*quotes.Quote {
	out := make([]*quotes.Quote, 0, len(in))
	for _, q := range in {
		out = append(out, q.toQuote())
	}
	return out
}
