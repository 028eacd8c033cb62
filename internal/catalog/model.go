package catalog

import (
	"strings"
	"time"

	"github.com/wolfman30/sports-travel-platform/internal/money"
)

// Tier is one of the four fixed package grades an event can offer.
type Tier string

const (
	TierPremium  Tier = "Premium"
	TierStandard Tier = "Standard"
	TierBasic    Tier = "Basic"
	TierEconomy  Tier = "Economy"
)

// MaxPackagesPerEvent follows from one package per tier.
const MaxPackagesPerEvent = 4

var tierOrder = []Tier{TierPremium, TierStandard, TierBasic, TierEconomy}

// Tiers returns the tiers in display order.
func Tiers() []Tier {
	out := make([]Tier, len(tierOrder))
	copy(out, tierOrder)
	return out
}

// ParseTier matches a tier name case-insensitively.
func ParseTier(s string) (Tier, error) {
	for _, t := range tierOrder {
		if strings.EqualFold(strings.TrimSpace(s), string(t)) {
			return t, nil
		}
	}
	return "", ErrInvalidTier
}

func (t Tier) Valid() bool {
	_, err := ParseTier(string(t))
	return err == nil
}

// Event is a sporting event packages are sold for.
type Event struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	Category    string    `json:"category"`
	Featured    bool      `json:"featured"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image,omitempty"`
}

// Active reports whether the event has not finished yet.
func (e Event) Active(now time.Time) bool {
	end := e.EndDate
	if end.IsZero() {
		end = e.StartDate
	}
	return !end.IsZero() && !end.Before(now)
}

// Package is a priced travel offer attached to exactly one event.
type Package struct {
	ID           string       `json:"_id"`
	EventID      string       `json:"eventId"`
	Name         string       `json:"name"`
	Description  string       `json:"description,omitempty"`
	Tier         Tier         `json:"tier"`
	BasePrice    money.Amount `json:"basePrice"`
	MaxTravelers int          `json:"maxTravelers"`
	Features     []string     `json:"features"`
}

// EventFilter narrows event listings.
type EventFilter struct {
	Category string
	Search   string
}

// PackageFilter narrows package listings.
type PackageFilter struct {
	EventID string
	Tier    Tier
	Search  string
}

// Matches applies the filter in memory.
func (f PackageFilter) Matches(p Package) bool {
	if f.EventID != "" && p.EventID != f.EventID {
		return false
	}
	if f.Tier != "" && p.Tier != f.Tier {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Description), q) {
			return false
		}
	}
	return true
}

// Matches applies the filter in memory.
func (f EventFilter) Matches(e Event) bool {
	if f.Category != "" && !strings.EqualFold(e.Category, f.Category) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(e.Name), q) && !strings.Contains(strings.ToLower(e.Location), q) {
			return false
		}
	}
	return true
}

// PackageInput is the admin form payload for creating or editing a package.
type PackageInput struct {
	EventID      string       `json:"eventId" validate:"required"`
	Name         string       `json:"name" validate:"required,min=2"`
	Description  string       `json:"description" validate:"required"`
	Tier         Tier         `json:"tier" validate:"required"`
	BasePrice    money.Amount `json:"basePrice"`
	MaxTravelers int          `json:"maxTravelers" validate:"gte=1"`
	Features     []string     `json:"features"`
}

// EventInput is the admin form payload for creating or editing an event.
type EventInput struct {
	Name        string    `json:"name" validate:"required,min=2"`
	Location    string    `json:"location" validate:"required"`
	StartDate   time.Time `json:"startDate" validate:"required"`
	EndDate     time.Time `json:"endDate"`
	Category    string    `json:"category" validate:"required"`
	Featured    bool      `json:"featured"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
}
