// Package dashboard aggregates the back-office overview: lead pipeline counts,
// catalog size and quote revenue.
package dashboard

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/wolfman30/sports-travel-platform/internal/catalog"
	"github.com/wolfman30/sports-travel-platform/internal/leads"
	"github.com/wolfman30/sports-travel-platform/internal/money"
	"github.com/wolfman30/sports-travel-platform/internal/quotes"
)

// trendWindow is the period compared by LeadsTrend.
const trendWindow = 30 * 24 * time.Hour

// StatusBreakdown counts leads per pipeline status.
type StatusBreakdown struct {
	New        int `json:"new"`
	Contacted  int `json:"contacted"`
	QuoteSent  int `json:"quoteSent"`
	Interested int `json:"interested"`
	ClosedWon  int `json:"closedWon"`
	ClosedLost int `json:"closedLost"`
}

// Add counts one lead in status s. Unknown statuses are ignored.
func (b *StatusBreakdown) Add(s leads.Status, n int) {
	switch s {
	case leads.StatusNew:
		b.New += n
	case leads.StatusContacted:
		b.Contacted += n
	case leads.StatusQuoteSent:
		b.QuoteSent += n
	case leads.StatusInterested:
		b.Interested += n
	case leads.StatusClosedWon:
		b.ClosedWon += n
	case leads.StatusClosedLost:
		b.ClosedLost += n
	}
}

// Stats is the headline card row of the dashboard.
type Stats struct {
	TotalLeads      int             `json:"totalLeads"`
	ActiveEvents    int             `json:"activeEvents"`
	TotalPackages   int             `json:"totalPackages"`
	ConversionRate  float64         `json:"conversionRate"`
	LeadsTrend      float64         `json:"leadsTrend"`
	StatusBreakdown StatusBreakdown `json:"statusBreakdown"`
}

// Revenue summarises quote value. Pending covers draft and sent quotes that
// have not lapsed.
type Revenue struct {
	TotalRevenue        money.Amount `json:"totalRevenue"`
	PendingRevenue      money.Amount `json:"pendingRevenue"`
	AcceptedQuotesCount int          `json:"acceptedQuotesCount"`
	PendingQuotesCount  int          `json:"pendingQuotesCount"`
	AverageQuoteValue   money.Amount `json:"averageQuoteValue"`
}

// Source serves the dashboard from storage or from the remote API.
type Source interface {
	Stats(ctx context.Context) (*Stats, error)
	Revenue(ctx context.Context) (*Revenue, error)
}

// Compute derives both summaries from full listings.
func Compute(ls []*leads.Lead, qs []*quotes.Quote, events []*catalog.Event, packages []*catalog.Package, now time.Time) (Stats, Revenue) {
	return ComputeStats(ls, events, packages, now), ComputeRevenue(qs, now)
}

// ComputeStats counts leads per status, active events and packages.
func ComputeStats(ls []*leads.Lead, events []*catalog.Event, packages []*catalog.Package, now time.Time) Stats {
	s := Stats{TotalLeads: len(ls), TotalPackages: len(packages)}
	var current, previous int
	for _, l := range ls {
		s.StatusBreakdown.Add(l.Status, 1)
		switch age := now.Sub(l.CreatedAt); {
		case age >= 0 && age < trendWindow:
			current++
		case age >= trendWindow && age < 2*trendWindow:
			previous++
		}
	}
	for _, e := range events {
		if e.Active(now) {
			s.ActiveEvents++
		}
	}
	s.ConversionRate = ConversionRate(s.StatusBreakdown.ClosedWon, s.TotalLeads)
	s.LeadsTrend = Trend(current, previous)
	return s
}

// ComputeRevenue sums accepted and pending quote value at now.
func ComputeRevenue(qs []*quotes.Quote, now time.Time) Revenue {
	var (
		r   Revenue
		all = money.Zero
	)
	for _, q := range qs {
		all = all.Add(q.FinalPrice)
		switch q.EffectiveStatus(now) {
		case quotes.StatusAccepted:
			r.TotalRevenue = r.TotalRevenue.Add(q.FinalPrice)
			r.AcceptedQuotesCount++
		case quotes.StatusDraft, quotes.StatusSent:
			r.PendingRevenue = r.PendingRevenue.Add(q.FinalPrice)
			r.PendingQuotesCount++
		}
	}
	if len(qs) > 0 {
		r.AverageQuoteValue = money.AmountFromDecimal(all.Decimal().DivRound(money.NewAmount(int64(len(qs))).Decimal(), 2))
	}
	return r
}

// ConversionRate is the share of leads closed as won, in percent with one decimal.
func ConversionRate(won, total int) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(won) / float64(total) * 100)
}

// Trend is the percentage change from previous to current, one decimal.
func Trend(current, previous int) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return round1(float64(current-previous) / float64(previous) * 100)
}

// RecentLeads returns up to limit leads, newest first.
func RecentLeads(ls []*leads.Lead, limit int) []*leads.Lead {
	out := append([]*leads.Lead(nil), ls...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
