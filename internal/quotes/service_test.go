package quotes

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/sports-travel-platform/internal/apperr"
	"github.com/wolfman30/sports-travel-platform/internal/catalog"
	"github.com/wolfman30/sports-travel-platform/internal/leads"
	"github.com/wolfman30/sports-travel-platform/internal/money"
)

var today = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type stubLeads map[string]*leads.Lead

func (s stubLeads) Get(_ context.Context, id string) (*leads.Lead, error) {
	l, ok := s[id]
	if !ok {
		return nil, leads.ErrLeadNotFound
	}
	cp := *l
	return &cp, nil
}

type stubPackages map[string]*catalog.Package

func (s stubPackages) GetPackage(_ context.Context, id string) (*catalog.Package, error) {
	p, ok := s[id]
	if !ok {
		return nil, catalog.ErrPackageNotFound
	}
	cp := *p
	return &cp, nil
}

func newQuoteService(t *testing.T) (*Service, *time.Time) {
	t.Helper()
	now := today
	ls := stubLeads{
		"lead-1": {ID: "lead-1", EventID: "ev-1", PackageID: "pkg-1", NumberOfTravelers: 2, TravelDate: today.AddDate(0, 2, 0), Status: leads.StatusContacted},
		"lead-2": {ID: "lead-2", EventID: "ev-1", NumberOfTravelers: 1},
		"lead-3": {ID: "lead-3", EventID: "ev-2", PackageID: "pkg-1", NumberOfTravelers: 1},
	}
	ps := stubPackages{
		"pkg-1": {ID: "pkg-1", EventID: "ev-1", Tier: catalog.TierStandard, BasePrice: money.NewAmount(1000)},
	}
	svc := NewService(NewInMemoryRepository(), ls, ps, nil, WithClock(func() time.Time { return now }))
	return svc, &now
}

func TestGenerate(t *testing.T) {
	svc, _ := newQuoteService(t)
	q, err := svc.Generate(context.Background(), GenerateRequest{LeadID: "lead-1", Notes: " early bird "})
	require.NoError(t, err)

	assert.Equal(t, StatusDraft, q.Status)
	assert.Equal(t, "ev-1", q.EventID)
	assert.Equal(t, "pkg-1", q.PackageID)
	assert.Equal(t, 2, q.NumberOfTravelers)
	assert.True(t, q.BasePrice.Equal(money.NewAmount(1000)))
	assert.True(t, q.FinalPrice.Equal(money.NewAmount(2000)))
	assert.Equal(t, 0, q.Adjustments.Len())
	assert.Equal(t, time.Date(2026, 4, 9, 0, 0, 0, 0, time.UTC), q.ValidUntil)
	assert.Equal(t, "early bird", q.Notes)
	assert.False(t, q.Expired)
}

func TestGenerate_Errors(t *testing.T) {
	svc, _ := newQuoteService(t)
	ctx := context.Background()

	_, err := svc.Generate(ctx, GenerateRequest{LeadID: "missing"})
	assert.ErrorIs(t, err, leads.ErrLeadNotFound)

	_, err = svc.Generate(ctx, GenerateRequest{LeadID: "lead-2"})
	assert.ErrorIs(t, err, ErrLeadMissingPackage)
	assert.True(t, apperr.IsMissingPrerequisite(err))

	_, err = svc.Generate(ctx, GenerateRequest{LeadID: "lead-3"})
	assert.ErrorIs(t, err, catalog.ErrPackageEventMismatch)

	yesterday := today.AddDate(0, 0, -1)
	_, err = svc.Generate(ctx, GenerateRequest{LeadID: "lead-1", ValidUntil: &yesterday})
	assert.ErrorIs(t, err, ErrValidUntilPast)
	assert.True(t, apperr.IsInvalidDate(err))

	sameDay := today.Add(-6 * time.Hour)
	_, err = svc.Generate(ctx, GenerateRequest{LeadID: "lead-1", ValidUntil: &sameDay})
	assert.NoError(t, err)

	_, err = svc.Generate(ctx, GenerateRequest{})
	assert.True(t, apperr.IsValidation(err))
}

func TestUpdate_AdjustmentsRecomputePrice(t *testing.T) {
	svc, _ := newQuoteService(t)
	ctx := context.Background()
	q, err := svc.Generate(ctx, GenerateRequest{LeadID: "lead-1"})
	require.NoError(t, err)

	adj := NewAdjustments()
	adj.Set("discount", Adjustment{Percentage: money.NewAmount(-10)})
	sent := StatusSent
	updated, err := svc.Update(ctx, q.ID, UpdateQuoteRequest{Status: &sent, Adjustments: &adj})
	require.NoError(t, err)
	assert.True(t, updated.FinalPrice.Equal(money.NewAmount(1800)), "got %s", updated.FinalPrice)
	assert.Equal(t, StatusSent, updated.Status)

	big := NewAdjustments()
	big.Set("discount", Adjustment{Percentage: money.NewAmount(-10)})
	big.Set("voucher", Adjustment{Value: money.NewAmount(-5000)})
	updated, err = svc.Update(ctx, q.ID, UpdateQuoteRequest{Adjustments: &big})
	require.NoError(t, err)
	assert.True(t, updated.FinalPrice.IsZero())

	past := today.AddDate(0, 0, -2)
	_, err = svc.Update(ctx, q.ID, UpdateQuoteRequest{ValidUntil: &past})
	assert.ErrorIs(t, err, ErrValidUntilPast)

	bogus := Status("Pending")
	_, err = svc.Update(ctx, q.ID, UpdateQuoteRequest{Status: &bogus})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdate_ClosedQuotesAreReadOnly(t *testing.T) {
	svc, _ := newQuoteService(t)
	ctx := context.Background()
	q, err := svc.Generate(ctx, GenerateRequest{LeadID: "lead-1"})
	require.NoError(t, err)

	accepted := StatusAccepted
	_, err = svc.Update(ctx, q.ID, UpdateQuoteRequest{Status: &accepted})
	require.NoError(t, err)

	notes := "late change"
	_, err = svc.Update(ctx, q.ID, UpdateQuoteRequest{Notes: &notes})
	assert.ErrorIs(t, err, ErrQuoteClosed)

	// deleting is still allowed
	require.NoError(t, svc.Delete(ctx, q.ID))
	_, err = svc.Get(ctx, q.ID)
	assert.ErrorIs(t, err, ErrQuoteNotFound)
}

func TestExpiryIsEvaluatedAtReadTime(t *testing.T) {
	svc, now := newQuoteService(t)
	ctx := context.Background()

	sentQuote, err := svc.Generate(ctx, GenerateRequest{LeadID: "lead-1"})
	require.NoError(t, err)
	acceptedQuote, err := svc.Generate(ctx, GenerateRequest{LeadID: "lead-1"})
	require.NoError(t, err)

	sent, accepted := StatusSent, StatusAccepted
	_, err = svc.Update(ctx, sentQuote.ID, UpdateQuoteRequest{Status: &sent})
	require.NoError(t, err)
	_, err = svc.Update(ctx, acceptedQuote.ID, UpdateQuoteRequest{Status: &accepted})
	require.NoError(t, err)

	// validUntil is today+30; move the clock to the day after.
	*now = today.AddDate(0, 0, 31)

	got, err := svc.Get(ctx, sentQuote.ID)
	require.NoError(t, err)
	assert.True(t, got.Expired)
	assert.Equal(t, StatusSent, got.Status)
	assert.Equal(t, StatusExpired, got.EffectiveStatus(*now))

	got, err = svc.Get(ctx, acceptedQuote.ID)
	require.NoError(t, err)
	assert.False(t, got.Expired)

	expired, err := svc.List(ctx, ListQuotesFilter{Status: StatusExpired})
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, sentQuote.ID, expired[0].ID)

	lapsed, err := svc.Expired(ctx)
	require.NoError(t, err)
	assert.Len(t, lapsed, 1)

	stillSent, err := svc.List(ctx, ListQuotesFilter{Status: StatusSent})
	require.NoError(t, err)
	assert.Empty(t, stillSent)
}

func TestIsExpired(t *testing.T) {
	yesterday := today.AddDate(0, 0, -1)
	cases := []struct {
		status Status
		until  time.Time
		want   bool
	}{
		{StatusSent, yesterday, true},
		{StatusDraft, yesterday, true},
		{StatusAccepted, yesterday, false},
		{StatusRejected, yesterday, false},
		{StatusSent, today, false},
		{StatusExpired, today.AddDate(0, 1, 0), true},
	}
	for _, c := range cases {
		q := &Quote{Status: c.status, ValidUntil: c.until}
		assert.Equal(t, c.want, q.IsExpired(today), "%s until %s", c.status, c.until.Format("2006-01-02"))
	}
}

func TestIsExpired_ValidUntilInOtherZones(t *testing.T) {
	lastDay := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	for _, loc := range []*time.Location{
		time.FixedZone("EST", -5*60*60),
		time.FixedZone("IST", 5*60*60+30*60),
	} {
		q := &Quote{Status: StatusSent, ValidUntil: lastDay.In(loc)}
		assert.False(t, q.IsExpired(today), "valid through %s read in %s", lastDay.Format("2006-01-02"), loc)
		assert.True(t, q.IsExpired(today.AddDate(0, 0, 1)), "day after, read in %s", loc)
	}
}

func TestList_FilterByLead(t *testing.T) {
	svc, _ := newQuoteService(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := svc.Generate(ctx, GenerateRequest{LeadID: "lead-1"})
		require.NoError(t, err)
	}
	got, err := svc.List(ctx, ListQuotesFilter{LeadID: "lead-1", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	none, err := svc.List(ctx, ListQuotesFilter{LeadID: "lead-9"})
	require.NoError(t, err)
	assert.Empty(t, none)
}
