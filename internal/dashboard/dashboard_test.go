package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/sports-travel-platform/internal/catalog"
	"github.com/wolfman30/sports-travel-platform/internal/leads"
	"github.com/wolfman30/sports-travel-platform/internal/money"
	"github.com/wolfman30/sports-travel-platform/internal/quotes"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func lead(status leads.Status, daysAgo int) *leads.Lead {
	return &leads.Lead{Status: status, CreatedAt: now.AddDate(0, 0, -daysAgo)}
}

func quote(status quotes.Status, price int64, validUntil time.Time) *quotes.Quote {
	return &quotes.Quote{Status: status, FinalPrice: money.NewAmount(price), ValidUntil: validUntil}
}

func TestComputeStats(t *testing.T) {
	ls := []*leads.Lead{
		lead(leads.StatusNew, 1),
		lead(leads.StatusNew, 2),
		lead(leads.StatusClosedWon, 3),
		lead(leads.StatusQuoteSent, 40),
		lead(leads.StatusClosedLost, 45),
		lead(leads.StatusClosedWon, 90),
	}
	events := []*catalog.Event{
		{ID: "past", StartDate: now.AddDate(0, -1, 0)},
		{ID: "running", StartDate: now.AddDate(0, 0, -1), EndDate: now.AddDate(0, 0, 2)},
		{ID: "future", StartDate: now.AddDate(0, 2, 0)},
	}
	packages := []*catalog.Package{{ID: "a"}, {ID: "b"}}

	s := ComputeStats(ls, events, packages, now)
	assert.Equal(t, 6, s.TotalLeads)
	assert.Equal(t, 2, s.ActiveEvents)
	assert.Equal(t, 2, s.TotalPackages)
	assert.Equal(t, 33.3, s.ConversionRate)
	assert.Equal(t, 50.0, s.LeadsTrend)
	assert.Equal(t, StatusBreakdown{New: 2, QuoteSent: 1, ClosedWon: 2, ClosedLost: 1}, s.StatusBreakdown)
}

func TestComputeRevenue(t *testing.T) {
	qs := []*quotes.Quote{
		quote(quotes.StatusAccepted, 100000, now.AddDate(0, 0, -30)),
		quote(quotes.StatusAccepted, 50000, now),
		quote(quotes.StatusSent, 30000, now),
		quote(quotes.StatusDraft, 20000, now.AddDate(0, 0, -1)),
		quote(quotes.StatusRejected, 1, now),
	}
	r := ComputeRevenue(qs, now)
	assert.True(t, r.TotalRevenue.Equal(money.NewAmount(150000)))
	assert.Equal(t, 2, r.AcceptedQuotesCount)
	assert.True(t, r.PendingRevenue.Equal(money.NewAmount(30000)), "lapsed draft is not pending")
	assert.Equal(t, 1, r.PendingQuotesCount)
	assert.Equal(t, "40000.2", r.AverageQuoteValue.String())

	empty := ComputeRevenue(nil, now)
	assert.True(t, empty.AverageQuoteValue.IsZero())
}

func TestTrendAndConversion(t *testing.T) {
	assert.Equal(t, 0.0, ConversionRate(3, 0))
	assert.Equal(t, 100.0, Trend(4, 0))
	assert.Equal(t, 0.0, Trend(0, 0))
	assert.Equal(t, -50.0, Trend(1, 2))
}

func TestRecentLeads(t *testing.T) {
	ls := []*leads.Lead{lead(leads.StatusNew, 5), lead(leads.StatusNew, 1), lead(leads.StatusNew, 3)}
	got := RecentLeads(ls, 2)
	require.Len(t, got, 2)
	assert.Equal(t, ls[1], got[0])
	assert.Equal(t, ls[2], got[1])
}

func TestSQLRepository_Stats(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSQLRepository(db, nil, func() time.Time { return now })
	mock.ExpectQuery("SELECT status, COUNT\\(\\*\\) FROM leads GROUP BY status").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("New", 5).
			AddRow("Quote Sent", 2).
			AddRow("Closed Won", 3))
	mock.ExpectQuery("FROM leads").
		WithArgs(now.Add(-trendWindow), now.Add(-2*trendWindow), now).
		WillReturnRows(sqlmock.NewRows([]string{"current", "previous"}).AddRow(6, 4))
	mock.ExpectQuery("FROM events WHERE").
		WithArgs(now).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM packages").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(9))

	s, err := repo.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, s.TotalLeads)
	assert.Equal(t, 30.0, s.ConversionRate)
	assert.Equal(t, 50.0, s.LeadsTrend)
	assert.Equal(t, 3, s.ActiveEvents)
	assert.Equal(t, 9, s.TotalPackages)
	assert.Equal(t, 2, s.StatusBreakdown.QuoteSent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRepository_Revenue(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSQLRepository(db, nil, func() time.Time { return now })
	mock.ExpectQuery("FROM quotes").
		WithArgs(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)).
		WillReturnRows(sqlmock.NewRows([]string{"total", "accepted", "pending", "pending_count", "avg"}).
			AddRow("150000.00", 2, "30000.00", 1, "40000.20"))

	r, err := repo.Revenue(context.Background())
	require.NoError(t, err)
	assert.True(t, r.TotalRevenue.Equal(money.NewAmount(150000)))
	assert.True(t, r.PendingRevenue.Equal(money.NewAmount(30000)))
	assert.Equal(t, 2, r.AcceptedQuotesCount)
	assert.Equal(t, 1, r.PendingQuotesCount)
	assert.Equal(t, "40000.2", r.AverageQuoteValue.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}
