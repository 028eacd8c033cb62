package dashboard

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/wolfman30/sports-travel-platform/internal/leads"
	"github.com/wolfman30/sports-travel-platform/internal/money"
	"github.com/wolfman30/sports-travel-platform/pkg/logging"
)

// SQLRepository computes the dashboard with aggregate queries over the
// back-office schema.
type SQLRepository struct {
	db     *sql.DB
	logger *logging.Logger
	now    func() time.Time
}

// NewSQLRepository wraps an open *sql.DB. A nil clock uses time.Now.
func NewSQLRepository(db *sql.DB, logger *logging.Logger, now func() time.Time) *SQLRepository {
	if db == nil {
		panic("dashboard: sql db required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &SQLRepository{db: db, logger: logger, now: now}
}

// Stats runs the lead, event and package counts.
func (r *SQLRepository) Stats(ctx context.Context) (*Stats, error) {
	now := r.now().UTC()
	var s Stats

	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM leads GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("dashboard: count leads by status: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("dashboard: scan status count: %w", err)
		}
		s.StatusBreakdown.Add(leads.Status(status), n)
		s.TotalLeads += n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dashboard: count leads by status: %w", err)
	}

	var current, previous int
	if err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE created_at >= $1),
			COUNT(*) FILTER (WHERE created_at >= $2 AND created_at < $1)
		FROM leads
		WHERE created_at <= $3`,
		now.Add(-trendWindow), now.Add(-2*trendWindow), now,
	).Scan(&current, &previous); err != nil {
		return nil, fmt.Errorf("dashboard: lead trend: %w", err)
	}

	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events WHERE COALESCE(end_date, start_date) >= $1`, now,
	).Scan(&s.ActiveEvents); err != nil {
		return nil, fmt.Errorf("dashboard: count active events: %w", err)
	}
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM packages`).Scan(&s.TotalPackages); err != nil {
		return nil, fmt.Errorf("dashboard: count packages: %w", err)
	}

	s.ConversionRate = ConversionRate(s.StatusBreakdown.ClosedWon, s.TotalLeads)
	s.LeadsTrend = Trend(current, previous)
	r.logger.Debug("dashboard stats computed", "total_leads", s.TotalLeads, "active_events", s.ActiveEvents)
	return &s, nil
}

// Revenue sums quote value. A draft or sent quote counts as pending until the
// day after its valid-until date.
func (r *SQLRepository) Revenue(ctx context.Context) (*Revenue, error) {
	y, m, d := r.now().UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	var (
		rev                         Revenue
		total, pending, avg         string
		acceptedCount, pendingCount int
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(final_price) FILTER (WHERE status = 'Accepted'), 0)::text,
			COUNT(*) FILTER (WHERE status = 'Accepted'),
			COALESCE(SUM(final_price) FILTER (WHERE status IN ('Draft', 'Sent') AND valid_until >= $1), 0)::text,
			COUNT(*) FILTER (WHERE status IN ('Draft', 'Sent') AND valid_until >= $1),
			COALESCE(ROUND(AVG(final_price), 2), 0)::text
		FROM quotes`, today,
	).Scan(&total, &acceptedCount, &pending, &pendingCount, &avg)
	if err != nil {
		return nil, fmt.Errorf("dashboard: revenue: %w", err)
	}
	if rev.TotalRevenue, err = money.ParseAmount(total); err != nil {
		return nil, fmt.Errorf("dashboard: parse total revenue: %w", err)
	}
	if rev.PendingRevenue, err = money.ParseAmount(pending); err != nil {
		return nil, fmt.Errorf("dashboard: parse pending revenue: %w", err)
	}
	if rev.AverageQuoteValue, err = money.ParseAmount(avg); err != nil {
		return nil, fmt.Errorf("dashboard: parse average quote value: %w", err)
	}
	rev.AcceptedQuotesCount = acceptedCount
	rev.PendingQuotesCount = pendingCount
	return &rev, nil
}
