package quotes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgxDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores quotes. Adjustments live in a json column so
// their key order survives a round trip.
type PostgresRepository struct {
	db pgxDB
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("quotes: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithDB(db pgxDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const quoteColumns = `id, lead_id, event_id, package_id, number_of_travelers, base_price::text, adjustments::text, final_price::text, travel_date, valid_until, status, notes, created_at, updated_at`

func (r *PostgresRepository) Create(ctx context.Context, q *Quote) (*Quote, error) {
	stored := q.clone()
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	adjustments, err := stored.Adjustments.encode()
	if err != nil {
		return nil, err
	}
	if err := r.db.QueryRow(ctx, `
		INSERT INTO quotes (id, lead_id, event_id, package_id, number_of_travelers, base_price, adjustments, final_price, travel_date, valid_until, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7::json, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`,
		stored.ID,
		stored.LeadID,
		stored.EventID,
		stored.PackageID,
		stored.NumberOfTravelers,
		stored.BasePrice.String(),
		adjustments,
		stored.FinalPrice.String(),
		stored.TravelDate,
		stored.ValidUntil,
		string(stored.Status),
		stored.Notes,
	).Scan(&stored.CreatedAt, &stored.UpdatedAt); err != nil {
		return nil, fmt.Errorf("quotes: insert failed: %w", err)
	}
	return stored, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Quote, error) {
	q, err := scanQuote(r.db.QueryRow(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("quotes: select failed: %w", err)
	}
	return q, nil
}

func (r *PostgresRepository) List(ctx context.Context, filter ListQuotesFilter) ([]*Quote, error) {
	var (
		where []string
		args  []any
	)
	if filter.LeadID != "" {
		args = append(args, filter.LeadID)
		where = append(where, fmt.Sprintf("lead_id = $%d", len(args)))
	}
	if filter.EventID != "" {
		args = append(args, filter.EventID)
		where = append(where, fmt.Sprintf("event_id = $%d", len(args)))
	}
	query := `SELECT ` + quoteColumns + ` FROM quotes`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("quotes: list failed: %w", err)
	}
	defer rows.Close()

	out := []*Quote{}
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("quotes: scan failed: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// Update writes the mutable fields. lead, event, package, travellers and
// base price are never touched after generation.
// Update refuses to touch a quote that was accepted or rejected after the
// caller read it.
func (r *PostgresRepository) Update(ctx context.Context, q *Quote) (*Quote, error) {
	adjustments, err := q.Adjustments.encode()
	if err != nil {
		return nil, err
	}
	updated, err := scanQuote(r.db.QueryRow(ctx, `
		UPDATE quotes
		SET status = $2, valid_until = $3, notes = $4, adjustments = $5::json, final_price = $6, updated_at = now()
		WHERE id = $1 AND status NOT IN ('Accepted', 'Rejected')
		RETURNING `+quoteColumns,
		q.ID,
		string(q.Status),
		q.ValidUntil,
		q.Notes,
		adjustments,
		q.FinalPrice.String(),
	))
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("quotes: update failed: %w", err)
	}
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM quotes WHERE id = $1)`, q.ID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("quotes: update failed: %w", err)
	}
	if exists {
		return nil, ErrQuoteClosed
	}
	return nil, ErrQuoteNotFound
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM quotes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("quotes: delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrQuoteNotFound
	}
	return nil
}

func scanQuote(row pgx.Row) (*Quote, error) {
	var (
		q           Quote
		basePrice   string
		finalPrice  string
		adjustments string
		status      string
	)
	if err := row.Scan(
		&q.ID,
		&q.LeadID,
		&q.EventID,
		&q.PackageID,
		&q.NumberOfTravelers,
		&basePrice,
		&adjustments,
		&finalPrice,
		&q.TravelDate,
		&q.ValidUntil,
		&status,
		&q.Notes,
		&q.CreatedAt,
		&q.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := q.BasePrice.Scan(basePrice); err != nil {
		return nil, err
	}
	if err := q.FinalPrice.Scan(finalPrice); err != nil {
		return nil, err
	}
	adj, err := decodeAdjustments([]byte(adjustments))
	if err != nil {
		return nil, err
	}
	q.Adjustments = adj
	q.Status = Status(status)
	return &q, nil
}
