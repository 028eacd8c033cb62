package leads

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgxDB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores leads and their status history in the relational database.
type PostgresRepository struct {
	db pgxDB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithDB(db pgxDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const leadColumns = `id, name, email, phone, event_id, package_id, number_of_travelers, travel_date, status, notes, created_at, updated_at`

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, lead *Lead) (*Lead, error) {
	stored := *lead
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	query := `
		INSERT INTO leads (id, name, email, phone, event_id, package_id, number_of_travelers, travel_date, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`
	if err := r.db.QueryRow(ctx, query,
		stored.ID,
		stored.Name,
		stored.Email,
		stored.Phone,
		stored.EventID,
		stored.PackageID,
		stored.NumberOfTravelers,
		stored.TravelDate,
		string(stored.Status),
		stored.Notes,
	).Scan(&stored.CreatedAt, &stored.UpdatedAt); err != nil {
		return nil, fmt.Errorf("leads: insert failed: %w", err)
	}
	return &stored, nil
}

// GetByID fetches a lead.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	row := r.db.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	return lead, nil
}

// List returns a page of matching leads, newest first.
func (r *PostgresRepository) List(ctx context.Context, filter ListLeadsFilter) ([]*Lead, error) {
	f := filter.Normalize()
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.EventID != "" {
		args = append(args, f.EventID)
		where = append(where, fmt.Sprintf("event_id = $%d", len(args)))
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		args = append(args, "%"+q+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d)", len(args), len(args)))
	}

	query := `SELECT ` + leadColumns + ` FROM leads`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, f.Limit, f.Offset())
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	defer rows.Close()

	out := []*Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("leads: scan failed: %w", err)
		}
		out = append(out, lead)
	}
	return out, rows.Err()
}

// Update locks the row, applies the patch and appends the history entry in
// one transaction. The entry's from-status is the status read under the lock.
func (r *PostgresRepository) Update(ctx context.Context, id string, patch Patch, change *StatusChange) (*Lead, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("leads: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var current string
	if err := tx.QueryRow(ctx, `SELECT status FROM leads WHERE id = $1 FOR UPDATE`, id).Scan(&current); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: lock lead: %w", err)
	}

	next := Status(current)
	transition := change != nil && change.To != next
	if transition {
		next = change.To
	}

	row := tx.QueryRow(ctx, `
		UPDATE leads
		SET name = COALESCE($2, name),
		    email = COALESCE($3, email),
		    phone = COALESCE($4, phone),
		    event_id = COALESCE($5, event_id),
		    package_id = COALESCE($6, package_id),
		    number_of_travelers = COALESCE($7, number_of_travelers),
		    travel_date = COALESCE($8, travel_date),
		    notes = COALESCE($9, notes),
		    status = $10,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+leadColumns,
		id,
		patch.Name,
		patch.Email,
		patch.Phone,
		patch.EventID,
		patch.PackageID,
		patch.NumberOfTravelers,
		patch.TravelDate,
		patch.Notes,
		string(next),
	)
	lead, err := scanLead(row)
	if err != nil {
		return nil, fmt.Errorf("leads: update failed: %w", err)
	}

	if transition {
		at := change.At
		if at.IsZero() {
			at = time.Now().UTC()
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO lead_status_history (id, lead_id, from_status, to_status, notes, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, uuid.New().String(), id, current, string(change.To), change.Notes, at); err != nil {
			return nil, fmt.Errorf("leads: append history: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("leads: commit: %w", err)
	}
	return lead, nil
}

// Delete removes the lead. lead_status_history rows go with it via ON DELETE CASCADE.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("leads: delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}

func (r *PostgresRepository) History(ctx context.Context, id string) ([]StatusHistoryEntry, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM leads WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("leads: check lead: %w", err)
	}
	if !exists {
		return nil, ErrLeadNotFound
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, lead_id, from_status, to_status, notes, created_at
		FROM lead_status_history
		WHERE lead_id = $1
		ORDER BY created_at ASC, seq ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("leads: select history: %w", err)
	}
	defer rows.Close()

	out := []StatusHistoryEntry{}
	for rows.Next() {
		var (
			e        StatusHistoryEntry
			from, to string
		)
		if err := rows.Scan(&e.ID, &e.LeadID, &from, &to, &e.Notes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("leads: scan history: %w", err)
		}
		e.FromStatus = Status(from)
		e.ToStatus = Status(to)
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanLead(row pgx.Row) (*Lead, error) {
	var (
		lead   Lead
		status string
	)
	if err := row.Scan(
		&lead.ID,
		&lead.Name,
		&lead.Email,
		&lead.Phone,
		&lead.EventID,
		&lead.PackageID,
		&lead.NumberOfTravelers,
		&lead.TravelDate,
		&status,
		&lead.Notes,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	); err != nil {
		return nil, err
	}
	lead.Status = Status(status)
	return &lead, nil
}
