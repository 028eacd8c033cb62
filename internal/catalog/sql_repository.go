package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// SQLRepository stores the catalog through database/sql. Package features
// live in a text[] column.
type SQLRepository struct {
	db *sql.DB
}

// NewSQLRepository wraps an open *sql.DB.
func NewSQLRepository(db *sql.DB) *SQLRepository {
	if db == nil {
		panic("catalog: sql db required")
	}
	return &SQLRepository{db: db}
}

const eventColumns = `id, name, location, start_date, end_date, category, featured, description, image`

func (r *SQLRepository) GetEvent(ctx context.Context, id string) (*Event, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: select event: %w", err)
	}
	return e, nil
}

func (r *SQLRepository) ListEvents(ctx context.Context, filter EventFilter) ([]*Event, error) {
	var (
		where []string
		args  []any
	)
	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, fmt.Sprintf("LOWER(category) = LOWER($%d)", len(args)))
	}
	if q := strings.TrimSpace(filter.Search); q != "" {
		args = append(args, "%"+q+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR location ILIKE $%d)", len(args), len(args)))
	}
	query := `SELECT ` + eventColumns + ` FROM events`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY start_date ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("catalog: list events: %w", err)
	}
	defer rows.Close()

	var out []*Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("catalog: scan event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLRepository) CreateEvent(ctx context.Context, in EventInput) (*Event, error) {
	e := eventFromInput(uuid.NewString(), in)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO events (id, name, location, start_date, end_date, category, featured, description, image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, e.ID, e.Name, e.Location, e.StartDate, nullTime(e.EndDate), e.Category, e.Featured, e.Description, e.Image)
	if err != nil {
		return nil, fmt.Errorf("catalog: insert event: %w", err)
	}
	return e, nil
}

func (r *SQLRepository) UpdateEvent(ctx context.Context, id string, in EventInput) (*Event, error) {
	e := eventFromInput(id, in)
	res, err := r.db.ExecContext(ctx, `
		UPDATE events
		SET name = $2, location = $3, start_date = $4, end_date = $5, category = $6,
		    featured = $7, description = $8, image = $9, updated_at = now()
		WHERE id = $1
	`, e.ID, e.Name, e.Location, e.StartDate, nullTime(e.EndDate), e.Category, e.Featured, e.Description, e.Image)
	if err != nil {
		return nil, fmt.Errorf("catalog: update event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrEventNotFound
	}
	return e, nil
}

// DeleteEvent relies on ON DELETE CASCADE for the event's packages.
func (r *SQLRepository) DeleteEvent(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("catalog: delete event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEventNotFound
	}
	return nil
}

const packageColumns = `id, event_id, name, description, tier, base_price, max_travelers, features`

func (r *SQLRepository) GetPackage(ctx context.Context, id string) (*Package, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+packageColumns+` FROM packages WHERE id = $1`, id)
	p, err := scanPackage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPackageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: select package: %w", err)
	}
	return p, nil
}

func (r *SQLRepository) ListPackages(ctx context.Context, filter PackageFilter) ([]*Package, error) {
	var (
		where []string
		args  []any
	)
	if filter.EventID != "" {
		args = append(args, filter.EventID)
		where = append(where, fmt.Sprintf("event_id = $%d", len(args)))
	}
	if filter.Tier != "" {
		args = append(args, string(filter.Tier))
		where = append(where, fmt.Sprintf("tier = $%d", len(args)))
	}
	if q := strings.TrimSpace(filter.Search); q != "" {
		args = append(args, "%"+q+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	query := `SELECT ` + packageColumns + ` FROM packages`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY event_id, CASE tier WHEN 'Premium' THEN 0 WHEN 'Standard' THEN 1 WHEN 'Basic' THEN 2 ELSE 3 END`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("catalog: list packages: %w", err)
	}
	defer rows.Close()

	var out []*Package
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("catalog: scan package: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CreatePackage inserts a package. The (event_id, tier) unique index backs
// the placement rule the service checks first.
func (r *SQLRepository) CreatePackage(ctx context.Context, in PackageInput) (*Package, error) {
	p := packageFromInput(uuid.NewString(), in)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO packages (id, event_id, name, description, tier, base_price, max_travelers, features)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, p.ID, p.EventID, p.Name, p.Description, string(p.Tier), p.BasePrice, p.MaxTravelers, pq.Array(p.Features))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrTierTaken
		}
		return nil, fmt.Errorf("catalog: insert package: %w", err)
	}
	return p, nil
}

func (r *SQLRepository) UpdatePackage(ctx context.Context, id string, in PackageInput) (*Package, error) {
	p := packageFromInput(id, in)
	res, err := r.db.ExecContext(ctx, `
		UPDATE packages
		SET event_id = $2, name = $3, description = $4, tier = $5, base_price = $6,
		    max_travelers = $7, features = $8, updated_at = now()
		WHERE id = $1
	`, p.ID, p.EventID, p.Name, p.Description, string(p.Tier), p.BasePrice, p.MaxTravelers, pq.Array(p.Features))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrTierTaken
		}
		return nil, fmt.Errorf("catalog: update package: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrPackageNotFound
	}
	return p, nil
}

func (r *SQLRepository) DeletePackage(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM packages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("catalog: delete package: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPackageNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (*Event, error) {
	var (
		e           Event
		end         sql.NullTime
		description sql.NullString
		image       sql.NullString
	)
	if err := row.Scan(&e.ID, &e.Name, &e.Location, &e.StartDate, &end, &e.Category, &e.Featured, &description, &image); err != nil {
		return nil, err
	}
	if end.Valid {
		e.EndDate = end.Time
	}
	e.Description = description.String
	e.Image = image.String
	return &e, nil
}

func scanPackage(row scanner) (*Package, error) {
	var (
		p           Package
		tier        string
		description sql.NullString
	)
	if err := row.Scan(&p.ID, &p.EventID, &p.Name, &description, &tier, &p.BasePrice, &p.MaxTravelers, pq.Array(&p.Features)); err != nil {
		return nil, err
	}
	p.Tier = Tier(tier)
	p.Description = description.String
	return &p, nil
}

func nullTime(t interface{ IsZero() bool }) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "SQLSTATE 23505")
}
