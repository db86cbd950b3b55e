package locations

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/noah-isme/employee-tracker/internal/platform/db"
)

// Repository defines persistence operations for latest locations.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]View, error)
	Upsert(ctx context.Context, userID int64, in UpsertInput, at time.Time) (*Location, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	db db.DBTX
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(conn db.DBTX) *PGRepository {
	return &PGRepository{db: conn}
}

// List returns every latest location, newest write first. Rows whose owner is
// gone come back with an empty name; accuracy-less rows drop out when a filter is set.
func (r *PGRepository) List(ctx context.Context, filter ListFilter) ([]View, error) {
	rows, err := r.db.Query(ctx, `
		SELECT l.user_id, COALESCE(u.name, ''), l.lat::float8, l.lng::float8, l.recorded_at, l.accuracy_m
		FROM latest_user_locations l
		LEFT JOIN users u ON u.id = l.user_id
		WHERE $1::int IS NULL OR l.accuracy_m <= $1::int
		ORDER BY l.updated_at DESC, l.user_id ASC`, filter.MaxAccuracy)
	if err != nil {
		return nil, fmt.Errorf("locations: list: %w", err)
	}
	defer rows.Close()

	views := make([]View, 0)
	for rows.Next() {
		var (
			loc  Location
			name string
		)
		if err := rows.Scan(&loc.UserID, &name, &loc.Lat, &loc.Lng, &loc.RecordedAt, &loc.AccuracyM); err != nil {
			return nil, fmt.Errorf("locations: scan: %w", err)
		}
		views = append(views, ViewOf(&loc, name))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("locations: list rows: %w", err)
	}
	return views, nil
}

// Upsert writes the caller's single row in one statement; the unique user_id
// constraint arbitrates concurrent writers.
func (r *PGRepository) Upsert(ctx context.Context, userID int64, in UpsertInput, at time.Time) (*Location, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO latest_user_locations (user_id, lat, lng, recorded_at, accuracy_m, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			recorded_at = EXCLUDED.recorded_at,
			accuracy_m = EXCLUDED.accuracy_m,
			updated_at = EXCLUDED.updated_at
		RETURNING id, user_id, lat::float8, lng::float8, recorded_at, accuracy_m, created_at, updated_at`,
		userID, in.Lat, in.Lng, in.RecordedAt.UTC(), in.AccuracyM, at.UTC())
	loc, err := scanLocation(row)
	if err != nil {
		return nil, fmt.Errorf("locations: upsert: %w", err)
	}
	return loc, nil
}

func scanLocation(row pgx.Row) (*Location, error) {
	var loc Location
	if err := row.Scan(&loc.ID, &loc.UserID, &loc.Lat, &loc.Lng, &loc.RecordedAt, &loc.AccuracyM, &loc.CreatedAt, &loc.UpdatedAt); err != nil {
		return nil, err
	}
	return &loc, nil
}

var _ Repository = (*PGRepository)(nil)
