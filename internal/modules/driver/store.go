// README: Driver store backed by PostgreSQL, with a Redis GEO index over
// driver positions used to prefilter nearby-candidate queries.
package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"payana/internal/apperrors"
	"payana/internal/types"
)

const driverGeoKey = "drivers:geo"

// geoBoxPadding widens the Redis prefilter box so the fixed-constant
// bounding box applied afterwards never loses a candidate to rounding
// between the two distance models.
const geoBoxPadding = 1.05

type PGStore struct {
	db    *pgxpool.Pool
	redis *redis.Client
}

func NewStore(db *pgxpool.Pool, rdb *redis.Client) *PGStore {
	return &PGStore{db: db, redis: rdb}
}

func (s *PGStore) Create(ctx context.Context, d *Driver) error {
	var lat, lng *float64
	if d.Location != nil {
		lat, lng = &d.Location.Lat, &d.Location.Lng
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO drivers (
			id, name, phone, vehicle_make, vehicle_model, vehicle_plate, vehicle_color,
			lat, lng, is_available, rating, credential, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		string(d.ID), d.Name, d.Phone,
		d.Vehicle.Make, d.Vehicle.Model, d.Vehicle.Plate, nullIfEmpty(d.Vehicle.Color),
		lat, lng, d.IsAvailable, d.Rating, d.Credential, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if d.Location != nil {
		return s.geoAdd(ctx, d.ID, *d.Location)
	}
	return nil
}

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Driver, error) {
	row := s.db.QueryRow(ctx, selectDriverColumns+` WHERE id = $1`, string(id))
	d, err := scanDriver(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: driver %s", apperrors.ErrNotFound, id)
	}
	return d, err
}

func (s *PGStore) List(ctx context.Context) ([]*Driver, error) {
	rows, err := s.db.Query(ctx, selectDriverColumns+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDrivers(rows)
}

// UpdateLocation writes the new position to Postgres, refreshes the GEO
// index, and appends a history snapshot.
func (s *PGStore) UpdateLocation(ctx context.Context, id types.ID, p types.Point, at time.Time) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE drivers SET lat = $1, lng = $2, updated_at = $3 WHERE id = $4`,
		p.Lat, p.Lng, at, string(id),
	)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, fmt.Errorf("%w: driver %s", apperrors.ErrNotFound, id)
	}
	if err := s.geoAdd(ctx, id, p); err != nil {
		return false, err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO location_snapshots (driver_id, lat, lng, recorded_at)
		VALUES ($1, $2, $3, $4)`,
		string(id), p.Lat, p.Lng, at,
	)
	return true, err
}

// NearbyCandidates asks Redis for members inside a padded search box and
// hydrates the matching rows. Availability and the exact box are re-checked
// by the caller's pure filter.
func (s *PGStore) NearbyCandidates(ctx context.Context, origin types.Point, radiusKm float64) ([]*Driver, error) {
	members, err := s.redis.GeoSearch(ctx, driverGeoKey, &redis.GeoSearchQuery{
		Longitude: origin.Lng,
		Latitude:  origin.Lat,
		BoxWidth:  2 * radiusKm * geoBoxPadding,
		BoxHeight: 2 * radiusKm * geoBoxPadding,
		BoxUnit:   "km",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("geo search: %w", err)
	}
	if len(members) == 0 {
		return nil, nil
	}
	rows, err := s.db.Query(ctx,
		selectDriverColumns+` WHERE id = ANY($1) AND is_available AND lat IS NOT NULL`,
		members,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDrivers(rows)
}

// Credential satisfies identity.CredentialSource.
func (s *PGStore) Credential(ctx context.Context, id types.ID) (string, error) {
	row := s.db.QueryRow(ctx, `SELECT credential FROM drivers WHERE id = $1`, string(id))
	var cred string
	err := row.Scan(&cred)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%w: driver %s", apperrors.ErrNotFound, id)
	}
	if err != nil {
		return "", err
	}
	return cred, nil
}

func (s *PGStore) geoAdd(ctx context.Context, id types.ID, p types.Point) error {
	return s.redis.GeoAdd(ctx, driverGeoKey, &redis.GeoLocation{
		Name:      string(id),
		Longitude: p.Lng,
		Latitude:  p.Lat,
	}).Err()
}

const selectDriverColumns = `
	SELECT id, name, phone, vehicle_make, vehicle_model, vehicle_plate, vehicle_color,
	       lat, lng, is_available, rating, credential, created_at, updated_at
	FROM drivers`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDriver(row rowScanner) (*Driver, error) {
	var d Driver
	var color *string
	var lat, lng *float64
	err := row.Scan(
		&d.ID, &d.Name, &d.Phone,
		&d.Vehicle.Make, &d.Vehicle.Model, &d.Vehicle.Plate, &color,
		&lat, &lng, &d.IsAvailable, &d.Rating, &d.Credential, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if color != nil {
		d.Vehicle.Color = *color
	}
	if lat != nil && lng != nil {
		d.Location = &types.Point{Lat: *lat, Lng: *lng}
	}
	return &d, nil
}

func scanDrivers(rows pgx.Rows) ([]*Driver, error) {
	var drivers []*Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}
	return drivers, rows.Err()
}

func nullIfEmpty(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
