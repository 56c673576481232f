// README: Ride store backed by PostgreSQL. Writes are compare-and-swap on
// (status, status_version) so a lost race never silently overwrites state.
package ride

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"payana/internal/apperrors"
	"payana/internal/types"
)

type PGStore struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Create(ctx context.Context, r *Ride) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO rides (
			id, rider_id, driver_id,
			pickup_lat, pickup_lng, dropoff_lat, dropoff_lng,
			distance_km, duration_min, fare_estimate, surge_multiplier,
			status, status_version, created_at, updated_at
		) VALUES (
			$1, $2, $3,
			$4, $5, $6, $7,
			$8, $9, $10, $11,
			$12, $13, $14, $15
		)`,
		string(r.ID), string(r.RiderID), idPtr(r.DriverID),
		r.Pickup.Lat, r.Pickup.Lng, r.Dropoff.Lat, r.Dropoff.Lng,
		r.DistanceKm, r.DurationMin, r.FareEstimate, r.SurgeMultiplier,
		string(r.Status), r.StatusVersion, r.CreatedAt, r.UpdatedAt,
	)
	return err
}

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Ride, error) {
	row := s.db.QueryRow(ctx, selectRideColumns+` WHERE id = $1`, string(id))
	r, err := scanRide(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: ride %s", apperrors.ErrNotFound, id)
	}
	return r, err
}

func (s *PGStore) List(ctx context.Context, status *Status) ([]*Ride, error) {
	query := selectRideColumns + ` ORDER BY created_at DESC`
	args := []any{}
	if status != nil {
		query = selectRideColumns + ` WHERE status = $1 ORDER BY created_at DESC`
		args = append(args, string(*status))
	}
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rides []*Ride
	for rows.Next() {
		r, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, r)
	}
	return rides, rows.Err()
}

func (s *PGStore) ApplyUpdate(ctx context.Context, u Update) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE rides
		SET status = $1,
		    status_version = status_version + 1,
		    driver_id = COALESCE($2, driver_id),
		    updated_at = $3
		WHERE id = $4 AND status = $5 AND status_version = $6`,
		string(u.ToStatus),
		idPtr(u.DriverID),
		u.UpdatedAt,
		string(u.RideID),
		string(u.FromStatus),
		u.FromVersion,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

const selectRideColumns = `
	SELECT id, rider_id, driver_id,
	       pickup_lat, pickup_lng, dropoff_lat, dropoff_lng,
	       distance_km, duration_min, fare_estimate, surge_multiplier,
	       status, status_version, created_at, updated_at
	FROM rides`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRide(row rowScanner) (*Ride, error) {
	var r Ride
	var driverID *string
	err := row.Scan(
		&r.ID, &r.RiderID, &driverID,
		&r.Pickup.Lat, &r.Pickup.Lng, &r.Dropoff.Lat, &r.Dropoff.Lng,
		&r.DistanceKm, &r.DurationMin, &r.FareEstimate, &r.SurgeMultiplier,
		&r.Status, &r.StatusVersion, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if driverID != nil {
		d := types.ID(*driverID)
		r.DriverID = &d
	}
	return &r, nil
}

func idPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
