// README: Postgres connection pool initialization and startup schema migration.
package infra

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

func NewDB(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS riders (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    phone       TEXT NOT NULL,
    rating      DOUBLE PRECISION NOT NULL DEFAULT 5.0,
    credential  TEXT NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS drivers (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    phone         TEXT NOT NULL,
    vehicle_make  TEXT NOT NULL,
    vehicle_model TEXT NOT NULL,
    vehicle_plate TEXT NOT NULL,
    vehicle_color TEXT,
    lat           DOUBLE PRECISION,
    lng           DOUBLE PRECISION,
    is_available  BOOLEAN NOT NULL DEFAULT TRUE,
    rating        DOUBLE PRECISION NOT NULL DEFAULT 5.0,
    credential    TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL,
    updated_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS rides (
    id               TEXT PRIMARY KEY,
    rider_id         TEXT NOT NULL,
    driver_id        TEXT,
    pickup_lat       DOUBLE PRECISION NOT NULL,
    pickup_lng       DOUBLE PRECISION NOT NULL,
    dropoff_lat      DOUBLE PRECISION NOT NULL,
    dropoff_lng      DOUBLE PRECISION NOT NULL,
    distance_km      DOUBLE PRECISION,
    duration_min     DOUBLE PRECISION,
    fare_estimate    DOUBLE PRECISION,
    surge_multiplier DOUBLE PRECISION,
    status           TEXT NOT NULL,
    status_version   INTEGER NOT NULL DEFAULT 0,
    created_at       TIMESTAMPTZ NOT NULL,
    updated_at       TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rides_status ON rides (status);
CREATE INDEX IF NOT EXISTS idx_rides_rider ON rides (rider_id);

CREATE TABLE IF NOT EXISTS location_snapshots (
    id          BIGSERIAL PRIMARY KEY,
    driver_id   TEXT NOT NULL,
    lat         DOUBLE PRECISION NOT NULL,
    lng         DOUBLE PRECISION NOT NULL,
    recorded_at TIMESTAMPTZ NOT NULL
);
`

// Migrate creates the schema on startup. Statements are idempotent so every
// instance can run them unconditionally.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
