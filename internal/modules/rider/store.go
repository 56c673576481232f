// README: Rider store backed by PostgreSQL.
package rider

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

func (s *PGStore) Create(ctx context.Context, r *Rider) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO riders (id, name, phone, rating, credential, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		string(r.ID), r.Name, r.Phone, r.Rating, r.Credential, r.CreatedAt,
	)
	return err
}

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Rider, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, phone, rating, credential, created_at
		FROM riders WHERE id = $1`, string(id),
	)
	var r Rider
	err := row.Scan(&r.ID, &r.Name, &r.Phone, &r.Rating, &r.Credential, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: rider %s", apperrors.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *PGStore) List(ctx context.Context) ([]*Rider, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, phone, rating, credential, created_at
		FROM riders ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var riders []*Rider
	for rows.Next() {
		var r Rider
		if err := rows.Scan(&r.ID, &r.Name, &r.Phone, &r.Rating, &r.Credential, &r.CreatedAt); err != nil {
			return nil, err
		}
		riders = append(riders, &r)
	}
	return riders, rows.Err()
}

// Credential satisfies identity.CredentialSource.
func (s *PGStore) Credential(ctx context.Context, id types.ID) (string, error) {
	row := s.db.QueryRow(ctx, `SELECT credential FROM riders WHERE id = $1`, string(id))
	var cred string
	err := row.Scan(&cred)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%w: rider %s", apperrors.ErrNotFound, id)
	}
	if err != nil {
		return "", err
	}
	return cred, nil
}
