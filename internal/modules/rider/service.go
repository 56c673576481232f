// README: Rider registration and lookup.
package rider

import (
	"context"
	"time"

	"payana/internal/apperrors"
	"payana/internal/identity"
	"payana/internal/types"
)

type Store interface {
	Create(ctx context.Context, r *Rider) error
	Get(ctx context.Context, id types.ID) (*Rider, error)
	List(ctx context.Context) ([]*Rider, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

type RegisterCommand struct {
	Name       string
	Phone      string
	Rating     *float64
	Credential string
}

// Register creates a rider. The credential is generated server-side when the
// caller does not supply one; ratings default to 5.
func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (*Rider, error) {
	if cmd.Name == "" {
		return nil, apperrors.Validationf("name is required")
	}
	if cmd.Phone == "" {
		return nil, apperrors.Validationf("phone is required")
	}
	rating := 5.0
	if cmd.Rating != nil {
		if !types.IsFinite(*cmd.Rating) || *cmd.Rating < 0 || *cmd.Rating > 5 {
			return nil, apperrors.Validationf("rating must be between 0 and 5")
		}
		rating = *cmd.Rating
	}
	cred := cmd.Credential
	if cred == "" {
		cred = identity.NewCredential()
	}

	r := &Rider{
		ID:         types.NewID(),
		Name:       cmd.Name,
		Phone:      cmd.Phone,
		Rating:     rating,
		Credential: cred,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Rider, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Rider, error) {
	return s.store.List(ctx)
}
