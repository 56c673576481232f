// README: Driver registration, credential-gated location updates, and the
// nearby-driver query.
package driver

import (
	"context"
	"log/slog"
	"time"

	"payana/internal/apperrors"
	"payana/internal/identity"
	"payana/internal/types"
)

type Store interface {
	Create(ctx context.Context, d *Driver) error
	Get(ctx context.Context, id types.ID) (*Driver, error)
	List(ctx context.Context) ([]*Driver, error)
	// UpdateLocation reports whether a stored record was modified.
	UpdateLocation(ctx context.Context, id types.ID, p types.Point, at time.Time) (bool, error)
	// NearbyCandidates returns drivers that may fall inside the search box.
	// The result is a superset; FilterNearby is authoritative.
	NearbyCandidates(ctx context.Context, origin types.Point, radiusKm float64) ([]*Driver, error)
}

// CredentialVerifier is the slice of the identity verifier this service needs.
type CredentialVerifier interface {
	Verify(ctx context.Context, role identity.Role, id types.ID, presented string) error
}

type Service struct {
	store    Store
	verifier CredentialVerifier
	log      *slog.Logger
}

func NewService(store Store, verifier CredentialVerifier, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, verifier: verifier, log: log}
}

type RegisterCommand struct {
	Name        string
	Phone       string
	Vehicle     Vehicle
	Location    *types.Point
	IsAvailable *bool
	Rating      *float64
	Credential  string
}

func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (*Driver, error) {
	if cmd.Name == "" {
		return nil, apperrors.Validationf("name is required")
	}
	if cmd.Phone == "" {
		return nil, apperrors.Validationf("phone is required")
	}
	if cmd.Vehicle.Make == "" || cmd.Vehicle.Model == "" || cmd.Vehicle.Plate == "" {
		return nil, apperrors.Validationf("vehicle make, model and plate are required")
	}
	if cmd.Location != nil {
		if err := cmd.Location.Validate(); err != nil {
			return nil, apperrors.Validationf("location: %v", err)
		}
	}
	rating := 5.0
	if cmd.Rating != nil {
		if !types.IsFinite(*cmd.Rating) || *cmd.Rating < 0 || *cmd.Rating > 5 {
			return nil, apperrors.Validationf("rating must be between 0 and 5")
		}
		rating = *cmd.Rating
	}
	available := true
	if cmd.IsAvailable != nil {
		available = *cmd.IsAvailable
	}
	cred := cmd.Credential
	if cred == "" {
		cred = identity.NewCredential()
	}

	now := time.Now().UTC()
	d := &Driver{
		ID:          types.NewID(),
		Name:        cmd.Name,
		Phone:       cmd.Phone,
		Vehicle:     cmd.Vehicle,
		Location:    cmd.Location,
		IsAvailable: available,
		Rating:      rating,
		Credential:  cred,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// UpdateLocation is self-service: the credential must belong to the driver
// named in the request.
func (s *Service) UpdateLocation(ctx context.Context, id types.ID, p types.Point, credential string) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, apperrors.Validationf("%v", err)
	}
	if err := s.verifier.Verify(ctx, identity.RoleDriver, id, credential); err != nil {
		return false, err
	}
	updated, err := s.store.UpdateLocation(ctx, id, p, time.Now().UTC())
	if err != nil {
		return false, err
	}
	s.log.Debug("driver location updated", "driver_id", string(id), "lat", p.Lat, "lng", p.Lng)
	return updated, nil
}

// Nearby returns available drivers inside the approximate bounding box
// around the origin, capped at 50.
func (s *Service) Nearby(ctx context.Context, origin types.Point, radiusKm float64) ([]*Driver, error) {
	if err := origin.Validate(); err != nil {
		return nil, apperrors.Validationf("%v", err)
	}
	if !types.IsFinite(radiusKm) || radiusKm <= 0 {
		return nil, apperrors.Validationf("radius_km must be a positive finite number")
	}
	candidates, err := s.store.NearbyCandidates(ctx, origin, radiusKm)
	if err != nil {
		return nil, err
	}
	return FilterNearby(origin, radiusKm, candidates), nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Driver, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Driver, error) {
	return s.store.List(ctx)
}
