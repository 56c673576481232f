// README: Ride lifecycle engine: creation with auto-pricing, and the
// authorization decision tree guarding every status/assignment update.
package ride

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"payana/internal/apperrors"
	"payana/internal/identity"
	"payana/internal/modules/pricing"
	"payana/internal/types"
)

var (
	ErrInvalidTransition = fmt.Errorf("%w: invalid status transition", apperrors.ErrConflict)
	// ErrDriverAssigned rejects assignment attempts naming a driver different
	// from the one already on the ride. Assignment happens exactly once.
	ErrDriverAssigned = fmt.Errorf("%w: ride already has a driver", apperrors.ErrConflict)
	// ErrUpdateConflict reports a lost race: the ride changed between the
	// authorization read and the conditional write.
	ErrUpdateConflict = fmt.Errorf("%w: ride was modified concurrently", apperrors.ErrConflict)
)

type Store interface {
	Create(ctx context.Context, r *Ride) error
	Get(ctx context.Context, id types.ID) (*Ride, error)
	List(ctx context.Context, status *Status) ([]*Ride, error)
	// ApplyUpdate performs a conditional write keyed by (id, status,
	// status_version) and reports whether a record was modified.
	ApplyUpdate(ctx context.Context, u Update) (bool, error)
}

// Update is the explicit merge structure for a ride write: only the fields
// carried here change, plus the version bump and timestamp refresh.
type Update struct {
	RideID      types.ID
	FromStatus  Status
	FromVersion int
	ToStatus    Status
	DriverID    *types.ID
	UpdatedAt   time.Time
}

type CredentialVerifier interface {
	Verify(ctx context.Context, role identity.Role, id types.ID, presented string) error
}

// TravelEstimator is the routing proxy used to backfill distance/duration
// when the rider omits them. Optional; best-effort.
type TravelEstimator interface {
	TravelEstimate(ctx context.Context, origin, dest types.Point) (distanceKm, durationMin float64, err error)
}

type Service struct {
	store    Store
	verifier CredentialVerifier
	pricing  *pricing.Service
	router   TravelEstimator
	log      *slog.Logger
}

func NewService(store Store, verifier CredentialVerifier, pricingSvc *pricing.Service, router TravelEstimator, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, verifier: verifier, pricing: pricingSvc, router: router, log: log}
}

type CreateCommand struct {
	RiderID      types.ID
	DriverID     *types.ID
	Pickup       types.Point
	Dropoff      types.Point
	DistanceKm   *float64
	DurationMin  *float64
	FareEstimate *float64
	Status       Status
	Credential   string
}

// Create registers a new ride for a verified rider. When no fare is supplied
// and a distance is known, fare and surge are computed once from the current
// clock hour and fixed on the ride.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Ride, error) {
	if err := cmd.Pickup.Validate(); err != nil {
		return nil, apperrors.Validationf("pickup: %v", err)
	}
	if err := cmd.Dropoff.Validate(); err != nil {
		return nil, apperrors.Validationf("dropoff: %v", err)
	}
	if err := validateOptionalMetric(cmd.DistanceKm, "distance_km"); err != nil {
		return nil, err
	}
	if err := validateOptionalMetric(cmd.DurationMin, "duration_min"); err != nil {
		return nil, err
	}
	if err := validateOptionalMetric(cmd.FareEstimate, "fare_estimate"); err != nil {
		return nil, err
	}
	status := cmd.Status
	if status == "" {
		status = StatusRequested
	}
	if !ValidStatus(status) {
		return nil, apperrors.Validationf("unknown status %q", status)
	}
	if cmd.DriverID != nil {
		if _, err := types.ParseID(string(*cmd.DriverID)); err != nil {
			return nil, fmt.Errorf("%w: driver %s", apperrors.ErrNotFound, *cmd.DriverID)
		}
	}

	if err := s.verifier.Verify(ctx, identity.RoleRider, cmd.RiderID, cmd.Credential); err != nil {
		return nil, err
	}

	distance, duration := cmd.DistanceKm, cmd.DurationMin
	if distance == nil && s.router != nil {
		d, m, err := s.router.TravelEstimate(ctx, cmd.Pickup, cmd.Dropoff)
		if err != nil {
			s.log.Warn("travel estimate unavailable", "error", err)
		} else {
			distance = &d
			if duration == nil {
				duration = &m
			}
		}
	}

	fare, surge := cmd.FareEstimate, (*float64)(nil)
	if fare == nil && distance != nil {
		quote, err := s.pricing.Estimate(*distance, duration, nil)
		if err != nil {
			return nil, err
		}
		fare = &quote.Fare
		surge = &quote.SurgeMultiplier
	}

	now := time.Now().UTC()
	r := &Ride{
		ID:              types.NewID(),
		RiderID:         cmd.RiderID,
		DriverID:        cmd.DriverID,
		Pickup:          cmd.Pickup,
		Dropoff:         cmd.Dropoff,
		DistanceKm:      distance,
		DurationMin:     duration,
		FareEstimate:    fare,
		SurgeMultiplier: surge,
		Status:          status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, err
	}
	s.log.Info("ride created", "ride_id", string(r.ID), "rider_id", string(r.RiderID), "status", string(r.Status))
	return r, nil
}

type UpdateCommand struct {
	RideID     types.ID
	Status     *Status
	DriverID   *types.ID
	Credential string
}

type UpdateResult struct {
	Updated bool `json:"updated"`
}

// Update applies a status change and/or driver assignment. Authorization is
// decided in strict order: an assignment attempt authenticates the proposed
// driver; otherwise a ride with a driver requires that driver's credential
// (cancellation also accepts the rider's); a driverless ride requires the
// rider's. The final write is conditional on the state observed here, so a
// concurrent modification surfaces as a conflict rather than a lost update.
func (s *Service) Update(ctx context.Context, cmd UpdateCommand) (UpdateResult, error) {
	if cmd.Status == nil && cmd.DriverID == nil {
		// No recognized fields: report "no update" without touching
		// authorization or the store.
		return UpdateResult{Updated: false}, nil
	}
	if cmd.Status != nil && !ValidStatus(*cmd.Status) {
		return UpdateResult{}, apperrors.Validationf("unknown status %q", *cmd.Status)
	}
	if cmd.DriverID != nil && *cmd.DriverID == "" {
		return UpdateResult{}, apperrors.Validationf("driver_id must not be empty")
	}

	r, err := s.store.Get(ctx, cmd.RideID)
	if err != nil {
		return UpdateResult{}, err
	}

	update := Update{
		RideID:      r.ID,
		FromStatus:  r.Status,
		FromVersion: r.StatusVersion,
		UpdatedAt:   time.Now().UTC(),
	}

	switch {
	case cmd.DriverID != nil:
		// Assignment attempt: the proposed driver authenticates, never the
		// rider or a previously assigned driver.
		if r.DriverID != nil && *r.DriverID != *cmd.DriverID {
			return UpdateResult{}, ErrDriverAssigned
		}
		if err := s.verifier.Verify(ctx, identity.RoleDriver, *cmd.DriverID, cmd.Credential); err != nil {
			return UpdateResult{}, err
		}
		update.DriverID = cmd.DriverID
		update.ToStatus = StatusAssigned
		if cmd.Status != nil {
			update.ToStatus = *cmd.Status
		}

	case r.DriverID != nil:
		update.ToStatus = *cmd.Status
		if update.ToStatus == StatusCancelled {
			// Either party on the ride may cancel.
			riderErr := s.verifier.Verify(ctx, identity.RoleRider, r.RiderID, cmd.Credential)
			if riderErr != nil {
				if err := s.verifier.Verify(ctx, identity.RoleDriver, *r.DriverID, cmd.Credential); err != nil {
					return UpdateResult{}, err
				}
			}
		} else {
			if err := s.verifier.Verify(ctx, identity.RoleDriver, *r.DriverID, cmd.Credential); err != nil {
				return UpdateResult{}, err
			}
		}

	default:
		update.ToStatus = *cmd.Status
		if err := s.verifier.Verify(ctx, identity.RoleRider, r.RiderID, cmd.Credential); err != nil {
			return UpdateResult{}, err
		}
	}

	if !CanTransition(r.Status, update.ToStatus) {
		return UpdateResult{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, update.ToStatus)
	}

	modified, err := s.store.ApplyUpdate(ctx, update)
	if err != nil {
		return UpdateResult{}, err
	}
	if !modified {
		return UpdateResult{}, ErrUpdateConflict
	}
	s.log.Info("ride updated", "ride_id", string(r.ID), "from", string(r.Status), "to", string(update.ToStatus))
	return UpdateResult{Updated: true}, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Ride, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, status *Status) ([]*Ride, error) {
	if status != nil && !ValidStatus(*status) {
		return nil, apperrors.Validationf("unknown status %q", *status)
	}
	return s.store.List(ctx, status)
}

func validateOptionalMetric(v *float64, field string) error {
	if v == nil {
		return nil
	}
	if !types.IsFinite(*v) || *v < 0 {
		return apperrors.Validationf("%s must be a non-negative finite number", field)
	}
	return nil
}
