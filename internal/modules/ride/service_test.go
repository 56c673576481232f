package ride

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"payana/internal/apperrors"
	"payana/internal/identity"
	"payana/internal/modules/pricing"
	"payana/internal/types"
)

// fakeStore is an in-memory Store with the same compare-and-swap semantics
// as the Postgres implementation.
type fakeStore struct {
	mu    sync.Mutex
	rides map[types.ID]*Ride
}

func newFakeStore() *fakeStore {
	return &fakeStore{rides: make(map[types.ID]*Ride)}
}

func (f *fakeStore) Create(_ context.Context, r *Ride) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *r
	f.rides[r.ID] = &cp
	return nil
}

func (f *fakeStore) Get(_ context.Context, id types.ID) (*Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rides[id]
	if !ok {
		return nil, fmt.Errorf("%w: ride %s", apperrors.ErrNotFound, id)
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStore) List(_ context.Context, status *Status) ([]*Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Ride
	for _, r := range f.rides {
		if status == nil || r.Status == *status {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeStore) ApplyUpdate(_ context.Context, u Update) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rides[u.RideID]
	if !ok || r.Status != u.FromStatus || r.StatusVersion != u.FromVersion {
		return false, nil
	}
	r.Status = u.ToStatus
	r.StatusVersion++
	if u.DriverID != nil {
		d := *u.DriverID
		r.DriverID = &d
	}
	r.UpdatedAt = u.UpdatedAt
	return true, nil
}

type mapSource map[types.ID]string

func (m mapSource) Credential(_ context.Context, id types.ID) (string, error) {
	cred, ok := m[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", apperrors.ErrNotFound, id)
	}
	return cred, nil
}

type fixture struct {
	svc          *Service
	store        *fakeStore
	riderID      types.ID
	riderCred    string
	driverID     types.ID
	driverCred   string
	otherID      types.ID
	otherCred    string
	thirdPartyID types.ID
	thirdCred    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:        newFakeStore(),
		riderID:      types.NewID(),
		riderCred:    identity.NewCredential(),
		driverID:     types.NewID(),
		driverCred:   identity.NewCredential(),
		otherID:      types.NewID(),
		otherCred:    identity.NewCredential(),
		thirdPartyID: types.NewID(),
		thirdCred:    identity.NewCredential(),
	}
	riders := mapSource{f.riderID: f.riderCred}
	drivers := mapSource{
		f.driverID:     f.driverCred,
		f.otherID:      f.otherCred,
		f.thirdPartyID: f.thirdCred,
	}
	verifier := identity.NewVerifier(riders, drivers)
	pricingSvc := pricing.NewService(func() time.Time {
		return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	})
	f.svc = NewService(f.store, verifier, pricingSvc, nil, nil)
	return f
}

func (f *fixture) createRide(t *testing.T, cmd CreateCommand) *Ride {
	t.Helper()
	if cmd.RiderID == "" {
		cmd.RiderID = f.riderID
	}
	if cmd.Credential == "" {
		cmd.Credential = f.riderCred
	}
	cmd.Pickup = types.Point{Lat: 12.97, Lng: 77.59}
	cmd.Dropoff = types.Point{Lat: 12.93, Lng: 77.62}
	r, err := f.svc.Create(context.Background(), cmd)
	if err != nil {
		t.Fatalf("create ride: %v", err)
	}
	return r
}

func (f *fixture) getRide(t *testing.T, id types.ID) *Ride {
	t.Helper()
	r, err := f.svc.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get ride: %v", err)
	}
	return r
}

func ptrStatus(s Status) *Status { return &s }
func ptrID(id types.ID) *types.ID {
	return &id
}
func ptrFloat(v float64) *float64 { return &v }

func TestCreateDefaultsToRequested(t *testing.T) {
	f := newFixture(t)
	r := f.createRide(t, CreateCommand{})
	if r.Status != StatusRequested {
		t.Fatalf("expected status requested, got %s", r.Status)
	}
	if r.FareEstimate != nil {
		t.Fatal("expected no fare without a distance")
	}
}

func TestCreateAutoPricesWhenDistancePresent(t *testing.T) {
	f := newFixture(t)
	r := f.createRide(t, CreateCommand{
		DistanceKm:  ptrFloat(10),
		DurationMin: ptrFloat(20),
	})
	if r.FareEstimate == nil || r.SurgeMultiplier == nil {
		t.Fatal("expected fare and surge to be computed")
	}
	// Fixed clock hour 12 is off-peak: 2.0 + 12.0 + 4.0 at multiplier 1.0.
	if *r.FareEstimate != 18.0 {
		t.Fatalf("expected fare 18.0, got %v", *r.FareEstimate)
	}
	if *r.SurgeMultiplier != 1.0 {
		t.Fatalf("expected multiplier 1.0, got %v", *r.SurgeMultiplier)
	}
}

func TestCreateKeepsSuppliedFare(t *testing.T) {
	f := newFixture(t)
	r := f.createRide(t, CreateCommand{
		DistanceKm:   ptrFloat(10),
		FareEstimate: ptrFloat(99.5),
	})
	if *r.FareEstimate != 99.5 {
		t.Fatalf("expected supplied fare kept, got %v", *r.FareEstimate)
	}
	if r.SurgeMultiplier != nil {
		t.Fatal("expected no surge recorded for a supplied fare")
	}
}

func TestCreateRequiresRiderCredential(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateCommand{
		RiderID:    f.riderID,
		Pickup:     types.Point{Lat: 1, Lng: 1},
		Dropoff:    types.Point{Lat: 2, Lng: 2},
		Credential: "wrong",
	})
	if !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	_, err = f.svc.Create(ctx, CreateCommand{
		RiderID:    types.NewID(),
		Pickup:     types.Point{Lat: 1, Lng: 1},
		Dropoff:    types.Point{Lat: 2, Lng: 2},
		Credential: f.riderCred,
	})
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found for unknown rider, got %v", err)
	}
}

func TestCreateRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	valid := types.Point{Lat: 1, Lng: 1}

	cases := []struct {
		name string
		cmd  CreateCommand
	}{
		{"bad pickup", CreateCommand{RiderID: f.riderID, Pickup: types.Point{Lat: 91, Lng: 0}, Dropoff: valid, Credential: f.riderCred}},
		{"negative distance", CreateCommand{RiderID: f.riderID, Pickup: valid, Dropoff: valid, DistanceKm: ptrFloat(-1), Credential: f.riderCred}},
		{"unknown status", CreateCommand{RiderID: f.riderID, Pickup: valid, Dropoff: valid, Status: "pending", Credential: f.riderCred}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.Create(ctx, tc.cmd); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestAssignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("correct driver credential assigns", func(t *testing.T) {
		r := f.createRide(t, CreateCommand{})
		res, err := f.svc.Update(ctx, UpdateCommand{
			RideID:     r.ID,
			DriverID:   ptrID(f.driverID),
			Credential: f.driverCred,
		})
		if err != nil {
			t.Fatalf("assign: %v", err)
		}
		if !res.Updated {
			t.Fatal("expected updated=true")
		}
		got := f.getRide(t, r.ID)
		if got.Status != StatusAssigned {
			t.Fatalf("expected status assigned, got %s", got.Status)
		}
		if got.DriverID == nil || *got.DriverID != f.driverID {
			t.Fatal("expected driver recorded on the ride")
		}
	})

	t.Run("wrong credential leaves ride unchanged", func(t *testing.T) {
		r := f.createRide(t, CreateCommand{})
		_, err := f.svc.Update(ctx, UpdateCommand{
			RideID:     r.ID,
			DriverID:   ptrID(f.driverID),
			Credential: "wrong",
		})
		if !errors.Is(err, apperrors.ErrUnauthorized) {
			t.Fatalf("expected unauthorized, got %v", err)
		}
		got := f.getRide(t, r.ID)
		if got.Status != StatusRequested || got.DriverID != nil {
			t.Fatal("expected ride unchanged after failed assignment")
		}
	})

	t.Run("rider credential cannot assign a driver", func(t *testing.T) {
		r := f.createRide(t, CreateCommand{})
		_, err := f.svc.Update(ctx, UpdateCommand{
			RideID:     r.ID,
			DriverID:   ptrID(f.driverID),
			Credential: f.riderCred,
		})
		if !errors.Is(err, apperrors.ErrUnauthorized) {
			t.Fatalf("expected unauthorized, got %v", err)
		}
	})

	t.Run("reassignment to a different driver is forbidden", func(t *testing.T) {
		r := f.createRide(t, CreateCommand{})
		f.assign(t, r.ID)
		_, err := f.svc.Update(ctx, UpdateCommand{
			RideID:     r.ID,
			DriverID:   ptrID(f.otherID),
			Credential: f.otherCred,
		})
		if !errors.Is(err, ErrDriverAssigned) {
			t.Fatalf("expected reassignment conflict, got %v", err)
		}
		got := f.getRide(t, r.ID)
		if *got.DriverID != f.driverID {
			t.Fatal("expected original driver kept")
		}
	})

	t.Run("unknown proposed driver is not found", func(t *testing.T) {
		r := f.createRide(t, CreateCommand{})
		_, err := f.svc.Update(ctx, UpdateCommand{
			RideID:     r.ID,
			DriverID:   ptrID(types.NewID()),
			Credential: f.driverCred,
		})
		if !errors.Is(err, apperrors.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})
}

func (f *fixture) assign(t *testing.T, rideID types.ID) {
	t.Helper()
	if _, err := f.svc.Update(context.Background(), UpdateCommand{
		RideID:     rideID,
		DriverID:   ptrID(f.driverID),
		Credential: f.driverCred,
	}); err != nil {
		t.Fatalf("assign: %v", err)
	}
}

func TestCancellation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cancel := func(cred string) (UpdateResult, types.ID, error) {
		r := f.createRide(t, CreateCommand{})
		f.assign(t, r.ID)
		res, err := f.svc.Update(ctx, UpdateCommand{
			RideID:     r.ID,
			Status:     ptrStatus(StatusCancelled),
			Credential: cred,
		})
		return res, r.ID, err
	}

	t.Run("rider may cancel an assigned ride", func(t *testing.T) {
		res, id, err := cancel(f.riderCred)
		if err != nil || !res.Updated {
			t.Fatalf("expected cancel to succeed, got %v", err)
		}
		if f.getRide(t, id).Status != StatusCancelled {
			t.Fatal("expected status cancelled")
		}
	})

	t.Run("driver may cancel an assigned ride", func(t *testing.T) {
		res, _, err := cancel(f.driverCred)
		if err != nil || !res.Updated {
			t.Fatalf("expected cancel to succeed, got %v", err)
		}
	})

	t.Run("third party may not cancel", func(t *testing.T) {
		_, id, err := cancel(f.thirdCred)
		if !errors.Is(err, apperrors.ErrUnauthorized) {
			t.Fatalf("expected unauthorized, got %v", err)
		}
		if f.getRide(t, id).Status != StatusAssigned {
			t.Fatal("expected ride still assigned")
		}
	})
}

func TestStatusProgressionRequiresAssignedDriver(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.createRide(t, CreateCommand{})
	f.assign(t, r.ID)

	_, err := f.svc.Update(ctx, UpdateCommand{
		RideID:     r.ID,
		Status:     ptrStatus(StatusOngoing),
		Credential: f.riderCred,
	})
	if !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("expected rider to be rejected for ongoing, got %v", err)
	}

	res, err := f.svc.Update(ctx, UpdateCommand{
		RideID:     r.ID,
		Status:     ptrStatus(StatusOngoing),
		Credential: f.driverCred,
	})
	if err != nil || !res.Updated {
		t.Fatalf("expected driver to progress the ride, got %v", err)
	}
	if f.getRide(t, r.ID).Status != StatusOngoing {
		t.Fatal("expected status ongoing")
	}
}

func TestRiderControlsUnassignedRide(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.createRide(t, CreateCommand{})

	_, err := f.svc.Update(ctx, UpdateCommand{
		RideID:     r.ID,
		Status:     ptrStatus(StatusCancelled),
		Credential: f.driverCred,
	})
	if !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("expected non-rider to be rejected, got %v", err)
	}

	res, err := f.svc.Update(ctx, UpdateCommand{
		RideID:     r.ID,
		Status:     ptrStatus(StatusCancelled),
		Credential: f.riderCred,
	})
	if err != nil || !res.Updated {
		t.Fatalf("expected rider cancel to succeed, got %v", err)
	}
}

func TestNoOpUpdate(t *testing.T) {
	f := newFixture(t)
	r := f.createRide(t, CreateCommand{})

	res, err := f.svc.Update(context.Background(), UpdateCommand{RideID: r.ID})
	if err != nil {
		t.Fatalf("no-op update: %v", err)
	}
	if res.Updated {
		t.Fatal("expected updated=false for an empty payload")
	}

	// An empty payload must not even resolve the ride.
	res, err = f.svc.Update(context.Background(), UpdateCommand{RideID: types.ID("not-a-ride")})
	if err != nil || res.Updated {
		t.Fatalf("expected silent no-op, got %v", err)
	}
}

func TestIdempotentRetry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.createRide(t, CreateCommand{})
	f.assign(t, r.ID)
	before := f.getRide(t, r.ID)

	res, err := f.svc.Update(ctx, UpdateCommand{
		RideID:     r.ID,
		Status:     ptrStatus(StatusAssigned),
		Credential: f.driverCred,
	})
	if err != nil || !res.Updated {
		t.Fatalf("expected retry of applied status to succeed, got %v", err)
	}

	after := f.getRide(t, r.ID)
	if after.Status != before.Status || *after.DriverID != *before.DriverID {
		t.Fatal("expected no state change beyond the version/timestamp refresh")
	}
	if after.StatusVersion != before.StatusVersion+1 {
		t.Fatal("expected a version bump on the re-applied write")
	}
}

func TestInvalidTransition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.createRide(t, CreateCommand{})

	_, err := f.svc.Update(ctx, UpdateCommand{
		RideID:     r.ID,
		Status:     ptrStatus(StatusCompleted),
		Credential: f.riderCred,
	})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestUpdateUnknownRide(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Update(context.Background(), UpdateCommand{
		RideID:     types.NewID(),
		Status:     ptrStatus(StatusCancelled),
		Credential: f.riderCred,
	})
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestConcurrentAssignmentSingleWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.createRide(t, CreateCommand{})

	attempts := []struct {
		id   types.ID
		cred string
	}{
		{f.driverID, f.driverCred},
		{f.otherID, f.otherCred},
		{f.thirdPartyID, f.thirdCred},
	}
	errs := make(chan error, len(attempts))
	start := make(chan struct{})
	var wg sync.WaitGroup

	for _, a := range attempts {
		wg.Add(1)
		go func(id types.ID, cred string) {
			defer wg.Done()
			<-start
			_, err := f.svc.Update(ctx, UpdateCommand{
				RideID:     r.ID,
				DriverID:   ptrID(id),
				Credential: cred,
			})
			errs <- err
		}(a.id, a.cred)
	}

	close(start)
	wg.Wait()
	close(errs)

	success := 0
	for err := range errs {
		if err == nil {
			success++
			continue
		}
		if !errors.Is(err, apperrors.ErrConflict) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if success != 1 {
		t.Fatalf("expected exactly 1 successful assignment, got %d", success)
	}

	got := f.getRide(t, r.ID)
	if got.Status != StatusAssigned || got.DriverID == nil {
		t.Fatal("expected exactly one driver assigned")
	}
}

func TestListWithStatusFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createRide(t, CreateCommand{})
	r := f.createRide(t, CreateCommand{})
	f.assign(t, r.ID)

	assigned, err := f.svc.List(ctx, ptrStatus(StatusAssigned))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(assigned) != 1 || assigned[0].ID != r.ID {
		t.Fatalf("expected one assigned ride, got %d", len(assigned))
	}

	all, err := f.svc.List(ctx, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 rides, got %d", len(all))
	}

	if _, err := f.svc.List(ctx, ptrStatus("bogus")); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
