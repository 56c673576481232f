// README: Ride aggregate and lifecycle state machine.
package ride

import (
	"time"

	"payana/internal/types"
)

type Status string

const (
	StatusRequested Status = "requested"
	StatusAssigned  Status = "assigned"
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// allowedTransitions represents the ride state flow as code. Terminal states
// have no outgoing transitions.
var allowedTransitions = map[Status][]Status{
	StatusRequested: {StatusAssigned, StatusCancelled},
	StatusAssigned:  {StatusOngoing, StatusCancelled},
	StatusOngoing:   {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

func ValidStatus(s Status) bool {
	_, ok := allowedTransitions[s]
	return ok
}

// CanTransition reports whether moving from one status to another is legal.
// Re-applying the current status is always permitted so callers can retry a
// delivered update safely.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	next, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

type Ride struct {
	ID       types.ID    `json:"id"`
	RiderID  types.ID    `json:"rider_id"`
	DriverID *types.ID   `json:"driver_id,omitempty"`
	Pickup   types.Point `json:"pickup"`
	Dropoff  types.Point `json:"dropoff"`
	// Fare and surge, when auto-computed, are fixed at creation time and
	// never recomputed on update.
	DistanceKm      *float64  `json:"distance_km,omitempty"`
	DurationMin     *float64  `json:"duration_min,omitempty"`
	FareEstimate    *float64  `json:"fare_estimate,omitempty"`
	SurgeMultiplier *float64  `json:"surge_multiplier,omitempty"`
	Status          Status    `json:"status"`
	StatusVersion   int       `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
