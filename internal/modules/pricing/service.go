// README: Fare and surge estimation. Pure computation; the clock is injected
// so the hour-of-day surge window is deterministic in tests.
package pricing

import (
	"math"
	"time"

	"payana/internal/apperrors"
	"payana/internal/types"
)

const (
	baseFare      = 2.0
	perKmRate     = 1.2
	perMinuteRate = 0.2

	surgePeak    = 1.5
	surgeNight   = 1.2
	surgeRegular = 1.0
)

type Quote struct {
	Fare            float64 `json:"fare"`
	SurgeMultiplier float64 `json:"surge_multiplier"`
}

type Service struct {
	now func() time.Time
}

// NewService builds an estimator. A nil clock falls back to wall time.
func NewService(now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{now: now}
}

// Estimate prices a trip. Duration and hour are optional; a nil hour means
// the current UTC hour. Negative distance or duration is clamped to zero,
// but non-finite values and an out-of-range hour are rejected outright.
func (s *Service) Estimate(distanceKm float64, durationMin *float64, hour *int) (Quote, error) {
	if !types.IsFinite(distanceKm) {
		return Quote{}, apperrors.Validationf("distance_km must be a finite number")
	}
	if durationMin != nil && !types.IsFinite(*durationMin) {
		return Quote{}, apperrors.Validationf("duration_min must be a finite number")
	}
	if hour != nil && (*hour < 0 || *hour > 23) {
		return Quote{}, apperrors.Validationf("hour must be between 0 and 23")
	}

	if distanceKm < 0 {
		distanceKm = 0
	}
	var duration float64
	if durationMin != nil && *durationMin > 0 {
		duration = *durationMin
	}

	h := s.now().UTC().Hour()
	if hour != nil {
		h = *hour
	}
	multiplier := SurgeForHour(h)

	fare := round2((baseFare + perKmRate*distanceKm + perMinuteRate*duration) * multiplier)
	return Quote{Fare: fare, SurgeMultiplier: multiplier}, nil
}

// SurgeForHour returns the time-of-day multiplier: peak during morning and
// evening commute hours, night rate late and early, regular otherwise.
func SurgeForHour(hour int) float64 {
	switch {
	case hour >= 7 && hour <= 9:
		return surgePeak
	case hour >= 17 && hour <= 20:
		return surgePeak
	case hour >= 22 || hour <= 5:
		return surgeNight
	default:
		return surgeRegular
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
