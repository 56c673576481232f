// README: Shared identifier and geographic point value types.
package types

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

type ID string

// NewID returns a fresh store-native identifier rendered as a string.
func NewID() ID {
	return ID(uuid.NewString())
}

// ParseID rejects malformed identifier strings. Callers treat a parse
// failure the same as an unknown identity.
func ParseID(s string) (ID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("malformed id %q: %w", s, err)
	}
	return ID(s), nil
}

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate checks that both coordinates are finite and within geographic bounds.
func (p Point) Validate() error {
	if !IsFinite(p.Lat) || !IsFinite(p.Lng) {
		return fmt.Errorf("coordinates must be finite numbers")
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("latitude must be between -90 and 90")
	}
	if p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("longitude must be between -180 and 180")
	}
	return nil
}

func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
