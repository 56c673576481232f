// README: Pure bounding-box proximity filter.
package driver

import "payana/internal/types"

// Fixed km-per-degree constants. The box is an intentional approximation
// valid for the equator-to-mid-latitude band this service targets; corner
// candidates inside the box but outside the true circle may be returned.
const (
	kmPerDegreeLat = 110.574
	kmPerDegreeLng = 111.320

	maxNearbyResults = 50
)

type boundingBox struct {
	minLat, maxLat float64
	minLng, maxLng float64
}

func boxAround(origin types.Point, radiusKm float64) boundingBox {
	dLat := radiusKm / kmPerDegreeLat
	dLng := radiusKm / kmPerDegreeLng
	return boundingBox{
		minLat: origin.Lat - dLat,
		maxLat: origin.Lat + dLat,
		minLng: origin.Lng - dLng,
		maxLng: origin.Lng + dLng,
	}
}

func (b boundingBox) contains(p types.Point) bool {
	return p.Lat >= b.minLat && p.Lat <= b.maxLat &&
		p.Lng >= b.minLng && p.Lng <= b.maxLng
}

// FilterNearby retains candidates that have a location inside the bounding
// box and are currently available, capped at maxNearbyResults. Candidate
// order is preserved.
func FilterNearby(origin types.Point, radiusKm float64, candidates []*Driver) []*Driver {
	box := boxAround(origin, radiusKm)
	out := make([]*Driver, 0, len(candidates))
	for _, d := range candidates {
		if len(out) == maxNearbyResults {
			break
		}
		if d.Location == nil || !d.IsAvailable {
			continue
		}
		if box.contains(*d.Location) {
			out = append(out, d)
		}
	}
	return out
}
