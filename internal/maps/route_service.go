// README: Google Maps routing proxy used to backfill trip distance and
// duration when the rider does not supply them.
package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"payana/internal/types"
)

type RouteService struct {
	client *maps.Client
}

func NewRouteService(apiKey string) (*RouteService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteService{client: client}, nil
}

// TravelEstimate returns the driving distance in km and duration in minutes
// between two points.
func (s *RouteService) TravelEstimate(ctx context.Context, origin, dest types.Point) (float64, float64, error) {
	r := &maps.DistanceMatrixRequest{
		Origins:      []string{fmt.Sprintf("%f,%f", origin.Lat, origin.Lng)},
		Destinations: []string{fmt.Sprintf("%f,%f", dest.Lat, dest.Lng)},
		Mode:         maps.TravelModeDriving,
		Units:        maps.UnitsMetric,
	}
	resp, err := s.client.DistanceMatrix(ctx, r)
	if err != nil {
		return 0, 0, fmt.Errorf("maps api error: %w", err)
	}
	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return 0, 0, fmt.Errorf("no route found")
	}
	elem := resp.Rows[0].Elements[0]
	if elem.Status != "OK" {
		return 0, 0, fmt.Errorf("no route found: %s", elem.Status)
	}
	return float64(elem.Distance.Meters) / 1000.0, elem.Duration.Minutes(), nil
}
