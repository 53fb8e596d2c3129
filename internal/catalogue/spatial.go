package catalogue

import (
	"slices"

	"transitcatalogue.org/internal/geo"
)

// NearbyStops returns the stops within radius meters of (lat, lon), nearest first.
func (c *Catalogue) NearbyStops(lat, lon, radius float64) []Stop {
	bounds := geo.CalculateBounds(lat, lon, radius)
	center := geo.Coordinates{Lat: lat, Lng: lon}

	type candidate struct {
		stop     Stop
		distance float64
	}
	var candidates []candidate

	c.spatial.Search(
		[2]float64{bounds.MinLat, bounds.MinLon},
		[2]float64{bounds.MaxLat, bounds.MaxLon},
		func(_, _ [2]float64, id StopID) bool {
			stop := c.stops[id]
			if d := geo.Distance(center, stop.Coords); d <= radius {
				candidates = append(candidates, candidate{stop: stop, distance: d})
			}
			return true
		},
	)

	slices.SortFunc(candidates, func(a, b candidate) int {
		switch {
		case a.distance < b.distance:
			return -1
		case a.distance > b.distance:
			return 1
		case a.stop.Name < b.stop.Name:
			return -1
		case a.stop.Name > b.stop.Name:
			return 1
		}
		return 0
	})

	stops := make([]Stop, 0, len(candidates))
	for _, cand := range candidates {
		stops = append(stops, cand.stop)
	}
	return stops
}
