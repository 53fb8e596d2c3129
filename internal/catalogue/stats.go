package catalogue

import (
	"fmt"
	"slices"

	"transitcatalogue.org/internal/geo"
)

// BusInfo computes route statistics for the named bus. An unknown name yields
// a zero BusInfo with Found unset. ErrMissingDistance means the ingestion
// phase never declared a distance this bus needs.
func (c *Catalogue) BusInfo(name string) (BusInfo, error) {
	bus, ok := c.FindBus(name)
	if !ok {
		return BusInfo{}, nil
	}

	length, err := c.routeLength(bus)
	if err != nil {
		return BusInfo{}, err
	}

	info := BusInfo{
		Found:           true,
		RouteLength:     length,
		UniqueStopCount: uniqueStops(bus),
		StopCount:       len(bus.Stops),
	}

	geoLength := geo.PathLength(c.RouteCoordinates(bus))
	if geoLength != 0 {
		info.Curvature = float64(length) / geoLength
	}
	return info, nil
}

// StopInfo returns the buses serving the named stop.
func (c *Catalogue) StopInfo(name string) StopInfo {
	id, ok := c.stopsByName[name]
	if !ok {
		return StopInfo{}
	}

	buses := make([]string, 0, len(c.stopBuses[id]))
	for bus := range c.stopBuses[id] {
		buses = append(buses, bus)
	}
	slices.Sort(buses)
	return StopInfo{Found: true, Buses: buses}
}

func (c *Catalogue) routeLength(bus Bus) (int, error) {
	total := 0
	for i := 1; i < len(bus.Stops); i++ {
		d, ok := c.Distance(bus.Stops[i-1], bus.Stops[i])
		if !ok {
			return 0, fmt.Errorf("bus %q: %w from %q to %q", bus.Name, ErrMissingDistance,
				c.stops[bus.Stops[i-1]].Name, c.stops[bus.Stops[i]].Name)
		}
		total += d
	}
	return total, nil
}

func uniqueStops(bus Bus) int {
	seen := make(map[StopID]struct{}, len(bus.Stops))
	for _, id := range bus.Stops {
		seen[id] = struct{}{}
	}
	return len(seen)
}
