// Package catalogue is the in-memory store of stops, buses and the road
// distances between stops.
//
// A Catalogue is filled during a single ingestion phase (all stops, then all
// distances, then all buses) and is read-only afterwards. It is not safe for
// concurrent mutation; concurrent readers are fine once ingestion is over.
package catalogue

import (
	"errors"
	"fmt"
	"slices"

	"github.com/tidwall/rtree"
	"transitcatalogue.org/internal/geo"
)

var (
	// ErrUnknownStop is returned when an operation names a stop that was never added.
	ErrUnknownStop = errors.New("unknown stop")

	// ErrUnknownBus is returned when an operation names a bus that was never added.
	ErrUnknownBus = errors.New("unknown bus")

	// ErrDuplicateStop is returned when a stop name is added twice.
	ErrDuplicateStop = errors.New("duplicate stop")

	// ErrDuplicateBus is returned when a bus name is added twice.
	ErrDuplicateBus = errors.New("duplicate bus")

	// ErrMissingDistance is returned when a bus uses a pair of consecutive stops
	// with no recorded road distance.
	ErrMissingDistance = errors.New("missing road distance")
)

// StopID is the ingestion-order index of a stop. It is stable for the lifetime
// of the catalogue.
type StopID int

// Stop is a named geographic point.
type Stop struct {
	ID     StopID
	Name   string
	Coords geo.Coordinates
}

// Bus is a named route over stops. Stops holds the effective route: a linear
// bus is stored already expanded into its there-and-back loop.
type Bus struct {
	Name        string
	Stops       []StopID
	IsRoundtrip bool
}

// BusInfo describes a bus route.
type BusInfo struct {
	Found           bool
	RouteLength     int
	UniqueStopCount int
	StopCount       int
	Curvature       float64
}

// StopInfo lists the buses serving a stop, sorted by name.
type StopInfo struct {
	Found bool
	Buses []string
}

type stopPair struct {
	from, to StopID
}

// Catalogue owns stops and buses and answers point queries about them.
type Catalogue struct {
	stops       []Stop
	stopsByName map[string]StopID
	stopBuses   []map[string]struct{}

	buses       []Bus
	busesByName map[string]int

	distances map[stopPair]int

	spatial rtree.RTreeG[StopID]
}

// New returns an empty catalogue.
func New() *Catalogue {
	return &Catalogue{
		stopsByName: make(map[string]StopID),
		busesByName: make(map[string]int),
		distances:   make(map[stopPair]int),
	}
}

// AddStop appends a stop and gives it an empty bus-membership set. A name
// that is already present is rejected with ErrDuplicateStop, not overwritten.
func (c *Catalogue) AddStop(name string, coords geo.Coordinates) (StopID, error) {
	if _, exists := c.stopsByName[name]; exists {
		return 0, fmt.Errorf("%w: %q", ErrDuplicateStop, name)
	}

	id := StopID(len(c.stops))
	c.stops = append(c.stops, Stop{ID: id, Name: name, Coords: coords})
	c.stopsByName[name] = id
	c.stopBuses = append(c.stopBuses, make(map[string]struct{}))

	point := [2]float64{coords.Lat, coords.Lng}
	c.spatial.Insert(point, point, id)

	return id, nil
}

// AddDistance records the road distance from one stop to another. The
// reverse direction defaults to the same value unless it has already been
// recorded; an explicit reverse declaration made later overwrites the default.
func (c *Catalogue) AddDistance(from, to string, meters int) error {
	fromID, ok := c.stopsByName[from]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStop, from)
	}
	toID, ok := c.stopsByName[to]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStop, to)
	}

	c.distances[stopPair{fromID, toID}] = meters

	reverse := stopPair{toID, fromID}
	if _, exists := c.distances[reverse]; !exists {
		c.distances[reverse] = meters
	}
	return nil
}

// AddBus registers a bus over the named stops. A non-round-trip bus is
// expanded once, here, into stops followed by the reverse of all but the last.
func (c *Catalogue) AddBus(name string, stopNames []string, isRoundtrip bool) error {
	if _, exists := c.busesByName[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateBus, name)
	}

	route := make([]StopID, 0, effectiveLength(len(stopNames), isRoundtrip))
	for _, stopName := range stopNames {
		id, ok := c.stopsByName[stopName]
		if !ok {
			return fmt.Errorf("bus %q: %w: %q", name, ErrUnknownStop, stopName)
		}
		route = append(route, id)
	}
	if !isRoundtrip && len(route) > 1 {
		for i := len(route) - 2; i >= 0; i-- {
			route = append(route, route[i])
		}
	}

	c.busesByName[name] = len(c.buses)
	c.buses = append(c.buses, Bus{Name: name, Stops: route, IsRoundtrip: isRoundtrip})
	for _, id := range route {
		c.stopBuses[id][name] = struct{}{}
	}
	return nil
}

func effectiveLength(n int, isRoundtrip bool) int {
	if isRoundtrip || n < 2 {
		return n
	}
	return 2*n - 1
}

// FindStop looks a stop up by exact name.
func (c *Catalogue) FindStop(name string) (Stop, bool) {
	id, ok := c.stopsByName[name]
	if !ok {
		return Stop{}, false
	}
	return c.stops[id], true
}

// FindBus looks a bus up by exact name.
func (c *Catalogue) FindBus(name string) (Bus, bool) {
	idx, ok := c.busesByName[name]
	if !ok {
		return Bus{}, false
	}
	return c.buses[idx], true
}

// Stop returns the stop with the given id. It panics on an id the catalogue
// never handed out.
func (c *Catalogue) Stop(id StopID) Stop {
	return c.stops[id]
}

// Stops returns every stop in ingestion order.
func (c *Catalogue) Stops() []Stop {
	return slices.Clone(c.stops)
}

// StopCount returns the number of stops.
func (c *Catalogue) StopCount() int {
	return len(c.stops)
}

// BusCount returns the number of buses.
func (c *Catalogue) BusCount() int {
	return len(c.buses)
}

// DistanceCount returns the number of directed distances recorded, defaults included.
func (c *Catalogue) DistanceCount() int {
	return len(c.distances)
}

// Distance returns the directed road distance between two stops.
func (c *Catalogue) Distance(from, to StopID) (int, bool) {
	d, ok := c.distances[stopPair{from, to}]
	return d, ok
}

// SortedBuses returns all buses ordered by name.
func (c *Catalogue) SortedBuses() []Bus {
	buses := slices.Clone(c.buses)
	slices.SortFunc(buses, func(a, b Bus) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return buses
}

// StopsOnRoutes returns, ordered by name, every stop that at least one bus visits.
func (c *Catalogue) StopsOnRoutes() []Stop {
	var stops []Stop
	for id, buses := range c.stopBuses {
		if len(buses) > 0 {
			stops = append(stops, c.stops[id])
		}
	}
	slices.SortFunc(stops, func(a, b Stop) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return stops
}

// RouteCoordinates returns the coordinates of the bus's effective route.
func (c *Catalogue) RouteCoordinates(bus Bus) []geo.Coordinates {
	points := make([]geo.Coordinates, 0, len(bus.Stops))
	for _, id := range bus.Stops {
		points = append(points, c.stops[id].Coords)
	}
	return points
}

// BusRoute returns the stops of the named bus's effective route, in travel order.
func (c *Catalogue) BusRoute(name string) ([]Stop, error) {
	bus, ok := c.FindBus(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBus, name)
	}
	stops := make([]Stop, 0, len(bus.Stops))
	for _, id := range bus.Stops {
		stops = append(stops, c.stops[id])
	}
	return stops, nil
}
