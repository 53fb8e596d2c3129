package gtfs

import (
	"fmt"
	"math"
	"slices"

	"github.com/OneBusAway/go-gtfs"
	"transitcatalogue.org/internal/geo"
	"transitcatalogue.org/internal/requests"
)

// Convert turns parsed static data into base requests.
//
// Stops without coordinates are dropped, and stop names shared by several
// stops are suffixed with the stop id. Each route becomes one bus over its
// longest trip; the bus is a round trip when that trip ends where it
// started. Consecutive stops are given the shape_dist_traveled difference as
// road distance when the feed has it, else the great-circle distance rounded up.
// Measured distances take precedence over estimates whichever route comes first.
func Convert(static *gtfs.Static) []requests.BaseRequest {
	names := stopNames(static.Stops)

	stops := make(map[string]*requests.AddStop, len(names))
	var stopOrder []string
	for _, s := range static.Stops {
		name, ok := names[s.Id]
		if !ok {
			continue
		}
		stops[s.Id] = &requests.AddStop{
			Name:          name,
			Latitude:      *s.Latitude,
			Longitude:     *s.Longitude,
			RoadDistances: map[string]int{},
		}
		stopOrder = append(stopOrder, s.Id)
	}

	longest := longestTrips(static.Trips, stops)

	estimated := map[[2]string]bool{}
	var buses []requests.BaseRequest
	busNames := map[string]int{}
	for _, route := range static.Routes {
		stopTimes, ok := longest[route.Id]
		if !ok {
			continue
		}

		bus := requests.AddBus{Name: busName(route)}
		busNames[bus.Name]++
		if busNames[bus.Name] > 1 {
			bus.Name = fmt.Sprintf("%s (%s)", bus.Name, route.Id)
		}

		for i, st := range stopTimes {
			bus.Stops = append(bus.Stops, names[st.Stop.Id])
			if i > 0 {
				recordDistance(stops[stopTimes[i-1].Stop.Id], names[st.Stop.Id], stopTimes[i-1], st, estimated)
			}
		}
		bus.IsRoundtrip = len(stopTimes) > 1 && stopTimes[0].Stop.Id == stopTimes[len(stopTimes)-1].Stop.Id
		buses = append(buses, bus)
	}

	base := make([]requests.BaseRequest, 0, len(stopOrder)+len(buses))
	for _, id := range stopOrder {
		base = append(base, *stops[id])
	}
	return append(base, buses...)
}

func stopNames(stops []gtfs.Stop) map[string]string {
	counts := map[string]int{}
	for _, s := range stops {
		if s.Latitude != nil && s.Longitude != nil {
			counts[s.Name]++
		}
	}

	names := make(map[string]string, len(stops))
	for _, s := range stops {
		if s.Latitude == nil || s.Longitude == nil {
			continue
		}
		name := s.Name
		if name == "" {
			name = s.Id
		} else if counts[name] > 1 {
			name = fmt.Sprintf("%s (%s)", name, s.Id)
		}
		names[s.Id] = name
	}
	return names
}

// longestTrips picks, per route id, the stop times of the trip visiting the
// most stops, ordered by stop_sequence. Ties keep the first trip in the feed.
func longestTrips(trips []gtfs.ScheduledTrip, known map[string]*requests.AddStop) map[string][]gtfs.ScheduledStopTime {
	longest := map[string][]gtfs.ScheduledStopTime{}
	for _, trip := range trips {
		if trip.Route == nil {
			continue
		}

		stopTimes := make([]gtfs.ScheduledStopTime, 0, len(trip.StopTimes))
		for _, st := range trip.StopTimes {
			if st.Stop == nil {
				continue
			}
			if _, ok := known[st.Stop.Id]; ok {
				stopTimes = append(stopTimes, st)
			}
		}
		if len(stopTimes) == 0 {
			continue
		}
		slices.SortStableFunc(stopTimes, func(a, b gtfs.ScheduledStopTime) int {
			return a.StopSequence - b.StopSequence
		})

		if len(stopTimes) > len(longest[trip.Route.Id]) {
			longest[trip.Route.Id] = stopTimes
		}
	}
	return longest
}

// recordDistance keeps the first measured distance seen for a pair. A
// great-circle estimate is only kept until a measured value turns up.
func recordDistance(from *requests.AddStop, to string, a, b gtfs.ScheduledStopTime, estimated map[[2]string]bool) {
	key := [2]string{from.Name, to}
	if _, exists := from.RoadDistances[to]; exists && !estimated[key] {
		return
	}

	d, measured := roadDistance(a, b)
	if _, exists := from.RoadDistances[to]; exists && !measured {
		return
	}
	from.RoadDistances[to] = d
	estimated[key] = !measured
}

func roadDistance(a, b gtfs.ScheduledStopTime) (meters int, measured bool) {
	if a.ShapeDistanceTraveled != nil && b.ShapeDistanceTraveled != nil {
		if delta := *b.ShapeDistanceTraveled - *a.ShapeDistanceTraveled; delta > 0 {
			return int(math.Round(delta)), true
		}
	}
	d := geo.Distance(
		geo.Coordinates{Lat: *a.Stop.Latitude, Lng: *a.Stop.Longitude},
		geo.Coordinates{Lat: *b.Stop.Latitude, Lng: *b.Stop.Longitude},
	)
	return int(math.Ceil(d)), false
}

func busName(route gtfs.Route) string {
	switch {
	case route.ShortName != "":
		return route.ShortName
	case route.LongName != "":
		return route.LongName
	default:
		return route.Id
	}
}
