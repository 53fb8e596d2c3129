// Package router turns a finished catalogue into a routing graph and answers
// fastest-itinerary queries over it.
//
// Each stop i contributes two vertices: 2i, where a passenger arrives, and
// 2i+1, where they sit on a departing bus. A wait edge joins the two, and ride
// edges join the departure vertex of one stop to the arrival vertex of every
// later stop on the same bus.
package router

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"transitcatalogue.org/internal/catalogue"
	"transitcatalogue.org/internal/clock"
	"transitcatalogue.org/internal/graph"
	"transitcatalogue.org/internal/logging"
	"transitcatalogue.org/internal/metrics"
)

// ErrUnknownStop is returned by BuildRoute for a stop name missing from the catalogue.
var ErrUnknownStop = catalogue.ErrUnknownStop

// Settings configures the routing graph.
type Settings struct {
	// BusWaitTime is the wait at every stop, in minutes.
	BusWaitTime int `json:"bus_wait_time" yaml:"bus_wait_time" validate:"min=1,max=1000"`
	// BusVelocity is the speed of every bus, in km/h.
	BusVelocity int `json:"bus_velocity" yaml:"bus_velocity" validate:"min=1,max=1000"`
}

// metersPerMinute converts BusVelocity to the unit the edge weights need.
func (s Settings) metersPerMinute() float64 {
	return float64(s.BusVelocity) * 1000 / 60.0
}

// Observer receives routing telemetry. *metrics.Metrics satisfies it.
type Observer interface {
	GraphBuilt(elapsed time.Duration, edges int)
	RouteQueried(result string)
}

type state int

const (
	unbuilt state = iota
	built
)

// TransportRouter owns the routing graph for one catalogue. The graph is built
// once, on the first query or an explicit Build, and is read-only afterwards.
type TransportRouter struct {
	catalogue *catalogue.Catalogue
	settings  Settings
	clock     clock.Clock
	observer  Observer
	logger    *slog.Logger

	mu     sync.Mutex
	state  state
	graph  *graph.DirectedWeightedGraph[float64]
	engine *graph.Router[float64]
	items  []Item // indexed by graph.EdgeID
}

// Option customises a TransportRouter.
type Option func(*TransportRouter)

// WithObserver reports graph builds and route queries to o.
func WithObserver(o Observer) Option {
	return func(r *TransportRouter) { r.observer = o }
}

// WithClock replaces the clock used to time graph builds.
func WithClock(c clock.Clock) Option {
	return func(r *TransportRouter) { r.clock = c }
}

// WithLogger sets the logger used for build diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(r *TransportRouter) { r.logger = l }
}

// New returns an unbuilt router over c. c must be fully populated before the
// first query.
func New(c *catalogue.Catalogue, settings Settings, opts ...Option) *TransportRouter {
	r := &TransportRouter{
		catalogue: c,
		settings:  settings,
		clock:     clock.RealClock{},
		logger:    slog.Default().With(slog.String("component", "router")),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Settings returns the routing settings the graph is built with.
func (r *TransportRouter) Settings() Settings {
	return r.settings
}

// Build constructs the routing graph. Calls after the first successful one do nothing.
func (r *TransportRouter) Build() error {
	return r.BuildContext(context.Background())
}

// BuildContext is Build with cancellation. A build interrupted by ctx leaves
// the router unbuilt, so a later call starts over.
func (r *TransportRouter) BuildContext(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buildLocked(ctx)
}

// Built reports whether the graph has been constructed.
func (r *TransportRouter) Built() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == built
}

// EdgeCount returns the number of edges in the graph, or 0 before Build.
func (r *TransportRouter) EdgeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != built {
		return 0
	}
	return r.graph.EdgeCount()
}

func (r *TransportRouter) buildLocked(ctx context.Context) error {
	if r.state == built {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("route graph build: %w", err)
	}
	start := r.clock.Now()

	stops := r.catalogue.Stops()
	g := graph.New[float64](2 * len(stops))
	var items []Item

	addEdge := func(from, to graph.VertexID, item Item) error {
		if _, err := g.AddEdge(graph.Edge[float64]{From: from, To: to, Weight: item.Minutes()}); err != nil {
			return err
		}
		items = append(items, item)
		return nil
	}

	wait := float64(r.settings.BusWaitTime)
	for _, stop := range stops {
		if err := addEdge(arrive(stop.ID), depart(stop.ID), WaitItem{StopName: stop.Name, Time: wait}); err != nil {
			return fmt.Errorf("wait edge at %q: %w", stop.Name, err)
		}
	}

	speed := r.settings.metersPerMinute()
	for _, bus := range r.catalogue.SortedBuses() {
		if err := ctx.Err(); err != nil {
			return r.abortBuild(start, err)
		}
		if err := r.addRideEdges(ctx, bus, speed, addEdge); err != nil {
			if ctx.Err() != nil {
				return r.abortBuild(start, err)
			}
			return err
		}
	}

	r.graph = g
	r.engine = graph.NewRouter(g)
	r.items = items
	r.state = built

	elapsed := r.clock.Since(start)
	logging.LogOperation(r.logger, "route_graph_built",
		slog.Int("vertices", g.VertexCount()),
		slog.Int("edges", g.EdgeCount()),
		slog.Duration("duration", elapsed))
	if r.observer != nil {
		r.observer.GraphBuilt(elapsed, g.EdgeCount())
	}
	return nil
}

func (r *TransportRouter) abortBuild(start time.Time, err error) error {
	logger := r.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("route_graph_build_aborted",
		slog.String("error", err.Error()),
		slog.Duration("duration", r.clock.Since(start)))
	return fmt.Errorf("route graph build: %w", err)
}

// addRideEdges inserts an edge from every stop of bus to every later stop.
// prefix[ri] holds the road distance from the current start stop li to stop
// ri; advancing li subtracts the hop just left behind from every entry.
func (r *TransportRouter) addRideEdges(ctx context.Context, bus catalogue.Bus, speed float64, addEdge func(from, to graph.VertexID, item Item) error) error {
	route := bus.Stops
	if len(route) < 2 {
		return nil
	}

	prefix := make([]int, len(route))
	for i := 1; i < len(route); i++ {
		d, ok := r.catalogue.Distance(route[i-1], route[i])
		if !ok {
			from, to := r.catalogue.Stop(route[i-1]), r.catalogue.Stop(route[i])
			return fmt.Errorf("bus %q: %w from %q to %q", bus.Name, catalogue.ErrMissingDistance, from.Name, to.Name)
		}
		prefix[i] = prefix[i-1] + d
	}

	for li := 0; li+1 < len(route); li++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for ri := li + 1; ri < len(route); ri++ {
			item := RideItem{
				Bus:       bus.Name,
				SpanCount: ri - li,
				Time:      float64(prefix[ri]) / speed,
			}
			if err := addEdge(depart(route[li]), arrive(route[ri]), item); err != nil {
				return fmt.Errorf("ride edge on bus %q: %w", bus.Name, err)
			}
		}

		hop := prefix[li+1]
		for k := li + 1; k < len(route); k++ {
			prefix[k] -= hop
		}
	}
	return nil
}

// BuildRoute returns the fastest itinerary between two stops, building the
// graph first if needed. found is false when to cannot be reached from from.
func (r *TransportRouter) BuildRoute(from, to string) (Itinerary, bool, error) {
	return r.BuildRouteContext(context.Background(), from, to)
}

// BuildRouteContext is BuildRoute with ctx bounding the graph build.
func (r *TransportRouter) BuildRouteContext(ctx context.Context, from, to string) (itinerary Itinerary, found bool, err error) {
	defer func() {
		if r.observer == nil {
			return
		}
		switch {
		case err != nil:
			r.observer.RouteQueried(metrics.RouteError)
		case found:
			r.observer.RouteQueried(metrics.RouteFound)
		default:
			r.observer.RouteQueried(metrics.RouteNotFound)
		}
	}()

	fromStop, ok := r.catalogue.FindStop(from)
	if !ok {
		return Itinerary{}, false, fmt.Errorf("%w: %q", ErrUnknownStop, from)
	}
	toStop, ok := r.catalogue.FindStop(to)
	if !ok {
		return Itinerary{}, false, fmt.Errorf("%w: %q", ErrUnknownStop, to)
	}

	engine, items, err := r.snapshot(ctx)
	if err != nil {
		return Itinerary{}, false, err
	}

	route, found, err := engine.BuildRoute(arrive(fromStop.ID), arrive(toStop.ID))
	if err != nil || !found {
		return Itinerary{}, false, err
	}

	itinerary = Itinerary{
		TotalTime: route.Weight,
		Items:     make([]Item, 0, len(route.Edges)),
	}
	for _, id := range route.Edges {
		itinerary.Items = append(itinerary.Items, items[id])
	}
	return itinerary, true, nil
}

// snapshot builds the graph if needed and returns the read-only parts queries use.
func (r *TransportRouter) snapshot(ctx context.Context) (*graph.Router[float64], []Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.buildLocked(ctx); err != nil {
		return nil, nil, err
	}
	return r.engine, r.items, nil
}

func arrive(id catalogue.StopID) graph.VertexID {
	return graph.VertexID(2 * id)
}

func depart(id catalogue.StopID) graph.VertexID {
	return graph.VertexID(2*id + 1)
}
