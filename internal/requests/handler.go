package requests

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"transitcatalogue.org/internal/catalogue"
	"transitcatalogue.org/internal/geo"
	"transitcatalogue.org/internal/logging"
	"transitcatalogue.org/internal/render"
	"transitcatalogue.org/internal/router"
)

// ErrMissingSettings is returned for a Route or Map query when the document
// carries no routing or render settings.
var ErrMissingSettings = errors.New("missing settings")

// Load applies base requests to c: every stop first, then every declared
// distance, then every bus.
func Load(c *catalogue.Catalogue, base []BaseRequest) error {
	var stops []AddStop
	var buses []AddBus
	for _, req := range base {
		switch r := req.(type) {
		case AddStop:
			stops = append(stops, r)
		case AddBus:
			buses = append(buses, r)
		default:
			return fmt.Errorf("%w: %T", ErrUnknownRequestType, req)
		}
	}

	for _, s := range stops {
		if _, err := c.AddStop(s.Name, geo.Coordinates{Lat: s.Latitude, Lng: s.Longitude}); err != nil {
			return err
		}
	}

	for _, s := range stops {
		others := make([]string, 0, len(s.RoadDistances))
		for other := range s.RoadDistances {
			others = append(others, other)
		}
		slices.Sort(others)
		for _, other := range others {
			if err := c.AddDistance(s.Name, other, s.RoadDistances[other]); err != nil {
				return err
			}
		}
	}

	for _, b := range buses {
		if err := c.AddBus(b.Name, b.Stops, b.IsRoundtrip); err != nil {
			return err
		}
	}
	return nil
}

// Handler answers stat requests against a loaded catalogue.
type Handler struct {
	catalogue *catalogue.Catalogue
	router    *router.TransportRouter
	renderer  *render.Renderer
}

// NewHandler returns a handler over c. rt and rd may be nil, in which case
// Route and Map queries fail with ErrMissingSettings.
func NewHandler(c *catalogue.Catalogue, rt *router.TransportRouter, rd *render.Renderer) *Handler {
	return &Handler{catalogue: c, router: rt, renderer: rd}
}

// Catalogue returns the catalogue the handler queries.
func (h *Handler) Catalogue() *catalogue.Catalogue {
	return h.catalogue
}

// Router returns the handler's router, or nil.
func (h *Handler) Router() *router.TransportRouter {
	return h.router
}

// Renderer returns the handler's renderer, or nil.
func (h *Handler) Renderer() *render.Renderer {
	return h.renderer
}

// Handle answers one stat request. Missing stops, buses and unreachable
// destinations yield a NotFoundResponse; an error means the catalogue broke
// the ingestion order or ctx is done.
func (h *Handler) Handle(ctx context.Context, req StatRequest) (Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch q := req.(type) {
	case BusQuery:
		return h.busInfo(q)
	case StopQuery:
		return h.stopInfo(q), nil
	case RouteQuery:
		return h.route(ctx, q)
	case MapQuery:
		return h.renderMap(q)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownRequestType, req)
	}
}

// HandleAll answers requests in order.
func (h *Handler) HandleAll(ctx context.Context, reqs []StatRequest) ([]Response, error) {
	responses := make([]Response, 0, len(reqs))
	for _, req := range reqs {
		resp, err := h.Handle(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("request %d: %w", req.RequestID(), err)
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

func (h *Handler) busInfo(q BusQuery) (Response, error) {
	info, err := h.catalogue.BusInfo(q.Name)
	if err != nil {
		return nil, err
	}
	if !info.Found {
		return NotFoundResponse{RequestID: q.ID}, nil
	}
	return BusResponse{
		Curvature:       info.Curvature,
		RequestID:       q.ID,
		RouteLength:     info.RouteLength,
		StopCount:       info.StopCount,
		UniqueStopCount: info.UniqueStopCount,
	}, nil
}

func (h *Handler) stopInfo(q StopQuery) Response {
	info := h.catalogue.StopInfo(q.Name)
	if !info.Found {
		return NotFoundResponse{RequestID: q.ID}
	}
	return StopResponse{Buses: info.Buses, RequestID: q.ID}
}

func (h *Handler) route(ctx context.Context, q RouteQuery) (Response, error) {
	if h.router == nil {
		return nil, fmt.Errorf("%w: routing_settings", ErrMissingSettings)
	}
	if _, ok := h.catalogue.FindStop(q.From); !ok {
		return NotFoundResponse{RequestID: q.ID}, nil
	}
	if _, ok := h.catalogue.FindStop(q.To); !ok {
		return NotFoundResponse{RequestID: q.ID}, nil
	}

	itinerary, found, err := h.router.BuildRouteContext(ctx, q.From, q.To)
	if err != nil {
		return nil, err
	}
	if !found {
		return NotFoundResponse{RequestID: q.ID}, nil
	}
	return RouteResponse{Items: itinerary.Items, RequestID: q.ID, TotalTime: itinerary.TotalTime}, nil
}

func (h *Handler) renderMap(q MapQuery) (Response, error) {
	if h.renderer == nil {
		return nil, fmt.Errorf("%w: render_settings", ErrMissingSettings)
	}
	svg, err := h.renderer.RenderString(h.catalogue)
	if err != nil {
		return nil, err
	}
	return MapResponse{Map: svg, RequestID: q.ID}, nil
}

// Build loads doc's base requests into a fresh catalogue and returns a
// handler configured with doc's settings.
func Build(doc *Document, logger *slog.Logger, opts ...router.Option) (*Handler, error) {
	c := catalogue.New()
	if err := Load(c, doc.BaseRequests); err != nil {
		return nil, err
	}
	logging.LogOperation(logger, "catalogue_loaded",
		slog.Int("stops", c.StopCount()),
		slog.Int("buses", c.BusCount()),
		slog.Int("distances", c.DistanceCount()))

	var rt *router.TransportRouter
	if doc.RoutingSettings != nil {
		rt = router.New(c, *doc.RoutingSettings, append([]router.Option{router.WithLogger(logger)}, opts...)...)
	}
	var rd *render.Renderer
	if doc.RenderSettings != nil {
		rd = render.NewRenderer(*doc.RenderSettings)
	}
	return NewHandler(c, rt, rd), nil
}

// Process runs a whole document: load, then answer every stat request.
func Process(ctx context.Context, doc *Document, logger *slog.Logger, opts ...router.Option) ([]Response, error) {
	h, err := Build(doc, logger, opts...)
	if err != nil {
		return nil, err
	}
	return h.HandleAll(ctx, doc.StatRequests)
}
