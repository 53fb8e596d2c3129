package restapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"transitcatalogue.org/internal/catalogue"
	"transitcatalogue.org/internal/geo"
	"transitcatalogue.org/internal/requests"
)

const (
	defaultNearbyRadius = 500.0
	maxNearbyRadius     = 5000.0
)

// networkReady answers 503 when no network is loaded.
func (api *RestAPI) networkReady(w http.ResponseWriter, r *http.Request) bool {
	if api.Application == nil || api.Network == nil {
		api.sendError(w, r, http.StatusServiceUnavailable, "network not loaded")
		return false
	}
	return true
}

// answer writes the result of a stat query against the served network.
func (api *RestAPI) answer(w http.ResponseWriter, r *http.Request, resp requests.Response, err error) {
	switch {
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		api.sendError(w, r, http.StatusServiceUnavailable, "request timed out")
		return
	case errors.Is(err, requests.ErrMissingSettings):
		api.sendError(w, r, http.StatusServiceUnavailable, err.Error())
		return
	default:
		api.serverErrorResponse(w, r, err)
		return
	}

	if _, ok := resp.(requests.NotFoundResponse); ok {
		api.sendJSON(w, r, http.StatusNotFound, resp)
		return
	}
	api.sendResponse(w, r, resp)
}

func (api *RestAPI) busHandler(w http.ResponseWriter, r *http.Request) {
	if !api.networkReady(w, r) {
		return
	}
	resp, err := api.Network.Handle(r.Context(), requests.BusQuery{Name: r.PathValue("name")})
	api.answer(w, r, resp, err)
}

func (api *RestAPI) stopHandler(w http.ResponseWriter, r *http.Request) {
	if !api.networkReady(w, r) {
		return
	}
	resp, err := api.Network.Handle(r.Context(), requests.StopQuery{Name: r.PathValue("name")})
	api.answer(w, r, resp, err)
}

func (api *RestAPI) routeHandler(w http.ResponseWriter, r *http.Request) {
	if !api.networkReady(w, r) {
		return
	}
	from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	if from == "" || to == "" {
		api.badRequestResponse(w, r, "from and to are required")
		return
	}
	resp, err := api.Network.Handle(r.Context(), requests.RouteQuery{From: from, To: to})
	api.answer(w, r, resp, err)
}

func (api *RestAPI) mapHandler(w http.ResponseWriter, r *http.Request) {
	if !api.networkReady(w, r) {
		return
	}
	resp, err := api.Network.Handle(r.Context(), requests.MapQuery{})
	m, ok := resp.(requests.MapResponse)
	if err != nil || !ok {
		api.answer(w, r, resp, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	if _, err := w.Write([]byte(m.Map)); err != nil {
		api.serverErrorResponse(w, r, err)
	}
}

// BusShape is a bus's effective route as an encoded polyline.
type BusShape struct {
	Name      string `json:"name"`
	Points    string `json:"points"`
	StopCount int    `json:"stop_count"`
}

func (api *RestAPI) busShapeHandler(w http.ResponseWriter, r *http.Request) {
	if !api.networkReady(w, r) {
		return
	}
	name := r.PathValue("name")
	stops, err := api.Network.Catalogue().BusRoute(name)
	if errors.Is(err, catalogue.ErrUnknownBus) {
		api.sendNotFound(w, r)
		return
	}
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	points := make([]geo.Coordinates, 0, len(stops))
	for _, s := range stops {
		points = append(points, s.Coords)
	}
	api.sendResponse(w, r, BusShape{Name: name, Points: geo.EncodePath(points), StopCount: len(stops)})
}

// NearbyStop is one stop within the requested radius.
type NearbyStop struct {
	Name     string  `json:"name"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Distance float64 `json:"distance"`
}

func (api *RestAPI) nearbyStopsHandler(w http.ResponseWriter, r *http.Request) {
	if !api.networkReady(w, r) {
		return
	}
	query := r.URL.Query()

	lat, err := strconv.ParseFloat(query.Get("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		api.badRequestResponse(w, r, "invalid lat")
		return
	}
	lon, err := strconv.ParseFloat(query.Get("lon"), 64)
	if err != nil || lon < -180 || lon > 180 {
		api.badRequestResponse(w, r, "invalid lon")
		return
	}
	radius := defaultNearbyRadius
	if s := query.Get("radius"); s != "" {
		radius, err = strconv.ParseFloat(s, 64)
		if err != nil || radius <= 0 {
			api.badRequestResponse(w, r, "invalid radius")
			return
		}
		radius = min(radius, maxNearbyRadius)
	}

	center := geo.Coordinates{Lat: lat, Lng: lon}
	found := api.Network.Catalogue().NearbyStops(lat, lon, radius)
	stops := make([]NearbyStop, 0, len(found))
	for _, s := range found {
		stops = append(stops, NearbyStop{
			Name:     s.Name,
			Lat:      s.Coords.Lat,
			Lon:      s.Coords.Lng,
			Distance: geo.Distance(center, s.Coords),
		})
	}
	api.sendResponse(w, r, map[string]any{"stops": stops})
}
