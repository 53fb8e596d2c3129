package requests

import (
	"encoding/json"
	"fmt"
	"io"

	"transitcatalogue.org/internal/router"
)

// NotFoundMessage is the error_message of every NotFoundResponse.
const NotFoundMessage = "not found"

// Response answers one stat request. It is one of BusResponse, StopResponse,
// RouteResponse, MapResponse or NotFoundResponse.
type Response interface {
	ResponseID() int
	isResponse()
}

// BusResponse carries route statistics. JSON keys are emitted in lexical order.
type BusResponse struct {
	Curvature       float64 `json:"curvature"`
	RequestID       int     `json:"request_id"`
	RouteLength     int     `json:"route_length"`
	StopCount       int     `json:"stop_count"`
	UniqueStopCount int     `json:"unique_stop_count"`
}

// StopResponse lists the buses through a stop.
type StopResponse struct {
	Buses     []string `json:"buses"`
	RequestID int      `json:"request_id"`
}

// RouteResponse is a fastest itinerary.
type RouteResponse struct {
	Items     []router.Item `json:"items"`
	RequestID int           `json:"request_id"`
	TotalTime float64       `json:"total_time"`
}

// MapResponse carries a rendered SVG document.
type MapResponse struct {
	Map       string `json:"map"`
	RequestID int    `json:"request_id"`
}

// NotFoundResponse answers a query about something that does not exist or
// cannot be reached.
type NotFoundResponse struct {
	RequestID int
}

func (r BusResponse) ResponseID() int      { return r.RequestID }
func (r StopResponse) ResponseID() int     { return r.RequestID }
func (r RouteResponse) ResponseID() int    { return r.RequestID }
func (r MapResponse) ResponseID() int      { return r.RequestID }
func (r NotFoundResponse) ResponseID() int { return r.RequestID }

func (BusResponse) isResponse()      {}
func (StopResponse) isResponse()     {}
func (RouteResponse) isResponse()    {}
func (MapResponse) isResponse()      {}
func (NotFoundResponse) isResponse() {}

func (r NotFoundResponse) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ErrorMessage string `json:"error_message"`
		RequestID    int    `json:"request_id"`
	}{NotFoundMessage, r.RequestID})
}

type waitItemJSON struct {
	StopName string  `json:"stop_name"`
	Time     float64 `json:"time"`
	Type     string  `json:"type"`
}

type rideItemJSON struct {
	Bus       string  `json:"bus"`
	SpanCount int     `json:"span_count"`
	Time      float64 `json:"time"`
	Type      string  `json:"type"`
}

func (r RouteResponse) MarshalJSON() ([]byte, error) {
	items := make([]any, 0, len(r.Items))
	for _, item := range r.Items {
		encoded, err := encodeItem(item)
		if err != nil {
			return nil, err
		}
		items = append(items, encoded)
	}

	return json.Marshal(struct {
		Items     []any   `json:"items"`
		RequestID int     `json:"request_id"`
		TotalTime float64 `json:"total_time"`
	}{items, r.RequestID, r.TotalTime})
}

func encodeItem(item router.Item) (any, error) {
	switch it := item.(type) {
	case router.WaitItem:
		return waitItemJSON{StopName: it.StopName, Time: it.Time, Type: "Wait"}, nil
	case router.RideItem:
		return rideItemJSON{Bus: it.Bus, SpanCount: it.SpanCount, Time: it.Time, Type: "Bus"}, nil
	default:
		return nil, fmt.Errorf("unexpected itinerary item %T", item)
	}
}

// Encode writes responses as one indented JSON array. Markup inside map
// documents is written verbatim rather than HTML-escaped.
func Encode(w io.Writer, responses []Response) error {
	if responses == nil {
		responses = []Response{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	return enc.Encode(responses)
}
