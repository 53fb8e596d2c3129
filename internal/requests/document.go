// Package requests models the request document (base requests that fill the
// catalogue, stat requests that query it) and the responses to it.
package requests

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"transitcatalogue.org/internal/render"
	"transitcatalogue.org/internal/router"
)

var (
	// ErrInvalidDocument wraps every JSON or validation failure of a request document.
	ErrInvalidDocument = errors.New("invalid request document")

	// ErrUnknownRequestType is returned for a request whose "type" is not recognised.
	ErrUnknownRequestType = errors.New("unknown request type")
)

var validate = validator.New()

// BaseRequest adds data to the catalogue. It is either an AddStop or an AddBus.
type BaseRequest interface {
	isBaseRequest()
}

// AddStop declares a stop and the road distances from it to other stops.
type AddStop struct {
	Name          string         `json:"name" validate:"required"`
	Latitude      float64        `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude     float64        `json:"longitude" validate:"gte=-180,lte=180"`
	RoadDistances map[string]int `json:"road_distances" validate:"dive,keys,required,endkeys,gte=0"`
}

// AddBus declares a bus over existing stops.
type AddBus struct {
	Name        string   `json:"name" validate:"required"`
	Stops       []string `json:"stops" validate:"dive,required"`
	IsRoundtrip bool     `json:"is_roundtrip"`
}

func (AddStop) isBaseRequest() {}
func (AddBus) isBaseRequest()  {}

// StatRequest queries the catalogue. It is one of BusQuery, StopQuery,
// RouteQuery or MapQuery.
type StatRequest interface {
	RequestID() int
	isStatRequest()
}

// BusQuery asks for route statistics of a bus.
type BusQuery struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// StopQuery asks which buses serve a stop.
type StopQuery struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// RouteQuery asks for the fastest itinerary between two stops.
type RouteQuery struct {
	ID   int    `json:"id"`
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required"`
}

// MapQuery asks for the SVG map of the network.
type MapQuery struct {
	ID int `json:"id"`
}

func (q BusQuery) RequestID() int   { return q.ID }
func (q StopQuery) RequestID() int  { return q.ID }
func (q RouteQuery) RequestID() int { return q.ID }
func (q MapQuery) RequestID() int   { return q.ID }

func (BusQuery) isStatRequest()   {}
func (StopQuery) isStatRequest()  {}
func (RouteQuery) isStatRequest() {}
func (MapQuery) isStatRequest()   {}

// Document is a complete request document. Settings are nil when the
// document omits them.
type Document struct {
	BaseRequests    []BaseRequest
	StatRequests    []StatRequest
	RoutingSettings *router.Settings
	RenderSettings  *render.Settings
}

type rawDocument struct {
	BaseRequests    []json.RawMessage `json:"base_requests"`
	StatRequests    []json.RawMessage `json:"stat_requests"`
	RoutingSettings *router.Settings  `json:"routing_settings"`
	RenderSettings  *render.Settings  `json:"render_settings"`
}

type typeTag struct {
	Type string `json:"type"`
}

// Decode reads and validates a request document.
func Decode(r io.Reader) (*Document, error) {
	var raw rawDocument
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return raw.document()
}

// UnmarshalJSON decodes and validates a document.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	doc, err := raw.document()
	if err != nil {
		return err
	}
	*d = *doc
	return nil
}

func (raw rawDocument) document() (*Document, error) {
	doc := &Document{
		BaseRequests:    make([]BaseRequest, 0, len(raw.BaseRequests)),
		StatRequests:    make([]StatRequest, 0, len(raw.StatRequests)),
		RoutingSettings: raw.RoutingSettings,
		RenderSettings:  raw.RenderSettings,
	}

	for i, msg := range raw.BaseRequests {
		req, err := decodeBaseRequest(msg)
		if err != nil {
			return nil, fmt.Errorf("%w: base_requests[%d]: %w", ErrInvalidDocument, i, err)
		}
		doc.BaseRequests = append(doc.BaseRequests, req)
	}

	for i, msg := range raw.StatRequests {
		req, err := decodeStatRequest(msg)
		if err != nil {
			return nil, fmt.Errorf("%w: stat_requests[%d]: %w", ErrInvalidDocument, i, err)
		}
		doc.StatRequests = append(doc.StatRequests, req)
	}

	if doc.RoutingSettings != nil {
		if err := validate.Struct(doc.RoutingSettings); err != nil {
			return nil, fmt.Errorf("%w: routing_settings: %w", ErrInvalidDocument, err)
		}
	}
	if doc.RenderSettings != nil {
		if err := validate.Struct(doc.RenderSettings); err != nil {
			return nil, fmt.Errorf("%w: render_settings: %w", ErrInvalidDocument, err)
		}
	}
	return doc, nil
}

func decodeBaseRequest(msg json.RawMessage) (BaseRequest, error) {
	var tag typeTag
	if err := json.Unmarshal(msg, &tag); err != nil {
		return nil, err
	}

	switch tag.Type {
	case "Stop":
		return decodeValid[AddStop](msg)
	case "Bus":
		return decodeValid[AddBus](msg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRequestType, tag.Type)
	}
}

func decodeStatRequest(msg json.RawMessage) (StatRequest, error) {
	var tag typeTag
	if err := json.Unmarshal(msg, &tag); err != nil {
		return nil, err
	}

	switch tag.Type {
	case "Bus":
		return decodeValid[BusQuery](msg)
	case "Stop":
		return decodeValid[StopQuery](msg)
	case "Route":
		return decodeValid[RouteQuery](msg)
	case "Map":
		return decodeValid[MapQuery](msg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRequestType, tag.Type)
	}
}

func decodeValid[T any](msg json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(msg, &v); err != nil {
		return v, err
	}
	if err := validate.Struct(v); err != nil {
		return v, err
	}
	return v, nil
}
