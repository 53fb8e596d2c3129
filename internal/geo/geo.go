// Package geo holds coordinate types and the distance math shared by the
// catalogue, the map renderer and the spatial index.
package geo

import (
	"math"

	"github.com/twpayne/go-polyline"
)

const (
	// RadiusOfEarthInMeters is the mean radius used for great-circle distances.
	RadiusOfEarthInMeters = 6371000.0

	degreesToRadians = math.Pi / 180
)

// Coordinates is a WGS 84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CoordinateBounds represents a bounding box with min/max latitude and longitude
type CoordinateBounds struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// Distance returns the great-circle distance in meters between from and to,
// using the spherical law of cosines.
func Distance(from, to Coordinates) float64 {
	if from == to {
		return 0
	}
	cos := math.Sin(from.Lat*degreesToRadians)*math.Sin(to.Lat*degreesToRadians) +
		math.Cos(from.Lat*degreesToRadians)*math.Cos(to.Lat*degreesToRadians)*
			math.Cos(math.Abs(from.Lng-to.Lng)*degreesToRadians)

	// rounding can push the cosine just outside [-1, 1] for near-identical points
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * RadiusOfEarthInMeters
}

// PathLength sums Distance over consecutive points.
func PathLength(points []Coordinates) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += Distance(points[i-1], points[i])
	}
	return total
}

// CalculateBounds returns the box that contains every point within distance
// meters of (lat, lon).
func CalculateBounds(lat, lon, distance float64) CoordinateBounds {
	latRadians := lat * degreesToRadians
	lonRadians := lon * degreesToRadians

	latRadius := RadiusOfEarthInMeters
	lonRadius := math.Cos(latRadians) * RadiusOfEarthInMeters

	latOffset := distance / latRadius
	lonOffset := distance / lonRadius

	return CoordinateBounds{
		MinLat: (latRadians - latOffset) / degreesToRadians,
		MaxLat: (latRadians + latOffset) / degreesToRadians,
		MinLon: (lonRadians - lonOffset) / degreesToRadians,
		MaxLon: (lonRadians + lonOffset) / degreesToRadians,
	}
}

// BoundsOf returns the smallest box containing points. ok is false for an
// empty slice.
func BoundsOf(points []Coordinates) (bounds CoordinateBounds, ok bool) {
	if len(points) == 0 {
		return CoordinateBounds{}, false
	}
	bounds = CoordinateBounds{
		MinLat: points[0].Lat, MaxLat: points[0].Lat,
		MinLon: points[0].Lng, MaxLon: points[0].Lng,
	}
	for _, p := range points[1:] {
		bounds.MinLat = math.Min(bounds.MinLat, p.Lat)
		bounds.MaxLat = math.Max(bounds.MaxLat, p.Lat)
		bounds.MinLon = math.Min(bounds.MinLon, p.Lng)
		bounds.MaxLon = math.Max(bounds.MaxLon, p.Lng)
	}
	return bounds, true
}

// EncodePath encodes points as a Google encoded polyline.
func EncodePath(points []Coordinates) string {
	coords := make([][]float64, 0, len(points))
	for _, p := range points {
		coords = append(coords, []float64{p.Lat, p.Lng})
	}
	return string(polyline.EncodeCoords(coords))
}

// DecodePath is the inverse of EncodePath.
func DecodePath(encoded string) ([]Coordinates, error) {
	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, err
	}
	points := make([]Coordinates, 0, len(coords))
	for _, c := range coords {
		points = append(points, Coordinates{Lat: c[0], Lng: c[1]})
	}
	return points, nil
}
