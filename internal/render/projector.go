package render

import (
	"math"

	"transitcatalogue.org/internal/geo"
)

const epsilon = 1e-6

func isZero(v float64) bool {
	return math.Abs(v) < epsilon
}

// sphereProjector maps coordinates onto a width x height canvas, keeping the
// aspect ratio and leaving padding on every side. North is up.
type sphereProjector struct {
	padding float64
	minLon  float64
	maxLat  float64
	zoom    float64
}

func newSphereProjector(points []geo.Coordinates, width, height, padding float64) sphereProjector {
	p := sphereProjector{padding: padding}

	bounds, ok := geo.BoundsOf(points)
	if !ok {
		return p
	}
	p.minLon = bounds.MinLon
	p.maxLat = bounds.MaxLat

	var zooms []float64
	if span := bounds.MaxLon - bounds.MinLon; !isZero(span) {
		zooms = append(zooms, (width-2*padding)/span)
	}
	if span := bounds.MaxLat - bounds.MinLat; !isZero(span) {
		zooms = append(zooms, (height-2*padding)/span)
	}
	if len(zooms) > 0 {
		p.zoom = zooms[0]
		for _, z := range zooms[1:] {
			p.zoom = math.Min(p.zoom, z)
		}
	}
	return p
}

func (p sphereProjector) project(c geo.Coordinates) Point {
	return Point{
		X: (c.Lng-p.minLon)*p.zoom + p.padding,
		Y: (p.maxLat-c.Lat)*p.zoom + p.padding,
	}
}
