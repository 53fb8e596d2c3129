package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name      string
		from      Coordinates
		to        Coordinates
		expected  float64
		tolerance float64
	}{
		{
			name:      "Same point (zero distance)",
			from:      Coordinates{Lat: 55.611087, Lng: 37.20829},
			to:        Coordinates{Lat: 55.611087, Lng: 37.20829},
			expected:  0,
			tolerance: 0,
		},
		{
			name:      "Neighbouring stops",
			from:      Coordinates{Lat: 55.611087, Lng: 37.20829},
			to:        Coordinates{Lat: 55.595884, Lng: 37.209755},
			expected:  1693, // ~1.7 km
			tolerance: 5,
		},
		{
			name:      "London to Paris",
			from:      Coordinates{Lat: 51.5074, Lng: -0.1278},
			to:        Coordinates{Lat: 48.8566, Lng: 2.3522},
			expected:  343556,
			tolerance: 1000,
		},
		{
			name:      "Equator quarter turn",
			from:      Coordinates{Lat: 0, Lng: 0},
			to:        Coordinates{Lat: 0, Lng: 90},
			expected:  math.Pi / 2 * RadiusOfEarthInMeters,
			tolerance: 1,
		},
		{
			name:      "Crossing International Date Line",
			from:      Coordinates{Lat: 35.6762, Lng: 139.6503},
			to:        Coordinates{Lat: 37.7749, Lng: -122.4194},
			expected:  8280207,
			tolerance: 10000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Distance(tt.from, tt.to)
			assert.InDelta(t, tt.expected, result, tt.tolerance)
		})
	}
}

func TestDistance_Symmetry(t *testing.T) {
	a := Coordinates{Lat: 40.7128, Lng: -74.0060}
	b := Coordinates{Lat: 34.0522, Lng: -118.2437}

	assert.InDelta(t, Distance(a, b), Distance(b, a), 0.0001)
}

func TestDistance_NearlyIdenticalPointsIsNotNaN(t *testing.T) {
	a := Coordinates{Lat: 43.587795, Lng: 39.716901}
	b := Coordinates{Lat: 43.587795, Lng: 39.7169010000001}

	d := Distance(a, b)
	assert.False(t, math.IsNaN(d))
	assert.GreaterOrEqual(t, d, 0.0)
}

func TestPathLength(t *testing.T) {
	a := Coordinates{Lat: 0, Lng: 0}
	b := Coordinates{Lat: 0, Lng: 1}
	c := Coordinates{Lat: 0, Lng: 2}

	assert.InDelta(t, Distance(a, c), PathLength([]Coordinates{a, b, c}), 0.001)
	assert.Equal(t, 0.0, PathLength(nil))
	assert.Equal(t, 0.0, PathLength([]Coordinates{a}))
	assert.Equal(t, 0.0, PathLength([]Coordinates{a, a, a}))
}

func TestCalculateBounds(t *testing.T) {
	lat := 38.627003
	lon := -121.530398

	bounds := CalculateBounds(lat, lon, 500)

	assert.InEpsilon(t, 0.00898, bounds.MaxLat-bounds.MinLat, 0.01)
	assert.InEpsilon(t, 0.01153, bounds.MaxLon-bounds.MinLon, 0.01)
	assert.Less(t, bounds.MinLat, lat)
	assert.Greater(t, bounds.MaxLon, lon)
}

func TestBoundsOf(t *testing.T) {
	_, ok := BoundsOf(nil)
	assert.False(t, ok)

	bounds, ok := BoundsOf([]Coordinates{{Lat: 1, Lng: 5}, {Lat: -2, Lng: 7}, {Lat: 3, Lng: 6}})
	require.True(t, ok)
	assert.Equal(t, CoordinateBounds{MinLat: -2, MaxLat: 3, MinLon: 5, MaxLon: 7}, bounds)
}

func TestEncodePathRoundTrip(t *testing.T) {
	points := []Coordinates{
		{Lat: 38.5, Lng: -120.2},
		{Lat: 40.7, Lng: -120.95},
		{Lat: 43.252, Lng: -126.453},
	}

	encoded := EncodePath(points)
	assert.Equal(t, "_p~iF~ps|U_ulLnnqC_mqNvxq`@", encoded)

	decoded, err := DecodePath(encoded)
	require.NoError(t, err)
	require.Len(t, decoded, len(points))
	for i := range points {
		assert.InDelta(t, points[i].Lat, decoded[i].Lat, 1e-5)
		assert.InDelta(t, points[i].Lng, decoded[i].Lng, 1e-5)
	}
}
