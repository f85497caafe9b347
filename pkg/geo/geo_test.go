package geo_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chargespot/chargespot/pkg/geo"
)

func TestDistanceKM(t *testing.T) {
	tests := []struct {
		name     string
		a, b     geo.Coordinate
		expected float64
		delta    float64
	}{
		{"same point", geo.Coordinate{Lat: 52.0, Lon: 4.0}, geo.Coordinate{Lat: 52.0, Lon: 4.0}, 0, 0},
		{"Amsterdam to Utrecht", geo.Coordinate{Lat: 52.3676, Lon: 4.9041}, geo.Coordinate{Lat: 52.0907, Lon: 5.1214}, 35, 2},
		{"one degree latitude", geo.Coordinate{Lat: 0, Lon: 0}, geo.Coordinate{Lat: 1, Lon: 0}, 111.2, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, geo.DistanceKM(tt.a, tt.b), tt.delta)
		})
	}
}

func TestCoordinate_Validate(t *testing.T) {
	assert.NoError(t, geo.Coordinate{Lat: 52.37, Lon: 4.89}.Validate())
	assert.NoError(t, geo.Coordinate{Lat: -90, Lon: 180}.Validate())
	assert.ErrorIs(t, geo.Coordinate{Lat: 91, Lon: 0}.Validate(), geo.ErrInvalidCoordinate)
	assert.ErrorIs(t, geo.Coordinate{Lat: 0, Lon: -181}.Validate(), geo.ErrInvalidCoordinate)
	assert.ErrorIs(t, geo.Coordinate{Lat: math.NaN(), Lon: 0}.Validate(), geo.ErrInvalidCoordinate)
}

func TestRing(t *testing.T) {
	center := geo.Coordinate{Lat: 48.8566, Lon: 2.3522}
	ring := geo.Ring(center, 25, 32)

	assert.Len(t, ring, 33)
	assert.Equal(t, ring[0], ring[len(ring)-1], "ring must be closed")
	for _, p := range ring {
		assert.InDelta(t, 25.0, geo.DistanceKM(center, p), 0.01)
	}
}

func TestRing_MinimumSegments(t *testing.T) {
	ring := geo.Ring(geo.Coordinate{}, 1, 1)
	assert.Len(t, ring, 4)
}
