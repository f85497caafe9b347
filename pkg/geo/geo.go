// Package geo provides WGS84 coordinates, great-circle distances and search-area
// geometry shared by the station client, the result engine and the host bridge.
package geo

import (
	"errors"
	"math"
)

// ErrInvalidCoordinate is returned for latitudes outside [-90, 90] or longitudes
// outside [-180, 180].
var ErrInvalidCoordinate = errors.New("invalid coordinate")

const earthRadiusKM = 6371.0

// Coordinate represents a geographic point in decimal degrees (EPSG:4326).
type Coordinate struct {
	Lat float64
	Lon float64
}

// Validate checks that the coordinate lies within WGS84 bounds.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) {
		return ErrInvalidCoordinate
	}
	if c.Lat < -90 || c.Lat > 90 || c.Lon < -180 || c.Lon > 180 {
		return ErrInvalidCoordinate
	}
	return nil
}

// DistanceKM returns the haversine distance between two coordinates in kilometers.
func DistanceKM(a, b Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	sinDLat := math.Sin(dLat / 2)
	sinDLon := math.Sin(dLon / 2)

	h := sinDLat*sinDLat + math.Cos(lat1)*math.Cos(lat2)*sinDLon*sinDLon
	return 2 * earthRadiusKM * math.Asin(math.Sqrt(h))
}

// Destination returns the point reached by travelling distanceKM from origin along
// the given initial bearing (degrees clockwise from north).
func Destination(origin Coordinate, bearingDeg, distanceKM float64) Coordinate {
	lat1 := origin.Lat * math.Pi / 180
	lon1 := origin.Lon * math.Pi / 180
	brng := bearingDeg * math.Pi / 180
	d := distanceKM / earthRadiusKM

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(d) + math.Cos(lat1)*math.Sin(d)*math.Cos(brng))
	lon2 := lon1 + math.Atan2(
		math.Sin(brng)*math.Sin(d)*math.Cos(lat1),
		math.Cos(d)-math.Sin(lat1)*math.Sin(lat2),
	)

	// Normalize longitude to [-180, 180).
	lon := math.Mod(lon2*180/math.Pi+540, 360) - 180
	return Coordinate{Lat: lat2 * 180 / math.Pi, Lon: lon}
}

// Ring approximates the circle of radiusKM around center with the given number of
// segments. The ring is closed: the last point equals the first.
func Ring(center Coordinate, radiusKM float64, segments int) []Coordinate {
	if segments < 3 {
		segments = 3
	}
	ring := make([]Coordinate, 0, segments+1)
	for i := 0; i < segments; i++ {
		bearing := float64(i) * 360 / float64(segments)
		ring = append(ring, Destination(center, bearing, radiusKM))
	}
	return append(ring, ring[0])
}
