// Package maplayer turns a result set into GeoJSON the host draws as a map
// layer: one point per station, styled by status, plus the search circle.
package maplayer

import (
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/chargespot/chargespot/internal/station"
	"github.com/chargespot/chargespot/pkg/geo"
)

// ringSegments is the number of vertices used to approximate the search circle.
const ringSegments = 64

// Style is the marker symbology for one status category.
type Style struct {
	Category string
	Color    string
	Symbol   string
}

// OtherStyle applies to statuses without a dedicated category.
var OtherStyle = Style{Category: "Other", Color: "#808080", Symbol: "circle"}

var statusStyles = map[string]Style{
	"operational":              {Category: "Operational", Color: "#008000", Symbol: "circle"},
	"available":                {Category: "Operational", Color: "#008000", Symbol: "circle"},
	"not operational":          {Category: "Out of Service", Color: "#ff0000", Symbol: "cross"},
	"out of service":           {Category: "Out of Service", Color: "#ff0000", Symbol: "cross"},
	"removed (decommissioned)": {Category: "Out of Service", Color: "#ff0000", Symbol: "cross"},
	"planned":                  {Category: "Planned", Color: "#0000ff", Symbol: "triangle"},
	"planned for future date":  {Category: "Planned", Color: "#0000ff", Symbol: "triangle"},
	"unknown":                  {Category: station.Unknown, Color: "#ffa500", Symbol: "circle"},
}

// StyleFor returns the marker style for a status label. A missing status is
// styled as Unknown.
func StyleFor(status *string) Style {
	if s, ok := statusStyles[strings.ToLower(strings.TrimSpace(station.Text(status)))]; ok {
		return s
	}
	return OtherStyle
}

// Stations builds a FeatureCollection with one point per station, in input order.
func Stations(records []station.Station) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i := range records {
		fc.Append(stationFeature(&records[i]))
	}
	return fc
}

// WithSearchArea builds the station layer and appends the search circle of q
// as a polygon feature with "kind": "search-area".
func WithSearchArea(records []station.Station, q station.Query) *geojson.FeatureCollection {
	fc := Stations(records)
	fc.Append(searchArea(q))
	return fc
}

func stationFeature(s *station.Station) *geojson.Feature {
	f := geojson.NewFeature(orb.Point{s.Location.Lon, s.Location.Lat})
	f.ID = s.ID

	style := StyleFor(s.Status)
	f.Properties["kind"] = "station"
	f.Properties["id"] = s.ID
	f.Properties["name"] = s.Name()
	f.Properties["address"] = s.Address.Format()
	f.Properties["operator"] = station.Text(s.Operator)
	f.Properties["status"] = station.Text(s.Status)
	f.Properties["access_type"] = station.Text(s.AccessType)
	f.Properties["connection_types"] = strings.Join(s.ConnectionTypes(), ", ")
	f.Properties["power_levels"] = strings.Join(s.PowerLevels(), ", ")
	f.Properties["category"] = style.Category
	f.Properties["marker-color"] = style.Color
	f.Properties["marker-symbol"] = style.Symbol

	if s.DistanceKM != nil {
		f.Properties["distance"] = *s.DistanceKM
	}
	if s.NumberOfPoints != nil {
		f.Properties["num_points"] = *s.NumberOfPoints
	}
	if s.Contact.Phone != nil {
		f.Properties["phone"] = *s.Contact.Phone
	}
	if s.Contact.URL != nil {
		f.Properties["url"] = *s.Contact.URL
	}
	return f
}

func searchArea(q station.Query) *geojson.Feature {
	ring := make(orb.Ring, 0, ringSegments+1)
	for _, c := range geo.Ring(q.Center, q.RadiusKM, ringSegments) {
		ring = append(ring, orb.Point{c.Lon, c.Lat})
	}

	f := geojson.NewFeature(orb.Polygon{ring})
	f.Properties["kind"] = "search-area"
	f.Properties["radius_km"] = q.RadiusKM
	f.Properties["center_lat"] = q.Center.Lat
	f.Properties["center_lon"] = q.Center.Lon
	return f
}
