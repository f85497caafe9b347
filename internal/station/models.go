// Package station holds the charging-station domain: the normalized record model,
// the query service, the result session and the filter/sort engine.
package station

import (
	"math"
	"strings"
	"time"

	"github.com/chargespot/chargespot/pkg/geo"
)

// Unknown is the display sentinel for fields the upstream directory did not provide.
const Unknown = "Unknown"

// Radius and result-count bounds accepted by Query.Validate.
const (
	MinRadiusKM   = 1.0
	MaxRadiusKM   = 200.0
	MaxResultsCap = 5000

	DefaultRadiusKM   = 10.0
	DefaultMaxResults = 200
)

// Query describes one search around a center point.
type Query struct {
	Center     geo.Coordinate
	RadiusKM   float64
	MaxResults int
	APIKey     string
}

// Validate checks the query parameters and returns an *InvalidParameterError.
func (q Query) Validate() error {
	if err := q.Center.Validate(); err != nil {
		return &InvalidParameterError{Field: "center", Reason: "latitude must be within [-90, 90] and longitude within [-180, 180]"}
	}
	if math.IsNaN(q.RadiusKM) || q.RadiusKM < MinRadiusKM || q.RadiusKM > MaxRadiusKM {
		return &InvalidParameterError{Field: "radiusKm", Reason: "must be between 1 and 200 km"}
	}
	if q.MaxResults <= 0 {
		return &InvalidParameterError{Field: "maxResults", Reason: "must be positive"}
	}
	if q.MaxResults > MaxResultsCap {
		return &InvalidParameterError{Field: "maxResults", Reason: "must not exceed 5000"}
	}
	return nil
}

// Address holds the postal fields of a station. Every field is optional.
type Address struct {
	Title           *string
	Line1           *string
	Town            *string
	StateOrProvince *string
	Postcode        *string
	Country         *string
}

// Format joins the known address parts with commas, or returns Unknown.
func (a Address) Format() string {
	var parts []string
	for _, p := range []*string{a.Line1, a.Town, a.StateOrProvince, a.Postcode, a.Country} {
		if p != nil && strings.TrimSpace(*p) != "" {
			parts = append(parts, *p)
		}
	}
	if len(parts) == 0 {
		return Unknown
	}
	return strings.Join(parts, ", ")
}

// Contact holds the optional contact details of a station.
type Contact struct {
	Phone *string
	Email *string
	URL   *string
}

// Connection is one connector type/power combination on a station.
type Connection struct {
	Type        *string
	Level       *string
	PowerKW     *float64
	CurrentType *string
	Quantity    *int
	Status      *string
	Amps        *int
	Voltage     *int
}

// Station is one charging station, normalized from the upstream directory.
// Nil pointer fields mean "unknown" and must never be read as zero or false.
type Station struct {
	ID       int
	UUID     string
	Location geo.Coordinate
	Address  Address
	Contact  Contact

	Operator           *string
	AccessType         *string
	MembershipRequired *bool
	Status             *string
	SubmissionStatus   *string
	UsageCost          *string
	Comments           *string

	NumberOfPoints *int
	Connections    []Connection

	// DistanceKM from the search center, as echoed upstream or computed at fetch time.
	DistanceKM *float64

	DateCreated      *time.Time
	DateLastVerified *time.Time
}

// Name returns the station title or Unknown.
func (s *Station) Name() string {
	return Text(s.Address.Title)
}

// ConnectionTypes returns the distinct known connection types in first-seen order.
func (s *Station) ConnectionTypes() []string {
	return distinct(s.Connections, func(c Connection) *string { return c.Type })
}

// PowerLevels returns the distinct known connection levels in first-seen order.
func (s *Station) PowerLevels() []string {
	return distinct(s.Connections, func(c Connection) *string { return c.Level })
}

// MaxPowerKW returns the highest known connection power, or nil if none is known.
func (s *Station) MaxPowerKW() *float64 {
	var maxKW *float64
	for _, c := range s.Connections {
		if c.PowerKW != nil && (maxKW == nil || *c.PowerKW > *maxKW) {
			v := *c.PowerKW
			maxKW = &v
		}
	}
	return maxKW
}

func distinct(conns []Connection, field func(Connection) *string) []string {
	seen := make(map[string]struct{}, len(conns))
	out := make([]string, 0, len(conns))
	for _, c := range conns {
		v := field(c)
		if v == nil {
			continue
		}
		if _, ok := seen[*v]; ok {
			continue
		}
		seen[*v] = struct{}{}
		out = append(out, *v)
	}
	return out
}

// Result is one fetched batch of stations together with the query that produced it.
type Result struct {
	Query     Query
	Stations  []Station
	FetchedAt time.Time
}

// Text renders an optional string, substituting Unknown for nil or blank values.
func Text(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return Unknown
	}
	return *s
}
