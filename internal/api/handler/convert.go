package handler

import (
	"fmt"

	"github.com/chargespot/chargespot/internal/api/models"
	"github.com/chargespot/chargespot/internal/station"
	"github.com/chargespot/chargespot/pkg/geo"
)

func toStations(records []station.Station) []models.Station {
	out := make([]models.Station, 0, len(records))
	for i := range records {
		out = append(out, toStation(&records[i]))
	}
	return out
}

func toStation(s *station.Station) models.Station {
	conns := make([]models.Connection, 0, len(s.Connections))
	for _, c := range s.Connections {
		conns = append(conns, models.Connection{
			Type:        c.Type,
			Level:       c.Level,
			PowerKW:     c.PowerKW,
			CurrentType: c.CurrentType,
			Quantity:    c.Quantity,
			Status:      c.Status,
			Amps:        c.Amps,
			Voltage:     c.Voltage,
		})
	}

	return models.Station{
		ID:       s.ID,
		UUID:     s.UUID,
		Name:     s.Name(),
		Location: models.Point{Lat: s.Location.Lat, Lon: s.Location.Lon},
		Address: models.Address{
			Title:           s.Address.Title,
			Line1:           s.Address.Line1,
			Town:            s.Address.Town,
			StateOrProvince: s.Address.StateOrProvince,
			Postcode:        s.Address.Postcode,
			Country:         s.Address.Country,
			Formatted:       s.Address.Format(),
		},
		Operator:           s.Operator,
		AccessType:         s.AccessType,
		MembershipRequired: s.MembershipRequired,
		Status:             s.Status,
		SubmissionStatus:   s.SubmissionStatus,
		UsageCost:          s.UsageCost,
		Comments:           s.Comments,
		NumberOfPoints:     s.NumberOfPoints,
		MaxPowerKW:         s.MaxPowerKW(),
		DistanceKM:         s.DistanceKM,
		Connections:        conns,
		Contact: models.Contact{
			Phone: s.Contact.Phone,
			Email: s.Contact.Email,
			URL:   s.Contact.URL,
		},
		DateCreated:      models.TimestampPtr(s.DateCreated),
		DateLastVerified: models.TimestampPtr(s.DateLastVerified),
	}
}

func toSearchQuery(q station.Query) models.SearchQuery {
	return models.SearchQuery{
		Center:     models.Point{Lat: q.Center.Lat, Lon: q.Center.Lon},
		RadiusKM:   q.RadiusKM,
		MaxResults: q.MaxResults,
	}
}

// fromSearchRequest applies the dialog defaults for omitted fields.
func fromSearchRequest(req models.SearchRequest) station.Query {
	q := station.Query{
		RadiusKM:   station.DefaultRadiusKM,
		MaxResults: station.DefaultMaxResults,
		APIKey:     req.APIKey,
	}
	if req.Center != nil {
		q.Center = geo.Coordinate{Lat: req.Center.Lat, Lon: req.Center.Lon}
	}
	if req.RadiusKM != nil {
		q.RadiusKM = *req.RadiusKM
	}
	if req.MaxResults != nil {
		q.MaxResults = *req.MaxResults
	}
	return q
}

func fromFilterRequest(req models.FilterRequest) (station.FilterSortConfig, error) {
	key, err := station.ParseSortKey(req.SortBy)
	if err != nil {
		return station.FilterSortConfig{}, err
	}
	return station.FilterSortConfig{
		AccessTypes:     req.AccessTypes,
		Operators:       req.Operators,
		Statuses:        req.Statuses,
		ConnectionTypes: req.ConnectionTypes,
		PowerLevels:     req.PowerLevels,
		MinPowerKW:      req.MinPowerKW,
		SortBy:          key,
		Descending:      req.Descending,
	}, nil
}

func toResults(r *station.Result, shown []station.Station) models.ResultsResponse {
	return models.ResultsResponse{
		Query:     toSearchQuery(r.Query),
		Shown:     len(shown),
		Total:     len(r.Stations),
		Summary:   fmt.Sprintf("Showing %d of %d stations", len(shown), len(r.Stations)),
		Stations:  toStations(shown),
		FetchedAt: models.Timestamp(r.FetchedAt),
	}
}
