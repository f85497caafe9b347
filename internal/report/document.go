// Package report renders a selection of charging stations into a PDF document
// and writes it to disk atomically.
package report

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/chargespot/chargespot/internal/station"
)

const (
	// Title is printed on the title page and stored in the PDF metadata.
	Title = "Electric Vehicle Charging Stations Report"

	// DataSource credits the station directory.
	DataSource = "OpenChargeMap.org"

	// NoConnectionsText replaces the connection table of a station without connections.
	NoConnectionsText = "No connection information available"

	notAvailable = "N/A"

	timestampLayout = "January 2, 2006 at 3:04 PM"
	dateLayout      = "2006-01-02"
)

// Meta carries the context printed on the title page.
type Meta struct {
	// Query is the search that produced the stations, when known.
	Query *station.Query

	// GeneratedAt defaults to the exporter clock when zero.
	GeneratedAt time.Time
}

// Field is one label/value line.
type Field struct {
	Label string
	Value string
}

// SummaryRow is one line of the overview table.
type SummaryRow struct {
	Index    int
	Name     string
	Distance string
	Operator string
	Status   string
	Points   string
}

// ConnectionRow is one line of a station's connection table.
type ConnectionRow struct {
	Type     string
	Level    string
	Power    string
	Current  string
	Quantity string
	Status   string
}

// Block is the detail section for one station.
type Block struct {
	StationID   int
	Heading     string
	Basic       []Field
	Connections []ConnectionRow
	// Placeholder is set instead of Connections when none are known.
	Placeholder string
	Contact     []Field
	Additional  []Field
}

// Document is the layout-independent content of a report.
type Document struct {
	ID           string
	Title        string
	GeneratedAt  time.Time
	StationCount int
	DataSource   string
	Parameters   []Field
	Summary      []SummaryRow
	Blocks       []Block
}

// Compose builds the report content. Blocks and summary rows follow the order
// of records exactly.
func Compose(records []station.Station, meta Meta) Document {
	doc := Document{
		ID:           uuid.NewString(),
		Title:        Title,
		GeneratedAt:  meta.GeneratedAt,
		StationCount: len(records),
		DataSource:   DataSource,
		Summary:      make([]SummaryRow, 0, len(records)),
		Blocks:       make([]Block, 0, len(records)),
	}

	if q := meta.Query; q != nil {
		doc.Parameters = []Field{
			{Label: "Search center", Value: fmt.Sprintf("%.6f, %.6f", q.Center.Lat, q.Center.Lon)},
			{Label: "Search radius", Value: fmt.Sprintf("%s km", strconv.FormatFloat(q.RadiusKM, 'f', -1, 64))},
			{Label: "Result limit", Value: strconv.Itoa(q.MaxResults)},
		}
	}

	for i := range records {
		st := &records[i]
		doc.Summary = append(doc.Summary, SummaryRow{
			Index:    i + 1,
			Name:     truncate(st.Name(), 30),
			Distance: formatDistance(st.DistanceKM, 1),
			Operator: truncate(station.Text(st.Operator), 20),
			Status:   station.Text(st.Status),
			Points:   formatInt(st.NumberOfPoints),
		})
		doc.Blocks = append(doc.Blocks, composeBlock(st, i+1, len(records)))
	}

	return doc
}

func composeBlock(st *station.Station, n, total int) Block {
	b := Block{
		StationID: st.ID,
		Heading:   fmt.Sprintf("Station %d of %d: %s", n, total, st.Name()),
		Basic: []Field{
			{Label: "Location", Value: st.Address.Format()},
			{Label: "Coordinates", Value: fmt.Sprintf("%.6f, %.6f", st.Location.Lat, st.Location.Lon)},
			{Label: "Distance", Value: formatDistance(st.DistanceKM, 2) + distanceUnit(st.DistanceKM)},
			{Label: "Operator", Value: station.Text(st.Operator)},
			{Label: "Status", Value: station.Text(st.Status)},
			{Label: "Access Type", Value: station.Text(st.AccessType)},
			{Label: "Membership Required", Value: formatBool(st.MembershipRequired)},
			{Label: "Number of Charging Points", Value: formatInt(st.NumberOfPoints)},
			{Label: "Station ID", Value: strconv.Itoa(st.ID)},
		},
	}

	if len(st.Connections) == 0 {
		b.Placeholder = NoConnectionsText
	}
	for _, c := range st.Connections {
		b.Connections = append(b.Connections, ConnectionRow{
			Type:     station.Text(c.Type),
			Level:    station.Text(c.Level),
			Power:    formatFloat(c.PowerKW, 1),
			Current:  station.Text(c.CurrentType),
			Quantity: formatInt(c.Quantity),
			Status:   station.Text(c.Status),
		})
	}

	b.Contact = knownFields(
		Field{"Phone", optional(st.Contact.Phone)},
		Field{"Email", optional(st.Contact.Email)},
		Field{"Website", optional(st.Contact.URL)},
	)
	b.Additional = knownFields(
		Field{"Usage Cost", optional(st.UsageCost)},
		Field{"Comments", optional(st.Comments)},
		Field{"Submission Status", optional(st.SubmissionStatus)},
		Field{"Date Created", formatDate(st.DateCreated)},
	)
	// Verification metadata is always shown, as Unknown when absent.
	verified := formatDate(st.DateLastVerified)
	if verified == "" {
		verified = station.Unknown
	}
	b.Additional = append(b.Additional, Field{Label: "Last Verified", Value: verified})

	return b
}

// knownFields drops fields whose value is empty.
func knownFields(fields ...Field) []Field {
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		if f.Value != "" {
			out = append(out, f)
		}
	}
	return out
}

func optional(s *string) string {
	if v := station.Text(s); v != station.Unknown {
		return v
	}
	return ""
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}

func formatDistance(km *float64, decimals int) string {
	if km == nil {
		return notAvailable
	}
	return strconv.FormatFloat(*km, 'f', decimals, 64)
}

func distanceUnit(km *float64) string {
	if km == nil {
		return ""
	}
	return " km"
}

func formatFloat(v *float64, decimals int) string {
	if v == nil {
		return station.Unknown
	}
	return strconv.FormatFloat(*v, 'f', decimals, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return station.Unknown
	}
	return strconv.Itoa(*v)
}

func formatBool(v *bool) string {
	switch {
	case v == nil:
		return station.Unknown
	case *v:
		return "Yes"
	default:
		return "No"
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}
