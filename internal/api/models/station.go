package models

// Station is the wire form of one charging station. Optional fields are
// omitted when the directory did not provide them; the host shows them as
// "Unknown".
type Station struct {
	ID                 int          `json:"id"`
	UUID               string       `json:"uuid,omitempty"`
	Name               string       `json:"name"`
	Location           Point        `json:"location"`
	Address            Address      `json:"address"`
	Operator           *string      `json:"operator,omitempty"`
	AccessType         *string      `json:"accessType,omitempty"`
	MembershipRequired *bool        `json:"membershipRequired,omitempty"`
	Status             *string      `json:"status,omitempty"`
	SubmissionStatus   *string      `json:"submissionStatus,omitempty"`
	UsageCost          *string      `json:"usageCost,omitempty"`
	Comments           *string      `json:"comments,omitempty"`
	NumberOfPoints     *int         `json:"numberOfPoints,omitempty"`
	MaxPowerKW         *float64     `json:"maxPowerKw,omitempty"`
	DistanceKM         *float64     `json:"distanceKm,omitempty"`
	Connections        []Connection `json:"connections"`
	Contact            Contact      `json:"contact"`
	DateCreated        *Timestamp   `json:"dateCreated,omitempty"`
	DateLastVerified   *Timestamp   `json:"dateLastVerified,omitempty"`
}

// Address is the postal address of a station.
type Address struct {
	Title           *string `json:"title,omitempty"`
	Line1           *string `json:"line1,omitempty"`
	Town            *string `json:"town,omitempty"`
	StateOrProvince *string `json:"stateOrProvince,omitempty"`
	Postcode        *string `json:"postcode,omitempty"`
	Country         *string `json:"country,omitempty"`
	Formatted       string  `json:"formatted"`
}

// Contact holds the contact details of a station.
type Contact struct {
	Phone *string `json:"phone,omitempty"`
	Email *string `json:"email,omitempty"`
	URL   *string `json:"url,omitempty"`
}

// Connection is one connector on a station.
type Connection struct {
	Type        *string  `json:"type,omitempty"`
	Level       *string  `json:"level,omitempty"`
	PowerKW     *float64 `json:"powerKw,omitempty"`
	CurrentType *string  `json:"currentType,omitempty"`
	Quantity    *int     `json:"quantity,omitempty"`
	Status      *string  `json:"status,omitempty"`
	Amps        *int     `json:"amps,omitempty"`
	Voltage     *int     `json:"voltage,omitempty"`
}

// SearchRequest is the body of POST /v1/searches. Omitted radius and result
// limit fall back to 10 km and 200 stations.
type SearchRequest struct {
	Center     *Point   `json:"center"`
	RadiusKM   *float64 `json:"radiusKm,omitempty"`
	MaxResults *int     `json:"maxResults,omitempty"`
	APIKey     string   `json:"apiKey,omitempty"`
}

// SearchQuery echoes the parameters a result set was fetched with.
type SearchQuery struct {
	Center     Point   `json:"center"`
	RadiusKM   float64 `json:"radiusKm"`
	MaxResults int     `json:"maxResults"`
}

// SearchResponse is returned by POST /v1/searches.
type SearchResponse struct {
	Query     SearchQuery `json:"query"`
	Count     int         `json:"count"`
	Stations  []Station   `json:"stations"`
	FetchedAt Timestamp   `json:"fetchedAt"`

	// SearchArea is the search circle as an encoded polyline (precision 5),
	// for drawing the radius on the map.
	SearchArea string `json:"searchArea"`
}

// FilterRequest is the body of POST /v1/results:filter. Empty lists leave
// the corresponding filter inactive.
type FilterRequest struct {
	AccessTypes     []string `json:"accessTypes,omitempty"`
	Operators       []string `json:"operators,omitempty"`
	Statuses        []string `json:"statuses,omitempty"`
	ConnectionTypes []string `json:"connectionTypes,omitempty"`
	PowerLevels     []string `json:"powerLevels,omitempty"`
	MinPowerKW      *float64 `json:"minPowerKw,omitempty"`
	SortBy          string   `json:"sortBy,omitempty"`
	Descending      *bool    `json:"descending,omitempty"`
}

// ResultsResponse is the displayed sequence of the current result set.
type ResultsResponse struct {
	Query     SearchQuery `json:"query"`
	Shown     int         `json:"shown"`
	Total     int         `json:"total"`
	Summary   string      `json:"summary"`
	Stations  []Station   `json:"stations"`
	FetchedAt Timestamp   `json:"fetchedAt"`
}

// FacetsResponse lists the distinct values the host offers as filter choices.
type FacetsResponse struct {
	AccessTypes     []string `json:"accessTypes"`
	Operators       []string `json:"operators"`
	Statuses        []string `json:"statuses"`
	ConnectionTypes []string `json:"connectionTypes"`
	PowerLevels     []string `json:"powerLevels"`
}

// ReportRequest is the body of POST /v1/reports. Stations are exported in
// the order of StationIDs.
type ReportRequest struct {
	StationIDs []int  `json:"stationIds"`
	Path       string `json:"path"`
}

// ReportResponse confirms a written report.
type ReportResponse struct {
	Path         string    `json:"path"`
	StationCount int       `json:"stationCount"`
	GeneratedAt  Timestamp `json:"generatedAt"`
}
