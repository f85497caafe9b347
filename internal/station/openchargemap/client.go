// Package openchargemap implements station.Provider against the OpenChargeMap
// POI API.
package openchargemap

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/chargespot/chargespot/internal/provider/resilience"
	"github.com/chargespot/chargespot/internal/station"
	"github.com/chargespot/chargespot/pkg/geo"
)

const (
	// ProviderName identifies this station directory.
	ProviderName = "openchargemap"

	// DefaultBaseURL is the OpenChargeMap API base URL.
	DefaultBaseURL = "https://api.openchargemap.io/v3"

	// DefaultUserAgent is sent when ClientConfig.UserAgent is empty.
	DefaultUserAgent = "ChargeSpot/1.0"

	// apiKeyHeader carries the optional API key.
	apiKeyHeader = "X-API-Key"

	// maxErrorBody bounds the response body kept on an APIError.
	maxErrorBody = 512

	// maxResponseBytes bounds a successful response body.
	maxResponseBytes = 64 << 20
)

// ClientConfig holds configuration for the OpenChargeMap client.
type ClientConfig struct {
	// BaseURL is the API base URL (optional, defaults to OpenChargeMap v3).
	BaseURL string

	// APIKey is used when a query does not carry its own key (optional).
	APIKey string

	// UserAgent identifies the application to the directory.
	UserAgent string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an OpenChargeMap API client.
type Client struct {
	baseURL    string
	apiKey     string
	userAgent  string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new OpenChargeMap client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		userAgent:  userAgent,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// SearchStations fetches the stations within q.RadiusKM of q.Center.
func (c *Client) SearchStations(ctx context.Context, q station.Query) ([]station.Station, error) {
	params := url.Values{}
	params.Set("output", "json")
	params.Set("latitude", strconv.FormatFloat(q.Center.Lat, 'f', 6, 64))
	params.Set("longitude", strconv.FormatFloat(q.Center.Lon, 'f', 6, 64))
	params.Set("distance", strconv.FormatFloat(q.RadiusKM, 'f', -1, 64))
	params.Set("distanceunit", "km")
	params.Set("maxresults", strconv.Itoa(q.MaxResults))
	params.Set("compact", "false")
	params.Set("verbose", "false")

	endpoint := c.baseURL + "/poi/?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	apiKey := q.APIKey
	if apiKey == "" {
		apiKey = c.apiKey
	}
	if apiKey != "" {
		req.Header.Set(apiKeyHeader, apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, networkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, networkError(fmt.Errorf("reading response: %w", err))
	}

	return c.decode(body)
}

// decode parses the response envelope and maps each element. Elements that
// cannot become a station are skipped; the envelope itself must be an array.
func (c *Client) decode(body []byte) ([]station.Station, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &station.ParseError{Err: errors.New("response is not a JSON array")}
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(trimmed, &elements); err != nil {
		return nil, &station.ParseError{Err: err}
	}

	stations := make([]station.Station, 0, len(elements))
	skipped := 0
	for i, elem := range elements {
		st, reason := toStation(elem)
		if reason != "" {
			skipped++
			c.logger.Warn().Int("index", i).Str("reason", reason).Msg("skipping station record")
			continue
		}
		stations = append(stations, st)
	}

	c.logger.Debug().
		Int("received", len(elements)).
		Int("skipped", skipped).
		Msg("decoded station response")

	return stations, nil
}

// toStation maps one raw element. A non-empty reason means it was rejected.
func toStation(elem json.RawMessage) (station.Station, string) {
	if !isObject(elem) {
		return station.Station{}, "element is not an object"
	}

	var p poi
	if err := json.Unmarshal(elem, &p); err != nil {
		return station.Station{}, "element could not be decoded"
	}

	if p.ID.v == nil || *p.ID.v <= 0 {
		return station.Station{}, "missing station ID"
	}
	if p.AddressInfo.Latitude.v == nil || p.AddressInfo.Longitude.v == nil {
		return station.Station{}, "missing coordinates"
	}

	loc := geo.Coordinate{Lat: *p.AddressInfo.Latitude.v, Lon: *p.AddressInfo.Longitude.v}
	if err := loc.Validate(); err != nil {
		return station.Station{}, "coordinates out of range"
	}

	st := station.Station{
		ID:       *p.ID.v,
		Location: loc,
		Address: station.Address{
			Title:           p.AddressInfo.Title.v,
			Line1:           p.AddressInfo.AddressLine1.v,
			Town:            p.AddressInfo.Town.v,
			StateOrProvince: p.AddressInfo.StateOrProvince.v,
			Postcode:        p.AddressInfo.Postcode.v,
			Country:         p.AddressInfo.Country.Title.v,
		},
		Contact: station.Contact{
			Phone: p.AddressInfo.ContactTelephone1.v,
			Email: p.AddressInfo.ContactEmail.v,
			URL:   p.AddressInfo.RelatedURL.v,
		},
		Operator:           p.OperatorInfo.Title.v,
		AccessType:         p.UsageType.Title.v,
		MembershipRequired: p.UsageType.IsMembershipRequired.v,
		Status:             p.StatusType.Title.v,
		SubmissionStatus:   p.SubmissionStatus.Title.v,
		UsageCost:          p.UsageCost.v,
		Comments:           p.GeneralComments.v,
		NumberOfPoints:     nonNegative(p.NumberOfPoints.v),
		DistanceKM:         nonNegativeFloat(p.AddressInfo.Distance.v),
		DateCreated:        p.DateCreated.v,
		DateLastVerified:   p.DateLastVerified.v,
	}
	if p.UUID.v != nil {
		st.UUID = *p.UUID.v
	}

	st.Connections = make([]station.Connection, 0, len(p.Connections))
	for _, conn := range p.Connections {
		st.Connections = append(st.Connections, station.Connection{
			Type:        conn.ConnectionType.Title.v,
			Level:       conn.Level.Title.v,
			PowerKW:     nonNegativeFloat(conn.PowerKW.v),
			CurrentType: conn.CurrentType.Title.v,
			Quantity:    nonNegative(conn.Quantity.v),
			Status:      conn.StatusType.Title.v,
			Amps:        nonNegative(conn.Amps.v),
			Voltage:     nonNegative(conn.Voltage.v),
		})
	}

	return st, ""
}

func nonNegative(n *int) *int {
	if n == nil || *n < 0 {
		return nil
	}
	return n
}

func nonNegativeFloat(f *float64) *float64 {
	if f == nil || *f < 0 {
		return nil
	}
	return f
}

// networkError classifies a transport failure.
func networkError(err error) error {
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return &station.NetworkError{Err: err}
	}

	var netErr net.Error
	timeout := errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout())
	return &station.NetworkError{Timeout: timeout, Err: err}
}

// statusError builds the error for a non-2xx response.
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)) //nolint:errcheck // best effort
	apiErr := &station.APIError{
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return &station.RateLimitError{
			APIError:   apiErr,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
		}
	}
	return apiErr
}

// parseRetryAfter reads either delay-seconds or an HTTP date. Zero means unknown.
func parseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
