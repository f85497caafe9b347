package station

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrSuperseded is returned when a search finishes after a newer search started.
// Its result is discarded rather than merged into the current set.
var ErrSuperseded = errors.New("search superseded by a newer search")

// ErrNoResults is returned when the session holds no fetched set yet.
var ErrNoResults = errors.New("no search results available")

// ErrStationNotFound is returned when a station ID is not part of the current set.
var ErrStationNotFound = errors.New("station not found in current results")

// NetworkError reports a connectivity failure or timeout talking to the directory.
type NetworkError struct {
	Timeout bool
	Err     error
}

func (e *NetworkError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("network timeout: %v", e.Err)
	}
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// APIError reports a non-success HTTP status from the directory.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}

// RateLimitError is the APIError produced by HTTP 429. It unwraps to its
// *APIError so callers matching APIError still see it.
type RateLimitError struct {
	APIError   *APIError
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited by upstream (retry after %s)", e.RetryAfter)
	}
	return "rate limited by upstream"
}

func (e *RateLimitError) Unwrap() error { return e.APIError }

// ParseError reports a response envelope that is not a JSON array of stations.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing station response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// InvalidParameterError reports a search parameter outside its accepted range.
type InvalidParameterError struct {
	Field  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// UserMessage turns a query-side error into text suitable for a dialog box.
func UserMessage(err error) string {
	var (
		rateErr  *RateLimitError
		apiErr   *APIError
		netErr   *NetworkError
		parseErr *ParseError
		paramErr *InvalidParameterError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &rateErr):
		return "The charging station directory is rate limiting requests. Try again later or supply an API key for higher limits."
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusForbidden:
		return "Access to the charging station directory was refused. An API key may be required, or requests are temporarily rate limited."
	case errors.As(err, &apiErr):
		return fmt.Sprintf("The charging station directory returned an error (HTTP %d).", apiErr.StatusCode)
	case errors.As(err, &netErr) && netErr.Timeout:
		return "The charging station directory did not respond in time. Check your connection and try again."
	case errors.As(err, &netErr):
		return "Could not reach the charging station directory. Check your network connection."
	case errors.As(err, &parseErr):
		return "The charging station directory sent a response that could not be read."
	case errors.As(err, &paramErr):
		return fmt.Sprintf("Invalid search parameter %s: %s.", paramErr.Field, paramErr.Reason)
	case errors.Is(err, ErrSuperseded):
		return "This search was replaced by a newer one."
	case errors.Is(err, ErrNoResults):
		return "Run a search first."
	case errors.Is(err, ErrStationNotFound):
		return "The selected station is not part of the current results."
	default:
		return "Searching for charging stations failed."
	}
}
