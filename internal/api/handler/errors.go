package handler

import (
	"errors"
	"math"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/chargespot/chargespot/internal/api/models"
	"github.com/chargespot/chargespot/internal/api/response"
	"github.com/chargespot/chargespot/internal/report"
	"github.com/chargespot/chargespot/internal/station"
)

// writeStationError maps a search or session error onto a problem response
// whose detail is the user-facing message.
func writeStationError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		paramErr *station.InvalidParameterError
		rateErr  *station.RateLimitError
		apiErr   *station.APIError
		netErr   *station.NetworkError
		parseErr *station.ParseError
	)
	detail := station.UserMessage(err)

	switch {
	case errors.As(err, &paramErr):
		response.BadRequest(w, r, detail, []models.FieldError{
			{Field: paramErr.Field, Message: paramErr.Reason, Code: "OUT_OF_RANGE"},
		})
	case errors.Is(err, station.ErrSuperseded):
		response.Conflict(w, r, detail)
	case errors.Is(err, station.ErrNoResults), errors.Is(err, station.ErrStationNotFound):
		response.NotFound(w, r, detail)
	case errors.As(err, &rateErr):
		response.UpstreamRateLimited(w, r, detail, int(math.Ceil(rateErr.RetryAfter.Seconds())))
	case errors.As(err, &apiErr), errors.As(err, &parseErr):
		response.BadGateway(w, r, detail)
	case errors.As(err, &netErr) && netErr.Timeout:
		response.GatewayTimeout(w, r, detail)
	case errors.As(err, &netErr):
		response.ServiceUnavailable(w, r, detail)
	default:
		response.InternalError(w, r, detail)
	}
}

// writeReportError maps an export error onto a problem response.
func writeReportError(w http.ResponseWriter, r *http.Request, log zerolog.Logger, err error) {
	var exportErr *report.ExportError

	switch {
	case errors.Is(err, report.ErrNoSelection):
		response.BadRequest(w, r, report.UserMessage(err), []models.FieldError{
			{Field: "stationIds", Message: "must not be empty", Code: "REQUIRED"},
		})
	case errors.As(err, &exportErr):
		log.Error().Err(err).Str("path", exportErr.Path).Str("op", exportErr.Op).Msg("report export failed")
		response.ExportFailed(w, r, report.UserMessage(err))
	default:
		log.Error().Err(err).Msg("report export failed")
		response.InternalError(w, r, report.UserMessage(err))
	}
}
