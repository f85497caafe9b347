// Package handler provides HTTP handlers for the ChargeSpot host bridge.
package handler

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/chargespot/chargespot/internal/api/middleware"
	"github.com/chargespot/chargespot/internal/api/models"
	"github.com/chargespot/chargespot/internal/api/response"
	"github.com/chargespot/chargespot/internal/station"
	"github.com/chargespot/chargespot/pkg/geo"
)

// searchAreaSegments is the vertex count of the encoded search circle.
const searchAreaSegments = 64

// Searcher runs one station search.
type Searcher interface {
	Search(ctx context.Context, q station.Query) (*station.Result, error)
}

// SearchHandler handles station searches.
type SearchHandler struct {
	searcher Searcher
	session  *station.Session
	logger   zerolog.Logger
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(searcher Searcher, session *station.Session, logger zerolog.Logger) *SearchHandler {
	return &SearchHandler{
		searcher: searcher,
		session:  session,
		logger:   logger,
	}
}

// Search handles POST /v1/searches - fetch stations around a point.
// A successful search replaces the current result set; a failed one keeps it.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var input models.SearchRequest
	if err := decodeJSON(w, r, &input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if input.Center == nil {
		response.BadRequest(w, r, "a search center is required", []models.FieldError{
			{Field: "center", Message: "required", Code: "REQUIRED"},
		})
		return
	}

	q := fromSearchRequest(input)
	// Rejected before Run so an invalid request does not cancel a search in flight.
	if err := q.Validate(); err != nil {
		writeStationError(w, r, err)
		return
	}

	result, err := h.session.Run(r.Context(), func(ctx context.Context) (*station.Result, error) {
		return h.searcher.Search(ctx, q)
	})
	if err != nil {
		h.logger.Warn().Err(err).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Msg("search not applied")
		writeStationError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.SearchResponse{
		Query:      toSearchQuery(result.Query),
		Count:      len(result.Stations),
		Stations:   toStations(result.Stations),
		FetchedAt:  models.Timestamp(result.FetchedAt),
		SearchArea: geo.Encode(geo.Ring(result.Query.Center, result.Query.RadiusKM, searchAreaSegments)),
	})
}
