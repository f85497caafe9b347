package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/chargespot/chargespot/internal/api/models"
	"github.com/chargespot/chargespot/internal/api/response"
	"github.com/chargespot/chargespot/internal/maplayer"
	"github.com/chargespot/chargespot/internal/station"
)

// ResultsHandler serves the current result set to the host dialog.
type ResultsHandler struct {
	session *station.Session
}

// NewResultsHandler creates a new ResultsHandler.
func NewResultsHandler(session *station.Session) *ResultsHandler {
	return &ResultsHandler{session: session}
}

// ListResults handles GET /v1/results - the current set in fetch order.
func (h *ResultsHandler) ListResults(w http.ResponseWriter, r *http.Request) {
	result, err := h.session.Current()
	if err != nil {
		writeStationError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toResults(result, result.Stations))
}

// FilterResults handles POST /v1/results:filter - the displayed sequence for
// the given filters and sort key. The current set itself is left untouched.
func (h *ResultsHandler) FilterResults(w http.ResponseWriter, r *http.Request) {
	var input models.FilterRequest
	if err := decodeJSON(w, r, &input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	cfg, err := fromFilterRequest(input)
	if err != nil {
		writeStationError(w, r, err)
		return
	}

	result, err := h.session.Current()
	if err != nil {
		writeStationError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, toResults(result, station.Apply(result.Stations, cfg)))
}

// GetFacets handles GET /v1/results/facets - the filter choices for the current set.
func (h *ResultsHandler) GetFacets(w http.ResponseWriter, r *http.Request) {
	result, err := h.session.Current()
	if err != nil {
		writeStationError(w, r, err)
		return
	}

	f := station.Facets(result.Stations)
	response.JSON(w, r, http.StatusOK, models.FacetsResponse{
		AccessTypes:     f.AccessTypes,
		Operators:       f.Operators,
		Statuses:        f.Statuses,
		ConnectionTypes: f.ConnectionTypes,
		PowerLevels:     f.PowerLevels,
	})
}

// GetLayer handles GET /v1/results/layer - the current set as GeoJSON, with
// the search circle appended when ?searchArea=true.
func (h *ResultsHandler) GetLayer(w http.ResponseWriter, r *http.Request) {
	result, err := h.session.Current()
	if err != nil {
		writeStationError(w, r, err)
		return
	}

	withArea, _ := strconv.ParseBool(r.URL.Query().Get("searchArea"))
	if withArea {
		response.GeoJSON(w, r, maplayer.WithSearchArea(result.Stations, result.Query))
		return
	}
	response.GeoJSON(w, r, maplayer.Stations(result.Stations))
}

// GetStation handles GET /v1/stations/{stationId} - one station of the current set.
func (h *ResultsHandler) GetStation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "stationId"))
	if err != nil || id <= 0 {
		response.BadRequest(w, r, "invalid station ID", []models.FieldError{
			{Field: "stationId", Message: "must be a positive integer", Code: "INVALID"},
		})
		return
	}

	st, err := h.session.Lookup(id)
	if err != nil {
		writeStationError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toStation(&st))
}

// ClearResults handles DELETE /v1/results - the dialog was closed.
func (h *ResultsHandler) ClearResults(w http.ResponseWriter, r *http.Request) {
	h.session.Clear()
	response.NoContent(w, r)
}
