package handler

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/chargespot/chargespot/internal/api/models"
	"github.com/chargespot/chargespot/internal/api/response"
	"github.com/chargespot/chargespot/internal/report"
	"github.com/chargespot/chargespot/internal/station"
)

// Exporter writes a report for a selection of stations.
type Exporter interface {
	Export(ctx context.Context, records []station.Station, path string, meta report.Meta) error
}

// ReportHandler handles report exports.
type ReportHandler struct {
	session  *station.Session
	exporter Exporter
	logger   zerolog.Logger
	now      func() time.Time
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(session *station.Session, exporter Exporter, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		session:  session,
		exporter: exporter,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateReport handles POST /v1/reports - export the selected stations, in
// the order given, from the current set to a PDF at an absolute path.
func (h *ReportHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var input models.ReportRequest
	if err := decodeJSON(w, r, &input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if input.Path == "" || !filepath.IsAbs(input.Path) {
		response.BadRequest(w, r, "an absolute output path is required", []models.FieldError{
			{Field: "path", Message: "must be an absolute file path", Code: "INVALID"},
		})
		return
	}
	if len(input.StationIDs) == 0 {
		writeReportError(w, r, h.logger, report.ErrNoSelection)
		return
	}

	result, err := h.session.Current()
	if err != nil {
		writeStationError(w, r, err)
		return
	}
	selected, err := result.Select(input.StationIDs)
	if err != nil {
		writeStationError(w, r, err)
		return
	}

	meta := report.Meta{Query: &result.Query, GeneratedAt: h.now()}
	path := filepath.Clean(input.Path)
	if err := h.exporter.Export(r.Context(), selected, path, meta); err != nil {
		writeReportError(w, r, h.logger, err)
		return
	}

	response.JSON(w, r, http.StatusCreated, models.ReportResponse{
		Path:         path,
		StationCount: len(selected),
		GeneratedAt:  models.Timestamp(meta.GeneratedAt),
	})
}
