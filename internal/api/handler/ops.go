package handler

import (
	"net/http"
	"time"

	"github.com/chargespot/chargespot/internal/api/models"
	"github.com/chargespot/chargespot/internal/api/response"
	"github.com/chargespot/chargespot/internal/provider/resilience"
	"github.com/chargespot/chargespot/internal/station"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	registry  *resilience.Registry
	session   *station.Session
}

// NewOpsHandler creates a new OpsHandler. registry may be nil.
func NewOpsHandler(version, buildTime string, registry *resilience.Registry, session *station.Session) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		registry:  registry,
		session:   session,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check used by the host
// plugin to see whether the bridge process is up.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - directory circuit state and session.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status:    models.HealthStatusOK,
		Time:      models.Timestamp(time.Now()),
		Providers: []models.ProviderStatus{},
	}

	if h.registry != nil {
		for _, p := range h.registry.GetAllHealth() {
			ps := models.ProviderStatus{
				Provider:            p.Name,
				Status:              providerStatus(p),
				CircuitState:        p.CircuitState.String(),
				ConsecutiveFailures: int(p.Counts.ConsecutiveFailures),
				LastSuccessAt:       models.TimestampPtr(p.LastSuccessAt),
				LastFailureAt:       models.TimestampPtr(p.LastFailureAt),
			}
			if p.LastError != "" {
				msg := p.LastError
				ps.Message = &msg
			}
			status.Providers = append(status.Providers, ps)
			status.Status = worse(status.Status, ps.Status)
		}
	}

	if result, err := h.session.Current(); err == nil {
		fetchedAt := models.Timestamp(result.FetchedAt)
		status.Session = models.SessionStatus{
			HasResults:   true,
			StationCount: len(result.Stations),
			FetchedAt:    &fetchedAt,
		}
	}

	response.JSON(w, r, http.StatusOK, status)
}

func providerStatus(p *resilience.ProviderHealth) models.HealthStatus {
	switch p.Status() {
	case resilience.StatusUnhealthy:
		return models.HealthStatusFail
	case resilience.StatusDegraded:
		return models.HealthStatusDegraded
	default:
		return models.HealthStatusOK
	}
}

// worse returns the more severe of two statuses. A failing directory only
// degrades the bridge, which still serves the current set and reports.
func worse(current, provider models.HealthStatus) models.HealthStatus {
	if provider == models.HealthStatusOK || current == models.HealthStatusDegraded {
		return current
	}
	return models.HealthStatusDegraded
}
