package handler

import (
	"net/http"
	"time"

	"github.com/meteofuse/meteofuse/internal/api/models"
	"github.com/meteofuse/meteofuse/internal/api/response"
)

// ProviderProbe reports one upstream provider's circuit state.
type ProviderProbe struct {
	Name  string
	State func() string
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	probes    []ProviderProbe
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(version, buildTime string, probes []ProviderProbe) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		probes:    probes,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   time.Now().UTC(),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - provider circuit states. The
// service is degraded when any provider's breaker is not closed.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status: models.HealthStatusOK,
		Time:   time.Now().UTC(),
	}
	for _, probe := range h.probes {
		state := probe.State()
		if state != "closed" {
			status.Status = models.HealthStatusDegraded
		}
		status.Providers = append(status.Providers, models.ProviderStatus{
			Provider: probe.Name,
			State:    state,
		})
	}
	response.JSON(w, r, http.StatusOK, status)
}
