package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/mandiroute/mandiroute/internal/api/models"
	"github.com/mandiroute/mandiroute/internal/api/response"
	"github.com/mandiroute/mandiroute/internal/directory"
	"github.com/mandiroute/mandiroute/internal/pricefeed"
	"github.com/mandiroute/mandiroute/internal/provider/resilience"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	directory *directory.Service
	prices    *pricefeed.Service
	registry  *resilience.Registry
}

// NewOpsHandler creates a new OpsHandler. The price service and the
// registry are optional; absent subsystems are simply omitted from the
// status report.
func NewOpsHandler(version, buildTime string, directoryService *directory.Service, priceService *pricefeed.Service, registry *resilience.Registry) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		directory: directoryService,
		prices:    priceService,
		registry:  registry,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
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

// ReadinessCheck handles GET /v1/ops/ready - readiness check. The
// directory must answer; a cold price cache is acceptable.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if h.directory != nil {
		if _, err := h.directory.ListCommodities(r.Context()); err != nil {
			response.ServiceUnavailable(w, r, "mandi directory unavailable")
			return
		}
	}

	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - subsystem and feed status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	now := models.Timestamp(time.Now())
	status := models.SystemStatus{
		Status:     models.HealthStatusOK,
		Time:       now,
		Subsystems: []models.SubsystemStatus{},
		Feeds:      []models.FeedStatus{},
	}

	if h.directory != nil {
		directoryStatus := models.SubsystemStatus{Name: "directory", Status: models.HealthStatusOK}
		if _, err := h.directory.ListCommodities(r.Context()); err != nil {
			directoryStatus.Status = models.HealthStatusFail
			status.Status = models.HealthStatusFail
		}
		status.Subsystems = append(status.Subsystems, directoryStatus)
	}

	if h.prices != nil {
		stats := h.prices.Stats()
		detail := fmt.Sprintf("%d cached entries (%d fresh, %d stale), provider %s",
			stats.TotalEntries, stats.FreshEntries, stats.StaleEntries, stats.Provider)
		status.Subsystems = append(status.Subsystems, models.SubsystemStatus{
			Name:   "pricefeed",
			Status: models.HealthStatusOK,
			Detail: &detail,
		})
	}

	if h.registry != nil {
		for _, health := range h.registry.GetAllHealth() {
			feed := models.FeedStatus{
				Feed:   health.Name,
				Status: models.HealthStatusOK,
			}
			switch {
			case health.IsUnhealthy():
				feed.Status = models.HealthStatusFail
				if status.Status == models.HealthStatusOK {
					status.Status = models.HealthStatusDegraded
				}
			case health.IsDegraded():
				feed.Status = models.HealthStatusDegraded
				if status.Status == models.HealthStatusOK {
					status.Status = models.HealthStatusDegraded
				}
			}
			if health.LastSuccessAt != nil {
				ts := models.Timestamp(*health.LastSuccessAt)
				feed.LastSuccessAt = &ts
			}
			if health.LastFailureAt != nil {
				ts := models.Timestamp(*health.LastFailureAt)
				feed.LastFailureAt = &ts
			}
			if health.LastError != "" {
				msg := health.LastError
				feed.Message = &msg
			}
			status.Feeds = append(status.Feeds, feed)
		}
	}

	response.JSON(w, r, http.StatusOK, status)
}
