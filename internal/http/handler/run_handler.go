package handler

import (
	"net/http"

	"github.com/straye-as/sales-assistant-api/internal/domain"
	"github.com/straye-as/sales-assistant-api/internal/service"
	"go.uber.org/zap"
)

// PassTrigger starts a nightly intelligence pass in the background
type PassTrigger interface {
	Trigger() bool
}

type RunHandler struct {
	runs    *service.OutreachService
	trigger PassTrigger
	logger  *zap.Logger
}

func NewRunHandler(runs *service.OutreachService, trigger PassTrigger, logger *zap.Logger) *RunHandler {
	return &RunHandler{runs: runs, trigger: trigger, logger: logger}
}

// List godoc
// @Summary List intelligence runs
// @Description Paginated run records of the nightly pass for the tenant, newest first
// @Tags Intelligence
// @Produce json
// @Param tenantId path string true "Tenant ID" format(uuid)
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.IntelligenceRunDTO}
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /tenants/{tenantId}/intelligence/runs [get]
func (h *RunHandler) List(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := parseUUIDParam(w, r, "tenantId")
	if !ok {
		return
	}

	page, pageSize := parsePagination(r)
	runs, total, err := h.runs.ListRuns(r.Context(), tenantID, page, pageSize)
	if err != nil {
		handleServiceError(w, h.logger, err, "list_runs")
		return
	}
	respondJSON(w, http.StatusOK, paginated(runs, total, page, pageSize))
}

// Trigger godoc
// @Summary Trigger the nightly intelligence pass
// @Description Starts a pass over all active tenants in the background. Requires the system API key.
// @Tags Intelligence
// @Produce json
// @Success 202 {object} domain.RunTriggerResponse
// @Failure 403 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /intelligence/run [post]
func (h *RunHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	if !h.trigger.Trigger() {
		respondWithError(w, http.StatusConflict, "An intelligence run is already in progress")
		return
	}

	h.logger.Info("nightly intelligence pass triggered over HTTP")
	respondJSON(w, http.StatusAccepted, domain.RunTriggerResponse{
		Accepted: true,
		Message:  "Intelligence pass started",
	})
}
