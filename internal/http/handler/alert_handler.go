package handler

import (
	"net/http"

	"github.com/straye-as/sales-assistant-api/internal/domain"
	"github.com/straye-as/sales-assistant-api/internal/service"
	"go.uber.org/zap"
)

type AlertHandler struct {
	alertService *service.ManagerAlertService
	logger       *zap.Logger
}

func NewAlertHandler(alertService *service.ManagerAlertService, logger *zap.Logger) *AlertHandler {
	return &AlertHandler{alertService: alertService, logger: logger}
}

// List godoc
// @Summary List manager alerts
// @Description Paginated audit log of alerts raised for the tenant, newest first
// @Tags Alerts
// @Produce json
// @Param tenantId path string true "Tenant ID" format(uuid)
// @Param type query string false "Filter by alert type" Enums(overdue_high_value, unusual_order)
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ManagerAlertDTO}
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /tenants/{tenantId}/alerts [get]
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := parseUUIDParam(w, r, "tenantId")
	if !ok {
		return
	}

	alertType := domain.AlertType(r.URL.Query().Get("type"))
	switch alertType {
	case "", domain.AlertTypeOverdueHighValue, domain.AlertTypeUnusualOrder:
	default:
		respondWithError(w, http.StatusBadRequest, "Invalid alert type")
		return
	}

	page, pageSize := parsePagination(r)
	alerts, total, err := h.alertService.ListAlerts(r.Context(), tenantID, alertType, page, pageSize)
	if err != nil {
		handleServiceError(w, h.logger, err, "list_alerts")
		return
	}
	respondJSON(w, http.StatusOK, paginated(alerts, total, page, pageSize))
}
