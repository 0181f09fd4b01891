package handler

import (
	"encoding/json"
	"net/http"

	"github.com/straye-as/sales-assistant-api/internal/domain"
	"github.com/straye-as/sales-assistant-api/internal/service"
	"go.uber.org/zap"
)

// IntelligenceHandler exposes the purchase-pattern analyses of a tenant's customers
type IntelligenceHandler struct {
	frequency *service.FrequencyService
	affinity  *service.AffinityService
	anomalies *service.AnomalyService
	logger    *zap.Logger
}

func NewIntelligenceHandler(frequency *service.FrequencyService, affinity *service.AffinityService, anomalies *service.AnomalyService, logger *zap.Logger) *IntelligenceHandler {
	return &IntelligenceHandler{
		frequency: frequency,
		affinity:  affinity,
		anomalies: anomalies,
		logger:    logger,
	}
}

// GetOverdueCustomers godoc
// @Summary List overdue customers
// @Description Customers past their smart threshold, ranked by priority score (highest first). Customers with conversation activity in the suppression window are left out.
// @Tags Intelligence
// @Produce json
// @Param tenantId path string true "Tenant ID" format(uuid)
// @Success 200 {array} domain.OverdueCustomerDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /tenants/{tenantId}/intelligence/overdue [get]
func (h *IntelligenceHandler) GetOverdueCustomers(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := parseUUIDParam(w, r, "tenantId")
	if !ok {
		return
	}

	overdue, err := h.anomalies.DetectOverdueCustomers(r.Context(), tenantID)
	if err != nil {
		handleServiceError(w, h.logger, err, "detect_overdue")
		return
	}
	if overdue == nil {
		overdue = []domain.OverdueCustomerDTO{}
	}
	respondJSON(w, http.StatusOK, overdue)
}

// CheckOrderAnomalies godoc
// @Summary Check an order against the customer's history
// @Description Flags regular products missing from the order and lines well below the usual quantity. A customer without history yields an empty report.
// @Tags Intelligence
// @Accept json
// @Produce json
// @Param tenantId path string true "Tenant ID" format(uuid)
// @Param customerId path string true "Customer ID" format(uuid)
// @Param request body domain.CheckOrderAnomaliesRequest true "Order lines"
// @Success 200 {object} domain.OrderAnomalyReportDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /tenants/{tenantId}/customers/{customerId}/order-anomalies [post]
func (h *IntelligenceHandler) CheckOrderAnomalies(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := parseUUIDParam(w, r, "tenantId")
	if !ok {
		return
	}
	customerID, ok := parseUUIDParam(w, r, "customerId")
	if !ok {
		return
	}

	var req domain.CheckOrderAnomaliesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	report, err := h.anomalies.CheckOrderAnomalies(r.Context(), tenantID, customerID, req.Items)
	if err != nil {
		handleServiceError(w, h.logger, err, "check_order_anomalies")
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// GetPurchaseFrequency godoc
// @Summary Get a customer's purchase frequency
// @Description Average reorder interval, days since last order, next-order prediction and spending. Returns 204 when there are fewer than two qualifying orders.
// @Tags Intelligence
// @Produce json
// @Param tenantId path string true "Tenant ID" format(uuid)
// @Param customerId path string true "Customer ID" format(uuid)
// @Success 200 {object} domain.PurchaseFrequencyDTO
// @Success 204 "Insufficient order history"
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /tenants/{tenantId}/customers/{customerId}/purchase-frequency [get]
func (h *IntelligenceHandler) GetPurchaseFrequency(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := parseUUIDParam(w, r, "tenantId")
	if !ok {
		return
	}
	customerID, ok := parseUUIDParam(w, r, "customerId")
	if !ok {
		return
	}

	result, err := h.frequency.GetFrequency(r.Context(), tenantID, customerID)
	if err != nil {
		handleServiceError(w, h.logger, err, "get_purchase_frequency")
		return
	}
	if result == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetProductAffinity godoc
// @Summary Get a customer's product affinity
// @Description Regular and occasional products plus the most frequent co-purchased pairs. Returns 204 when the customer has no qualifying orders.
// @Tags Intelligence
// @Produce json
// @Param tenantId path string true "Tenant ID" format(uuid)
// @Param customerId path string true "Customer ID" format(uuid)
// @Success 200 {object} domain.ProductAffinityReportDTO
// @Success 204 "No order history"
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /tenants/{tenantId}/customers/{customerId}/product-affinity [get]
func (h *IntelligenceHandler) GetProductAffinity(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := parseUUIDParam(w, r, "tenantId")
	if !ok {
		return
	}
	customerID, ok := parseUUIDParam(w, r, "customerId")
	if !ok {
		return
	}

	result, err := h.affinity.GetAffinity(r.Context(), tenantID, customerID)
	if err != nil {
		handleServiceError(w, h.logger, err, "get_product_affinity")
		return
	}
	if result == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
