package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/straye-as/sales-assistant-api/internal/domain"
	"github.com/straye-as/sales-assistant-api/internal/repository"
	"github.com/straye-as/sales-assistant-api/internal/service"
	"github.com/straye-as/sales-assistant-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var now = time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return now }

type fakeTrigger struct{ accept bool }

func (f *fakeTrigger) Trigger() bool { return f.accept }

type handlerEnv struct {
	router   http.Handler
	trigger  *fakeTrigger
	tenant   *domain.Tenant
	regular  *domain.CustomerProfile
	oneOrder *domain.CustomerProfile
	noOrders *domain.CustomerProfile
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	log := zap.NewNop()
	env := &handlerEnv{trigger: &fakeTrigger{accept: true}}

	env.tenant = testutil.CreateTestTenant(t, db, "Duka")
	env.regular = testutil.CreateTestCustomer(t, db, env.tenant.ID, "Amina", "+254711000001")
	sugar := uuid.New()
	for _, d := range []int{21, 14, 7} {
		testutil.CreateTestOrder(t, db, env.tenant.ID, env.regular.Phone, domain.OrderStatusDelivered, now.AddDate(0, 0, -d), testutil.Item(sugar, "Sugar", 2, 500))
	}
	env.oneOrder = testutil.CreateTestCustomer(t, db, env.tenant.ID, "Baraka", "+254711000002")
	testutil.CreateTestOrder(t, db, env.tenant.ID, env.oneOrder.Phone, domain.OrderStatusDelivered, now.AddDate(0, 0, -3), testutil.Item(sugar, "Sugar", 1, 500))
	env.noOrders = testutil.CreateTestCustomer(t, db, env.tenant.ID, "Chege", "+254711000003")

	customers := repository.NewCustomerRepository(db)
	orders := repository.NewOrderRepository(db)
	runs := repository.NewIntelligenceRunRepository(db)
	_, err := runs.Start(context.Background(), env.tenant.ID, now)
	require.NoError(t, err)

	alerts := service.NewManagerAlertService(repository.NewTenantRepository(db), repository.NewManagerAlertRepository(db), nil, fixedClock, log)
	intelligenceHandler := NewIntelligenceHandler(
		service.NewFrequencyService(customers, orders, fixedClock, log),
		service.NewAffinityService(customers, orders, log),
		service.NewAnomalyService(customers, orders, repository.NewPatternRepository(db), repository.NewConversationRepository(db), nil, 0, fixedClock, log),
		log,
	)
	alertHandler := NewAlertHandler(alerts, log)
	runHandler := NewRunHandler(service.NewOutreachService(service.OutreachDeps{Runs: runs, Clock: fixedClock}, service.DefaultOutreachConfig(), log), env.trigger, log)
	healthHandler := NewHealthHandler(db)

	r := chi.NewRouter()
	r.Get("/health", healthHandler.Health)
	r.Get("/health/db", healthHandler.Database)
	r.Post("/intelligence/run", runHandler.Trigger)
	r.Route("/tenants/{tenantId}", func(r chi.Router) {
		r.Get("/intelligence/overdue", intelligenceHandler.GetOverdueCustomers)
		r.Get("/intelligence/runs", runHandler.List)
		r.Get("/alerts", alertHandler.List)
		r.Get("/customers/{customerId}/purchase-frequency", intelligenceHandler.GetPurchaseFrequency)
		r.Get("/customers/{customerId}/product-affinity", intelligenceHandler.GetProductAffinity)
		r.Post("/customers/{customerId}/order-anomalies", intelligenceHandler.CheckOrderAnomalies)
	})
	env.router = r
	return env
}

func (e *handlerEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *handlerEnv) customerPath(c *domain.CustomerProfile, suffix string) string {
	return "/tenants/" + e.tenant.ID.String() + "/customers/" + c.ID.String() + "/" + suffix
}

func decodeAPIError(t *testing.T, rr *httptest.ResponseRecorder) domain.APIError {
	t.Helper()
	var apiErr domain.APIError
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&apiErr))
	return apiErr
}

func TestIntelligenceHandler_GetPurchaseFrequency(t *testing.T) {
	env := newHandlerEnv(t)

	rr := env.do(t, http.MethodGet, env.customerPath(env.regular, "purchase-frequency"), "")
	require.Equal(t, http.StatusOK, rr.Code)
	var freq domain.PurchaseFrequencyDTO
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&freq))
	assert.Equal(t, 3, freq.OrderCount)
	assert.Equal(t, 7.0, freq.AvgDaysBetweenOrders)
	assert.True(t, freq.NextOrderPrediction.IsDue)

	rr = env.do(t, http.MethodGet, env.customerPath(env.oneOrder, "purchase-frequency"), "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())

	rr = env.do(t, http.MethodGet, "/tenants/"+env.tenant.ID.String()+"/customers/"+uuid.NewString()+"/purchase-frequency", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, domain.ErrorTypeNotFound, decodeAPIError(t, rr).Type)

	rr = env.do(t, http.MethodGet, "/tenants/"+env.tenant.ID.String()+"/customers/not-a-uuid/purchase-frequency", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid customerId", decodeAPIError(t, rr).Detail)
}

func TestIntelligenceHandler_GetProductAffinity(t *testing.T) {
	env := newHandlerEnv(t)

	rr := env.do(t, http.MethodGet, env.customerPath(env.regular, "product-affinity"), "")
	require.Equal(t, http.StatusOK, rr.Code)
	var report domain.ProductAffinityReportDTO
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&report))
	assert.Equal(t, 3, report.TotalOrders)
	require.Len(t, report.RegularProducts, 1)
	assert.Equal(t, "Sugar", report.RegularProducts[0].ProductName)

	rr = env.do(t, http.MethodGet, env.customerPath(env.noOrders, "product-affinity"), "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestIntelligenceHandler_CheckOrderAnomalies(t *testing.T) {
	env := newHandlerEnv(t)
	path := env.customerPath(env.regular, "order-anomalies")

	rr := env.do(t, http.MethodPost, path, `{"items":[{"productName":"Bread","quantity":1}]}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var report domain.OrderAnomalyReportDTO
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&report))
	assert.True(t, report.HasAnomalies)
	require.Len(t, report.MissingProducts, 1)
	assert.Equal(t, "Sugar", report.MissingProducts[0].ProductName)

	rr = env.do(t, http.MethodPost, path, `not json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid request body", decodeAPIError(t, rr).Detail)

	rr = env.do(t, http.MethodPost, path, `{"items":[]}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	apiErr := decodeAPIError(t, rr)
	assert.Equal(t, domain.ErrorTypeValidation, apiErr.Type)
	assert.Contains(t, apiErr.Errors, "items")

	rr = env.do(t, http.MethodPost, path, `{"items":[{"productName":"Sugar","quantity":0}]}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Must be greater than 0", decodeAPIError(t, rr).Errors["items[0].quantity"])

	rr = env.do(t, http.MethodPost, "/tenants/"+env.tenant.ID.String()+"/customers/"+uuid.NewString()+"/order-anomalies", `{"items":[{"productName":"Sugar","quantity":1}]}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestIntelligenceHandler_GetOverdueCustomers(t *testing.T) {
	env := newHandlerEnv(t)

	rr := env.do(t, http.MethodGet, "/tenants/"+env.tenant.ID.String()+"/intelligence/overdue", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rr.Body.String()))

	rr = env.do(t, http.MethodGet, "/tenants/nope/intelligence/overdue", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAlertHandler_List(t *testing.T) {
	env := newHandlerEnv(t)
	base := "/tenants/" + env.tenant.ID.String() + "/alerts"

	rr := env.do(t, http.MethodGet, base+"?type=overdue_high_value&page=1&pageSize=5", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var page domain.PaginatedResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&page))
	assert.Zero(t, page.Total)
	assert.Equal(t, 5, page.PageSize)

	rr = env.do(t, http.MethodGet, base+"?type=bogus", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid alert type", decodeAPIError(t, rr).Detail)
}

func TestRunHandler(t *testing.T) {
	env := newHandlerEnv(t)

	rr := env.do(t, http.MethodGet, "/tenants/"+env.tenant.ID.String()+"/intelligence/runs?pageSize=500", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var page domain.PaginatedResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&page))
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, repository.MaxPageSize, page.PageSize)
	assert.Equal(t, 1, page.TotalPages)

	rr = env.do(t, http.MethodPost, "/intelligence/run", "")
	require.Equal(t, http.StatusAccepted, rr.Code)
	var accepted domain.RunTriggerResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&accepted))
	assert.True(t, accepted.Accepted)

	env.trigger.accept = false
	rr = env.do(t, http.MethodPost, "/intelligence/run", "")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, domain.ErrorTypeConflict, decodeAPIError(t, rr).Type)
}

func TestHealthHandler(t *testing.T) {
	env := newHandlerEnv(t)

	rr := env.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodGet, "/health/db", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var health HealthResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&health))
	assert.Equal(t, "ok", health.Status)
	require.NotNil(t, health.Database)
	assert.Equal(t, 1, health.Database.MaxOpen)
}

func TestToJSONFieldName(t *testing.T) {
	assert.Equal(t, "items[0].productName", toJSONFieldName("CheckOrderAnomaliesRequest.Items[0].ProductName"))
	assert.Equal(t, "items", toJSONFieldName("Items"))
}
