package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/sales-assistant-api/internal/domain"
	"github.com/straye-as/sales-assistant-api/internal/intelligence"
	"github.com/straye-as/sales-assistant-api/internal/repository"
	"github.com/straye-as/sales-assistant-api/internal/service"
	"github.com/straye-as/sales-assistant-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type overdueFixture struct {
	db          *gorm.DB
	tenant      *domain.Tenant
	vip         *domain.CustomerProfile
	established *domain.CustomerProfile
	suppressed  *domain.CustomerProfile
	weak        *domain.CustomerProfile
}

// seedOverdueTenant creates customers with stored patterns:
//   - vip: every 10 days, 30 days overdue, high lifetime value
//   - established: every 10 days, 10 days overdue
//   - suppressed: like vip but chatted an hour ago
//   - weak: one monthly interval, 10 days overdue but below its 15 day threshold
func seedOverdueTenant(t *testing.T) *overdueFixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	f := &overdueFixture{db: db}
	f.tenant = testutil.CreateTestTenant(t, db, "Duka")

	rice := []domain.OrderItem{testutil.Item(uuid.New(), "Rice", 2, 500)}

	f.vip = testutil.CreateTestCustomer(t, db, f.tenant.ID, "Wanjiru", "+254711000010")
	require.NoError(t, db.Model(f.vip).Updates(map[string]interface{}{"lifetime_value": 150000, "order_count": 12}).Error)
	createOrders(t, db, f.tenant.ID, f.vip.Phone, rice, 70, 60, 50, 40)

	f.established = testutil.CreateTestCustomer(t, db, f.tenant.ID, "Otieno", "+254711000011")
	createOrders(t, db, f.tenant.ID, f.established.Phone, rice, 50, 40, 30, 20)

	f.suppressed = testutil.CreateTestCustomer(t, db, f.tenant.ID, "Njeri", "+254711000012")
	createOrders(t, db, f.tenant.ID, f.suppressed.Phone, rice, 70, 60, 50, 40)
	testutil.CreateTestConversation(t, db, f.tenant.ID, f.suppressed.Phone, now.Add(-time.Hour), nil)

	f.weak = testutil.CreateTestCustomer(t, db, f.tenant.ID, "Kamau", "+254711000013")
	createOrders(t, db, f.tenant.ID, f.weak.Phone, rice, 90, 50)

	patterns := service.NewPatternService(repository.NewCustomerRepository(db), repository.NewOrderRepository(db), repository.NewPatternRepository(db), fixedClock, zap.NewNop())
	for _, c := range []*domain.CustomerProfile{f.vip, f.established, f.suppressed, f.weak} {
		_, err := patterns.Refresh(context.Background(), f.tenant.ID, c.ID)
		require.NoError(t, err)
	}
	return f
}

func newAnomalyService(db *gorm.DB, alerter service.UnusualOrderAlerter) *service.AnomalyService {
	return service.NewAnomalyService(
		repository.NewCustomerRepository(db),
		repository.NewOrderRepository(db),
		repository.NewPatternRepository(db),
		repository.NewConversationRepository(db),
		alerter,
		0,
		fixedClock,
		zap.NewNop(),
	)
}

func TestAnomalyService_DetectOverdueCustomers(t *testing.T) {
	f := seedOverdueTenant(t)
	svc := newAnomalyService(f.db, nil)

	overdue, err := svc.DetectOverdueCustomers(context.Background(), f.tenant.ID)
	require.NoError(t, err)
	require.Len(t, overdue, 2)

	vip := overdue[0]
	assert.Equal(t, f.vip.ID, vip.CustomerID)
	assert.Equal(t, "Wanjiru", vip.CustomerName)
	assert.Equal(t, 30, vip.DaysOverdue)
	assert.Equal(t, 1, vip.Threshold)
	assert.Equal(t, domain.CustomerTierVIP, vip.Tier)
	assert.Equal(t, 1, vip.TierPriority)
	assert.Equal(t, 150000.0, vip.LifetimeValue)
	assert.Equal(t, 1.0, vip.ChurnRiskScore)
	assert.Equal(t, domain.PatternStrengthStrong, vip.PatternStrength)
	assert.Equal(t, intelligence.TrendStable, vip.Trend.Trend)
	assert.Equal(t, 130.0, vip.PriorityScore)
	assert.Equal(t, domain.SeverityCritical, vip.Severity)

	established := overdue[1]
	assert.Equal(t, f.established.ID, established.CustomerID)
	assert.Equal(t, 10, established.DaysOverdue)
	// no stored lifetime value, so the pattern totals classify the tier
	assert.Equal(t, domain.CustomerTierEstablished, established.Tier)
	assert.Equal(t, 4000.0, established.LifetimeValue)
	assert.Equal(t, 0.5, established.ChurnRiskScore)
	assert.Equal(t, 105.0, established.PriorityScore)
}

func TestAnomalyService_DetectOverdueCustomers_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	tenant := testutil.CreateTestTenant(t, db, "Duka")

	overdue, err := newAnomalyService(db, nil).DetectOverdueCustomers(context.Background(), tenant.ID)
	require.NoError(t, err)
	assert.NotNil(t, overdue)
	assert.Empty(t, overdue)
}

func TestAnomalyService_CheckOrderAnomalies(t *testing.T) {
	f := seedWeeklyBuyer(t)
	sender := newRecordingSender()
	alerts := service.NewManagerAlertService(repository.NewTenantRepository(f.db), repository.NewManagerAlertRepository(f.db), sender, fixedClock, zap.NewNop())
	svc := newAnomalyService(f.db, alerts)
	ctx := context.Background()

	t.Run("missing regular product raises an alert", func(t *testing.T) {
		report, err := svc.CheckOrderAnomalies(ctx, f.tenant.ID, f.customer.ID, []domain.OrderItemInput{
			{ProductID: f.bread, ProductName: "Bread", Quantity: 1},
		})
		require.NoError(t, err)
		require.True(t, report.HasAnomalies)
		require.Len(t, report.MissingProducts, 1)

		missing := report.MissingProducts[0]
		assert.Equal(t, "Sugar", missing.ProductName)
		assert.Equal(t, domain.SeverityHigh, missing.Severity)
		assert.Equal(t, 7, missing.DaysSinceLastPurchase)
		assert.Empty(t, report.QuantityAnomalies)

		sent := sender.to(f.tenant.ManagerPhone)
		require.Len(t, sent, 1)
		assert.Contains(t, sent[0].Text, "Unusual order")
		assert.Contains(t, sent[0].Text, "missing Sugar")
	})

	t.Run("low quantity is reported by name", func(t *testing.T) {
		report, err := svc.CheckOrderAnomalies(ctx, f.tenant.ID, f.customer.ID, []domain.OrderItemInput{
			{ProductName: " sugar ", Quantity: 1},
		})
		require.NoError(t, err)
		assert.Empty(t, report.MissingProducts)
		require.Len(t, report.QuantityAnomalies, 1)
		assert.Equal(t, 50, report.QuantityAnomalies[0].ReductionPercent)
		assert.Equal(t, 2.0, report.QuantityAnomalies[0].AverageQuantity)
	})

	t.Run("usual order is clean", func(t *testing.T) {
		report, err := svc.CheckOrderAnomalies(ctx, f.tenant.ID, f.customer.ID, []domain.OrderItemInput{
			{ProductID: f.sugar, ProductName: "Sugar", Quantity: 2},
		})
		require.NoError(t, err)
		assert.False(t, report.HasAnomalies)
	})

	t.Run("unknown customer", func(t *testing.T) {
		_, err := svc.CheckOrderAnomalies(ctx, f.tenant.ID, uuid.New(), []domain.OrderItemInput{{ProductName: "Sugar", Quantity: 1}})
		assert.ErrorIs(t, err, service.ErrCustomerNotFound)
	})
}

func TestAnomalyService_CheckOrderAnomalies_NoHistory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	tenant := testutil.CreateTestTenant(t, db, "Duka")
	customer := testutil.CreateTestCustomer(t, db, tenant.ID, "Baraka", "+254711000002")

	report, err := newAnomalyService(db, nil).CheckOrderAnomalies(context.Background(), tenant.ID, customer.ID, []domain.OrderItemInput{{ProductName: "Sugar", Quantity: 1}})
	require.NoError(t, err)
	assert.False(t, report.HasAnomalies)
	assert.NotNil(t, report.MissingProducts)
	assert.NotNil(t, report.QuantityAnomalies)
}
