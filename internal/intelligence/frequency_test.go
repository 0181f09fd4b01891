package intelligence_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/sales-assistant-api/internal/domain"
	"github.com/straye-as/sales-assistant-api/internal/intelligence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func day(n int) time.Time {
	return baseTime.AddDate(0, 0, n)
}

func ordersAtDays(days ...int) []domain.Order {
	orders := make([]domain.Order, len(days))
	for i, d := range days {
		orders[i] = domain.Order{
			BaseModel:   domain.BaseModel{ID: uuid.New(), CreatedAt: day(d)},
			Status:      domain.OrderStatusCompleted,
			TotalAmount: float64(100 * (i + 1)),
		}
	}
	return orders
}

func TestComputeIntervals(t *testing.T) {
	stats := intelligence.ComputeIntervals(intelligence.SortedOrderTimes(ordersAtDays(25, 0, 10)))

	assert.Equal(t, []float64{10, 15}, stats.Intervals)
	assert.InDelta(t, 12.5, stats.Mean, 1e-9)
	assert.InDelta(t, 2.5, stats.StdDev, 1e-9)
	assert.InDelta(t, 0.2, stats.CoefficientOfVariation(), 1e-9)
}

func TestAnalyzeFrequency(t *testing.T) {
	customerID := uuid.New()
	orders := ordersAtDays(0, 10, 25)

	t.Run("not yet due below ninety percent of the interval", func(t *testing.T) {
		result := intelligence.AnalyzeFrequency(customerID, orders, day(25+11))
		require.NotNil(t, result)

		assert.Equal(t, 3, result.OrderCount)
		assert.Equal(t, float64(13), result.AvgDaysBetweenOrders)
		assert.Equal(t, day(25), result.LastOrderDate)
		assert.Equal(t, 11, result.DaysSinceLastOrder)
		assert.False(t, result.NextOrderPrediction.IsDue)
		assert.Equal(t, 2, result.NextOrderPrediction.DaysUntilDue)
	})

	t.Run("due once ninety percent of the interval has passed", func(t *testing.T) {
		result := intelligence.AnalyzeFrequency(customerID, orders, day(25+12))
		require.NotNil(t, result)

		assert.True(t, result.NextOrderPrediction.IsDue)
		assert.Equal(t, 1, result.NextOrderPrediction.DaysUntilDue)
	})

	t.Run("days until due never goes negative", func(t *testing.T) {
		result := intelligence.AnalyzeFrequency(customerID, orders, day(25+40))
		require.NotNil(t, result)
		assert.Equal(t, 0, result.NextOrderPrediction.DaysUntilDue)
	})

	t.Run("spending summary", func(t *testing.T) {
		result := intelligence.AnalyzeFrequency(customerID, orders, day(30))
		require.NotNil(t, result)
		assert.Equal(t, float64(600), result.Spending.TotalSpent)
		assert.Equal(t, float64(200), result.Spending.AverageOrderValue)
	})

	t.Run("sparse history has no pattern", func(t *testing.T) {
		assert.Nil(t, intelligence.AnalyzeFrequency(customerID, nil, day(30)))
		assert.Nil(t, intelligence.AnalyzeFrequency(customerID, ordersAtDays(0), day(30)))
	})
}

func TestDerivePattern(t *testing.T) {
	tenantID := uuid.New()
	customerID := uuid.New()

	t.Run("overdue customer", func(t *testing.T) {
		p := intelligence.DerivePattern(tenantID, customerID, ordersAtDays(0, 10, 25), day(45))
		require.NotNil(t, p)

		assert.Equal(t, tenantID, p.TenantID)
		assert.Equal(t, customerID, p.CustomerID)
		assert.Equal(t, 3, p.OrderCount)
		assert.Equal(t, 12.5, p.AvgDaysBetweenOrders)
		assert.Equal(t, day(25+13), p.ExpectedNextOrderDate)
		assert.Equal(t, 0.53, p.ConfidenceScore)
		assert.Equal(t, domain.PatternStrengthModerate, p.PatternStrength)
		assert.Equal(t, 7, p.DaysOverdue)
		assert.True(t, p.IsOverdue)
		assert.Equal(t, 0.3, p.ChurnRiskScore)
		assert.Equal(t, float64(600), p.TotalSpent)
	})

	t.Run("on schedule customer", func(t *testing.T) {
		p := intelligence.DerivePattern(tenantID, customerID, ordersAtDays(0, 10, 20, 30), day(35))
		require.NotNil(t, p)

		assert.Equal(t, 1.0, p.ConfidenceScore)
		assert.Equal(t, domain.PatternStrengthStrong, p.PatternStrength)
		assert.Equal(t, 0, p.DaysOverdue)
		assert.False(t, p.IsOverdue)
		assert.Equal(t, 0.0, p.ChurnRiskScore)
		assert.Equal(t, 5, intelligence.DaysUntilExpected(p, day(35)))
	})

	t.Run("fewer than two orders", func(t *testing.T) {
		assert.Nil(t, intelligence.DerivePattern(tenantID, customerID, ordersAtDays(3), day(35)))
	})

	t.Run("reproducible from the same history", func(t *testing.T) {
		a := intelligence.DerivePattern(tenantID, customerID, ordersAtDays(0, 7, 15, 21), day(30))
		b := intelligence.DerivePattern(tenantID, customerID, ordersAtDays(21, 15, 7, 0), day(30))
		assert.Equal(t, a, b)
	})
}

func TestChurnRisk(t *testing.T) {
	assert.Equal(t, 0.0, intelligence.ChurnRisk(5, 10))
	assert.Equal(t, 0.0, intelligence.ChurnRisk(10, 10))
	assert.Equal(t, 0.5, intelligence.ChurnRisk(20, 10))
	assert.Equal(t, 1.0, intelligence.ChurnRisk(30, 10))
	assert.Equal(t, 1.0, intelligence.ChurnRisk(90, 10))
	assert.Equal(t, 0.0, intelligence.ChurnRisk(90, 0))
}

func TestStrengthFromConfidence(t *testing.T) {
	assert.Equal(t, domain.PatternStrengthStrong, intelligence.StrengthFromConfidence(0.75))
	assert.Equal(t, domain.PatternStrengthModerate, intelligence.StrengthFromConfidence(0.5))
	assert.Equal(t, domain.PatternStrengthWeak, intelligence.StrengthFromConfidence(0.49))
}
