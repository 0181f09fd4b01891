package intelligence_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/straye-as/sales-assistant-api/internal/domain"
	"github.com/straye-as/sales-assistant-api/internal/intelligence"
	"github.com/stretchr/testify/assert"
)

var strengths = []domain.PatternStrength{
	domain.PatternStrengthWeak,
	domain.PatternStrengthModerate,
	domain.PatternStrengthStrong,
}

func TestSmartThreshold(t *testing.T) {
	tests := []struct {
		name       string
		strength   domain.PatternStrength
		confidence float64
		avg        float64
		want       int
	}{
		{"strong and certain", domain.PatternStrengthStrong, 1.0, 14, 1},
		{"moderate", domain.PatternStrengthModerate, 0.5, 14, 6},
		{"weak monthly buyer with unknown confidence", domain.PatternStrengthWeak, 0, 40, 15},
		{"two orders use the confidence floor", domain.PatternStrengthWeak, 0.33, 14, 10},
		{"near-zero confidence matches zero", domain.PatternStrengthWeak, 0.01, 14, 10},
		{"weekly buyer is tighter", domain.PatternStrengthModerate, 0.75, 5, 3},
		{"never below one day", domain.PatternStrengthStrong, 1.0, 3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &domain.PurchasePattern{
				PatternStrength:      tt.strength,
				ConfidenceScore:      tt.confidence,
				AvgDaysBetweenOrders: tt.avg,
			}
			assert.Equal(t, tt.want, intelligence.SmartThreshold(p))
		})
	}
}

func TestClassifyTier(t *testing.T) {
	tests := []struct {
		total  float64
		orders int
		want   domain.CustomerTier
	}{
		{150000, 5, domain.CustomerTierVIP},
		{60000, 11, domain.CustomerTierVIP},
		{60000, 4, domain.CustomerTierHighValue},
		{20000, 6, domain.CustomerTierHighValue},
		{1000, 3, domain.CustomerTierEstablished},
		{100, 2, domain.CustomerTierNew},
		{0, 0, domain.CustomerTierNew},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, intelligence.ClassifyTier(tt.total, tt.orders), "total=%v orders=%d", tt.total, tt.orders)
	}
	assert.Equal(t, 1, domain.CustomerTierVIP.Priority())
	assert.Equal(t, 4, domain.CustomerTierNew.Priority())
}

func TestDetectTrend(t *testing.T) {
	t.Run("declining", func(t *testing.T) {
		trend := intelligence.DetectTrend(intelligence.SortedOrderTimes(ordersAtDays(0, 7, 14, 21, 35, 50, 70)))
		assert.True(t, trend.Declining)
		assert.Equal(t, intelligence.TrendDeclining, trend.Trend)
		assert.Equal(t, 16.33, trend.RecentAvg)
		assert.Equal(t, float64(7), trend.OlderAvg)
	})

	t.Run("stable", func(t *testing.T) {
		trend := intelligence.DetectTrend(intelligence.SortedOrderTimes(ordersAtDays(0, 10, 20, 30, 40, 50, 60)))
		assert.False(t, trend.Declining)
		assert.Equal(t, intelligence.TrendStable, trend.Trend)
	})

	t.Run("accelerating", func(t *testing.T) {
		trend := intelligence.DetectTrend(intelligence.SortedOrderTimes(ordersAtDays(0, 20, 40, 50, 55)))
		assert.False(t, trend.Declining)
		assert.Equal(t, intelligence.TrendAccelerating, trend.Trend)
	})

	t.Run("only the latest seven orders count", func(t *testing.T) {
		// the 100-day gap at the start is outside the window
		trend := intelligence.DetectTrend(intelligence.SortedOrderTimes(ordersAtDays(0, 100, 110, 120, 130, 140, 150, 160)))
		assert.Equal(t, intelligence.TrendStable, trend.Trend)
		assert.Equal(t, float64(10), trend.OlderAvg)
	})

	t.Run("insufficient data", func(t *testing.T) {
		trend := intelligence.DetectTrend(intelligence.SortedOrderTimes(ordersAtDays(0, 10, 20)))
		assert.Equal(t, intelligence.TrendInsufficientData, trend.Trend)
		assert.False(t, trend.Declining)
	})
}

func TestPriorityScore(t *testing.T) {
	score := intelligence.PriorityScore(intelligence.PriorityInput{
		ChurnRisk:    0.5,
		TierPriority: 1,
		Declining:    true,
		DaysOverdue:  10,
		AvgInterval:  20,
		Strength:     domain.PatternStrengthStrong,
	})
	assert.Equal(t, 127.5, score)
	assert.Equal(t, domain.SeverityCritical, intelligence.SeverityForScore(score))

	floor := intelligence.PriorityScore(intelligence.PriorityInput{
		TierPriority: 4,
		Strength:     domain.PatternStrengthWeak,
	})
	assert.Equal(t, float64(60), floor)
}

func TestSeverityForScore(t *testing.T) {
	assert.Equal(t, domain.SeverityCritical, intelligence.SeverityForScore(75.01))
	assert.Equal(t, domain.SeverityHigh, intelligence.SeverityForScore(75))
	assert.Equal(t, domain.SeverityHigh, intelligence.SeverityForScore(60.5))
	assert.Equal(t, domain.SeverityMedium, intelligence.SeverityForScore(60))
	assert.Equal(t, domain.SeverityMedium, intelligence.SeverityForScore(45.5))
	assert.Equal(t, domain.SeverityLow, intelligence.SeverityForScore(45))
}

func TestRankOverdue(t *testing.T) {
	customers := []domain.OverdueCustomerDTO{
		{CustomerName: "a", PriorityScore: 80, DaysOverdue: 3},
		{CustomerName: "b", PriorityScore: 120, DaysOverdue: 1},
		{CustomerName: "c", PriorityScore: 80, DaysOverdue: 9},
	}
	intelligence.RankOverdue(customers)

	assert.Equal(t, "b", customers[0].CustomerName)
	assert.Equal(t, "c", customers[1].CustomerName)
	assert.Equal(t, "a", customers[2].CustomerName)
}

func TestSmartThreshold_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("higher confidence never widens the threshold", prop.ForAll(
		func(strengthIdx int, avg, c1, c2 float64) bool {
			if c1 > c2 {
				c1, c2 = c2, c1
			}
			low := &domain.PurchasePattern{PatternStrength: strengths[strengthIdx], ConfidenceScore: c1, AvgDaysBetweenOrders: avg}
			high := &domain.PurchasePattern{PatternStrength: strengths[strengthIdx], ConfidenceScore: c2, AvgDaysBetweenOrders: avg}
			return intelligence.SmartThreshold(low) >= intelligence.SmartThreshold(high)
		},
		gen.IntRange(0, len(strengths)-1),
		gen.Float64Range(1, 120),
		gen.Float64Range(0, 1.0),
		gen.Float64Range(0, 1.0),
	))

	properties.Property("threshold never exceeds the floored-confidence value", prop.ForAll(
		func(strengthIdx int, avg, confidence float64) bool {
			p := &domain.PurchasePattern{PatternStrength: strengths[strengthIdx], ConfidenceScore: confidence, AvgDaysBetweenOrders: avg}
			floor := &domain.PurchasePattern{PatternStrength: strengths[strengthIdx], ConfidenceScore: 0, AvgDaysBetweenOrders: avg}
			return intelligence.SmartThreshold(p) <= intelligence.SmartThreshold(floor)
		},
		gen.IntRange(0, len(strengths)-1),
		gen.Float64Range(0.1, 365),
		gen.Float64Range(0, 1.0),
	))

	properties.Property("threshold is at least one day", prop.ForAll(
		func(strengthIdx int, avg, confidence float64) bool {
			p := &domain.PurchasePattern{PatternStrength: strengths[strengthIdx], ConfidenceScore: confidence, AvgDaysBetweenOrders: avg}
			return intelligence.SmartThreshold(p) >= 1
		},
		gen.IntRange(0, len(strengths)-1),
		gen.Float64Range(0.1, 365),
		gen.Float64Range(0, 1.0),
	))

	properties.TestingRun(t)
}

func TestPriorityScore_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	properties.Property("score stays within [60, 150]", prop.ForAll(
		func(churn float64, tier int, declining bool, daysOverdue int, avg float64, strengthIdx int) bool {
			score := intelligence.PriorityScore(intelligence.PriorityInput{
				ChurnRisk:    churn,
				TierPriority: tier,
				Declining:    declining,
				DaysOverdue:  daysOverdue,
				AvgInterval:  avg,
				Strength:     strengths[strengthIdx],
			})
			return score >= 60 && score <= 150
		},
		gen.Float64Range(0, 1),
		gen.IntRange(1, 4),
		gen.Bool(),
		gen.IntRange(0, 365),
		gen.Float64Range(0.5, 120),
		gen.IntRange(0, len(strengths)-1),
	))

	properties.Property("declining customers never score lower", prop.ForAll(
		func(churn float64, tier int, daysOverdue int, avg float64) bool {
			in := intelligence.PriorityInput{ChurnRisk: churn, TierPriority: tier, DaysOverdue: daysOverdue, AvgInterval: avg}
			base := intelligence.PriorityScore(in)
			in.Declining = true
			return intelligence.PriorityScore(in) > base
		},
		gen.Float64Range(0, 1),
		gen.IntRange(1, 4),
		gen.IntRange(0, 365),
		gen.Float64Range(0.5, 120),
	))

	properties.TestingRun(t)
}
