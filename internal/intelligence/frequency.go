// Package intelligence holds the side-effect-free inference and scoring used by the
// purchase-pattern engine. Every function here works on order history that has
// already been loaded, so results are reproducible from orders alone.
package intelligence

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/sales-assistant-api/internal/domain"
)

const (
	// MinOrdersForPattern is the number of qualifying orders needed to derive an interval
	MinOrdersForPattern = 2

	// DueRatio is the share of the average interval after which a customer counts as due
	DueRatio = 0.9

	hoursPerDay = 24.0
)

// IntervalStats summarises the gaps between consecutive orders
type IntervalStats struct {
	Intervals []float64
	Mean      float64
	StdDev    float64
}

// CoefficientOfVariation returns stddev / mean, or 0 when the mean is 0
func (s IntervalStats) CoefficientOfVariation() float64 {
	if s.Mean <= 0 {
		return 0
	}
	return s.StdDev / s.Mean
}

// DaysBetween returns the fractional number of days from a to b
func DaysBetween(a, b time.Time) float64 {
	return b.Sub(a).Hours() / hoursPerDay
}

// WholeDaysBetween returns the number of whole days from a to b
func WholeDaysBetween(a, b time.Time) int {
	return int(math.Floor(DaysBetween(a, b)))
}

// SortedOrderTimes returns the order creation times in ascending order
func SortedOrderTimes(orders []domain.Order) []time.Time {
	times := make([]time.Time, len(orders))
	for i, o := range orders {
		times[i] = o.CreatedAt
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	return times
}

// ComputeIntervals returns consecutive-day deltas and their mean and population
// standard deviation. times must be sorted ascending.
func ComputeIntervals(times []time.Time) IntervalStats {
	if len(times) < 2 {
		return IntervalStats{}
	}

	intervals := make([]float64, 0, len(times)-1)
	var sum float64
	for i := 1; i < len(times); i++ {
		d := DaysBetween(times[i-1], times[i])
		intervals = append(intervals, d)
		sum += d
	}
	mean := sum / float64(len(intervals))

	var sq float64
	for _, d := range intervals {
		sq += (d - mean) * (d - mean)
	}

	return IntervalStats{
		Intervals: intervals,
		Mean:      mean,
		StdDev:    math.Sqrt(sq / float64(len(intervals))),
	}
}

// AnalyzeFrequency computes interval statistics and a next-order prediction.
// Returns nil when there are fewer than two qualifying orders.
func AnalyzeFrequency(customerID uuid.UUID, orders []domain.Order, now time.Time) *domain.PurchaseFrequencyDTO {
	if len(orders) < MinOrdersForPattern {
		return nil
	}

	times := SortedOrderTimes(orders)
	stats := ComputeIntervals(times)

	var totalSpent float64
	for _, o := range orders {
		totalSpent += o.TotalAmount
	}
	avgOrderValue := totalSpent / float64(len(orders))

	last := times[len(times)-1]
	daysSince := WholeDaysBetween(last, now)
	daysUntil := int(math.Max(0, math.Round(stats.Mean-float64(daysSince))))

	return &domain.PurchaseFrequencyDTO{
		CustomerID:           customerID,
		OrderCount:           len(orders),
		AvgDaysBetweenOrders: math.Round(stats.Mean),
		LastOrderDate:        last,
		DaysSinceLastOrder:   daysSince,
		NextOrderPrediction: domain.NextOrderPrediction{
			DaysUntilDue: daysUntil,
			IsDue:        IsDue(daysSince, stats.Mean),
		},
		Spending: domain.SpendingSummary{
			TotalSpent:        math.Round(totalSpent),
			AverageOrderValue: math.Round(avgOrderValue),
		},
	}
}

// IsDue reports whether enough time has passed for the next order to be expected
func IsDue(daysSinceLastOrder int, avgInterval float64) bool {
	return float64(daysSinceLastOrder) >= DueRatio*avgInterval
}

// ConfidenceFromIntervals maps interval regularity and sample size to [0,1].
// Perfectly regular gaps with three or more intervals give 1.
func ConfidenceFromIntervals(stats IntervalStats) float64 {
	n := len(stats.Intervals)
	if n == 0 {
		return 0
	}
	regularity := 1 - math.Min(stats.CoefficientOfVariation(), 1)
	sample := math.Min(1, float64(n)/3)
	return round2(clamp01(regularity * sample))
}

// StrengthFromConfidence buckets a confidence score
func StrengthFromConfidence(confidence float64) domain.PatternStrength {
	switch {
	case confidence >= 0.75:
		return domain.PatternStrengthStrong
	case confidence >= 0.5:
		return domain.PatternStrengthModerate
	default:
		return domain.PatternStrengthWeak
	}
}

// ChurnRisk is 0 while a customer is on schedule and reaches 1 at three intervals
// since the last order.
func ChurnRisk(daysSinceLastOrder int, avgInterval float64) float64 {
	if avgInterval <= 0 {
		return 0
	}
	ratio := float64(daysSinceLastOrder) / avgInterval
	return round2(clamp01((ratio - 1) / 2))
}

// DerivePattern rebuilds a customer's purchase pattern from scratch.
// Returns nil when there are fewer than two qualifying orders.
func DerivePattern(tenantID, customerID uuid.UUID, orders []domain.Order, now time.Time) *domain.PurchasePattern {
	if len(orders) < MinOrdersForPattern {
		return nil
	}

	times := SortedOrderTimes(orders)
	stats := ComputeIntervals(times)
	last := times[len(times)-1]
	daysSince := WholeDaysBetween(last, now)
	roundedAvg := int(math.Round(stats.Mean))

	daysOverdue := daysSince - roundedAvg
	if daysOverdue < 0 {
		daysOverdue = 0
	}

	var totalSpent float64
	for _, o := range orders {
		totalSpent += o.TotalAmount
	}

	confidence := ConfidenceFromIntervals(stats)

	return &domain.PurchasePattern{
		TenantID:              tenantID,
		CustomerID:            customerID,
		OrderCount:            len(orders),
		AvgDaysBetweenOrders:  round2(stats.Mean),
		LastOrderDate:         last,
		ExpectedNextOrderDate: last.AddDate(0, 0, roundedAvg),
		ConfidenceScore:       confidence,
		PatternStrength:       StrengthFromConfidence(confidence),
		DaysOverdue:           daysOverdue,
		ChurnRiskScore:        ChurnRisk(daysSince, stats.Mean),
		IsOverdue:             daysOverdue > 0,
		TotalSpent:            round2(totalSpent),
		AnalyzedAt:            now,
	}
}

// DaysUntilExpected returns the signed whole days from now until the expected next order.
// Negative values mean the customer is overdue.
func DaysUntilExpected(p *domain.PurchasePattern, now time.Time) int {
	return int(math.Round(DaysBetween(now, p.ExpectedNextOrderDate)))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
