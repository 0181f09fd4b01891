package intelligence

import (
	"math"
	"sort"
	"time"

	"github.com/straye-as/sales-assistant-api/internal/domain"
)

// Smart threshold parameters
const (
	baseThresholdDays      = 2.0
	defaultConfidence      = 0.5
	monthlyBuyerDays       = 30.0
	weeklyBuyerDays        = 7.0
	monthlyBuyerSlack      = 1.5
	weeklyBuyerSensitivity = 0.8
	strongStrengthFactor   = 0.75
	moderateStrengthFactor = 1.5
	weakStrengthFactor     = 2.5
	minimumThresholdDays   = 1
	trendMinOrders         = 4
	trendWindowIntervals   = 3
	decliningRatio         = 1.3
	priorityBaseScore      = 50.0
	churnWeight            = 30.0
	tierWeight             = 5.0
	decliningBonus         = 20.0
	overdueRatioWeight     = 15.0
	overdueRatioCap        = 15.0
	criticalScoreBoundary  = 75.0
	highScoreBoundary      = 60.0
	mediumScoreBoundary    = 45.0
	vipTotalValue          = 100000.0
	vipOrderCount          = 10
	vipAverageValue        = 5000.0
	highValueTotalValue    = 50000.0
	highValueOrderCount    = 5
	establishedOrderCount  = 3
)

// Trend labels
const (
	TrendDeclining        = "declining"
	TrendAccelerating     = "accelerating"
	TrendStable           = "stable"
	TrendInsufficientData = "insufficient_data"
)

// SmartThreshold returns how many days overdue a customer must be before they are
// flagged. Strong, confident patterns and weekly buyers get tighter thresholds.
func SmartThreshold(p *domain.PurchasePattern) int {
	threshold := baseThresholdDays * strengthFactor(p.PatternStrength)

	// confidence is floored at 0.5
	confidence := math.Max(p.ConfidenceScore, defaultConfidence)
	threshold /= confidence

	switch {
	case p.AvgDaysBetweenOrders > monthlyBuyerDays:
		threshold *= monthlyBuyerSlack
	case p.AvgDaysBetweenOrders < weeklyBuyerDays:
		threshold *= weeklyBuyerSensitivity
	}

	result := int(math.Floor(threshold))
	if result < minimumThresholdDays {
		return minimumThresholdDays
	}
	return result
}

func strengthFactor(s domain.PatternStrength) float64 {
	switch s {
	case domain.PatternStrengthStrong:
		return strongStrengthFactor
	case domain.PatternStrengthModerate:
		return moderateStrengthFactor
	default:
		return weakStrengthFactor
	}
}

func strengthBonus(s domain.PatternStrength) float64 {
	switch s {
	case domain.PatternStrengthStrong:
		return 15
	case domain.PatternStrengthModerate:
		return 10
	default:
		return 5
	}
}

// ClassifyTier buckets a customer by lifetime spend and order count
func ClassifyTier(totalValue float64, orderCount int) domain.CustomerTier {
	var avgValue float64
	if orderCount > 0 {
		avgValue = totalValue / float64(orderCount)
	}

	switch {
	case totalValue > vipTotalValue || (orderCount > vipOrderCount && avgValue > vipAverageValue):
		return domain.CustomerTierVIP
	case totalValue > highValueTotalValue || orderCount > highValueOrderCount:
		return domain.CustomerTierHighValue
	case orderCount >= establishedOrderCount:
		return domain.CustomerTierEstablished
	default:
		return domain.CustomerTierNew
	}
}

// DetectTrend compares the most recent order intervals with the ones before them.
// It looks at the latest seven orders at most: up to three recent intervals against
// up to three older intervals, splitting evenly when fewer are available.
func DetectTrend(orderTimes []time.Time) domain.TrendDTO {
	if len(orderTimes) < trendMinOrders {
		return domain.TrendDTO{Trend: TrendInsufficientData}
	}

	times := make([]time.Time, len(orderTimes))
	copy(times, orderTimes)
	sort.Slice(times, func(i, j int) bool { return times[i].After(times[j]) })

	window := 2*trendWindowIntervals + 1
	if len(times) > window {
		times = times[:window]
	}

	// intervals[0] is the gap before the most recent order
	intervals := make([]float64, 0, len(times)-1)
	for i := 1; i < len(times); i++ {
		intervals = append(intervals, DaysBetween(times[i], times[i-1]))
	}

	split := (len(intervals) + 1) / 2
	if split > trendWindowIntervals {
		split = trendWindowIntervals
	}
	recentAvg := mean(intervals[:split])
	olderAvg := mean(intervals[split:])

	trend := domain.TrendDTO{
		RecentAvg: round2(recentAvg),
		OlderAvg:  round2(olderAvg),
		Trend:     TrendStable,
	}
	switch {
	case recentAvg > decliningRatio*olderAvg:
		trend.Declining = true
		trend.Trend = TrendDeclining
	case decliningRatio*recentAvg < olderAvg:
		trend.Trend = TrendAccelerating
	}
	return trend
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// PriorityInput carries the factors of the composite overdue-priority score
type PriorityInput struct {
	ChurnRisk    float64
	TierPriority int
	Declining    bool
	DaysOverdue  int
	AvgInterval  float64
	Strength     domain.PatternStrength
}

// PriorityScore computes the composite overdue-priority score. With inputs in their
// documented ranges the result lies in [60, 150].
func PriorityScore(in PriorityInput) float64 {
	score := priorityBaseScore
	score += clamp01(in.ChurnRisk) * churnWeight
	score += float64(5-clampTier(in.TierPriority)) * tierWeight
	if in.Declining {
		score += decliningBonus
	}
	if in.AvgInterval > 0 && in.DaysOverdue > 0 {
		score += math.Min(float64(in.DaysOverdue)/in.AvgInterval*overdueRatioWeight, overdueRatioCap)
	}
	score += strengthBonus(in.Strength)
	return round2(score)
}

func clampTier(p int) int {
	if p < 1 {
		return 1
	}
	if p > 4 {
		return 4
	}
	return p
}

// SeverityForScore maps a priority score onto severity bands
func SeverityForScore(score float64) domain.Severity {
	switch {
	case score > criticalScoreBoundary:
		return domain.SeverityCritical
	case score > highScoreBoundary:
		return domain.SeverityHigh
	case score > mediumScoreBoundary:
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}

// RankOverdue sorts overdue customers by priority score, highest first
func RankOverdue(customers []domain.OverdueCustomerDTO) {
	sort.SliceStable(customers, func(i, j int) bool {
		if customers[i].PriorityScore != customers[j].PriorityScore {
			return customers[i].PriorityScore > customers[j].PriorityScore
		}
		return customers[i].DaysOverdue > customers[j].DaysOverdue
	})
}
