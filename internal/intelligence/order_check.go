package intelligence

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/sales-assistant-api/internal/domain"
)

const (
	// MinRegularityForSuggestion gates which regular products can be reported missing
	MinRegularityForSuggestion = 0.7
	highMissingRegularity      = 0.85
	missingIntervalRatio       = 0.8
	minPurchasesForQuantity    = 3
	lowQuantityRatio           = 0.6
)

type orderProductSet struct {
	ids   map[uuid.UUID]bool
	names map[string]bool
}

func newOrderProductSet(items []domain.OrderItemInput) orderProductSet {
	set := orderProductSet{ids: make(map[uuid.UUID]bool), names: make(map[string]bool)}
	for _, item := range items {
		if item.ProductID != uuid.Nil {
			set.ids[item.ProductID] = true
		}
		set.names[normalizeName(item.ProductName)] = true
	}
	return set
}

func (s orderProductSet) contains(productID uuid.UUID, name string) bool {
	if productID != uuid.Nil && s.ids[productID] {
		return true
	}
	return s.names[normalizeName(name)]
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// FindMissingRegularProducts reports regular products absent from the order whose
// usual repurchase interval has mostly elapsed.
func FindMissingRegularProducts(affinities []domain.ProductAffinity, items []domain.OrderItemInput, now time.Time) []domain.MissingProductDTO {
	inOrder := newOrderProductSet(items)
	missing := []domain.MissingProductDTO{}

	for _, a := range affinities {
		if a.RegularityScore < MinRegularityForSuggestion || a.AvgDaysBetweenPurchases <= 0 {
			continue
		}
		if inOrder.contains(a.ProductID, a.ProductName) {
			continue
		}

		daysSince := WholeDaysBetween(a.LastPurchaseDate, now)
		if float64(daysSince) < missingIntervalRatio*a.AvgDaysBetweenPurchases {
			continue
		}

		severity := domain.SeverityMedium
		if a.RegularityScore >= highMissingRegularity {
			severity = domain.SeverityHigh
		}

		missing = append(missing, domain.MissingProductDTO{
			Type:                    domain.AnomalyTypeMissingRegularProduct,
			ProductID:               a.ProductID,
			ProductName:             a.ProductName,
			RegularityScore:         a.RegularityScore,
			DaysSinceLastPurchase:   daysSince,
			AvgDaysBetweenPurchases: a.AvgDaysBetweenPurchases,
			Severity:                severity,
			Message: fmt.Sprintf("%s is usually bought every %.0f days and was last ordered %d days ago",
				a.ProductName, a.AvgDaysBetweenPurchases, daysSince),
		})
	}

	sort.SliceStable(missing, func(i, j int) bool {
		return missing[i].RegularityScore > missing[j].RegularityScore
	})
	return missing
}

// FindLowQuantities reports order lines well below the customer's usual quantity.
// Only products bought at least three times before are considered.
func FindLowQuantities(affinities []domain.ProductAffinity, items []domain.OrderItemInput) []domain.QuantityAnomalyDTO {
	byID := make(map[uuid.UUID]domain.ProductAffinity, len(affinities))
	byName := make(map[string]domain.ProductAffinity, len(affinities))
	for _, a := range affinities {
		if a.ProductID != uuid.Nil {
			byID[a.ProductID] = a
		}
		byName[normalizeName(a.ProductName)] = a
	}

	anomalies := []domain.QuantityAnomalyDTO{}
	for _, item := range items {
		a, ok := byID[item.ProductID]
		if !ok || item.ProductID == uuid.Nil {
			a, ok = byName[normalizeName(item.ProductName)]
		}
		if !ok || a.PurchaseCount < minPurchasesForQuantity || a.AvgQuantity <= 0 {
			continue
		}
		if item.Quantity >= lowQuantityRatio*a.AvgQuantity {
			continue
		}

		reduction := int(math.Round((1 - item.Quantity/a.AvgQuantity) * 100))
		anomalies = append(anomalies, domain.QuantityAnomalyDTO{
			Type:             domain.AnomalyTypeLowQuantity,
			ProductID:        a.ProductID,
			ProductName:      a.ProductName,
			OrderedQuantity:  item.Quantity,
			AverageQuantity:  a.AvgQuantity,
			ReductionPercent: reduction,
			Severity:         domain.SeverityMedium,
			Message: fmt.Sprintf("%s ordered at %g, usually %g (%d%% less)",
				a.ProductName, item.Quantity, a.AvgQuantity, reduction),
		})
	}
	return anomalies
}

// CheckOrder combines the missing-product and low-quantity checks
func CheckOrder(affinities []domain.ProductAffinity, items []domain.OrderItemInput, now time.Time) *domain.OrderAnomalyReportDTO {
	report := &domain.OrderAnomalyReportDTO{
		MissingProducts:   FindMissingRegularProducts(affinities, items, now),
		QuantityAnomalies: FindLowQuantities(affinities, items),
	}
	report.HasAnomalies = len(report.MissingProducts) > 0 || len(report.QuantityAnomalies) > 0
	return report
}

// EmptyOrderReport is returned when there is no history to compare against
func EmptyOrderReport() *domain.OrderAnomalyReportDTO {
	return &domain.OrderAnomalyReportDTO{
		MissingProducts:   []domain.MissingProductDTO{},
		QuantityAnomalies: []domain.QuantityAnomalyDTO{},
	}
}
