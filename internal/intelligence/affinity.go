package intelligence

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/sales-assistant-api/internal/domain"
)

// pairSeparator joins two product names into an order-independent pair key
const pairSeparator = " + "

// RegularThreshold is the number of distinct orders a product must appear in to
// count as regular: max(2, ceil(0.4 × totalOrders)).
func RegularThreshold(totalOrders int) int {
	threshold := (2*totalOrders + 4) / 5
	if threshold < 2 {
		return 2
	}
	return threshold
}

// productKey identifies a product across orders. Items without a product id fall
// back to their lower-cased name.
func productKey(item domain.OrderItem) string {
	if item.ProductID != uuid.Nil {
		return item.ProductID.String()
	}
	return "name:" + strings.ToLower(strings.TrimSpace(item.ProductName))
}

type productAggregate struct {
	productID     uuid.UUID
	name          string
	totalQuantity float64
	orderTimes    []time.Time
}

// aggregateProducts folds every line of every order into per-product totals.
// A product appearing twice in one order counts once toward its order count.
func aggregateProducts(orders []domain.Order) (map[string]*productAggregate, []string) {
	aggregates := make(map[string]*productAggregate)
	var keys []string

	for _, order := range orders {
		seen := make(map[string]bool)
		for _, item := range order.Items {
			key := productKey(item)
			agg, ok := aggregates[key]
			if !ok {
				agg = &productAggregate{productID: item.ProductID, name: item.ProductName}
				aggregates[key] = agg
				keys = append(keys, key)
			}
			agg.totalQuantity += item.Quantity
			if !seen[key] {
				seen[key] = true
				agg.orderTimes = append(agg.orderTimes, order.CreatedAt)
			}
		}
	}
	return aggregates, keys
}

func countOrdersWithItems(orders []domain.Order) int {
	n := 0
	for _, o := range orders {
		if len(o.Items) > 0 {
			n++
		}
	}
	return n
}

// AnalyzeAffinity classifies a customer's products into regular and occasional and
// counts co-purchased pairs. Returns nil when there are no order items.
func AnalyzeAffinity(customerID uuid.UUID, orders []domain.Order) *domain.ProductAffinityReportDTO {
	totalOrders := countOrdersWithItems(orders)
	if totalOrders == 0 {
		return nil
	}

	aggregates, keys := aggregateProducts(orders)
	threshold := RegularThreshold(totalOrders)

	report := &domain.ProductAffinityReportDTO{
		CustomerID:         customerID,
		TotalOrders:        totalOrders,
		RegularThreshold:   threshold,
		RegularProducts:    []domain.ProductUsageDTO{},
		OccasionalProducts: []domain.ProductUsageDTO{},
		AffinityPairs:      CoPurchasePairs(orders),
	}

	for _, key := range keys {
		agg := aggregates[key]
		times := len(agg.orderTimes)
		usage := domain.ProductUsageDTO{
			ProductID:         agg.productID,
			ProductName:       agg.name,
			TimesOrdered:      times,
			PurchaseFrequency: round2(100 * float64(times) / float64(totalOrders)),
			TotalQuantity:     agg.totalQuantity,
		}
		if times >= threshold {
			report.RegularProducts = append(report.RegularProducts, usage)
		} else {
			report.OccasionalProducts = append(report.OccasionalProducts, usage)
		}
	}

	sortUsage(report.RegularProducts)
	sortUsage(report.OccasionalProducts)
	return report
}

func sortUsage(products []domain.ProductUsageDTO) {
	sort.SliceStable(products, func(i, j int) bool {
		if products[i].TimesOrdered != products[j].TimesOrdered {
			return products[i].TimesOrdered > products[j].TimesOrdered
		}
		return products[i].ProductName < products[j].ProductName
	})
}

// CoPurchasePairs counts every pair of distinct products bought in the same order.
// Pair keys are the two product names sorted and joined, so A+B and B+A collapse.
func CoPurchasePairs(orders []domain.Order) []domain.AffinityPairDTO {
	counts := make(map[string]*domain.AffinityPairDTO)
	var keys []string

	for _, order := range orders {
		names := distinctNames(order.Items)
		for i := 0; i < len(names); i++ {
			for j := i + 1; j < len(names); j++ {
				a, b := names[i], names[j]
				if b < a {
					a, b = b, a
				}
				key := a + pairSeparator + b
				pair, ok := counts[key]
				if !ok {
					pair = &domain.AffinityPairDTO{Pair: key, Products: [2]string{a, b}}
					counts[key] = pair
					keys = append(keys, key)
				}
				pair.Frequency++
			}
		}
	}

	pairs := make([]domain.AffinityPairDTO, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, *counts[key])
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].Frequency != pairs[j].Frequency {
			return pairs[i].Frequency > pairs[j].Frequency
		}
		return pairs[i].Pair < pairs[j].Pair
	})
	return pairs
}

func distinctNames(items []domain.OrderItem) []string {
	seen := make(map[string]bool, len(items))
	names := make([]string, 0, len(items))
	for _, item := range items {
		name := strings.TrimSpace(item.ProductName)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DeriveAffinities rebuilds the per-product affinity records for one customer.
func DeriveAffinities(tenantID, customerID uuid.UUID, orders []domain.Order, now time.Time) []domain.ProductAffinity {
	totalOrders := countOrdersWithItems(orders)
	if totalOrders == 0 {
		return nil
	}

	aggregates, keys := aggregateProducts(orders)
	threshold := RegularThreshold(totalOrders)

	affinities := make([]domain.ProductAffinity, 0, len(keys))
	for _, key := range keys {
		agg := aggregates[key]
		sort.Slice(agg.orderTimes, func(i, j int) bool { return agg.orderTimes[i].Before(agg.orderTimes[j]) })

		count := len(agg.orderTimes)
		last := agg.orderTimes[count-1]
		gaps := ComputeIntervals(agg.orderTimes)

		affinities = append(affinities, domain.ProductAffinity{
			TenantID:                tenantID,
			CustomerID:              customerID,
			ProductID:               agg.productID,
			ProductName:             agg.name,
			PurchaseCount:           count,
			TotalQuantity:           agg.totalQuantity,
			AvgQuantity:             round2(agg.totalQuantity / float64(count)),
			LastPurchaseDate:        last,
			DaysSinceLastPurchase:   WholeDaysBetween(last, now),
			AvgDaysBetweenPurchases: round2(gaps.Mean),
			RegularityScore:         round2(float64(count) / float64(totalOrders)),
			IsRegularProduct:        count >= threshold,
		})
	}

	sort.SliceStable(affinities, func(i, j int) bool {
		return affinities[i].PurchaseCount > affinities[j].PurchaseCount
	})
	return affinities
}

// TopRegularProductNames returns up to limit regular product names, most bought first
func TopRegularProductNames(report *domain.ProductAffinityReportDTO, limit int) []string {
	if report == nil {
		return nil
	}
	names := make([]string, 0, limit)
	for _, p := range report.RegularProducts {
		if len(names) == limit {
			break
		}
		names = append(names, p.ProductName)
	}
	return names
}
