package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/sales-assistant-api/internal/domain"
	"github.com/straye-as/sales-assistant-api/internal/intelligence"
	"go.uber.org/zap"
)

// DefaultInquirySuppression is how long after conversation activity a customer is
// left out of overdue detection
const DefaultInquirySuppression = 48 * time.Hour

// UnusualOrderAlerter escalates orders that deviate from a customer's habits
type UnusualOrderAlerter interface {
	AlertUnusualOrder(ctx context.Context, tenantID uuid.UUID, customer *domain.CustomerProfile, report *domain.OrderAnomalyReportDTO) (*domain.AlertResult, error)
}

// AnomalyService ranks overdue customers and checks new orders against a customer's history
type AnomalyService struct {
	history            historyLoader
	customers          CustomerStore
	patterns           PatternStore
	conversations      ConversationStore
	alerter            UnusualOrderAlerter
	inquirySuppression time.Duration
	clock              intelligence.Clock
	logger             *zap.Logger
}

func NewAnomalyService(
	customers CustomerStore,
	orders OrderStore,
	patterns PatternStore,
	conversations ConversationStore,
	alerter UnusualOrderAlerter,
	inquirySuppression time.Duration,
	clock intelligence.Clock,
	logger *zap.Logger,
) *AnomalyService {
	if clock == nil {
		clock = time.Now
	}
	if inquirySuppression <= 0 {
		inquirySuppression = DefaultInquirySuppression
	}
	return &AnomalyService{
		history:            historyLoader{customers: customers, orders: orders},
		customers:          customers,
		patterns:           patterns,
		conversations:      conversations,
		alerter:            alerter,
		inquirySuppression: inquirySuppression,
		clock:              clock,
		logger:             logger,
	}
}

// DetectOverdueCustomers ranks the tenant's overdue customers by priority score.
// It reads stored patterns only and has no side effects. An error is returned only
// when the overdue patterns themselves cannot be listed; per-customer failures are
// logged and the customer is left out.
func (s *AnomalyService) DetectOverdueCustomers(ctx context.Context, tenantID uuid.UUID) ([]domain.OverdueCustomerDTO, error) {
	log := s.logger.With(zap.String("tenant_id", tenantID.String()))

	patterns, err := s.patterns.ListOverdue(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue patterns: %w", err)
	}
	result := []domain.OverdueCustomerDTO{}
	if len(patterns) == 0 {
		return result, nil
	}

	ids := make([]uuid.UUID, len(patterns))
	for i, p := range patterns {
		ids[i] = p.CustomerID
	}
	customers, err := s.customers.ListByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load overdue customers: %w", err)
	}

	now := s.clock().UTC()
	for i := range patterns {
		p := &patterns[i]

		threshold := intelligence.SmartThreshold(p)
		if p.DaysOverdue < threshold {
			continue
		}

		customer, ok := customers[p.CustomerID]
		if !ok {
			log.Debug("Overdue pattern without customer", zap.String("customer_id", p.CustomerID.String()))
			continue
		}

		suppressed, err := s.conversations.HasActivitySince(ctx, tenantID, customer.Phone, now.Add(-s.inquirySuppression))
		if err != nil {
			log.Warn("Failed to check recent inquiries",
				zap.String("customer_id", customer.ID.String()),
				zap.String("operation", "has_activity_since"),
				zap.Error(err),
			)
		}
		if suppressed {
			continue
		}

		result = append(result, s.scoreOverdue(ctx, log, p, &customer, threshold))
	}

	intelligence.RankOverdue(result)
	return result, nil
}

func (s *AnomalyService) scoreOverdue(ctx context.Context, log *zap.Logger, p *domain.PurchasePattern, customer *domain.CustomerProfile, threshold int) domain.OverdueCustomerDTO {
	totalValue, orderCount := p.TotalSpent, p.OrderCount
	if customer.OrderCount > 0 {
		totalValue, orderCount = customer.LifetimeValue, customer.OrderCount
	}
	tier := intelligence.ClassifyTier(totalValue, orderCount)

	trend := domain.TrendDTO{Trend: intelligence.TrendInsufficientData}
	if orders, err := s.history.ordersFor(ctx, customer); err != nil {
		log.Warn("Failed to load orders for trend",
			zap.String("customer_id", customer.ID.String()),
			zap.String("operation", "list_qualifying_orders"),
			zap.Error(err),
		)
	} else {
		trend = intelligence.DetectTrend(intelligence.SortedOrderTimes(orders))
	}

	score := intelligence.PriorityScore(intelligence.PriorityInput{
		ChurnRisk:    p.ChurnRiskScore,
		TierPriority: tier.Priority(),
		Declining:    trend.Declining,
		DaysOverdue:  p.DaysOverdue,
		AvgInterval:  p.AvgDaysBetweenOrders,
		Strength:     p.PatternStrength,
	})

	return domain.OverdueCustomerDTO{
		CustomerID:            customer.ID,
		CustomerName:          customer.DisplayName(),
		CustomerPhone:         customer.Phone,
		DaysOverdue:           p.DaysOverdue,
		Threshold:             threshold,
		AvgDaysBetweenOrders:  p.AvgDaysBetweenOrders,
		LastOrderDate:         p.LastOrderDate,
		ExpectedNextOrderDate: p.ExpectedNextOrderDate,
		ChurnRiskScore:        p.ChurnRiskScore,
		ConfidenceScore:       p.ConfidenceScore,
		PatternStrength:       p.PatternStrength,
		Tier:                  tier,
		TierPriority:          tier.Priority(),
		LifetimeValue:         totalValue,
		Trend:                 trend,
		PriorityScore:         score,
		Severity:              intelligence.SeverityForScore(score),
	}
}

// CheckOrderAnomalies compares an order being placed with the customer's habits.
// Missing history yields an empty report. ErrCustomerNotFound is returned for
// unknown customers. A high-severity missing product also raises an unusual-order alert.
func (s *AnomalyService) CheckOrderAnomalies(ctx context.Context, tenantID, customerID uuid.UUID, items []domain.OrderItemInput) (*domain.OrderAnomalyReportDTO, error) {
	log := s.logger.With(
		zap.String("tenant_id", tenantID.String()),
		zap.String("customer_id", customerID.String()),
	)

	customer, err := s.history.resolveCustomer(ctx, tenantID, customerID)
	if err != nil {
		if errors.Is(err, ErrCustomerNotFound) {
			return nil, err
		}
		log.Warn("Failed to resolve customer for order check", zap.String("operation", "get_customer"), zap.Error(err))
		return intelligence.EmptyOrderReport(), nil
	}

	now := s.clock().UTC()
	affinities := s.affinitiesFor(ctx, log, customer, now)
	if len(affinities) == 0 {
		return intelligence.EmptyOrderReport(), nil
	}

	report := intelligence.CheckOrder(affinities, items, now)
	if report.HasAnomalies {
		log.Info("Order anomalies detected",
			zap.Int("missing_products", len(report.MissingProducts)),
			zap.Int("quantity_anomalies", len(report.QuantityAnomalies)),
		)
	}

	if s.alerter != nil && hasHighSeverityMissing(report) {
		if _, err := s.alerter.AlertUnusualOrder(ctx, tenantID, customer, report); err != nil {
			log.Warn("Failed to raise unusual order alert", zap.String("operation", "alert_unusual_order"), zap.Error(err))
		}
	}
	return report, nil
}

// affinitiesFor returns the stored affinities, deriving them from order history
// when none are stored yet
func (s *AnomalyService) affinitiesFor(ctx context.Context, log *zap.Logger, customer *domain.CustomerProfile, now time.Time) []domain.ProductAffinity {
	stored, err := s.patterns.ListAffinities(ctx, customer.TenantID, customer.ID)
	if err != nil {
		log.Warn("Failed to load stored affinities", zap.String("operation", "list_affinities"), zap.Error(err))
	}
	if len(stored) > 0 {
		return stored
	}

	orders, err := s.history.ordersFor(ctx, customer)
	if err != nil {
		log.Warn("Failed to load orders for order check", zap.String("operation", "list_qualifying_orders"), zap.Error(err))
		return nil
	}
	return intelligence.DeriveAffinities(customer.TenantID, customer.ID, orders, now)
}

func hasHighSeverityMissing(report *domain.OrderAnomalyReportDTO) bool {
	for _, m := range report.MissingProducts {
		if m.Severity == domain.SeverityHigh {
			return true
		}
	}
	return false
}
