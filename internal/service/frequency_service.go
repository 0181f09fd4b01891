package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/sales-assistant-api/internal/domain"
	"github.com/straye-as/sales-assistant-api/internal/intelligence"
	"go.uber.org/zap"
)

// FrequencyService computes a customer's reorder cadence from their order history
type FrequencyService struct {
	history historyLoader
	clock   intelligence.Clock
	logger  *zap.Logger
}

func NewFrequencyService(
	customers CustomerStore,
	orders OrderStore,
	clock intelligence.Clock,
	logger *zap.Logger,
) *FrequencyService {
	if clock == nil {
		clock = time.Now
	}
	return &FrequencyService{
		history: historyLoader{customers: customers, orders: orders},
		clock:   clock,
		logger:  logger,
	}
}

// GetFrequency returns the customer's frequency analysis, or nil when there are
// fewer than two qualifying orders. ErrCustomerNotFound is returned for unknown customers.
func (s *FrequencyService) GetFrequency(ctx context.Context, tenantID, customerID uuid.UUID) (*domain.PurchaseFrequencyDTO, error) {
	h, err := s.history.load(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	return intelligence.AnalyzeFrequency(customerID, h.orders, s.clock().UTC()), nil
}

// Analyze is the fail-soft form of GetFrequency: lookup and I/O failures are logged
// and reported as "no pattern".
func (s *FrequencyService) Analyze(ctx context.Context, tenantID, customerID uuid.UUID) *domain.PurchaseFrequencyDTO {
	result, err := s.GetFrequency(ctx, tenantID, customerID)
	if err != nil {
		level := s.logger.Warn
		if errors.Is(err, ErrCustomerNotFound) {
			level = s.logger.Debug
		}
		level("Purchase frequency unavailable",
			zap.String("tenant_id", tenantID.String()),
			zap.String("customer_id", customerID.String()),
			zap.String("operation", "analyze_frequency"),
			zap.Error(err),
		)
		return nil
	}
	return result
}
