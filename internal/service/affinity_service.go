package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/straye-as/sales-assistant-api/internal/domain"
	"github.com/straye-as/sales-assistant-api/internal/intelligence"
	"go.uber.org/zap"
)

// AffinityService classifies a customer's products into regular and occasional
type AffinityService struct {
	history historyLoader
	logger  *zap.Logger
}

func NewAffinityService(customers CustomerStore, orders OrderStore, logger *zap.Logger) *AffinityService {
	return &AffinityService{
		history: historyLoader{customers: customers, orders: orders},
		logger:  logger,
	}
}

// GetAffinity returns the product affinity report, or nil when the customer has no
// qualifying order items. ErrCustomerNotFound is returned for unknown customers.
func (s *AffinityService) GetAffinity(ctx context.Context, tenantID, customerID uuid.UUID) (*domain.ProductAffinityReportDTO, error) {
	h, err := s.history.load(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	return intelligence.AnalyzeAffinity(customerID, h.orders), nil
}

// Analyze is the fail-soft form of GetAffinity
func (s *AffinityService) Analyze(ctx context.Context, tenantID, customerID uuid.UUID) *domain.ProductAffinityReportDTO {
	report, err := s.GetAffinity(ctx, tenantID, customerID)
	if err != nil {
		level := s.logger.Warn
		if errors.Is(err, ErrCustomerNotFound) {
			level = s.logger.Debug
		}
		level("Product affinity unavailable",
			zap.String("tenant_id", tenantID.String()),
			zap.String("customer_id", customerID.String()),
			zap.String("operation", "analyze_affinity"),
			zap.Error(err),
		)
		return nil
	}
	return report
}

// TopRegularProducts returns up to limit of the customer's regular product names
func (s *AffinityService) TopRegularProducts(ctx context.Context, tenantID, customerID uuid.UUID, limit int) []string {
	return intelligence.TopRegularProductNames(s.Analyze(ctx, tenantID, customerID), limit)
}
