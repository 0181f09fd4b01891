package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/sales-assistant-api/internal/domain"
	"github.com/straye-as/sales-assistant-api/internal/intelligence"
	"go.uber.org/zap"
)

// PatternService recomputes and stores the derived purchase pattern and product
// affinities of a customer
type PatternService struct {
	history  historyLoader
	patterns PatternStore
	clock    intelligence.Clock
	logger   *zap.Logger
}

func NewPatternService(
	customers CustomerStore,
	orders OrderStore,
	patterns PatternStore,
	clock intelligence.Clock,
	logger *zap.Logger,
) *PatternService {
	if clock == nil {
		clock = time.Now
	}
	return &PatternService{
		history:  historyLoader{customers: customers, orders: orders},
		patterns: patterns,
		clock:    clock,
		logger:   logger,
	}
}

// RefreshCustomer rebuilds the customer's derived rows from their qualifying orders
// and returns the new pattern. The pattern is nil for customers with fewer than two
// qualifying orders; any stored pattern is removed in that case.
func (s *PatternService) RefreshCustomer(ctx context.Context, customer *domain.CustomerProfile) (*domain.PurchasePattern, error) {
	orders, err := s.history.ordersFor(ctx, customer)
	if err != nil {
		return nil, err
	}

	now := s.clock().UTC()
	pattern := intelligence.DerivePattern(customer.TenantID, customer.ID, orders, now)
	affinities := intelligence.DeriveAffinities(customer.TenantID, customer.ID, orders, now)

	if err := s.patterns.ReplaceDerived(ctx, customer.TenantID, customer.ID, pattern, affinities); err != nil {
		return nil, fmt.Errorf("failed to store derived pattern: %w", err)
	}

	s.logger.Debug("Purchase pattern refreshed",
		zap.String("tenant_id", customer.TenantID.String()),
		zap.String("customer_id", customer.ID.String()),
		zap.Int("orders", len(orders)),
		zap.Int("products", len(affinities)),
		zap.Bool("has_pattern", pattern != nil),
	)
	return pattern, nil
}

// Refresh resolves the customer and rebuilds its derived rows
func (s *PatternService) Refresh(ctx context.Context, tenantID, customerID uuid.UUID) (*domain.PurchasePattern, error) {
	customer, err := s.history.resolveCustomer(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	return s.RefreshCustomer(ctx, customer)
}
