package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/straye-as/sales-assistant-api/internal/domain"
	"gorm.io/gorm"
)

// PatternRepository stores the derived purchase patterns and product affinities
type PatternRepository struct {
	db *gorm.DB
}

func NewPatternRepository(db *gorm.DB) *PatternRepository {
	return &PatternRepository{db: db}
}

// ReplaceDerived swaps a customer's derived rows for freshly computed ones in one
// transaction. A nil pattern removes the stored pattern.
func (r *PatternRepository) ReplaceDerived(ctx context.Context, tenantID, customerID uuid.UUID, pattern *domain.PurchasePattern, affinities []domain.ProductAffinity) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ? AND customer_id = ?", tenantID, customerID).
			Delete(&domain.PurchasePattern{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tenant_id = ? AND customer_id = ?", tenantID, customerID).
			Delete(&domain.ProductAffinity{}).Error; err != nil {
			return err
		}

		if pattern != nil {
			if err := tx.Create(pattern).Error; err != nil {
				return err
			}
		}
		if len(affinities) > 0 {
			if err := tx.Create(&affinities).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetPattern returns the stored pattern for a customer
func (r *PatternRepository) GetPattern(ctx context.Context, tenantID, customerID uuid.UUID) (*domain.PurchasePattern, error) {
	var pattern domain.PurchasePattern
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(tenantID)).
		Where("customer_id = ?", customerID).
		First(&pattern).Error
	if err != nil {
		return nil, err
	}
	return &pattern, nil
}

// ListOverdue returns the tenant's patterns flagged overdue, most overdue first
func (r *PatternRepository) ListOverdue(ctx context.Context, tenantID uuid.UUID) ([]domain.PurchasePattern, error) {
	var patterns []domain.PurchasePattern
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(tenantID)).
		Where("is_overdue = ?", true).
		Order("days_overdue DESC").
		Find(&patterns).Error
	return patterns, err
}

// ListAffinities returns a customer's product affinities, most purchased first
func (r *PatternRepository) ListAffinities(ctx context.Context, tenantID, customerID uuid.UUID) ([]domain.ProductAffinity, error) {
	var affinities []domain.ProductAffinity
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(tenantID)).
		Where("customer_id = ?", customerID).
		Order("purchase_count DESC").
		Order("product_name ASC").
		Find(&affinities).Error
	return affinities, err
}
