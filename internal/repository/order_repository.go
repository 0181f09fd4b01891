package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/straye-as/sales-assistant-api/internal/domain"
	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// ListQualifyingByPhone returns a customer's qualifying orders, oldest first, with items loaded
func (r *OrderRepository) ListQualifyingByPhone(ctx context.Context, tenantID uuid.UUID, phone string) ([]domain.Order, error) {
	var orders []domain.Order
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(tenantID)).
		Where("customer_phone = ?", phone).
		Where("status IN ?", domain.QualifyingOrderStatuses).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}
