package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/straye-as/sales-assistant-api/internal/domain"
	"gorm.io/gorm"
)

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(ctx context.Context, customer *domain.CustomerProfile) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

// GetByID returns a customer of the given tenant
func (r *CustomerRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.CustomerProfile, error) {
	var customer domain.CustomerProfile
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(tenantID)).
		Where("id = ?", id).
		First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// ListByTenant returns all customers of a tenant in a stable order
func (r *CustomerRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]domain.CustomerProfile, error) {
	var customers []domain.CustomerProfile
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(tenantID)).
		Order("created_at ASC").
		Order("id ASC").
		Find(&customers).Error
	return customers, err
}

// ListByIDs returns the tenant's customers with the given ids, keyed by id
func (r *CustomerRepository) ListByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]domain.CustomerProfile, error) {
	result := make(map[uuid.UUID]domain.CustomerProfile, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var customers []domain.CustomerProfile
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(tenantID)).
		Where("id IN ?", ids).
		Find(&customers).Error
	if err != nil {
		return nil, err
	}
	for _, c := range customers {
		result[c.ID] = c
	}
	return result, nil
}

func (r *CustomerRepository) Count(ctx context.Context, tenantID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.CustomerProfile{}).Scopes(TenantScope(tenantID)).Count(&count).Error
	return int(count), err
}
