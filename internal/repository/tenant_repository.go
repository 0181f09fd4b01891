package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/straye-as/sales-assistant-api/internal/domain"
	"gorm.io/gorm"
)

type TenantRepository struct {
	db *gorm.DB
}

func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

func (r *TenantRepository) Create(ctx context.Context, tenant *domain.Tenant) error {
	return r.db.WithContext(ctx).Create(tenant).Error
}

func (r *TenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	var tenant domain.Tenant
	err := r.db.WithContext(ctx).First(&tenant, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// ListActive returns every active tenant, oldest first
func (r *TenantRepository) ListActive(ctx context.Context) ([]domain.Tenant, error) {
	var tenants []domain.Tenant
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC").
		Find(&tenants).Error
	return tenants, err
}

// GetManagerContact returns the manager's name and phone for a tenant.
// phone is empty when the tenant has no manager contact configured.
func (r *TenantRepository) GetManagerContact(ctx context.Context, tenantID uuid.UUID) (name string, phone string, err error) {
	tenant, err := r.GetByID(ctx, tenantID)
	if err != nil {
		return "", "", err
	}
	return tenant.ManagerName, tenant.ManagerPhone, nil
}
