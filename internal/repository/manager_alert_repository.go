package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/sales-assistant-api/internal/domain"
	"gorm.io/gorm"
)

var alertSortFields = map[string]string{
	"createdAt": "created_at",
	"priority":  "priority",
}

// ManagerAlertRepository is the append-only manager alert audit log
type ManagerAlertRepository struct {
	db *gorm.DB
}

func NewManagerAlertRepository(db *gorm.DB) *ManagerAlertRepository {
	return &ManagerAlertRepository{db: db}
}

func (r *ManagerAlertRepository) Create(ctx context.Context, alert *domain.ManagerAlert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

// ExistsSince reports whether an alert of the given type was raised for the customer
// at or after since
func (r *ManagerAlertRepository) ExistsSince(ctx context.Context, tenantID, customerID uuid.UUID, alertType domain.AlertType, since time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.ManagerAlert{}).
		Scopes(TenantScope(tenantID)).
		Where("customer_id = ? AND alert_type = ? AND created_at >= ?", customerID, alertType, since).
		Count(&count).Error
	return count > 0, err
}

// ListByTenant returns a page of the tenant's alerts, newest first.
// alertType filters when non-empty.
func (r *ManagerAlertRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, alertType domain.AlertType, page, pageSize int) ([]domain.ManagerAlert, int64, error) {
	var alerts []domain.ManagerAlert
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.ManagerAlert{}).Scopes(TenantScope(tenantID))
	if alertType != "" {
		query = query.Where("alert_type = ?", alertType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, pageSize = NormalizePagination(page, pageSize)
	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order(BuildOrderClause(DefaultSortConfig(), alertSortFields, "created_at")).Find(&alerts).Error

	return alerts, total, err
}
