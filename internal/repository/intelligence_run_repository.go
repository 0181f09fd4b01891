package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/sales-assistant-api/internal/domain"
	"gorm.io/gorm"
)

// RunCounts are the per-tenant aggregates written when a run finishes
type RunCounts struct {
	CustomersProcessed int
	MessagesSent       int
	AlertsRaised       int
	Errors             int
}

// IntelligenceRunRepository writes the per-tenant run-status records
type IntelligenceRunRepository struct {
	db *gorm.DB
}

func NewIntelligenceRunRepository(db *gorm.DB) *IntelligenceRunRepository {
	return &IntelligenceRunRepository{db: db}
}

// Start creates a run record in the running state
func (r *IntelligenceRunRepository) Start(ctx context.Context, tenantID uuid.UUID, startedAt time.Time) (*domain.IntelligenceRun, error) {
	run := &domain.IntelligenceRun{
		TenantID:  tenantID,
		Status:    domain.RunStatusRunning,
		StartedAt: startedAt,
	}
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

// Complete marks a run completed with its counts
func (r *IntelligenceRunRepository) Complete(ctx context.Context, runID uuid.UUID, counts RunCounts, finishedAt time.Time, duration time.Duration) error {
	return r.finish(ctx, runID, domain.RunStatusCompleted, counts, finishedAt, duration, "")
}

// Fail marks a run failed with the error that stopped it
func (r *IntelligenceRunRepository) Fail(ctx context.Context, runID uuid.UUID, counts RunCounts, finishedAt time.Time, duration time.Duration, errMsg string) error {
	return r.finish(ctx, runID, domain.RunStatusFailed, counts, finishedAt, duration, errMsg)
}

func (r *IntelligenceRunRepository) finish(ctx context.Context, runID uuid.UUID, status domain.RunStatus, counts RunCounts, finishedAt time.Time, duration time.Duration, errMsg string) error {
	return r.db.WithContext(ctx).
		Model(&domain.IntelligenceRun{}).
		Where("id = ?", runID).
		Updates(map[string]interface{}{
			"status":              status,
			"finished_at":         finishedAt,
			"customers_processed": counts.CustomersProcessed,
			"messages_sent":       counts.MessagesSent,
			"alerts_raised":       counts.AlertsRaised,
			"errors":              counts.Errors,
			"duration_ms":         duration.Milliseconds(),
			"error_message":       errMsg,
		}).Error
}

func (r *IntelligenceRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.IntelligenceRun, error) {
	var run domain.IntelligenceRun
	err := r.db.WithContext(ctx).First(&run, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListByTenant returns a page of the tenant's runs, newest first
func (r *IntelligenceRunRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, page, pageSize int) ([]domain.IntelligenceRun, int64, error) {
	var runs []domain.IntelligenceRun
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.IntelligenceRun{}).Scopes(TenantScope(tenantID))
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, pageSize = NormalizePagination(page, pageSize)
	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("started_at DESC").Find(&runs).Error

	return runs, total, err
}
