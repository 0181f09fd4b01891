package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/sales-assistant-api/internal/domain"
	"gorm.io/gorm"
)

type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) Create(ctx context.Context, conversation *domain.Conversation) error {
	return r.db.WithContext(ctx).Create(conversation).Error
}

// HasActivitySince reports whether any conversation record for the customer was
// touched at or after since
func (r *ConversationRepository) HasActivitySince(ctx context.Context, tenantID uuid.UUID, phone string, since time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Conversation{}).
		Scopes(TenantScope(tenantID)).
		Where("customer_phone = ? AND updated_at >= ?", phone, since).
		Count(&count).Error
	return count > 0, err
}

// HasInboundSince reports whether the customer sent a message at or after since
func (r *ConversationRepository) HasInboundSince(ctx context.Context, tenantID uuid.UUID, phone string, since time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Conversation{}).
		Scopes(TenantScope(tenantID)).
		Where("customer_phone = ? AND last_inbound_at IS NOT NULL AND last_inbound_at >= ?", phone, since).
		Count(&count).Error
	return count > 0, err
}
