package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/sales-assistant-api/internal/domain"
	"gorm.io/gorm"
)

// ProactiveMessageRepository is the append-only outbound message log
type ProactiveMessageRepository struct {
	db *gorm.DB
}

func NewProactiveMessageRepository(db *gorm.DB) *ProactiveMessageRepository {
	return &ProactiveMessageRepository{db: db}
}

func (r *ProactiveMessageRepository) Create(ctx context.Context, message *domain.ProactiveMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// ExistsSince reports whether a message of the given type was sent to the customer
// at or after since
func (r *ProactiveMessageRepository) ExistsSince(ctx context.Context, customerID uuid.UUID, messageType domain.ProactiveMessageType, since time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.ProactiveMessage{}).
		Where("customer_id = ? AND message_type = ? AND sent_at >= ?", customerID, messageType, since).
		Count(&count).Error
	return count > 0, err
}
