package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/sales-assistant-api/internal/domain"
	"github.com/straye-as/sales-assistant-api/internal/repository"
)

// The interfaces below are the collaborator contracts the intelligence services
// depend on. The gorm repositories satisfy them; tests swap in fakes to inject
// failures.

// TenantStore reads tenants and their manager contact
type TenantStore interface {
	ListActive(ctx context.Context) ([]domain.Tenant, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error)
	GetManagerContact(ctx context.Context, tenantID uuid.UUID) (name string, phone string, err error)
}

// CustomerStore resolves customers and their linkage key
type CustomerStore interface {
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.CustomerProfile, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]domain.CustomerProfile, error)
	ListByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]domain.CustomerProfile, error)
}

// OrderStore returns qualifying order history by linkage key
type OrderStore interface {
	ListQualifyingByPhone(ctx context.Context, tenantID uuid.UUID, phone string) ([]domain.Order, error)
}

// ConversationStore answers conversation recency questions
type ConversationStore interface {
	HasActivitySince(ctx context.Context, tenantID uuid.UUID, phone string, since time.Time) (bool, error)
	HasInboundSince(ctx context.Context, tenantID uuid.UUID, phone string, since time.Time) (bool, error)
}

// PatternStore persists derived patterns and affinities
type PatternStore interface {
	ReplaceDerived(ctx context.Context, tenantID, customerID uuid.UUID, pattern *domain.PurchasePattern, affinities []domain.ProductAffinity) error
	GetPattern(ctx context.Context, tenantID, customerID uuid.UUID) (*domain.PurchasePattern, error)
	ListOverdue(ctx context.Context, tenantID uuid.UUID) ([]domain.PurchasePattern, error)
	ListAffinities(ctx context.Context, tenantID, customerID uuid.UUID) ([]domain.ProductAffinity, error)
}

// ProactiveMessageStore is the append-only outbound message log
type ProactiveMessageStore interface {
	Create(ctx context.Context, message *domain.ProactiveMessage) error
	ExistsSince(ctx context.Context, customerID uuid.UUID, messageType domain.ProactiveMessageType, since time.Time) (bool, error)
}

// ManagerAlertStore is the append-only alert audit log
type ManagerAlertStore interface {
	Create(ctx context.Context, alert *domain.ManagerAlert) error
	ExistsSince(ctx context.Context, tenantID, customerID uuid.UUID, alertType domain.AlertType, since time.Time) (bool, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, alertType domain.AlertType, page, pageSize int) ([]domain.ManagerAlert, int64, error)
}

// RunStore writes per-tenant run-status records
type RunStore interface {
	Start(ctx context.Context, tenantID uuid.UUID, startedAt time.Time) (*domain.IntelligenceRun, error)
	Complete(ctx context.Context, runID uuid.UUID, counts repository.RunCounts, finishedAt time.Time, duration time.Duration) error
	Fail(ctx context.Context, runID uuid.UUID, counts repository.RunCounts, finishedAt time.Time, duration time.Duration, errMsg string) error
	ListByTenant(ctx context.Context, tenantID uuid.UUID, page, pageSize int) ([]domain.IntelligenceRun, int64, error)
}

// MessageSender delivers a text message and returns the provider message id
type MessageSender interface {
	Send(ctx context.Context, to, text string) (string, error)
}
