package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/sales-assistant-api/internal/domain"
	"github.com/straye-as/sales-assistant-api/internal/repository"
	"github.com/straye-as/sales-assistant-api/internal/testutil"
	"gorm.io/gorm"
)

var now = time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return now }

func daysAgo(d int) time.Time { return now.AddDate(0, 0, -d) }

var errBoom = errors.New("boom")

type sentMessage struct {
	To   string
	Text string
}

// recordingSender captures outbound messages and fails or panics for selected recipients
type recordingSender struct {
	mu       sync.Mutex
	sent     []sentMessage
	failFor  map[string]error
	panicFor map[string]string
}

func newRecordingSender() *recordingSender {
	return &recordingSender{failFor: map[string]error{}, panicFor: map[string]string{}}
}

func (s *recordingSender) Send(_ context.Context, to, text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg, ok := s.panicFor[to]; ok {
		panic(msg)
	}
	if err, ok := s.failFor[to]; ok {
		return "", err
	}
	s.sent = append(s.sent, sentMessage{To: to, Text: text})
	return fmt.Sprintf("wamid.%d", len(s.sent)), nil
}

func (s *recordingSender) to(phone string) []sentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []sentMessage
	for _, m := range s.sent {
		if m.To == phone {
			out = append(out, m)
		}
	}
	return out
}

// createOrders places one delivered order per day offset, each with fresh copies of items
func createOrders(t *testing.T, db *gorm.DB, tenantID uuid.UUID, phone string, items []domain.OrderItem, days ...int) {
	t.Helper()
	for _, d := range days {
		lines := make([]domain.OrderItem, len(items))
		copy(lines, items)
		testutil.CreateTestOrder(t, db, tenantID, phone, domain.OrderStatusDelivered, daysAgo(d), lines...)
	}
}

// failingCustomers wraps a customer store and fails tenant listings for one tenant
type failingCustomers struct {
	*repository.CustomerRepository
	failTenant uuid.UUID
}

func (f failingCustomers) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]domain.CustomerProfile, error) {
	if tenantID == f.failTenant {
		return nil, errBoom
	}
	return f.CustomerRepository.ListByTenant(ctx, tenantID)
}

type failingOrders struct{}

func (failingOrders) ListQualifyingByPhone(context.Context, uuid.UUID, string) ([]domain.Order, error) {
	return nil, errBoom
}

// failingAlerts is an alert store whose writes fail
type failingAlerts struct {
	*repository.ManagerAlertRepository
}

func (failingAlerts) Create(context.Context, *domain.ManagerAlert) error {
	return errBoom
}
