package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/sales-assistant-api/internal/database"
	"github.com/straye-as/sales-assistant-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SetupTestDB creates an isolated in-memory SQLite database with every entity migrated.
// Each call gets its own database, closed when the test ends.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open(sqlite.Open(dsn))
	require.NoError(t, err, "failed to open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a single connection keeps the in-memory database alive for the whole test
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// CreateTestTenant creates an active tenant with a manager contact
func CreateTestTenant(t *testing.T, db *gorm.DB, name string) *domain.Tenant {
	t.Helper()
	tenant := &domain.Tenant{
		Name:         name,
		IsActive:     true,
		ManagerName:  "Manager " + name,
		ManagerPhone: "+254700000001",
		Timezone:     "UTC",
	}
	require.NoError(t, db.Create(tenant).Error)
	return tenant
}

// CreateTestCustomer creates a customer for the tenant
func CreateTestCustomer(t *testing.T, db *gorm.DB, tenantID uuid.UUID, name, phone string) *domain.CustomerProfile {
	t.Helper()
	customer := &domain.CustomerProfile{
		TenantID: tenantID,
		Name:     name,
		Phone:    phone,
	}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

// CreateTestOrder creates an order placed at createdAt with the given items
func CreateTestOrder(t *testing.T, db *gorm.DB, tenantID uuid.UUID, phone string, status domain.OrderStatus, createdAt time.Time, items ...domain.OrderItem) *domain.Order {
	t.Helper()

	var total float64
	for i := range items {
		items[i].BaseModel.CreatedAt = createdAt
		items[i].BaseModel.UpdatedAt = createdAt
		total += items[i].Quantity * items[i].UnitPrice
	}

	order := &domain.Order{
		BaseModel:     domain.BaseModel{CreatedAt: createdAt, UpdatedAt: createdAt},
		TenantID:      tenantID,
		CustomerPhone: phone,
		Status:        status,
		TotalAmount:   total,
		Items:         items,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

// Item builds an order line
func Item(productID uuid.UUID, name string, quantity, unitPrice float64) domain.OrderItem {
	return domain.OrderItem{
		ProductID:   productID,
		ProductName: name,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
	}
}

// CreateTestConversation records conversation activity for a customer
func CreateTestConversation(t *testing.T, db *gorm.DB, tenantID uuid.UUID, phone string, updatedAt time.Time, lastInboundAt *time.Time) *domain.Conversation {
	t.Helper()
	conversation := &domain.Conversation{
		BaseModel:     domain.BaseModel{CreatedAt: updatedAt, UpdatedAt: updatedAt},
		TenantID:      tenantID,
		CustomerPhone: phone,
		LastInboundAt: lastInboundAt,
	}
	require.NoError(t, db.Create(conversation).Error)
	return conversation
}
