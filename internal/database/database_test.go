package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/straye-as/sales-assistant-api/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	// gorm pings once while opening
	mock.ExpectPing()
	db, err := database.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}))
	require.NoError(t, err)
	return db, mock
}

func TestHealthCheck(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectPing()

	assert.NoError(t, database.HealthCheck(db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthCheck_PingFails(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	err := database.HealthCheck(db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestHealthCheckWithStats(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectPing()

	stats, err := database.HealthCheckWithStats(context.Background(), db)
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.GreaterOrEqual(t, stats.OpenConnections, 0)
	assert.NoError(t, mock.ExpectationsWereMet())
}
