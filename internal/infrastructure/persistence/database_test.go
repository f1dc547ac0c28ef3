package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"

	"github.com/stockroom/backend/internal/infrastructure/telemetry"
)

// newMockDatabase opens gorm on a sqlmock connection using the postgres dialect
func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	db, err := Open(dialector, Options{Logger: zap.NewNop(), LogLevel: "silent"})
	require.NoError(t, err)

	return &Database{DB: db}, mock
}

func TestDatabase_Ping(t *testing.T) {
	// gorm pings once while opening the connection
	newPingedDatabase := func(t *testing.T) (*Database, sqlmock.Sqlmock) {
		mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		t.Cleanup(func() { _ = mockDB.Close() })

		mock.ExpectPing()
		db, err := Open(postgres.New(postgres.Config{Conn: mockDB}), Options{LogLevel: "silent"})
		require.NoError(t, err)
		return &Database{DB: db}, mock
	}

	t.Run("successful ping", func(t *testing.T) {
		db, mock := newPingedDatabase(t)
		mock.ExpectPing()

		require.NoError(t, db.Ping(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed ping", func(t *testing.T) {
		db, mock := newPingedDatabase(t)
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		err := db.Ping(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestDatabase_Stats(t *testing.T) {
	db, _ := newMockDatabase(t)

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stats.OpenConnections, 0)
}

func TestDatabase_Close(t *testing.T) {
	db, mock := newMockDatabase(t)
	mock.ExpectClose()

	require.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpen_WithTracing(t *testing.T) {
	cfg := telemetry.DefaultDBTracingConfig()
	cfg.Enabled = true

	db, err := Open(sqlite.Open(":memory:"), Options{Tracing: cfg})
	require.NoError(t, err)

	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
	assert.NotNil(t, db.Callback().Query().Get("otel_slow_query:query"))
}
