package telemetry_test

import (
	"context"
	"testing"

	"github.com/erp/crm/internal/infrastructure/config"
	"github.com/erp/crm/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type tracedRow struct {
	ID   int64 `gorm:"primaryKey"`
	Name string
}

func TestDBTracingConfigFrom(t *testing.T) {
	tel := config.TelemetryConfig{Enabled: true, DBTraceEnabled: true}

	cfg := telemetry.DBTracingConfigFrom(tel, config.DatabaseConfig{Driver: config.DriverSQLite})
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "sqlite", cfg.DBSystem)

	cfg = telemetry.DBTracingConfigFrom(config.TelemetryConfig{DBTraceEnabled: true}, config.DatabaseConfig{Driver: config.DriverPostgres})
	assert.False(t, cfg.Enabled, "db tracing requires telemetry")
	assert.Equal(t, "postgresql", cfg.DBSystem)
}

func TestRegisterDBTracing(t *testing.T) {
	sr := setupTestTracer(t)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedRow{}))

	err = telemetry.RegisterDBTracing(db, telemetry.DBTracingConfig{Enabled: true, DBSystem: "sqlite"}, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, db.WithContext(context.Background()).Create(&tracedRow{ID: 1, Name: "a"}).Error)
	var rows []tracedRow
	require.NoError(t, db.WithContext(context.Background()).Find(&rows).Error)

	assert.GreaterOrEqual(t, len(sr.Ended()), 2)
}

func TestRegisterDBTracing_Disabled(t *testing.T) {
	sr := setupTestTracer(t)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedRow{}))

	require.NoError(t, telemetry.RegisterDBTracing(db, telemetry.DBTracingConfig{}, zap.NewNop()))
	require.NoError(t, db.Create(&tracedRow{ID: 1}).Error)

	assert.Empty(t, sr.Ended())
}
