package db

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Windi-Fikriyansyah/talentlink_be/internal/models"
)

func openWithLogger(t *testing.T, l *GormLogger) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: l})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return gdb
}

func TestGormLoggerReportsFailedQueries(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gdb := openWithLogger(t, NewGormLogger(zap.New(core), logger.Warn))

	err := gdb.Exec("SELECT * FROM no_such_table").Error
	require.Error(t, err)

	entries := logs.FilterMessage("query failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "gorm", entries[0].LoggerName)
	assert.Contains(t, entries[0].ContextMap()["sql"], "no_such_table")
}

func TestGormLoggerIgnoresRecordNotFound(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gdb := openWithLogger(t, NewGormLogger(zap.New(core), logger.Warn))
	require.NoError(t, gdb.AutoMigrate(&models.User{}))
	logs.TakeAll()

	var u models.User
	err := gdb.First(&u, "id = ?", uuid.New()).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Zero(t, logs.FilterMessage("query failed").Len())
}

func TestGormLoggerReportsSlowQueries(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), logger.Warn)
	l.SlowThreshold = time.Nanosecond
	gdb := openWithLogger(t, l)

	require.NoError(t, gdb.Exec("SELECT 1").Error)
	assert.NotZero(t, logs.FilterMessage("slow query").Len())
}

func TestGormLoggerSilent(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gdb := openWithLogger(t, NewGormLogger(zap.New(core), logger.Warn).LogMode(logger.Silent).(*GormLogger))

	_ = gdb.Exec("SELECT * FROM no_such_table").Error
	assert.Zero(t, logs.Len())
}
