package database

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"wastetrack/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Connect(sqlite.Open(filepath.Join(t.TempDir(), "journal.db")), 1, 0, zerolog.Nop())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestJournal_RecordAndRecent(t *testing.T) {
	j := NewJournal(openTestDB(t), zerolog.Nop())
	admin := models.User{ID: 1, Username: "admin", Role: models.RoleAdmin}
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		j.Record(ctx, admin, EntityCompany, i, "status_change", fmt.Sprintf("company %d approved", i))
	}

	logs, err := j.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)

	assert.Equal(t, 3, logs[0].EntityID)
	assert.Equal(t, 2, logs[1].EntityID)
	assert.Equal(t, "admin", logs[0].Username)
	assert.Equal(t, EntityCompany, logs[0].Entity)
	assert.False(t, logs[0].CreatedAt.IsZero())
}

func TestJournal_DisabledIsNoop(t *testing.T) {
	var nilJournal *Journal
	assert.False(t, nilJournal.Enabled())
	nilJournal.Record(context.Background(), models.User{}, EntityRegion, 1, "delete", "")

	logs, err := nilJournal.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Nil(t, logs)

	disabled := NewJournal(nil, zerolog.Nop())
	assert.False(t, disabled.Enabled())
	logs, err = disabled.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Nil(t, logs)
}

type failingDialector struct {
	gorm.Dialector
}

func (failingDialector) Name() string { return "failing" }

func (failingDialector) Initialize(*gorm.DB) error { return errors.New("connection refused") }

func TestConnect_GivesUpAfterAttempts(t *testing.T) {
	start := time.Now()
	_, err := Connect(failingDialector{}, 3, time.Millisecond, zerolog.Nop())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Less(t, time.Since(start), time.Second)
}
