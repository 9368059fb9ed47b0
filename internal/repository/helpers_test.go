package repository

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"routine-tracker/internal/config"
	"routine-tracker/internal/logging"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "routines.db")
	db, err := NewDB(config.DatabaseConfig{Driver: "sqlite3", Path: path}, logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }
