// Package dbtest opens throwaway databases for tests.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"casino_ledger/internal/db"
)

// Open returns an isolated in-memory sqlite database that is closed when the
// test finishes.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	gdb, err := db.Open("sqlite", dsn)
	require.NoError(t, err)
	gdb.Logger = logger.Default.LogMode(logger.Silent)

	t.Cleanup(func() {
		_ = db.Close(gdb)
	})
	return gdb
}
