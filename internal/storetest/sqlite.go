// Package storetest opens throwaway sqlite-backed stores for tests.
package storetest

import (
	"fmt"
	"testing"

	"account-auth/internal/domain"
	"account-auth/internal/store"
	"account-auth/pkg/db"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
)

// New returns a migrated in-memory store private to t.
func New(t testing.TB) *store.Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := db.Open(sqlite.Open(dsn), db.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(&domain.User{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// A single connection keeps sqlite's shared cache free of table locks.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return store.New(gdb)
}
