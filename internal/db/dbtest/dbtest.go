// Package dbtest provides database fixtures for tests.
package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"phreddit/internal/db"

	"github.com/sirupsen/logrus"
)

// NewStore returns a store backed by a fresh in-memory sqlite database with
// every table migrated. The database disappears with the test.
func NewStore(t testing.TB) *db.Store {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_", "?", "_", "&", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=off", name)

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	conn, err := db.Open("sqlite", dsn, log)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.Migrate(conn); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db.NewStore(conn)
}
