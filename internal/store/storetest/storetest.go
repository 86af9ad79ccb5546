// Package storetest opens throwaway sqlite stores for tests.
package storetest

import (
	"path/filepath"
	"testing"

	"portfolio/internal/store"
	"portfolio/pkg/database"
)

// New returns a migrated store in t's temp dir, closed when the test ends.
func New(t testing.TB) *store.SQLStore {
	t.Helper()
	st, err := store.OpenSQL(database.DriverPure, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}
