package testsupport

import (
	"testing"

	"tagdock/internal/config"
	"tagdock/internal/records"
)

// MustOpenStore opens a records.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *records.Store {
	t.Helper()

	store, err := records.Open(cfg)
	if err != nil {
		t.Fatalf("records.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
