package testsupport

import (
	"testing"

	"mediaorg/internal/config"
	"mediaorg/internal/journal"
)

// MustOpenJournal opens the journal named by cfg and closes it when the
// test ends.
func MustOpenJournal(t testing.TB, cfg *config.Config) *journal.Store {
	t.Helper()

	store, err := journal.Open(cfg)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close journal: %v", err)
		}
	})
	return store
}
