package integration_tests

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rubiojr/docsearch/pkg/storage"
)

func TestMigrationsOnFreshDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "docsearch.db")

	store, err := storage.OpenWithoutMigrations(dbPath)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}

	status, err := store.Migrations().GetMigrationStatus()
	if err != nil {
		t.Fatalf("getting status: %v", err)
	}
	if len(status.Applied) != 0 || len(status.Pending) == 0 {
		t.Fatalf("expected only pending migrations, got %d applied %d pending", len(status.Applied), len(status.Pending))
	}
	pending := len(status.Pending)

	applied, err := store.Migrations().ApplyPendingMigrations()
	if err != nil {
		t.Fatalf("applying migrations: %v", err)
	}
	if applied != pending {
		t.Errorf("applied %d migrations, want %d", applied, pending)
	}
	store.Close()

	// Reopening runs migrations again, which must be a no-op.
	store, err = storage.Open(dbPath)
	if err != nil {
		t.Fatalf("reopening store: %v", err)
	}
	defer store.Close()

	status, err = store.Migrations().GetMigrationStatus()
	if err != nil {
		t.Fatal(err)
	}
	if len(status.Pending) != 0 || len(status.Applied) != pending {
		t.Errorf("expected %d applied and none pending, got %d/%d", pending, len(status.Applied), len(status.Pending))
	}

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats on empty store: %v", err)
	}
	if stats.Total != 0 {
		t.Errorf("expected empty store, got %d documents", stats.Total)
	}
}
