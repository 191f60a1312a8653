// Package testutil provides shared test helpers for setting up stores.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/pulse/internal/state"
	"github.com/starford/pulse/internal/storage"
)

// TestDB creates a temporary SQLite slice database that is automatically cleaned up.
func TestDB(t *testing.T) *storage.SQLite {
	t.Helper()
	dbFile, err := os.CreateTemp("", "pulse-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := storage.OpenSQLite(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestKV creates a temporary data directory with a file-backed Provider.
func TestKV(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dataDir := t.TempDir()
	kv, err := storage.NewFS(dataDir)
	if err != nil {
		t.Fatal(err)
	}
	return dataDir, kv
}

// TestStore loads a state store over a temporary file-backed provider.
func TestStore(t *testing.T) *state.Store {
	t.Helper()
	_, kv := TestKV(t)
	return state.Load(kv)
}
