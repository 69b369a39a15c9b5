// Package testutil provides shared test helpers for setting up served roots
// and catalogs.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/storagekit/internal/catalog"
	"github.com/starford/storagekit/pkg/storage"
	"github.com/starford/storagekit/pkg/storage/local"
)

// TestDB creates a temporary SQLite catalog that is automatically cleaned up.
func TestDB(t *testing.T) *catalog.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "storagekit-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := catalog.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestRoot creates a temporary directory served through an initialized
// local provider and returns both.
func TestRoot(t *testing.T) (string, storage.Folder) {
	t.Helper()
	dir := t.TempDir()
	p := local.NewProvider(dir)
	if _, err := p.Initialize(); err != nil {
		t.Fatal(err)
	}
	root, err := p.Root()
	if err != nil {
		t.Fatal(err)
	}
	return dir, root
}
