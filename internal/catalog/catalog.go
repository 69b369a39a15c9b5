package catalog

import "github.com/starford/storagekit/internal/models"

// Catalog defines the operations the item service, sync and watcher need.
// Consumers should depend on this interface rather than the concrete *DB.
type Catalog interface {
	Upsert(item models.ItemInfo) error
	Delete(path string) error
	Get(path string) (*models.ItemInfo, error)
	List(dir string) ([]models.ItemInfo, error)
	Search(query string, limit int) ([]models.ItemInfo, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies Catalog at compile time.
var _ Catalog = (*DB)(nil)
