package catalog

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"

	"github.com/starford/storagekit/internal/checksum"
	"github.com/starford/storagekit/internal/metrics"
	"github.com/starford/storagekit/internal/models"
	"github.com/starford/storagekit/pkg/storage"
	"github.com/starford/storagekit/pkg/storage/local"
)

// EventCallback is called after a catalog change driven by the disk.
// kind is one of "created", "updated", "deleted".
type EventCallback func(kind string, path string)

// Sync walks root and brings the catalog up to date:
//   - new/changed items are described and upserted
//   - items removed from disk are deleted from the catalog
func Sync(db Catalog, root storage.Folder, logger *slog.Logger) error {
	return reconcile(db, root, logger, nil)
}

func reconcile(db Catalog, root storage.Folder, logger *slog.Logger, cb EventCallback) error {
	defer func(start time.Time) { metrics.RecordCatalogSync(time.Since(start)) }(time.Now())

	stored, err := db.AllChecksums()
	if err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(stored))
	err = walk(root, "", func(rel string, item storage.Item) error {
		seen[rel] = struct{}{}
		info, err := Describe(item, rel)
		if err != nil {
			logger.Warn("sync: describe failed", slog.String("path", rel), slog.String("error", err.Error()))
			return nil
		}
		cs, known := stored[rel]
		if known && cs == info.Checksum {
			return nil
		}
		if err := db.Upsert(info); err != nil {
			logger.Warn("sync: upsert failed", slog.String("path", rel), slog.String("error", err.Error()))
			return nil
		}
		logger.Debug("sync: catalogued", slog.String("path", rel))
		if cb != nil {
			if known {
				cb("updated", rel)
			} else {
				cb("created", rel)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Remove stale entries.
	for p := range stored {
		if _, ok := seen[p]; ok {
			continue
		}
		if err := db.Delete(p); err != nil {
			logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: removed stale", slog.String("path", p))
		if cb != nil {
			cb("deleted", p)
		}
	}
	return nil
}

// Refresh re-reads rel below root and makes the catalog match it. Missing
// items are dropped together with their subtree; folders are re-walked.
// Ancestor folders are catalogued as well.
func Refresh(db Catalog, root storage.Folder, rel string) error {
	rel = cleanRel(rel)
	item, err := storage.Lookup(root, rel)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return db.Delete(rel)
		}
		return err
	}

	segs := storage.SplitPath(rel)
	for i := 1; i < len(segs); i++ {
		p := strings.Join(segs[:i], "/")
		dir, err := root.Folder(p)
		if err != nil {
			return err
		}
		if err := upsertItem(db, dir, p); err != nil {
			return err
		}
	}

	folder, isFolder := item.(storage.Folder)
	if !isFolder {
		return upsertItem(db, item, rel)
	}
	if err := db.Delete(rel); err != nil {
		return err
	}
	if rel != "" {
		if err := upsertItem(db, folder, rel); err != nil {
			return err
		}
	}
	return walk(folder, rel, func(p string, it storage.Item) error {
		return upsertItem(db, it, p)
	})
}

func upsertItem(db Catalog, item storage.Item, rel string) error {
	info, err := Describe(item, rel)
	if err != nil {
		return err
	}
	return db.Upsert(info)
}

// Describe builds the catalog row for item stored at rel. File content is
// streamed once to compute size and checksum.
func Describe(item storage.Item, rel string) (models.ItemInfo, error) {
	info := models.ItemInfo{
		Path:      cleanRel(rel),
		Name:      item.Name(),
		Kind:      models.KindFolder,
		UpdatedAt: modTime(item),
	}
	f, ok := item.(storage.File)
	if !ok {
		return info, nil
	}
	info.Kind = models.KindFile
	info.FileType = f.FileType()

	content, err := f.Open(storage.ModeRead)
	if err != nil {
		return info, err
	}
	defer content.Close()
	r, err := content.ReadStream()
	if err != nil {
		return info, err
	}
	cs, n, err := checksum.Reader(r)
	if err != nil {
		return info, storage.AccessError("checksum", rel, "", err)
	}
	info.Checksum = cs
	info.Size = n
	return info, nil
}

// walk calls fn for every item below dir in depth-first order. rel is the
// slash path of dir relative to the catalog root.
func walk(dir storage.Folder, rel string, fn func(rel string, item storage.Item) error) error {
	items, err := dir.Items()
	if err != nil {
		return err
	}
	for _, it := range items {
		if ignored(it.Name()) {
			continue
		}
		p := path.Join(rel, it.Name())
		if err := fn(p, it); err != nil {
			return err
		}
		if sub, ok := it.(storage.Folder); ok {
			if err := walk(sub, p, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// ignored reports whether name belongs to an in-flight atomic write.
func ignored(name string) bool {
	return strings.HasPrefix(name, local.TempPrefix)
}

func modTime(item storage.Item) time.Time {
	if !item.HasPath() {
		return time.Time{}
	}
	p, err := item.Path()
	if err != nil {
		return time.Time{}
	}
	info, err := os.Stat(p)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime().UTC()
}

// cleanRel normalises a relative path to the catalog's slash form.
func cleanRel(rel string) string {
	return strings.TrimPrefix(path.Clean("/"+strings.Join(storage.SplitPath(rel), "/")), "/")
}
