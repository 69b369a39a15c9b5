package catalog

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/storagekit/pkg/storage"
)

const reconcileDelay = 200 * time.Millisecond

// Watch starts an fsnotify watcher on root and keeps the catalog current
// until ctx is cancelled. It calls cb (if non-nil) after each successful
// catalog mutation. root must be backed by a local path.
//
// New directories created at runtime are automatically added to the watch
// list. Rename and remove events trigger a debounced reconciliation pass
// that catches entries fsnotify reports only on one side.
func Watch(ctx context.Context, db Catalog, root storage.Folder, logger *slog.Logger, cb EventCallback) error {
	rootPath, err := root.Path()
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, rootPath); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", rootPath))

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(reconcileDelay)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(reconcileDelay)
		}
	}

	notify := func(kind, rel string) {
		logger.Debug("watcher: catalogued", slog.String("path", rel), slog.String("op", kind))
		if cb != nil {
			cb(kind, rel)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			if err := reconcile(db, root, logger, cb); err != nil {
				logger.Warn("watcher: reconcile failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ignored(filepath.Base(ev.Name)) || ev.Op == fsnotify.Chmod {
				continue
			}
			rel, relErr := filepath.Rel(rootPath, ev.Name)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				if ev.Op&fsnotify.Create != 0 {
					if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
						if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
							logger.Warn("watcher: add new dir failed",
								slog.String("path", ev.Name),
								slog.String("error", addErr.Error()))
						} else {
							logger.Debug("watcher: watching new dir", slog.String("path", ev.Name))
						}
					}
				}
				_, getErr := db.Get(rel)
				existed := getErr == nil
				if err := Refresh(db, root, rel); err != nil {
					logger.Warn("watcher: refresh failed", slog.String("path", rel), slog.String("error", err.Error()))
					continue
				}
				if _, err := db.Get(rel); err != nil {
					// Gone again before we got to it.
					if existed {
						notify("deleted", rel)
					}
					continue
				}
				if existed {
					notify("updated", rel)
				} else {
					notify("created", rel)
				}

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				// fsnotify fires Rename on the old path only; the new path
				// arrives as a separate Create when it stays under root.
				if err := db.Delete(rel); err != nil {
					logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", err.Error()))
				} else {
					notify("deleted", rel)
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
