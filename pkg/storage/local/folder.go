package local

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/starford/storagekit/pkg/storage"
)

// Folder is a directory on the local disk.
type Folder struct {
	path string // absolute, cleaned
}

// NewFolder returns a reference to the directory at path, creating it (and
// any missing parents) when nothing exists there.
func NewFolder(path string) (*Folder, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, storage.AccessError("resolve folder", path, "", err)
	}
	info, err := os.Stat(abs)
	switch {
	case err == nil:
		if !info.IsDir() {
			return nil, storage.AccessError("open folder", abs, "is a file", nil)
		}
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(abs, 0o755); err != nil {
			return nil, storage.AccessError("create folder", abs, "", err)
		}
	default:
		return nil, storage.AccessError("stat folder", abs, "", err)
	}
	return &Folder{path: abs}, nil
}

// Name returns the base name of the directory.
func (f *Folder) Name() string { return filepath.Base(f.path) }

// HasPath is always true for local folders.
func (f *Folder) HasPath() bool { return true }

// Path returns the absolute path.
func (f *Folder) Path() (string, error) { return f.path, nil }

// String returns the absolute path.
func (f *Folder) String() string { return f.path }

// Equal reports whether other is a local folder with the same path under
// the host's comparison rules.
func (f *Folder) Equal(other storage.Item) bool {
	o, ok := other.(*Folder)
	return ok && storage.SamePath(f.path, o.path)
}

// Items lists the direct children. Symbolic links are classified by their
// target; links that cannot be followed are reported as files.
func (f *Folder) Items() ([]storage.Item, error) {
	entries, err := os.ReadDir(f.path)
	if err != nil {
		return nil, storage.AccessError("list folder", f.path, "", err)
	}
	items := make([]storage.Item, 0, len(entries))
	for _, e := range entries {
		p := filepath.Join(f.path, e.Name())
		isDir := e.IsDir()
		if e.Type()&fs.ModeSymlink != 0 {
			if info, err := os.Stat(p); err == nil {
				isDir = info.IsDir()
			}
		}
		if isDir {
			items = append(items, &Folder{path: p})
		} else {
			items = append(items, &File{path: p})
		}
	}
	return items, nil
}

// File resolves an existing file below f.
func (f *Folder) File(relPath string) (storage.File, error) {
	p, err := f.safePath("get file", relPath)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(p)
	if err != nil {
		return nil, storage.AccessError("get file", p, "", err)
	}
	if info.IsDir() {
		return nil, storage.AccessError("get file", p, "is a folder", nil)
	}
	return &File{path: p}, nil
}

// Folder resolves an existing folder below f. An empty path returns f.
func (f *Folder) Folder(relPath string) (storage.Folder, error) {
	p, err := f.safePath("get folder", relPath)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(p)
	if err != nil {
		return nil, storage.AccessError("get folder", p, "", err)
	}
	if !info.IsDir() {
		return nil, storage.AccessError("get folder", p, "is a file", nil)
	}
	return &Folder{path: p}, nil
}

// CreateFile creates a file called name in f according to opt.
func (f *Folder) CreateFile(name string, opt storage.CollisionOption) (storage.File, error) {
	p, err := f.create("create file", name, opt, false)
	if err != nil {
		return nil, err
	}
	return &File{path: p}, nil
}

// CreateFolder creates a folder called name in f according to opt.
func (f *Folder) CreateFolder(name string, opt storage.CollisionOption) (storage.Folder, error) {
	p, err := f.create("create folder", name, opt, true)
	if err != nil {
		return nil, err
	}
	return &Folder{path: p}, nil
}

// Remove deletes the folder and everything below it.
func (f *Folder) Remove() error {
	if _, err := os.Lstat(f.path); err != nil {
		return storage.AccessError("remove folder", f.path, "", err)
	}
	if err := os.RemoveAll(f.path); err != nil {
		return storage.AccessError("remove folder", f.path, "", err)
	}
	return nil
}

// Rename moves the folder inside its parent under desiredName and points f
// at the new entry. An existing item with that name is never replaced.
func (f *Folder) Rename(desiredName string) error {
	parent, err := parentOf("rename folder", f.path, desiredName)
	if err != nil {
		return err
	}
	moved, err := storage.MoveFolder(f, parent, storage.FailIfExists, desiredName)
	if err != nil {
		return err
	}
	if p, err := moved.Path(); err == nil {
		f.path = p
	}
	return nil
}

// create resolves name against f and applies the collision option. It
// returns the path of the entry to hand out.
//
// New entries are made with exclusive primitives (O_EXCL, mkdir), so when
// another creator wins the same name first the option is applied to the
// entry it made instead of silently sharing it.
func (f *Folder) create(op, name string, opt storage.CollisionOption, dir bool) (string, error) {
	target, err := f.safePath(op, name)
	if err != nil {
		return "", err
	}
	if target == f.path {
		return "", storage.AccessError(op, name, "name is empty", nil)
	}

	_, err = os.Lstat(target)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", storage.AccessError(op, target, "", err)
	}
	if err != nil {
		err := makeEntry(target, dir)
		if err == nil {
			return target, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", storage.AccessError(op, target, "", err)
		}
	}

	switch opt {
	case storage.Overwrite:
		if err := os.RemoveAll(target); err != nil {
			return "", storage.AccessError(op, target, "remove existing", err)
		}
		if err := makeEntry(target, dir); err != nil {
			if errors.Is(err, fs.ErrExist) {
				return "", storage.ConflictError(op, name, "recreated concurrently")
			}
			return "", storage.AccessError(op, target, "", err)
		}
		return target, nil

	case storage.FailIfExists:
		return "", storage.ConflictError(op, name, "already exists")

	case storage.OpenExisting:
		info, err := os.Stat(target)
		if err != nil {
			return "", storage.AccessError(op, target, "", err)
		}
		if info.IsDir() != dir {
			return "", storage.AccessError(op, target, fmt.Sprintf("exists as a %s", kindName(info.IsDir())), nil)
		}
		return target, nil

	case storage.RenameIfExists:
		for n := 1; ; n++ {
			candidate := target + "_" + strconv.Itoa(n)
			err := makeEntry(candidate, dir)
			if err == nil {
				return candidate, nil
			}
			if !errors.Is(err, fs.ErrExist) {
				return "", storage.AccessError(op, candidate, "", err)
			}
		}

	default:
		return "", storage.AccessError(op, name, fmt.Sprintf("collision option %s is not supported", opt), nil)
	}
}

// safePath resolves a relative path against the folder and rejects any
// result that escapes it (directory traversal).
func (f *Folder) safePath(op, rel string) (string, error) {
	if rel == "" {
		return f.path, nil
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) || filepath.VolumeName(cleaned) != "" {
		return "", storage.AccessError(op, rel, "absolute paths not allowed", nil)
	}
	abs := filepath.Join(f.path, cleaned)
	if !storage.IsWithin(abs, f.path) {
		return "", storage.AccessError(op, rel, "path escapes folder", nil)
	}
	return abs, nil
}

// makeEntry creates path exclusively, failing with fs.ErrExist when
// something is already there.
func makeEntry(path string, dir bool) error {
	if dir {
		return os.Mkdir(path, 0o755)
	}
	fh, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	return fh.Close()
}

func kindName(dir bool) string {
	if dir {
		return "folder"
	}
	return "file"
}
