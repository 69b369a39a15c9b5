// Package local implements the storage contracts on top of the local file
// system.
//
// References are cheap values around an absolute path. Building one for a
// path that does not exist yet creates the entry, so holding a *File or a
// *Folder always means the backing entry existed when it was handed out.
package local

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/storagekit/pkg/storage"
)

// Compile-time interface checks.
var (
	_ storage.File   = (*File)(nil)
	_ storage.Folder = (*Folder)(nil)
)

// TempPrefix starts the name of the scratch files WriteText leaves next to
// its target while a write is in flight.
const TempPrefix = ".storagekit-tmp-"

// File is a file on the local disk.
type File struct {
	path string // absolute, cleaned
}

// NewFile returns a reference to the file at path, creating an empty file
// when nothing exists there. The parent folder must already exist.
func NewFile(path string) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, storage.AccessError("resolve file", path, "", err)
	}
	info, err := os.Stat(abs)
	switch {
	case err == nil:
		if info.IsDir() {
			return nil, storage.AccessError("open file", abs, "is a folder", nil)
		}
	case errors.Is(err, fs.ErrNotExist):
		f, err := os.OpenFile(abs, os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, storage.AccessError("create file", abs, "", err)
		}
		if err := f.Close(); err != nil {
			return nil, storage.AccessError("create file", abs, "", err)
		}
	default:
		return nil, storage.AccessError("stat file", abs, "", err)
	}
	return &File{path: abs}, nil
}

// Name returns the base name of the file, extension included.
func (f *File) Name() string { return filepath.Base(f.path) }

// FileType returns the extension without the leading dot.
func (f *File) FileType() string { return storage.Extension(f.path) }

// HasPath is always true for local files.
func (f *File) HasPath() bool { return true }

// Path returns the absolute path.
func (f *File) Path() (string, error) { return f.path, nil }

// String returns the absolute path.
func (f *File) String() string { return f.path }

// Equal reports whether other is a local file with the same path under the
// host's comparison rules.
func (f *File) Equal(other storage.Item) bool {
	o, ok := other.(*File)
	return ok && storage.SamePath(f.path, o.path)
}

// Open returns a content handle bound to mode. The file must exist.
func (f *File) Open(mode storage.OpenMode) (storage.Content, error) {
	if !mode.CanRead() {
		return nil, storage.AccessError("open file", f.path, fmt.Sprintf("unsupported open mode %s", mode), nil)
	}
	info, err := os.Stat(f.path)
	if err != nil {
		return nil, storage.AccessError("open file", f.path, "", err)
	}
	if info.IsDir() {
		return nil, storage.AccessError("open file", f.path, "is a folder", nil)
	}
	return &Content{path: f.path, mode: mode}, nil
}

// ReadText returns the whole file as a string.
func (f *File) ReadText() (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", storage.AccessError("read file", f.path, "", err)
	}
	return string(data), nil
}

// WriteText atomically replaces the file content: tmp file → fsync → rename.
// A symlinked file has its target rewritten, so the link survives. Hard
// links are not followed: the written name gets a new inode and the other
// names keep the old content. The file mode of the existing file is kept.
func (f *File) WriteText(text string) error {
	target := f.path
	if resolved, err := filepath.EvalSymlinks(f.path); err == nil {
		target = resolved
	}
	perm := fs.FileMode(0o644)
	if info, err := os.Stat(target); err == nil {
		perm = info.Mode().Perm()
	}

	dir := filepath.Dir(target)
	tmp, err := os.CreateTemp(dir, TempPrefix+"*")
	if err != nil {
		return storage.AccessError("write file", f.path, "create temp", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.WriteString(text); err != nil {
		return storage.AccessError("write file", f.path, "write temp", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return storage.AccessError("write file", f.path, "chmod temp", err)
	}
	if err := tmp.Sync(); err != nil {
		return storage.AccessError("write file", f.path, "fsync", err)
	}
	if err := tmp.Close(); err != nil {
		return storage.AccessError("write file", f.path, "close temp", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return storage.AccessError("write file", f.path, "rename", err)
	}
	success = true
	return nil
}

// Remove deletes the file.
func (f *File) Remove() error {
	if err := os.Remove(f.path); err != nil {
		return storage.AccessError("remove file", f.path, "", err)
	}
	return nil
}

// Rename moves the file inside its parent folder under desiredName and
// points f at the new entry. An existing item with that name is never
// replaced.
func (f *File) Rename(desiredName string) error {
	parent, err := parentOf("rename file", f.path, desiredName)
	if err != nil {
		return err
	}
	moved, err := storage.MoveFile(f, parent, storage.FailIfExists, desiredName)
	if err != nil {
		return err
	}
	if p, err := moved.Path(); err == nil {
		f.path = p
	}
	return nil
}

// parentOf resolves the folder holding path for a rename to desiredName.
func parentOf(op, path, desiredName string) (*Folder, error) {
	if desiredName == "" || desiredName == "." || desiredName == ".." ||
		strings.ContainsAny(desiredName, `/`+string(os.PathSeparator)) {
		return nil, storage.AccessError(op, path, fmt.Sprintf("invalid name %q", desiredName), nil)
	}
	dir := filepath.Dir(path)
	if dir == path {
		return nil, storage.AccessError(op, path, "item has no parent folder", nil)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, storage.AccessError(op, path, "could not find the parent folder", err)
	}
	if !info.IsDir() {
		return nil, storage.AccessError(op, path, "parent is not a folder", nil)
	}
	return &Folder{path: dir}, nil
}
