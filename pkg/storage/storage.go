// Package storage defines a provider-agnostic file and folder abstraction
// together with the algorithms (collision handling, copy, move, recursive
// creation) that are built only on top of it.
//
// A concrete implementation backed by the local disk lives in
// storage/local. Any other provider can satisfy the same interfaces and
// reuse every function in this package unchanged.
package storage

import "io"

// Item is the identity and lifecycle contract shared by files and folders.
type Item interface {
	// Name returns the item name. For files it includes the extension.
	Name() string
	// HasPath reports whether the item is reachable through a filesystem path.
	HasPath() bool
	// Path returns the absolute path of the item. It fails with ErrAccess
	// when HasPath is false.
	Path() (string, error)
	// Remove deletes the item. Folders are removed recursively.
	Remove() error
	// Rename moves the item inside its parent folder under desiredName.
	// It never replaces an existing item.
	Rename(desiredName string) error
}

// File is an Item with content.
type File interface {
	Item
	// FileType returns the extension of the file without the leading dot.
	FileType() string
	// Open returns a Content handle bound to mode. The caller must Close it.
	Open(mode OpenMode) (Content, error)
	// ReadText returns the whole file as a string.
	ReadText() (string, error)
	// WriteText replaces the whole file content with text.
	WriteText(text string) error
}

// Folder is an Item that contains other items.
type Folder interface {
	Item
	// Items returns a snapshot of every direct child. Order is unspecified.
	Items() ([]Item, error)
	// File resolves an existing file by a path relative to the folder.
	File(relPath string) (File, error)
	// Folder resolves an existing folder by a path relative to the folder.
	Folder(relPath string) (Folder, error)
	// CreateFile creates a file named name according to opt.
	CreateFile(name string, opt CollisionOption) (File, error)
	// CreateFolder creates a folder named name according to opt.
	CreateFolder(name string, opt CollisionOption) (Folder, error)
}

// Content is an opened view over a single File. It is owned by exactly one
// caller and must be closed after use; Close also releases every stream
// obtained from it that is still open.
type Content interface {
	io.Closer
	// Mode returns the mode the content was opened with.
	Mode() OpenMode
	// ReadStream opens a stream over the file bytes.
	ReadStream() (io.ReadCloser, error)
	// WriteStream opens a stream that replaces the file bytes. It requires
	// ModeReadWrite and fails with ErrPermission otherwise.
	WriteStream() (io.WriteCloser, error)
}
