package storage

import (
	"fmt"
	"io"
	"path/filepath"
)

// CopyFile creates a file in dst according to opt and copies the bytes of
// src into it. An empty name keeps src's name. Overwrite is refused when the
// target is src itself or a folder holding it.
func CopyFile(src File, dst Folder, opt CollisionOption, name string) (File, error) {
	if name == "" {
		name = src.Name()
	}
	if opt == Overwrite {
		if err := checkTarget("copy file", src, dst, name); err != nil {
			return nil, err
		}
	}
	out, err := dst.CreateFile(name, opt)
	if err != nil {
		return nil, err
	}
	if err := CopyContents(src, out); err != nil {
		return nil, err
	}
	return out, nil
}

// MoveFile copies src into dst and then removes src. If the removal fails
// the copy is kept, so the data ends up duplicated rather than lost.
func MoveFile(src File, dst Folder, opt CollisionOption, name string) (File, error) {
	out, err := CopyFile(src, dst, opt, name)
	if err != nil {
		return nil, err
	}
	if SameItem(src, out) {
		return out, nil
	}
	if err := src.Remove(); err != nil {
		return out, err
	}
	return out, nil
}

// CopyContents streams every byte of src into dst, replacing dst's content.
// Both handles and both streams are released before it returns.
func CopyContents(src, dst File) (err error) {
	if SameItem(src, dst) {
		return nil
	}
	in, err := src.Open(ModeRead)
	if err != nil {
		return err
	}
	defer closeInto(in, &err)

	r, err := in.ReadStream()
	if err != nil {
		return err
	}
	defer closeInto(r, &err)

	out, err := dst.Open(ModeReadWrite)
	if err != nil {
		return err
	}
	defer closeInto(out, &err)

	w, err := out.WriteStream()
	if err != nil {
		return err
	}
	defer closeInto(w, &err)

	if _, err := io.Copy(w, r); err != nil {
		return AccessError("copy", src.Name(), "", err)
	}
	return flush(w)
}

// CopyFolder creates a folder in dst according to opt and copies the whole
// tree of src into it. An empty name keeps src's name. The destination may
// not lie inside src, and Overwrite or OpenExisting are refused when the
// target is src itself or one of its ancestors.
func CopyFolder(src Folder, dst Folder, opt CollisionOption, name string) (Folder, error) {
	if name == "" {
		name = src.Name()
	}
	if src.HasPath() && dst.HasPath() {
		sp, err := src.Path()
		if err != nil {
			return nil, err
		}
		dp, err := dst.Path()
		if err != nil {
			return nil, err
		}
		if IsWithin(dp, sp) {
			return nil, AccessError("copy folder", sp, fmt.Sprintf("destination %s is inside the source", dp), nil)
		}
	}
	if opt == Overwrite || opt == OpenExisting {
		if err := checkTarget("copy folder", src, dst, name); err != nil {
			return nil, err
		}
	}
	out, err := dst.CreateFolder(name, opt)
	if err != nil {
		return nil, err
	}
	if err := CopyFolderContents(src, out); err != nil {
		return nil, err
	}
	return out, nil
}

// MoveFolder copies src into dst and then removes src recursively.
func MoveFolder(src Folder, dst Folder, opt CollisionOption, name string) (Folder, error) {
	out, err := CopyFolder(src, dst, opt, name)
	if err != nil {
		return nil, err
	}
	if err := src.Remove(); err != nil {
		return out, err
	}
	return out, nil
}

// checkTarget fails with a conflict when dst/name resolves to src or to a
// folder that contains it. Items without a path are not checked.
func checkTarget(op string, src Item, dst Folder, name string) error {
	if !src.HasPath() || !dst.HasPath() {
		return nil
	}
	sp, err := src.Path()
	if err != nil {
		return err
	}
	dp, err := dst.Path()
	if err != nil {
		return err
	}
	target := filepath.Join(dp, filepath.FromSlash(name))
	if IsWithin(sp, target) {
		return ConflictError(op, name, fmt.Sprintf("target %s holds the source", target))
	}
	return nil
}

// CopyFolderContents copies every child of src into dst. The destination is
// expected to be a fresh copy, so any name clash aborts the copy.
func CopyFolderContents(src, dst Folder) error {
	items, err := src.Items()
	if err != nil {
		return err
	}
	for _, it := range items {
		switch v := it.(type) {
		case File:
			if _, err := CopyFile(v, dst, FailIfExists, ""); err != nil {
				return err
			}
		case Folder:
			if _, err := CopyFolder(v, dst, FailIfExists, ""); err != nil {
				return err
			}
		default:
			return AccessError("copy folder", it.Name(), fmt.Sprintf("item of type %T is neither a file nor a folder", it), nil)
		}
	}
	return nil
}

// Copy dispatches to CopyFile or CopyFolder.
func Copy(src Item, dst Folder, opt CollisionOption, name string) (Item, error) {
	switch v := src.(type) {
	case File:
		return CopyFile(v, dst, opt, name)
	case Folder:
		return CopyFolder(v, dst, opt, name)
	}
	return nil, AccessError("copy", src.Name(), fmt.Sprintf("item of type %T is neither a file nor a folder", src), nil)
}

// Move dispatches to MoveFile or MoveFolder.
func Move(src Item, dst Folder, opt CollisionOption, name string) (Item, error) {
	switch v := src.(type) {
	case File:
		return MoveFile(v, dst, opt, name)
	case Folder:
		return MoveFolder(v, dst, opt, name)
	}
	return nil, AccessError("move", src.Name(), fmt.Sprintf("item of type %T is neither a file nor a folder", src), nil)
}

type flusher interface{ Flush() error }

type syncer interface{ Sync() error }

func flush(w io.Writer) error {
	switch f := w.(type) {
	case flusher:
		if err := f.Flush(); err != nil {
			return AccessError("flush", "", "", err)
		}
	case syncer:
		if err := f.Sync(); err != nil {
			return AccessError("flush", "", "", err)
		}
	}
	return nil
}

// closeInto closes c and records its error in *err unless one is set.
func closeInto(c io.Closer, err *error) {
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}
