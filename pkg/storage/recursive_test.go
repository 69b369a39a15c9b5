package storage_test

import (
	"errors"
	"testing"

	"github.com/starford/storagekit/pkg/storage"
)

func TestCreateFolderRecursive(t *testing.T) {
	root := tempRoot(t)

	leaf, err := storage.CreateFolderRecursive(root, "a/b/c", storage.FailIfExists)
	if err != nil {
		t.Fatalf("CreateFolderRecursive: %v", err)
	}
	if leaf.Name() != "c" {
		t.Errorf("leaf = %q", leaf.Name())
	}
	if _, err := root.Folder("a/b/c"); err != nil {
		t.Errorf("a/b/c missing: %v", err)
	}

	// The first level already exists, so the whole call fails there.
	if _, err := storage.CreateFolderRecursive(root, "a/b/c", storage.FailIfExists); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("second call err = %v, want ErrConflict", err)
	}
}

func TestCreateFolderRecursiveOpenExisting(t *testing.T) {
	root := tempRoot(t)
	if _, err := storage.CreateFolderRecursive(root, "x/y", storage.FailIfExists); err != nil {
		t.Fatal(err)
	}
	leaf, err := storage.CreateFolderRecursive(root, "x/y/z", storage.OpenExisting)
	if err != nil {
		t.Fatalf("OpenExisting: %v", err)
	}
	if leaf.Name() != "z" {
		t.Errorf("leaf = %q", leaf.Name())
	}
	items, _ := root.Items()
	if len(items) != 1 {
		t.Errorf("root has %d items, want 1", len(items))
	}
}

func TestCreateFolderRecursiveRenamesEveryLevel(t *testing.T) {
	root := tempRoot(t)
	if _, err := storage.CreateFolderRecursive(root, "p/q", storage.FailIfExists); err != nil {
		t.Fatal(err)
	}
	leaf, err := storage.CreateFolderRecursive(root, "p/q", storage.RenameIfExists)
	if err != nil {
		t.Fatalf("RenameIfExists: %v", err)
	}
	// "p" exists, so a sibling "p_1" is made and "q" is created inside it.
	if _, err := root.Folder("p_1/q"); err != nil {
		t.Errorf("p_1/q missing: %v", err)
	}
	if leaf.Name() != "q" {
		t.Errorf("leaf = %q", leaf.Name())
	}
}

func TestCreateFolderRecursiveEmptyPath(t *testing.T) {
	root := tempRoot(t)
	got, err := storage.CreateFolderRecursive(root, "", storage.FailIfExists)
	if err != nil {
		t.Fatal(err)
	}
	if !storage.SameItem(got, root) {
		t.Error("empty path should return root")
	}
}

func TestCreateFileRecursive(t *testing.T) {
	root := tempRoot(t)
	f, err := storage.CreateFileRecursive(root, "docs/2024/notes.md", storage.OpenExisting)
	if err != nil {
		t.Fatalf("CreateFileRecursive: %v", err)
	}
	if f.Name() != "notes.md" {
		t.Errorf("name = %q", f.Name())
	}
	if _, err := root.File("docs/2024/notes.md"); err != nil {
		t.Errorf("file missing: %v", err)
	}

	for _, p := range []string{"", "/", "dir/"} {
		if _, err := storage.CreateFileRecursive(root, p, storage.OpenExisting); !errors.Is(err, storage.ErrAccess) {
			t.Errorf("CreateFileRecursive(%q) err = %v, want ErrAccess", p, err)
		}
	}
}

func TestLookup(t *testing.T) {
	root := tempRoot(t)
	writeFile(t, root, "f.txt", "x")
	_, _ = root.CreateFolder("d", storage.FailIfExists)

	if it, err := storage.Lookup(root, "f.txt"); err != nil {
		t.Errorf("file: %v", err)
	} else if _, ok := it.(storage.File); !ok {
		t.Errorf("f.txt resolved to %T", it)
	}
	if it, err := storage.Lookup(root, "d"); err != nil {
		t.Errorf("folder: %v", err)
	} else if _, ok := it.(storage.Folder); !ok {
		t.Errorf("d resolved to %T", it)
	}
	if it, _ := storage.Lookup(root, ""); !storage.SameItem(it, root) {
		t.Error("empty path should resolve to root")
	}
	if _, err := storage.Lookup(root, "missing"); !errors.Is(err, storage.ErrAccess) {
		t.Errorf("missing err = %v", err)
	}
}
