package local

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/starford/storagekit/pkg/storage"
)

func tempRoot(t *testing.T) *Folder {
	t.Helper()
	root, err := NewFolder(t.TempDir())
	if err != nil {
		t.Fatalf("NewFolder: %v", err)
	}
	return root
}

func names(t *testing.T, f storage.Folder) []string {
	t.Helper()
	items, err := f.Items()
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name())
	}
	sort.Strings(out)
	return out
}

func TestNewFolderCreatesMissingDirs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	f, err := NewFolder(dir)
	if err != nil {
		t.Fatalf("NewFolder: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("folder not created: %v", err)
	}
	if f.Name() != "b" {
		t.Errorf("name = %q", f.Name())
	}
}

func TestNewFolder_FileNotDir(t *testing.T) {
	p := filepath.Join(t.TempDir(), "plain")
	_ = os.WriteFile(p, []byte("x"), 0o644)
	_, err := NewFolder(p)
	if !errors.Is(err, storage.ErrAccess) {
		t.Errorf("err = %v, want ErrAccess", err)
	}
}

func TestCreateFile_FailIfExists(t *testing.T) {
	root := tempRoot(t)
	if _, err := root.CreateFile("a.txt", storage.FailIfExists); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := root.CreateFile("a.txt", storage.FailIfExists)
	if !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("second create err = %v, want ErrConflict", err)
	}
}

func TestCreateFile_RenameIfExistsSequence(t *testing.T) {
	root := tempRoot(t)
	const n = 4
	var files []storage.File
	for i := 0; i < n; i++ {
		f, err := root.CreateFile("log", storage.RenameIfExists)
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		files = append(files, f)
	}
	want := []string{"log", "log_1", "log_2", "log_3"}
	for i, f := range files {
		if f.Name() != want[i] {
			t.Errorf("file %d name = %q, want %q", i, f.Name(), want[i])
		}
		if err := f.WriteText(want[i]); err != nil {
			t.Fatalf("WriteText: %v", err)
		}
	}
	for i, f := range files {
		got, err := f.ReadText()
		if err != nil {
			t.Fatalf("ReadText: %v", err)
		}
		if got != want[i] {
			t.Errorf("content = %q, want %q", got, want[i])
		}
	}
}

func TestCreateFile_OpenExistingKeepsContent(t *testing.T) {
	root := tempRoot(t)
	f, err := root.CreateFile("keep.txt", storage.FailIfExists)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.WriteText("precious"); err != nil {
		t.Fatal(err)
	}
	again, err := root.CreateFile("keep.txt", storage.OpenExisting)
	if err != nil {
		t.Fatalf("OpenExisting: %v", err)
	}
	if !f.(*File).Equal(again) {
		t.Error("OpenExisting returned a different file")
	}
	got, _ := again.ReadText()
	if got != "precious" {
		t.Errorf("content = %q", got)
	}
}

func TestCreateFile_OverwriteTruncates(t *testing.T) {
	root := tempRoot(t)
	f, _ := root.CreateFile("o.txt", storage.FailIfExists)
	_ = f.WriteText("old")
	g, err := root.CreateFile("o.txt", storage.Overwrite)
	if err != nil {
		t.Fatalf("Overwrite: %v", err)
	}
	got, _ := g.ReadText()
	if got != "" {
		t.Errorf("content = %q, want empty", got)
	}
}

func TestCreateFile_OverwriteReplacesFolder(t *testing.T) {
	root := tempRoot(t)
	sub, _ := root.CreateFolder("x", storage.FailIfExists)
	_, _ = sub.CreateFile("inner", storage.FailIfExists)
	if _, err := root.CreateFile("x", storage.Overwrite); err != nil {
		t.Fatalf("Overwrite: %v", err)
	}
	if _, err := root.File("x"); err != nil {
		t.Errorf("x should now be a file: %v", err)
	}
}

func TestCreateFile_OpenExistingWrongKind(t *testing.T) {
	root := tempRoot(t)
	_, _ = root.CreateFolder("dir", storage.FailIfExists)
	_, err := root.CreateFile("dir", storage.OpenExisting)
	if !errors.Is(err, storage.ErrAccess) {
		t.Errorf("err = %v, want ErrAccess", err)
	}
}

func TestCreateFile_UnsupportedOption(t *testing.T) {
	root := tempRoot(t)
	// A fresh name is created whatever the option says.
	if _, err := root.CreateFile("n", storage.CollisionOption(42)); err != nil {
		t.Fatalf("fresh create: %v", err)
	}
	_, err := root.CreateFile("n", storage.CollisionOption(42))
	if !errors.Is(err, storage.ErrAccess) {
		t.Errorf("err = %v, want ErrAccess", err)
	}
}

func TestCreateFolder_Collisions(t *testing.T) {
	root := tempRoot(t)
	a, err := root.CreateFolder("a", storage.FailIfExists)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = a.CreateFile("child", storage.FailIfExists)

	if _, err := root.CreateFolder("a", storage.FailIfExists); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("FailIfExists err = %v", err)
	}
	renamed, err := root.CreateFolder("a", storage.RenameIfExists)
	if err != nil || renamed.Name() != "a_1" {
		t.Errorf("RenameIfExists = %v, %v", renamed, err)
	}
	opened, err := root.CreateFolder("a", storage.OpenExisting)
	if err != nil {
		t.Fatal(err)
	}
	if got := names(t, opened); len(got) != 1 || got[0] != "child" {
		t.Errorf("OpenExisting children = %v", got)
	}
	fresh, err := root.CreateFolder("a", storage.Overwrite)
	if err != nil {
		t.Fatal(err)
	}
	if got := names(t, fresh); len(got) != 0 {
		t.Errorf("Overwrite children = %v", got)
	}
}

func TestItemsSnapshot(t *testing.T) {
	root := tempRoot(t)
	_, _ = root.CreateFile("f1.txt", storage.FailIfExists)
	_, _ = root.CreateFile("f2.md", storage.FailIfExists)
	_, _ = root.CreateFolder("sub", storage.FailIfExists)

	items, err := root.Items()
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	var files, folders int
	for _, it := range items {
		switch it.(type) {
		case storage.File:
			files++
		case storage.Folder:
			folders++
		}
	}
	if files != 2 || folders != 1 {
		t.Errorf("files = %d, folders = %d", files, folders)
	}
}

func TestItemsSymlinkToDir(t *testing.T) {
	root := tempRoot(t)
	target := t.TempDir()
	if err := os.Symlink(target, filepath.Join(root.path, "link")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	items, err := root.Items()
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("len = %d", len(items))
	}
	if _, ok := items[0].(storage.Folder); !ok {
		t.Errorf("symlink to dir listed as %T", items[0])
	}
}

func TestGetFileAndFolder(t *testing.T) {
	root := tempRoot(t)
	sub, _ := root.CreateFolder("sub", storage.FailIfExists)
	_, _ = sub.CreateFile("x.txt", storage.FailIfExists)

	f, err := root.File("sub/x.txt")
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if f.Name() != "x.txt" || f.FileType() != "txt" {
		t.Errorf("name = %q type = %q", f.Name(), f.FileType())
	}
	if _, err := root.Folder("sub"); err != nil {
		t.Errorf("Folder: %v", err)
	}
	if _, err := root.File("sub"); !errors.Is(err, storage.ErrAccess) {
		t.Errorf("File on folder err = %v", err)
	}
	if _, err := root.Folder("sub/x.txt"); !errors.Is(err, storage.ErrAccess) {
		t.Errorf("Folder on file err = %v", err)
	}
}

func TestGetMissingIsAccessError(t *testing.T) {
	root := tempRoot(t)
	_, err := root.File("nope.txt")
	if !errors.Is(err, storage.ErrAccess) {
		t.Fatalf("err = %v, want ErrAccess", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("cause should stay visible: %v", err)
	}
	if _, err := root.Folder("nope"); !errors.Is(err, storage.ErrAccess) {
		t.Errorf("Folder err = %v", err)
	}
}

func TestTraversalBlocked(t *testing.T) {
	root := tempRoot(t)
	cases := []string{
		"../../etc/passwd",
		"../outside.txt",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := root.File(p); !errors.Is(err, storage.ErrAccess) {
			t.Errorf("File(%q) err = %v", p, err)
		}
		if _, err := root.CreateFile(p, storage.OpenExisting); !errors.Is(err, storage.ErrAccess) {
			t.Errorf("CreateFile(%q) err = %v", p, err)
		}
	}
}

func TestRemoveFolderRecursive(t *testing.T) {
	root := tempRoot(t)
	sub, _ := root.CreateFolder("tree", storage.FailIfExists)
	inner, _ := sub.CreateFolder("inner", storage.FailIfExists)
	_, _ = inner.CreateFile("leaf.txt", storage.FailIfExists)
	_, _ = sub.CreateFile("top.txt", storage.FailIfExists)

	if err := sub.Remove(); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	for _, p := range []string{"tree/top.txt", "tree/inner/leaf.txt"} {
		if _, err := root.File(p); !errors.Is(err, storage.ErrAccess) {
			t.Errorf("File(%q) after remove err = %v", p, err)
		}
	}
	if _, err := root.Folder("tree/inner"); !errors.Is(err, storage.ErrAccess) {
		t.Errorf("Folder after remove err = %v", err)
	}
}

func TestRemoveMissingFolder(t *testing.T) {
	root := tempRoot(t)
	sub, _ := root.CreateFolder("gone", storage.FailIfExists)
	_ = os.RemoveAll(sub.(*Folder).path)
	if err := sub.Remove(); !errors.Is(err, storage.ErrAccess) {
		t.Errorf("err = %v, want ErrAccess", err)
	}
}

func TestRenameFolder(t *testing.T) {
	root := tempRoot(t)
	sub, _ := root.CreateFolder("before", storage.FailIfExists)
	f, _ := sub.CreateFile("data.txt", storage.FailIfExists)
	_ = f.WriteText("kept")

	if err := sub.Rename("after"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if sub.Name() != "after" {
		t.Errorf("reference name = %q", sub.Name())
	}
	if _, err := root.Folder("before"); err == nil {
		t.Error("old folder still exists")
	}
	moved, err := root.File("after/data.txt")
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if got, _ := moved.ReadText(); got != "kept" {
		t.Errorf("content = %q", got)
	}
}

func TestRenameFolderConflict(t *testing.T) {
	root := tempRoot(t)
	a, _ := root.CreateFolder("a", storage.FailIfExists)
	_, _ = root.CreateFolder("b", storage.FailIfExists)
	if err := a.Rename("b"); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("err = %v, want ErrConflict", err)
	}
	if _, err := root.Folder("a"); err != nil {
		t.Errorf("source must survive a failed rename: %v", err)
	}
}

func TestRenameRootFails(t *testing.T) {
	root := &Folder{path: string(filepath.Separator)}
	if err := root.Rename("x"); !errors.Is(err, storage.ErrAccess) {
		t.Errorf("err = %v, want ErrAccess", err)
	}
}

func TestFolderEqual(t *testing.T) {
	root := tempRoot(t)
	a, _ := root.CreateFolder("eq", storage.FailIfExists)
	b, _ := root.Folder("eq")
	c, _ := NewFolder(filepath.Join(root.path, "sub", "..", "eq"))
	if !a.(*Folder).Equal(b) || !a.(*Folder).Equal(c) {
		t.Error("references to the same path should be equal")
	}
	other, _ := root.CreateFolder("other", storage.FailIfExists)
	if a.(*Folder).Equal(other) {
		t.Error("different folders compare equal")
	}
}
