package itemservice

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/storagekit/internal/apperr"
	"github.com/starford/storagekit/internal/catalog"
	"github.com/starford/storagekit/internal/testutil"
	"github.com/starford/storagekit/internal/throttle"
	"github.com/starford/storagekit/pkg/storage"
)

func testService(t *testing.T) (*Service, *catalog.DB, string) {
	t.Helper()
	dir, root := testutil.TestRoot(t)
	db := testutil.TestDB(t)
	return NewService(root, db), db, dir
}

func TestWriteAndReadText(t *testing.T) {
	svc, db, dir := testService(t)
	ctx := context.Background()

	info, err := svc.WriteText(ctx, "docs/hello.txt", "hello")
	if err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if info.Path != "docs/hello.txt" || info.Size != 5 || info.Kind != "file" {
		t.Errorf("info = %+v", info)
	}
	if _, err := os.Stat(filepath.Join(dir, "docs", "hello.txt")); err != nil {
		t.Errorf("file not on disk: %v", err)
	}
	text, err := svc.ReadText(ctx, "docs/hello.txt")
	if err != nil || text != "hello" {
		t.Errorf("ReadText = %q, %v", text, err)
	}
	if _, err := db.Get("docs"); err != nil {
		t.Errorf("parent folder not catalogued: %v", err)
	}
	row, err := db.Get("docs/hello.txt")
	if err != nil || row.Checksum != info.Checksum {
		t.Errorf("catalog row = %+v, %v", row, err)
	}
}

func TestReadMissing(t *testing.T) {
	svc, _, _ := testService(t)
	if _, err := svc.ReadText(context.Background(), "nope.txt"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestPathEscapeRejected(t *testing.T) {
	svc, _, _ := testService(t)
	ctx := context.Background()
	if _, err := svc.ReadText(ctx, "../etc/passwd"); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("read err = %v", err)
	}
	if _, err := svc.WriteText(ctx, "a/../../x", "x"); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("write err = %v", err)
	}
	if err := svc.Remove(ctx, ""); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("remove root err = %v", err)
	}
}

func TestCreateFileCollisions(t *testing.T) {
	svc, _, _ := testService(t)
	ctx := context.Background()

	if _, err := svc.CreateFile(ctx, "a/b.txt", storage.FailIfExists); err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	_, err := svc.CreateFile(ctx, "a/b.txt", storage.FailIfExists)
	if !errors.Is(err, apperr.ErrAlreadyExists) || !errors.Is(err, storage.ErrConflict) {
		t.Errorf("second create err = %v", err)
	}
	if got := apperr.HTTPStatus(err); got != 409 {
		t.Errorf("status = %d", got)
	}

	info, err := svc.CreateFile(ctx, "c.txt", storage.FailIfExists)
	if err != nil {
		t.Fatal(err)
	}
	info, err = svc.CreateFile(ctx, "c.txt", storage.RenameIfExists)
	if err != nil {
		t.Fatalf("rename create: %v", err)
	}
	if info.Path != "c.txt_1" {
		t.Errorf("renamed path = %q", info.Path)
	}

	if _, err := svc.CreateFile(ctx, "d.txt", storage.CollisionOption(9)); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("bad option err = %v", err)
	}
}

func TestCreateFolderAndList(t *testing.T) {
	svc, _, _ := testService(t)
	ctx := context.Background()

	if _, err := svc.CreateFolder(ctx, "x/y/z", storage.FailIfExists); err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}
	_, _ = svc.WriteText(ctx, "x/file.txt", "f")

	items, err := svc.List(ctx, "x")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 || items[0].Path != "x/y" || items[1].Path != "x/file.txt" {
		t.Errorf("items = %+v", items)
	}
	if _, err := svc.List(ctx, "x/file.txt"); err == nil {
		t.Error("listing a file should fail")
	}
}

func TestCopyAndMove(t *testing.T) {
	svc, db, _ := testService(t)
	ctx := context.Background()

	_, _ = svc.WriteText(ctx, "src/one.txt", "1")
	_, _ = svc.WriteText(ctx, "src/sub/two.txt", "2")
	_, _ = svc.CreateFolder(ctx, "dst", storage.FailIfExists)

	info, err := svc.Copy(ctx, "src", "dst", storage.FailIfExists, "")
	if err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if info.Path != "dst/src" || !info.IsFolder() {
		t.Errorf("copy info = %+v", info)
	}
	if text, _ := svc.ReadText(ctx, "dst/src/sub/two.txt"); text != "2" {
		t.Errorf("copied content = %q", text)
	}
	if _, err := db.Get("dst/src/sub/two.txt"); err != nil {
		t.Errorf("copy not catalogued: %v", err)
	}

	info, err = svc.Move(ctx, "src/one.txt", "", storage.FailIfExists, "moved.txt")
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if info.Path != "moved.txt" {
		t.Errorf("move path = %q", info.Path)
	}
	if _, err := db.Get("src/one.txt"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("moved source still catalogued: %v", err)
	}
	if _, err := svc.Copy(ctx, "src", "src/sub", storage.FailIfExists, ""); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("copy into itself err = %v", err)
	}
}

func TestMoveOverwriteOntoSourceRefused(t *testing.T) {
	svc, _, _ := testService(t)
	ctx := context.Background()
	_, _ = svc.WriteText(ctx, "docs/a.txt", "doc")

	if _, err := svc.Move(ctx, "docs", "", storage.Overwrite, ""); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
	if text, err := svc.ReadText(ctx, "docs/a.txt"); err != nil || text != "doc" {
		t.Errorf("source after refused move = %q, %v", text, err)
	}
}

func TestRename(t *testing.T) {
	svc, db, _ := testService(t)
	ctx := context.Background()
	_, _ = svc.WriteText(ctx, "dir/a.txt", "a")

	info, err := svc.Rename(ctx, "dir", "renamed")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if info.Path != "renamed" {
		t.Errorf("path = %q", info.Path)
	}
	if _, err := db.Get("dir/a.txt"); err == nil {
		t.Error("old child still catalogued")
	}
	if _, err := db.Get("renamed/a.txt"); err != nil {
		t.Errorf("new child missing: %v", err)
	}

	_, _ = svc.WriteText(ctx, "b.txt", "b")
	if _, err := svc.Rename(ctx, "b.txt", "renamed"); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("rename onto existing err = %v", err)
	}
}

func TestRemoveAndSearch(t *testing.T) {
	svc, _, _ := testService(t)
	ctx := context.Background()
	_, _ = svc.WriteText(ctx, "reports/q1-report.csv", "x")
	_, _ = svc.WriteText(ctx, "reports/q2-report.csv", "y")

	hits, err := svc.Search(ctx, "q1", 10)
	if err != nil || len(hits) != 1 || hits[0].Path != "reports/q1-report.csv" {
		t.Errorf("Search = %+v, %v", hits, err)
	}
	if err := svc.Remove(ctx, "reports"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	hits, _ = svc.Search(ctx, "report", 10)
	if len(hits) != 0 {
		t.Errorf("removed items still found: %+v", hits)
	}
	if err := svc.Remove(ctx, "reports"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second remove err = %v", err)
	}
	if _, err := svc.Search(ctx, " ", 10); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("empty query err = %v", err)
	}
}

func TestUploadAndOpen(t *testing.T) {
	svc, db, _ := testService(t)
	ctx := context.Background()

	info, err := svc.Upload(ctx, "inbox", "data.bin", strings.NewReader("binary\x00body"), storage.FailIfExists)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if info.Path != "inbox/data.bin" || info.Size != 11 {
		t.Errorf("info = %+v", info)
	}
	if _, err := db.Get("inbox/data.bin"); err != nil {
		t.Errorf("upload not catalogued: %v", err)
	}

	again, err := svc.Upload(ctx, "inbox", "data.bin", strings.NewReader("second"), storage.RenameIfExists)
	if err != nil || again.Path != "inbox/data.bin_1" {
		t.Errorf("second upload = %+v, %v", again, err)
	}

	rc, meta, err := svc.Open(ctx, "inbox/data.bin")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	if err := rc.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if string(data) != "binary\x00body" || meta.Name != "data.bin" {
		t.Errorf("data = %q meta = %+v", data, meta)
	}

	if _, err := svc.Upload(ctx, "", "../x", strings.NewReader(""), storage.FailIfExists); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("bad name err = %v", err)
	}
}

func TestThrottledTransfers(t *testing.T) {
	dir, root := testutil.TestRoot(t)
	db := testutil.TestDB(t)
	limits := throttle.New(throttle.Config{MaxTransfers: 1, IOLimitBytesPerSec: 1 << 20})
	svc := NewService(root, db, WithThrottle(limits))
	ctx := context.Background()

	if _, err := svc.Upload(ctx, "", "big.bin", strings.NewReader(strings.Repeat("z", 4096)), storage.FailIfExists); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if _, err := svc.Copy(ctx, "big.bin", "", storage.RenameIfExists, ""); err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "big.bin_1")); err != nil {
		t.Errorf("copy missing: %v", err)
	}

	// A held slot blocks the next transfer until its context gives up.
	release, err := limits.Acquire(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer release()
	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if _, err := svc.Move(short, "big.bin", "", storage.RenameIfExists, "moved.bin"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Move with no free slot err = %v", err)
	}
}
