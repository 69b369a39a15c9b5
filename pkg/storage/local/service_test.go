package local

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/storagekit/pkg/storage"
)

// stubPrompter answers every prompt with a fixed result.
type stubPrompter struct {
	path string
	ok   bool
	err  error

	kinds []PromptKind
}

func (p *stubPrompter) Prompt(_ context.Context, kind PromptKind, _ storage.DialogSettings) (string, bool, error) {
	p.kinds = append(p.kinds, kind)
	return p.path, p.ok, p.err
}

func testService(t *testing.T, p Prompter) *Service {
	t.Helper()
	base := t.TempDir()
	svc, err := NewService("storagekit-test", p,
		WithAppDataPath(filepath.Join(base, "appdata")),
		WithTempPath(filepath.Join(base, "tmp")),
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestServiceFolders(t *testing.T) {
	svc := testService(t, nil)
	for _, f := range []storage.Folder{svc.AppDataFolder(), svc.TempFolder()} {
		p, _ := f.Path()
		if info, err := os.Stat(p); err != nil || !info.IsDir() {
			t.Errorf("%s not created: %v", p, err)
		}
	}
	if svc.AppDataFolder().Name() != "appdata" {
		t.Errorf("app data = %q", svc.AppDataFolder().Name())
	}
}

func TestServiceRequiresAppName(t *testing.T) {
	if _, err := NewService("", nil); err == nil {
		t.Error("expected error for empty app name")
	}
}

func TestRequestFileOpen(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "doc.md")
	_ = os.WriteFile(p, []byte("# doc"), 0o644)

	stub := &stubPrompter{path: p, ok: true}
	svc := testService(t, stub)
	f, err := svc.RequestFileOpen(context.Background(), storage.DialogSettings{ShownFileTypes: []string{".md"}})
	if err != nil {
		t.Fatalf("RequestFileOpen: %v", err)
	}
	if f.Name() != "doc.md" {
		t.Errorf("name = %q", f.Name())
	}
	if len(stub.kinds) != 1 || stub.kinds[0] != PromptOpenFile {
		t.Errorf("kinds = %v", stub.kinds)
	}

	if _, err := svc.RequestFileOpen(context.Background(), storage.DialogSettings{ShownFileTypes: []string{"txt"}}); !errors.Is(err, storage.ErrAccess) {
		t.Errorf("filtered type err = %v", err)
	}
}

func TestRequestFileOpenMissing(t *testing.T) {
	svc := testService(t, &stubPrompter{path: filepath.Join(t.TempDir(), "nope"), ok: true})
	if _, err := svc.RequestFileOpen(context.Background(), storage.DialogSettings{}); !errors.Is(err, storage.ErrAccess) {
		t.Errorf("err = %v, want ErrAccess", err)
	}
}

func TestRequestCancelled(t *testing.T) {
	svc := testService(t, &stubPrompter{ok: false})
	f, err := svc.RequestFileOpen(context.Background(), storage.DialogSettings{})
	if err != nil || f != nil {
		t.Errorf("cancel = %v, %v", f, err)
	}
	folder, err := svc.RequestFolder(context.Background(), storage.DialogSettings{})
	if err != nil || folder != nil {
		t.Errorf("cancel folder = %v, %v", folder, err)
	}

	svc = testService(t, &stubPrompter{err: context.Canceled})
	if f, err := svc.RequestFileSave(context.Background(), storage.DialogSettings{}); err != nil || f != nil {
		t.Errorf("context cancel = %v, %v", f, err)
	}
}

func TestRequestPrompterFailure(t *testing.T) {
	svc := testService(t, &stubPrompter{err: errors.New("display unavailable")})
	_, err := svc.RequestFolder(context.Background(), storage.DialogSettings{})
	if !errors.Is(err, storage.ErrAccess) {
		t.Errorf("err = %v, want ErrAccess", err)
	}
}

func TestRequestFileSaveCreatesWithDefaultType(t *testing.T) {
	dir := t.TempDir()
	svc := testService(t, &stubPrompter{path: filepath.Join(dir, "report"), ok: true})
	f, err := svc.RequestFileSave(context.Background(), storage.DialogSettings{ShownFileTypes: []string{"csv", "txt"}})
	if err != nil {
		t.Fatalf("RequestFileSave: %v", err)
	}
	if f.Name() != "report.csv" {
		t.Errorf("name = %q", f.Name())
	}
	if _, err := os.Stat(filepath.Join(dir, "report.csv")); err != nil {
		t.Errorf("file not created: %v", err)
	}
}

func TestRequestFolder(t *testing.T) {
	dir := t.TempDir()
	svc := testService(t, &stubPrompter{path: dir, ok: true})
	f, err := svc.RequestFolder(context.Background(), storage.DialogSettings{})
	if err != nil {
		t.Fatalf("RequestFolder: %v", err)
	}
	p, _ := f.Path()
	if !storage.SamePath(p, dir) {
		t.Errorf("path = %q", p)
	}
}

func TestProviderLifecycle(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "root")
	p := NewProvider(dir)
	if p.Initialized() {
		t.Fatal("initialized before Initialize")
	}
	if _, err := p.Root(); !errors.Is(err, storage.ErrAccess) {
		t.Errorf("Root before init err = %v", err)
	}
	for i := 0; i < 2; i++ {
		ok, err := p.Initialize()
		if err != nil || !ok {
			t.Fatalf("Initialize #%d = %v, %v", i, ok, err)
		}
	}
	root, err := p.Root()
	if err != nil {
		t.Fatal(err)
	}
	if root.Name() != "root" {
		t.Errorf("root name = %q", root.Name())
	}
}
