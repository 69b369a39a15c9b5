// Package itemservice coordinates the served root folder and the catalog.
// Every path it accepts is slash-separated and relative to the root; the
// empty path is the root itself.
package itemservice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/starford/storagekit/internal/apperr"
	"github.com/starford/storagekit/internal/catalog"
	"github.com/starford/storagekit/internal/metrics"
	"github.com/starford/storagekit/internal/models"
	"github.com/starford/storagekit/internal/throttle"
	"github.com/starford/storagekit/pkg/storage"
	"github.com/starford/storagekit/pkg/storage/local"
)

// Service coordinates storage and catalog operations.
type Service struct {
	root     storage.Folder
	db       catalog.Catalog
	throttle *throttle.Controller
}

// Option is a functional option for NewService.
type Option func(*Service)

// WithThrottle bounds concurrent transfers and streamed byte rates.
func WithThrottle(c *throttle.Controller) Option {
	return func(s *Service) {
		s.throttle = c
	}
}

// NewService creates a new item service over root.
func NewService(root storage.Folder, db catalog.Catalog, opts ...Option) *Service {
	s := &Service{root: root, db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the served root folder.
func (s *Service) Root() storage.Folder {
	return s.root
}

// List returns the direct children of dir, folders first.
func (s *Service) List(_ context.Context, dir string) ([]models.ItemInfo, error) {
	dir, err := cleanPath(dir)
	if err != nil {
		return nil, err
	}
	folder, err := s.root.Folder(dir)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}
	items, err := folder.Items()
	if err != nil {
		return nil, apperr.FromStorage(err)
	}
	out := make([]models.ItemInfo, 0, len(items))
	for _, it := range items {
		if strings.HasPrefix(it.Name(), local.TempPrefix) {
			continue
		}
		info, err := catalog.Describe(it, joinPath(dir, it.Name()))
		if err != nil {
			return nil, apperr.FromStorage(err)
		}
		out = append(out, info)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsFolder() != out[j].IsFolder() {
			return out[i].IsFolder()
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Stat describes the item at p.
func (s *Service) Stat(_ context.Context, p string) (*models.ItemInfo, error) {
	p, err := cleanPath(p)
	if err != nil {
		return nil, err
	}
	item, err := storage.Lookup(s.root, p)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}
	return s.describe(item, p)
}

// ReadText returns the content of the file at p.
func (s *Service) ReadText(_ context.Context, p string) (string, error) {
	p, err := cleanPath(p)
	if err != nil {
		return "", err
	}
	f, err := s.root.File(p)
	if err != nil {
		return "", apperr.FromStorage(err)
	}
	text, err := f.ReadText()
	if err != nil {
		return "", apperr.FromStorage(err)
	}
	return text, nil
}

// WriteText replaces the content of the file at p, creating it and its
// folders when missing.
func (s *Service) WriteText(_ context.Context, p, text string) (info *models.ItemInfo, err error) {
	defer func() { metrics.RecordOperation("write", err) }()
	p, err = requirePath(p)
	if err != nil {
		return nil, err
	}
	f, err := storage.CreateFileRecursive(s.root, p, storage.OpenExisting)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}
	if err := f.WriteText(text); err != nil {
		return nil, apperr.FromStorage(err)
	}
	return s.refreshed(f)
}

// CreateFile creates the file at p and any missing folders, applying opt
// at every level.
func (s *Service) CreateFile(_ context.Context, p string, opt storage.CollisionOption) (info *models.ItemInfo, err error) {
	defer func() { metrics.RecordOperation("create_file", err) }()
	p, err = requirePath(p)
	if err != nil {
		return nil, err
	}
	if err := validOption(opt); err != nil {
		return nil, err
	}
	f, err := storage.CreateFileRecursive(s.root, p, opt)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}
	return s.refreshed(f)
}

// CreateFolder creates the folder at p and any missing parents, applying
// opt at every level.
func (s *Service) CreateFolder(_ context.Context, p string, opt storage.CollisionOption) (info *models.ItemInfo, err error) {
	defer func() { metrics.RecordOperation("create_folder", err) }()
	p, err = requirePath(p)
	if err != nil {
		return nil, err
	}
	if err := validOption(opt); err != nil {
		return nil, err
	}
	f, err := storage.CreateFolderRecursive(s.root, p, opt)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}
	return s.refreshed(f)
}

// Copy copies the item at src into the folder dstDir. name overrides the
// target name when non-empty.
func (s *Service) Copy(ctx context.Context, src, dstDir string, opt storage.CollisionOption, name string) (info *models.ItemInfo, err error) {
	defer func() { metrics.RecordOperation("copy", err) }()
	item, dst, err := s.transferArgs(ctx, src, dstDir, opt, name)
	if err != nil {
		return nil, err
	}
	release, err := s.throttle.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	out, err := storage.Copy(item, dst, opt, name)
	if err != nil {
		// Partial copies still land on disk.
		_ = catalog.Refresh(s.db, s.root, dstDir)
		return nil, apperr.FromStorage(err)
	}
	return s.refreshed(out)
}

// Move moves the item at src into the folder dstDir. name overrides the
// target name when non-empty.
func (s *Service) Move(ctx context.Context, src, dstDir string, opt storage.CollisionOption, name string) (info *models.ItemInfo, err error) {
	defer func() { metrics.RecordOperation("move", err) }()
	item, dst, err := s.transferArgs(ctx, src, dstDir, opt, name)
	if err != nil {
		return nil, err
	}
	release, err := s.throttle.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	src, _ = cleanPath(src)
	out, err := storage.Move(item, dst, opt, name)
	if err != nil {
		_ = catalog.Refresh(s.db, s.root, dstDir)
		_ = catalog.Refresh(s.db, s.root, src)
		return nil, apperr.FromStorage(err)
	}
	if err := catalog.Refresh(s.db, s.root, src); err != nil {
		return nil, fmt.Errorf("itemservice: refresh catalog: %w", err)
	}
	return s.refreshed(out)
}

// Rename gives the item at p a new name inside its folder.
func (s *Service) Rename(_ context.Context, p, name string) (info *models.ItemInfo, err error) {
	defer func() { metrics.RecordOperation("rename", err) }()
	p, err = requirePath(p)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", apperr.ErrInvalidArgument)
	}
	item, err := storage.Lookup(s.root, p)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}
	if err := item.Rename(name); err != nil {
		return nil, apperr.FromStorage(err)
	}
	if err := catalog.Refresh(s.db, s.root, p); err != nil {
		return nil, fmt.Errorf("itemservice: refresh catalog: %w", err)
	}
	return s.refreshed(item)
}

// Remove deletes the item at p; folders are removed with their content.
func (s *Service) Remove(_ context.Context, p string) (err error) {
	defer func() { metrics.RecordOperation("remove", err) }()
	p, err = requirePath(p)
	if err != nil {
		return err
	}
	item, err := storage.Lookup(s.root, p)
	if err != nil {
		return apperr.FromStorage(err)
	}
	if err := item.Remove(); err != nil {
		return apperr.FromStorage(err)
	}
	return s.db.Delete(p)
}

// Upload streams r into a new file called name inside dir, creating dir
// when missing. opt decides what happens when name is taken.
func (s *Service) Upload(ctx context.Context, dir, name string, r io.Reader, opt storage.CollisionOption) (info *models.ItemInfo, err error) {
	defer func() { metrics.RecordOperation("upload", err) }()
	dir, err = cleanPath(dir)
	if err != nil {
		return nil, err
	}
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("%w: invalid file name %q", apperr.ErrInvalidArgument, name)
	}
	if err := validOption(opt); err != nil {
		return nil, err
	}
	release, err := s.throttle.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	folder, err := storage.CreateFolderRecursive(s.root, dir, storage.OpenExisting)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}
	f, err := folder.CreateFile(name, opt)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}
	cr := &countingReader{r: s.throttle.Reader(ctx, r)}
	werr := writeStream(f, cr)
	metrics.RecordUpload(cr.n)
	if werr != nil {
		return nil, apperr.FromStorage(werr)
	}
	return s.refreshed(f)
}

// Open returns a reader over the file at p together with its description.
// The caller must close the reader.
func (s *Service) Open(ctx context.Context, p string) (io.ReadCloser, *models.ItemInfo, error) {
	p, err := requirePath(p)
	if err != nil {
		return nil, nil, err
	}
	f, err := s.root.File(p)
	if err != nil {
		return nil, nil, apperr.FromStorage(err)
	}
	info, err := s.describe(f, p)
	if err != nil {
		return nil, nil, err
	}
	content, err := f.Open(storage.ModeRead)
	if err != nil {
		return nil, nil, apperr.FromStorage(err)
	}
	rs, err := content.ReadStream()
	if err != nil {
		_ = content.Close()
		return nil, nil, apperr.FromStorage(err)
	}
	return &contentReader{
		countingReader: countingReader{r: s.throttle.Reader(ctx, rs)},
		stream:         rs,
		content:        content,
	}, info, nil
}

// Search matches query against catalogued names and paths.
func (s *Service) Search(_ context.Context, query string, limit int) ([]models.ItemInfo, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is required", apperr.ErrInvalidArgument)
	}
	return s.db.Search(query, limit)
}

// countingReader counts the bytes read through it.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// contentReader closes the content handle together with its stream and
// reports the bytes served.
type contentReader struct {
	countingReader
	stream  io.Closer
	content storage.Content
}

func (c *contentReader) Close() error {
	metrics.RecordDownload(c.n)
	return errors.Join(c.stream.Close(), c.content.Close())
}

func writeStream(f storage.File, r io.Reader) (err error) {
	content, err := f.Open(storage.ModeReadWrite)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := content.Close(); err == nil {
			err = cerr
		}
	}()
	w, err := content.WriteStream()
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, r); err != nil {
		return storage.AccessError("upload", f.Name(), "", err)
	}
	return w.Close()
}

func (s *Service) transferArgs(ctx context.Context, src, dstDir string, opt storage.CollisionOption, name string) (storage.Item, storage.Folder, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	src, err := requirePath(src)
	if err != nil {
		return nil, nil, err
	}
	dstDir, err = cleanPath(dstDir)
	if err != nil {
		return nil, nil, err
	}
	if err := validOption(opt); err != nil {
		return nil, nil, err
	}
	if strings.ContainsAny(name, `/\`) {
		return nil, nil, fmt.Errorf("%w: name %q must not contain separators", apperr.ErrInvalidArgument, name)
	}
	item, err := storage.Lookup(s.root, src)
	if err != nil {
		return nil, nil, apperr.FromStorage(err)
	}
	dst, err := s.root.Folder(dstDir)
	if err != nil {
		return nil, nil, apperr.FromStorage(err)
	}
	return item, dst, nil
}

// refreshed catalogues item and returns its description.
func (s *Service) refreshed(item storage.Item) (*models.ItemInfo, error) {
	rel, err := s.relPath(item)
	if err != nil {
		return nil, err
	}
	if err := catalog.Refresh(s.db, s.root, rel); err != nil {
		return nil, fmt.Errorf("itemservice: refresh catalog: %w", err)
	}
	return s.describe(item, rel)
}

func (s *Service) describe(item storage.Item, rel string) (*models.ItemInfo, error) {
	info, err := catalog.Describe(item, rel)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}
	return &info, nil
}

func (s *Service) relPath(item storage.Item) (string, error) {
	rel, err := storage.RelativePath(item, s.root)
	if err != nil {
		return "", apperr.FromStorage(err)
	}
	rel = filepath.ToSlash(rel)
	if rel == "." {
		rel = ""
	}
	return rel, nil
}

// cleanPath normalises p to the slash form used by the catalog and rejects
// paths that climb out of the root.
func cleanPath(p string) (string, error) {
	var out []string
	for _, seg := range storage.SplitPath(p) {
		switch seg {
		case ".":
			continue
		case "..":
			return "", fmt.Errorf("%w: path %q leaves the root", apperr.ErrInvalidArgument, p)
		}
		out = append(out, seg)
	}
	return strings.Join(out, "/"), nil
}

func requirePath(p string) (string, error) {
	p, err := cleanPath(p)
	if err != nil {
		return "", err
	}
	if p == "" {
		return "", fmt.Errorf("%w: path is required", apperr.ErrInvalidArgument)
	}
	return p, nil
}

func validOption(opt storage.CollisionOption) error {
	if !opt.Valid() {
		return fmt.Errorf("%w: unknown collision option %d", apperr.ErrInvalidArgument, int(opt))
	}
	return nil
}

func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}
