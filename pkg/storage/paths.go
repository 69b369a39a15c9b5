package storage

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// caseInsensitiveHost is true where the default filesystem ignores case.
var caseInsensitiveHost = runtime.GOOS == "windows" || runtime.GOOS == "darwin"

// Extension returns the extension of name without the leading dot.
func Extension(name string) string {
	return trimDot(filepath.Ext(name))
}

// NameWithoutExtension returns the file name with its extension removed.
func NameWithoutExtension(f File) string {
	name := f.Name()
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// RelativePath returns the path of item relative to base.
func RelativePath(item, base Item) (string, error) {
	from, err := base.Path()
	if err != nil {
		return "", err
	}
	to, err := item.Path()
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(from, to)
	if err != nil {
		return "", AccessError("relative path", to, "", err)
	}
	return rel, nil
}

// ContainsItem reports whether folder has a direct child called name.
func ContainsItem(folder Folder, name string) (bool, error) {
	items, err := folder.Items()
	if err != nil {
		return false, err
	}
	for _, it := range items {
		if it.Name() == name {
			return true, nil
		}
	}
	return false, nil
}

// SamePath compares two paths using the host's comparison rules:
// separators and redundant elements are normalised, and case is ignored on
// Windows and macOS.
func SamePath(a, b string) bool {
	a = filepath.Clean(filepath.FromSlash(a))
	b = filepath.Clean(filepath.FromSlash(b))
	if caseInsensitiveHost {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// SameItem reports whether a and b refer to the same entry. Items without
// a path are only equal to themselves.
func SameItem(a, b Item) bool {
	if a == nil || b == nil {
		return a == b
	}
	if !a.HasPath() || !b.HasPath() {
		return a == b
	}
	pa, errA := a.Path()
	pb, errB := b.Path()
	if errA != nil || errB != nil {
		return false
	}
	return SamePath(pa, pb)
}

// IsWithin reports whether path equals base or lies below it.
func IsWithin(path, base string) bool {
	path = filepath.Clean(filepath.FromSlash(path))
	base = filepath.Clean(filepath.FromSlash(base))
	if caseInsensitiveHost {
		path = strings.ToLower(path)
		base = strings.ToLower(base)
	}
	if path == base {
		return true
	}
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator)) && !filepath.IsAbs(rel)
}

// SplitPath breaks a relative path into its non-empty segments. Both '/' and
// the host separator are accepted.
func SplitPath(p string) []string {
	return strings.FieldsFunc(p, func(r rune) bool {
		return r == '/' || r == os.PathSeparator
	})
}

func trimDot(ext string) string {
	return strings.TrimPrefix(ext, ".")
}

func equalFold(a, b string) bool {
	return strings.EqualFold(a, b)
}

// Lookup resolves relPath below root as either a file or a folder. An empty
// path returns root itself.
func Lookup(root Folder, relPath string) (Item, error) {
	if len(SplitPath(relPath)) == 0 {
		return root, nil
	}
	f, err := root.File(relPath)
	if err == nil {
		return f, nil
	}
	if d, derr := root.Folder(relPath); derr == nil {
		return d, nil
	}
	return nil, err
}
