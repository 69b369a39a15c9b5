package storage

import (
	"os"
	"strings"
)

// CreateFolderRecursive creates every folder along path below root and
// returns the deepest one. opt is applied at every level, so with
// RenameIfExists an existing intermediate folder is not reused: a renamed
// sibling is created instead. Use OpenExisting to reuse existing levels.
func CreateFolderRecursive(root Folder, path string, opt CollisionOption) (Folder, error) {
	cur := root
	for _, seg := range SplitPath(path) {
		next, err := cur.CreateFolder(seg, opt)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// CreateFileRecursive creates the folders of path with
// CreateFolderRecursive and then the file itself, all with opt.
func CreateFileRecursive(root Folder, path string, opt CollisionOption) (File, error) {
	segs := SplitPath(path)
	if len(segs) == 0 || strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(os.PathSeparator)) {
		return nil, AccessError("create file", path, "file name is empty", nil)
	}
	dir, err := CreateFolderRecursive(root, strings.Join(segs[:len(segs)-1], "/"), opt)
	if err != nil {
		return nil, err
	}
	return dir.CreateFile(segs[len(segs)-1], opt)
}
