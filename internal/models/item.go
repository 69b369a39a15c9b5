// Package models defines the domain types shared by the catalog, the item
// service and the outer surfaces.
package models

import "time"

// Item kinds.
const (
	KindFile   = "file"
	KindFolder = "folder"
)

// ItemInfo describes one file or folder below the served root.
type ItemInfo struct {
	Path      string    `json:"path"` // slash-separated, relative to the root
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	FileType  string    `json:"file_type,omitempty"`
	Size      int64     `json:"size"`
	Checksum  string    `json:"checksum,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsFolder reports whether the item is a folder.
func (i ItemInfo) IsFolder() bool {
	return i.Kind == KindFolder
}
