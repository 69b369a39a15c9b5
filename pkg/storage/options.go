package storage

import (
	"fmt"
	"strings"
)

// OpenMode describes what a Content handle may do.
type OpenMode int

// Open modes.
const (
	ModeRead OpenMode = iota
	ModeReadWrite
)

// String returns the mode name.
func (m OpenMode) String() string {
	switch m {
	case ModeRead:
		return "read"
	case ModeReadWrite:
		return "read-write"
	default:
		return fmt.Sprintf("OpenMode(%d)", int(m))
	}
}

// CanRead reports whether read streams are allowed.
func (m OpenMode) CanRead() bool {
	return m == ModeRead || m == ModeReadWrite
}

// CanWrite reports whether write streams are allowed.
func (m OpenMode) CanWrite() bool {
	return m == ModeReadWrite
}

// CollisionOption selects what happens when a created item already exists.
type CollisionOption int

// Collision options. The numeric values are stable.
const (
	// FailIfExists fails with ErrConflict.
	FailIfExists CollisionOption = 0
	// RenameIfExists picks the first free name among name_1, name_2, ...
	RenameIfExists CollisionOption = 1
	// Overwrite removes the existing item and creates a fresh one.
	Overwrite CollisionOption = 2
	// OpenExisting returns the existing item untouched.
	OpenExisting CollisionOption = 3
)

var collisionNames = map[CollisionOption]string{
	FailIfExists:   "fail",
	RenameIfExists: "rename",
	Overwrite:      "overwrite",
	OpenExisting:   "open",
}

// CollisionNames lists the accepted textual forms in numeric order.
func CollisionNames() []string {
	return []string{"fail", "rename", "overwrite", "open"}
}

// String returns the short textual form used by configuration and APIs.
func (o CollisionOption) String() string {
	if s, ok := collisionNames[o]; ok {
		return s
	}
	return fmt.Sprintf("CollisionOption(%d)", int(o))
}

// Valid reports whether o is one of the defined options.
func (o CollisionOption) Valid() bool {
	_, ok := collisionNames[o]
	return ok
}

// ParseCollisionOption parses a textual collision option. Both the short
// forms ("rename") and the long ones ("RenameIfExists") are accepted,
// case-insensitively.
func ParseCollisionOption(s string) (CollisionOption, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fail", "failifexists":
		return FailIfExists, nil
	case "rename", "renameifexists":
		return RenameIfExists, nil
	case "overwrite":
		return Overwrite, nil
	case "open", "openexisting":
		return OpenExisting, nil
	}
	return 0, fmt.Errorf("storage: unknown collision option %q", s)
}
