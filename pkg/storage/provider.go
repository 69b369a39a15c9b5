package storage

import "context"

// Provider resolves the root of a provider-specific namespace.
type Provider interface {
	// Initialized reports whether Initialize has succeeded.
	Initialized() bool
	// Initialize prepares the provider. Calling it again after success is a
	// no-op that returns true.
	Initialize() (bool, error)
	// Root returns the root folder of the namespace.
	Root() (Folder, error)
}

// Service exposes platform-assigned folders and user-driven pickers.
//
// The Request methods return (nil, nil) when the user cancels. Any other
// failure is reported as an ErrAccess error.
type Service interface {
	AppDataFolder() Folder
	TempFolder() Folder
	RequestFileOpen(ctx context.Context, settings DialogSettings) (File, error)
	RequestFileSave(ctx context.Context, settings DialogSettings) (File, error)
	RequestFolder(ctx context.Context, settings DialogSettings) (Folder, error)
}

// DialogSettings configures a picker.
type DialogSettings struct {
	// OverrideSelectText replaces the confirm label when non-empty.
	OverrideSelectText string
	// ShownFileTypes restricts the picker to these extensions (without the
	// leading dot). Empty means no filter.
	ShownFileTypes []string
}

// Accepts reports whether a file named name passes the file type filter.
func (s DialogSettings) Accepts(name string) bool {
	if len(s.ShownFileTypes) == 0 {
		return true
	}
	ext := Extension(name)
	for _, t := range s.ShownFileTypes {
		if t == "*" || equalFold(trimDot(t), ext) {
			return true
		}
	}
	return false
}
