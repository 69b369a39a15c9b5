package local

import (
	"sync"

	"github.com/starford/storagekit/pkg/storage"
)

var _ storage.Provider = (*Provider)(nil)

// Provider serves a directory on the local disk as a storage root.
type Provider struct {
	path string

	mu   sync.Mutex
	root *Folder
}

// NewProvider creates a provider rooted at path. Nothing touches the disk
// until Initialize is called.
func NewProvider(path string) *Provider {
	return &Provider{path: path}
}

// Initialized reports whether Initialize has succeeded.
func (p *Provider) Initialized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.root != nil
}

// Initialize resolves the root directory, creating it when missing.
func (p *Provider) Initialize() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.root != nil {
		return true, nil
	}
	root, err := NewFolder(p.path)
	if err != nil {
		return false, err
	}
	p.root = root
	return true, nil
}

// Root returns the root folder. The provider must be initialized.
func (p *Provider) Root() (storage.Folder, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.root == nil {
		return nil, storage.AccessError("root", p.path, "provider is not initialized", nil)
	}
	return &Folder{path: p.root.path}, nil
}
