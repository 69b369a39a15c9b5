package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/storagekit/internal/models"
	"github.com/starford/storagekit/pkg/storage"
)

// ItemInfo is the item response type (aliased from the domain layer).
type ItemInfo = models.ItemInfo

// ItemListResponse wraps a folder listing.
type ItemListResponse struct {
	Dir   string     `json:"dir"`
	Items []ItemInfo `json:"items"`
}

// ContentResponse carries the text of a file.
type ContentResponse struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []ItemInfo `json:"results"`
}

// WriteRequest is the request body for replacing a file's text.
type WriteRequest struct {
	Content string `json:"content"`
}

// CreateRequest is the request body for POST /files and POST /folders.
type CreateRequest struct {
	Path      string `json:"path"`
	Collision string `json:"collision,omitempty"`
}

// Validate validates the request.
func (r *CreateRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Path, validation.Required),
		validation.Field(&r.Collision, collisionRule),
	)
}

// TransferRequest is the request body for POST /copy and POST /move. An
// empty destination is the root.
type TransferRequest struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Collision   string `json:"collision,omitempty"`
	Name        string `json:"name,omitempty"`
}

// Validate validates the request.
func (r *TransferRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Source, validation.Required),
		validation.Field(&r.Collision, collisionRule),
	)
}

// RenameRequest is the request body for POST /rename.
type RenameRequest struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// Validate validates the request.
func (r *RenameRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Path, validation.Required),
		validation.Field(&r.Name, validation.Required),
	)
}

// collisionRule accepts an empty value or any textual collision option.
var collisionRule = validation.By(func(v any) error {
	s, _ := v.(string)
	if s == "" {
		return nil
	}
	_, err := storage.ParseCollisionOption(s)
	return err
})
