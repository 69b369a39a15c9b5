package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/storagekit/internal/itemservice"
	"github.com/starford/storagekit/pkg/storage"
)

// NewRouter creates a chi router with all API routes mounted.
// collision is the option used when a request names none.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *itemservice.Service, collision storage.CollisionOption, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, collision)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Items.
	r.Get("/items", h.ListItems)
	r.Get("/items/*", h.GetItem)
	r.Put("/items/*", h.WriteItem)
	r.Delete("/items/*", h.RemoveItem)

	// Creation and transfer.
	r.Post("/files", h.CreateFile)
	r.Post("/folders", h.CreateFolder)
	r.Post("/copy", h.CopyItem)
	r.Post("/move", h.MoveItem)
	r.Post("/rename", h.RenameItem)

	// Raw bytes.
	r.Post("/upload", h.Upload)
	r.Get("/raw/*", h.Download)

	// Search.
	r.Get("/search", h.Search)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
