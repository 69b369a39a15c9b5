package api

import (
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/storagekit/internal/itemservice"
	"github.com/starford/storagekit/pkg/storage"
)

const maxUploadBytes = 50 << 20 // 50 MB

// Handler holds API route handlers.
type Handler struct {
	svc       *itemservice.Service
	collision storage.CollisionOption
}

// NewHandler creates a new Handler. collision is used when a request does
// not name a collision option.
func NewHandler(svc *itemservice.Service, collision storage.CollisionOption) *Handler {
	return &Handler{svc: svc, collision: collision}
}

// itemPath extracts the item path from the URL (everything after the route
// prefix). Supports encoded slashes (e.g. docs%2Fa.txt).
func itemPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// option resolves the collision option of a request; parsing already
// happened during validation.
func (h *Handler) option(s string) storage.CollisionOption {
	if s == "" {
		return h.collision
	}
	opt, err := storage.ParseCollisionOption(s)
	if err != nil {
		return h.collision
	}
	return opt
}

// ListItems handles GET /api/items?dir=.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	dir := r.URL.Query().Get("dir")
	items, err := h.svc.List(r.Context(), dir)
	if err != nil {
		writeError(w, "list items", err)
		return
	}
	writeJSON(w, http.StatusOK, ItemListResponse{Dir: dir, Items: items})
}

// GetItem handles GET /api/items/*. With ?content=1 the file text is
// returned instead of the metadata.
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	path := itemPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if wantContent, _ := strconv.ParseBool(r.URL.Query().Get("content")); wantContent {
		text, err := h.svc.ReadText(r.Context(), path)
		if err != nil {
			writeError(w, "read item", err)
			return
		}
		writeJSON(w, http.StatusOK, ContentResponse{Path: path, Content: text})
		return
	}
	info, err := h.svc.Stat(r.Context(), path)
	if err != nil {
		writeError(w, "stat item", err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// WriteItem handles PUT /api/items/*.
func (h *Handler) WriteItem(w http.ResponseWriter, r *http.Request) {
	path := itemPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	var req WriteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	info, err := h.svc.WriteText(r.Context(), path, req.Content)
	if err != nil {
		writeError(w, "write item", err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// RemoveItem handles DELETE /api/items/*.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	path := itemPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.Remove(r.Context(), path); err != nil {
		writeError(w, "remove item", err)
		return
	}
	slog.Debug("item removed", slog.String("path", path))
	w.WriteHeader(http.StatusNoContent)
}

// CreateFile handles POST /api/files.
func (h *Handler) CreateFile(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	info, err := h.svc.CreateFile(r.Context(), req.Path, h.option(req.Collision))
	if err != nil {
		writeError(w, "create file", err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

// CreateFolder handles POST /api/folders.
func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	info, err := h.svc.CreateFolder(r.Context(), req.Path, h.option(req.Collision))
	if err != nil {
		writeError(w, "create folder", err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

// CopyItem handles POST /api/copy.
func (h *Handler) CopyItem(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	info, err := h.svc.Copy(r.Context(), req.Source, req.Destination, h.option(req.Collision), req.Name)
	if err != nil {
		writeError(w, "copy item", err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

// MoveItem handles POST /api/move.
func (h *Handler) MoveItem(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	info, err := h.svc.Move(r.Context(), req.Source, req.Destination, h.option(req.Collision), req.Name)
	if err != nil {
		writeError(w, "move item", err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// RenameItem handles POST /api/rename.
func (h *Handler) RenameItem(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	info, err := h.svc.Rename(r.Context(), req.Path, req.Name)
	if err != nil {
		writeError(w, "rename item", err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// Search handles GET /api/search?q=&limit=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Upload handles POST /api/upload?dir=&collision= (multipart/form-data,
// field "file").
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	opt := h.collision
	if s := r.URL.Query().Get("collision"); s != "" {
		if opt, err = storage.ParseCollisionOption(s); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return
		}
	}

	info, err := h.svc.Upload(r.Context(), r.URL.Query().Get("dir"), header.Filename, file, opt)
	if err != nil {
		writeError(w, "upload", err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

// Download handles GET /api/raw/* and streams the file bytes.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	path := itemPath(r)
	rc, info, err := h.svc.Open(r.Context(), path)
	if err != nil {
		writeError(w, "download", err)
		return
	}
	defer rc.Close()

	ctype := mime.TypeByExtension("." + info.FileType)
	if info.FileType == "" || ctype == "" {
		ctype = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("ETag", strconv.Quote(info.Checksum))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		slog.Warn("download interrupted", slog.String("path", path), slog.String("error", err.Error()))
	}
}
