package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/storagekit/internal/apperr"
	"github.com/starford/storagekit/pkg/storage"
)

const maxJSONBody = 10 << 20 // 10 MB

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// writeError maps err to a status code and a client-safe message. Storage
// errors carry absolute paths, so only their detail text is passed on.
func writeError(w http.ResponseWriter, op string, err error) {
	status := apperr.HTTPStatus(err)
	var msg string
	switch status {
	case http.StatusBadRequest:
		msg = err.Error()
	case http.StatusUnauthorized:
		msg = "unauthorized"
	case http.StatusNotFound:
		msg = "not found"
	case http.StatusConflict:
		msg = "already exists"
	case http.StatusForbidden:
		msg = "forbidden"
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	var se *storage.Error
	if errors.As(err, &se) && se.Msg != "" && status != http.StatusBadRequest {
		msg += ": " + se.Msg
	}
	slog.Debug(op+" rejected", slog.Int("status", status), slog.String("error", err.Error()))
	writeJSON(w, status, errorBody(msg))
}

// decodeJSON reads a JSON body into v and validates it when v implements
// Validate. It writes the 400 response itself and reports false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	if vv, ok := v.(interface{ Validate() error }); ok {
		if err := vv.Validate(); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return false
		}
	}
	return true
}
