// Package apperr defines application-level error sentinels shared by the
// service, API and MCP layers.
package apperr

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/starford/storagekit/pkg/storage"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrAlreadyExists   = errors.New("already exists")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthorized    = errors.New("unauthorized")
)

// FromStorage tags a storage error with the matching application sentinel.
// The original error stays reachable through errors.Is and errors.As.
func FromStorage(err error) error {
	if err == nil {
		return nil
	}
	var sentinel error
	switch {
	case errors.Is(err, storage.ErrConflict):
		sentinel = ErrAlreadyExists
	case errors.Is(err, storage.ErrPermission):
		sentinel = ErrForbidden
	case errors.Is(err, storage.ErrAccess) && errors.Is(err, fs.ErrNotExist):
		sentinel = ErrNotFound
	case errors.Is(err, storage.ErrAccess):
		sentinel = ErrForbidden
	default:
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}

// HTTPStatus maps err to a response status code.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict), errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
