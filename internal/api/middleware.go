// Package api implements the storagekit REST API using chi.
package api

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/starford/storagekit/internal/apperr"
)

const authRealm = "storagekit"

// AuthMiddleware returns middleware that checks the Bearer token of every
// request against token. With enabled false all requests pass through.
// Rejected requests get a 401 with a WWW-Authenticate challenge.
func AuthMiddleware(enabled bool, token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		want := []byte(token)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := bearerToken(r)
			if !ok || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				w.Header().Set("WWW-Authenticate", fmt.Sprintf(`Bearer realm=%q`, authRealm))
				writeError(w, "authenticate "+r.URL.Path, apperr.ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token of an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
