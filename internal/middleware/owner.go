package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"cirrus/internal/httputil"
)

// Owner places a fixed owner identity in every request context. It stands in
// for an authentication layer; swap it for one that resolves the caller.
func Owner(ownerID uuid.UUID) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, httputil.WithOwnerID(r, ownerID))
		})
	}
}
