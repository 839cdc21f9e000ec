package httputil

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// Context key type to avoid collisions
type contextKey string

const (
	ownerIDKey contextKey = "ownerID"
)

// WithOwnerID adds the owner identity to the request context
func WithOwnerID(r *http.Request, ownerID uuid.UUID) *http.Request {
	ctx := context.WithValue(r.Context(), ownerIDKey, ownerID)
	return r.WithContext(ctx)
}

// GetOwnerID retrieves the owner identity from context
func GetOwnerID(r *http.Request) (uuid.UUID, bool) {
	ownerID, ok := r.Context().Value(ownerIDKey).(uuid.UUID)
	return ownerID, ok && ownerID != uuid.Nil
}
