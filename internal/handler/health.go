package handler

import (
	"context"
	"net/http"
	"time"

	"cirrus/internal/httputil"
)

// HealthHandler reports whether the namespace store is reachable
type HealthHandler struct {
	ping func(ctx context.Context) error
}

// NewHealthHandler creates a health handler. ping may be nil.
func NewHealthHandler(ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{ping: ping}
}

// HealthCheck handles GET /health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			httputil.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"error":  err.Error(),
			})
			return
		}
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
