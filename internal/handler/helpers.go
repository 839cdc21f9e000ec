package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"cirrus/internal/domain"
	"cirrus/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	status, detail, extras := errorResponse(err)
	httputil.RespondErrorWithExtras(w, status, detail, extras)
}

// errorResponse maps an error to status, detail and extra problem fields
func errorResponse(err error) (int, string, map[string]interface{}) {
	var conflictErr *domain.ConflictError

	switch {
	case errors.As(err, &conflictErr):
		extras := map[string]interface{}{"resource_type": conflictErr.ResourceType}
		if conflictErr.ResourceID != "" {
			extras["resource_id"] = conflictErr.ResourceID
		}
		return http.StatusConflict, conflictErr.Error(), extras
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, err.Error(), nil
	// storage failures may wrap a not-found from the backend; check them first
	case errors.Is(err, domain.ErrStorage):
		slog.Error("storage failure", "error", err)
		return http.StatusServiceUnavailable, "storage temporarily unavailable", nil
	case errors.Is(err, domain.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, err.Error(), nil
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, err.Error(), nil
	case errors.Is(err, domain.ErrInvalidOperation):
		return http.StatusUnprocessableEntity, err.Error(), nil
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, err.Error(), nil
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, err.Error(), nil
	default:
		slog.Error("unhandled error", "error", err)
		return http.StatusInternalServerError, "internal server error", nil
	}
}

// HandleCreateConflict handles conflicts during creation by returning the existing resource with 409
// If the error is a ConflictError naming the existing resource, it calls fetchFn to retrieve it
func HandleCreateConflict[T any](w http.ResponseWriter, err error, fetchFn func(id uuid.UUID) (*T, error)) {
	var conflictErr *domain.ConflictError
	if errors.As(err, &conflictErr) {
		id, parseErr := uuid.Parse(conflictErr.ResourceID)
		if parseErr != nil {
			// the winner of a race is not always known
			handleError(w, err)
			return
		}

		existing, fetchErr := fetchFn(id)
		if fetchErr != nil {
			handleError(w, fetchErr)
			return
		}

		httputil.RespondJSON(w, http.StatusConflict, existing)
		return
	}

	// Not a conflict error, handle normally
	handleError(w, err)
}

// ownerID extracts the owner identity placed by the owner middleware
func ownerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := httputil.GetOwnerID(r)
	if !ok {
		handleError(w, fmt.Errorf("no owner identity on request: %w", domain.ErrUnauthorized))
	}
	return id, ok
}
