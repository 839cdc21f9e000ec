package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"cirrus/internal/domain"
)

// ParseJSON decodes a JSON request body into dest. The body is capped at
// 1MB; uploads go through multipart instead.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", domain.ErrValidation, err)
	}

	return nil
}

// PathUUID parses the path value name as a uuid
func PathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := r.PathValue(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s %q is not a valid id", domain.ErrValidation, name, raw)
	}
	return id, nil
}

// QueryFolderID parses an optional folder id query parameter. Absent, empty
// and the nil uuid all mean root and yield nil.
func QueryFolderID(r *http.Request, name string) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" || raw == "null" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q is not a valid id", domain.ErrValidation, name, raw)
	}
	if id == uuid.Nil {
		return nil, nil
	}
	return &id, nil
}
