package handler

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"cirrus/internal/domain"
	models "cirrus/internal/domain/models/namespace"
	nsSvc "cirrus/internal/domain/services/namespace"
	"cirrus/internal/httputil"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	manager nsSvc.Manager
	logger  *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(manager nsSvc.Manager, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		manager: manager,
		logger:  logger,
	}
}

type renameFolderRequest struct {
	Name string `json:"name"`
}

type moveFolderRequest struct {
	ParentID httputil.OptionalUUID `json:"parent_id"`
}

// CreateFolder creates a new folder
// POST /api/v1/folders
// Returns 201 if created, 409 with the existing folder if the name is taken
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req nsSvc.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, err)
		return
	}

	folder, err := h.manager.CreateFolder(r.Context(), owner, &req)
	if err != nil {
		HandleCreateConflict(w, err, func(id uuid.UUID) (*models.Folder, error) {
			return h.manager.GetFolder(r.Context(), owner, id)
		})
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// GetFolder retrieves a folder by ID
// GET /api/v1/folders/{id}
func (h *FolderHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	id, err := httputil.PathUUID(r, "id")
	if err != nil {
		handleError(w, err)
		return
	}

	folder, err := h.manager.GetFolder(r.Context(), owner, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// RenameFolder renames a folder
// PUT /api/v1/folders/{id}
func (h *FolderHandler) RenameFolder(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	id, err := httputil.PathUUID(r, "id")
	if err != nil {
		handleError(w, err)
		return
	}

	var req renameFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, err)
		return
	}

	folder, err := h.manager.RenameFolder(r.Context(), owner, id, req.Name)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// MoveFolder moves a folder under another folder, or to root when parent_id is null
// PATCH /api/v1/folders/{id}
func (h *FolderHandler) MoveFolder(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	id, err := httputil.PathUUID(r, "id")
	if err != nil {
		handleError(w, err)
		return
	}

	var req moveFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, err)
		return
	}
	if !req.ParentID.Present {
		httputil.RespondError(w, http.StatusBadRequest, domain.ErrValidation.Error()+": parent_id is required (null for root)")
		return
	}

	folder, err := h.manager.MoveFolder(r.Context(), owner, id, req.ParentID.Value)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// DeleteFolder deletes a folder with everything inside it
// DELETE /api/v1/folders/{id}
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	id, err := httputil.PathUUID(r, "id")
	if err != nil {
		handleError(w, err)
		return
	}

	deleted, err := h.manager.DeleteFolder(r.Context(), owner, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]uuid.UUID{"id": deleted})
}
