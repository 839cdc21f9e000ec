package handler

import (
	"net/http"

	"github.com/google/uuid"

	"cirrus/internal/httputil"
)

type listEntriesRequest struct {
	FolderID *uuid.UUID `json:"folder_id"`
}

// ListEntries lists direct child folders and files
// GET /api/v1/entries?folder_id=
func (h *FolderHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	folderID, err := httputil.QueryFolderID(r, "folder_id")
	if err != nil {
		handleError(w, err)
		return
	}
	h.listEntries(w, r, folderID)
}

// ListEntriesJSON is ListEntries with the folder passed in the body
// POST /api/v1/files {"folder_id": ...}
func (h *FolderHandler) ListEntriesJSON(w http.ResponseWriter, r *http.Request) {
	var req listEntriesRequest
	if r.ContentLength != 0 {
		if err := httputil.ParseJSON(w, r, &req); err != nil {
			handleError(w, err)
			return
		}
	}
	h.listEntries(w, r, req.FolderID)
}

func (h *FolderHandler) listEntries(w http.ResponseWriter, r *http.Request, folderID *uuid.UUID) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	listing, err := h.manager.ListEntries(r.Context(), owner, folderID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, listing)
}
