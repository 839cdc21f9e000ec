package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"cirrus/internal/domain"
	models "cirrus/internal/domain/models/namespace"
	nsSvc "cirrus/internal/domain/services/namespace"
	"cirrus/internal/httputil"
)

// FileHandler handles upload, download and file metadata requests
type FileHandler struct {
	manager  nsSvc.Manager
	transfer nsSvc.TransferService
	logger   *slog.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(manager nsSvc.Manager, transfer nsSvc.TransferService, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		manager:  manager,
		transfer: transfer,
		logger:   logger,
	}
}

type uploadResponse struct {
	Status string        `json:"status"`
	Files  []models.File `json:"files"`
}

// Upload stores every file part of a multipart body in folder_id (root when absent).
// Parts are streamed one at a time; files registered before a failing part are kept.
// POST /api/v1/upload?folder_id=
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	folderID, err := httputil.QueryFolderID(r, "folder_id")
	if err != nil {
		handleError(w, err)
		return
	}

	reader, err := r.MultipartReader()
	if err != nil {
		handleError(w, fmt.Errorf("%w: expected multipart/form-data: %v", domain.ErrValidation, err))
		return
	}

	uploaded := []models.File{}
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			h.uploadFailed(w, fmt.Errorf("%w: malformed multipart body: %v", domain.ErrValidation, err), uploaded)
			return
		}

		// plain form fields carry no file
		if part.FileName() == "" {
			part.Close()
			continue
		}

		file, err := h.transfer.Upload(r.Context(), owner, folderID, part.FileName(), part)
		part.Close()
		if err != nil {
			h.uploadFailed(w, err, uploaded)
			return
		}
		uploaded = append(uploaded, *file)
	}

	if len(uploaded) == 0 {
		handleError(w, fmt.Errorf("%w: no file in request", domain.ErrValidation))
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, uploadResponse{Status: "ok", Files: uploaded})
}

func (h *FileHandler) uploadFailed(w http.ResponseWriter, err error, uploaded []models.File) {
	if len(uploaded) == 0 {
		handleError(w, err)
		return
	}

	h.logger.Warn("upload stopped after partial success",
		"uploaded", len(uploaded),
		"error", err,
	)
	status, detail, extras := errorResponse(err)
	if extras == nil {
		extras = map[string]interface{}{}
	}
	extras["files"] = uploaded
	httputil.RespondErrorWithExtras(w, status, detail, extras)
}

// Download streams a file's content
// GET /api/v1/download/{id}
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	id, err := httputil.PathUUID(r, "id")
	if err != nil {
		handleError(w, err)
		return
	}

	file, rc, err := h.transfer.Download(r.Context(), owner, id)
	if err != nil {
		handleError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Filename}))
	w.Header().Set("Content-Length", strconv.FormatInt(file.Size, 10))
	w.Header().Set("Last-Modified", file.LastModified.UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, rc); err != nil {
		// headers are gone, all we can do is log
		h.logger.Warn("download interrupted",
			"id", file.ID,
			"error", err,
		)
	}
}

// GetFile retrieves file metadata
// GET /api/v1/files/{id}
func (h *FileHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	id, err := httputil.PathUUID(r, "id")
	if err != nil {
		handleError(w, err)
		return
	}

	file, err := h.manager.GetFile(r.Context(), owner, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, file)
}

// DeleteFile deletes a file
// DELETE /api/v1/files/{id}
func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	id, err := httputil.PathUUID(r, "id")
	if err != nil {
		handleError(w, err)
		return
	}

	if err := h.manager.DeleteFile(r.Context(), owner, id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
