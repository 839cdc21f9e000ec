package handler

import "net/http"

// NewRouter registers all API routes (Go 1.22+ method patterns)
func NewRouter(folders *FolderHandler, files *FileHandler, health *HealthHandler) *http.ServeMux {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", health.HealthCheck)

	// Folder routes
	mux.HandleFunc("POST /api/v1/folders", folders.CreateFolder)
	mux.HandleFunc("GET /api/v1/folders/{id}", folders.GetFolder)
	mux.HandleFunc("PUT /api/v1/folders/{id}", folders.RenameFolder)
	mux.HandleFunc("PATCH /api/v1/folders/{id}", folders.MoveFolder)
	mux.HandleFunc("DELETE /api/v1/folders/{id}", folders.DeleteFolder)

	// Listing
	mux.HandleFunc("GET /api/v1/entries", folders.ListEntries)
	mux.HandleFunc("POST /api/v1/files", folders.ListEntriesJSON)

	// Transfer
	mux.HandleFunc("POST /api/v1/upload", files.Upload)
	mux.HandleFunc("GET /api/v1/download/{id}", files.Download)

	// File metadata
	mux.HandleFunc("GET /api/v1/files/{id}", files.GetFile)
	mux.HandleFunc("DELETE /api/v1/files/{id}", files.DeleteFile)

	return mux
}
