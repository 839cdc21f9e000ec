package namespace

import (
	"context"
	"time"

	"github.com/google/uuid"

	models "cirrus/internal/domain/models/namespace"
)

// Manager is the only write path into the folder/file namespace. Each
// mutation runs in its own transaction and either fully applies or leaves the
// tree untouched.
type Manager interface {
	// CreateFolder creates a folder under req.ParentID (nil = root)
	CreateFolder(ctx context.Context, ownerID uuid.UUID, req *CreateFolderRequest) (*models.Folder, error)

	// GetFolder retrieves a folder
	GetFolder(ctx context.Context, ownerID, folderID uuid.UUID) (*models.Folder, error)

	// RenameFolder changes a folder's name in place
	RenameFolder(ctx context.Context, ownerID, folderID uuid.UUID, newName string) (*models.Folder, error)

	// MoveFolder re-parents a folder (newParentID nil = root)
	MoveFolder(ctx context.Context, ownerID, folderID uuid.UUID, newParentID *uuid.UUID) (*models.Folder, error)

	// DeleteFolder deletes a folder, its whole subtree and every file inside it
	DeleteFolder(ctx context.Context, ownerID, folderID uuid.UUID) (uuid.UUID, error)

	// CheckFileName sanitizes filename and verifies it is free in folderID.
	// Returns the sanitized name.
	CheckFileName(ctx context.Context, ownerID uuid.UUID, folderID *uuid.UUID, filename string) (string, error)

	// RegisterFile records metadata for content that is already stored
	RegisterFile(ctx context.Context, ownerID uuid.UUID, req *RegisterFileRequest) (*models.File, error)

	// GetFile retrieves file metadata
	GetFile(ctx context.Context, ownerID, fileID uuid.UUID) (*models.File, error)

	// DeleteFile deletes a single file
	DeleteFile(ctx context.Context, ownerID, fileID uuid.UUID) error

	// ListEntries lists direct child folders and files of folderID (nil = root)
	ListEntries(ctx context.Context, ownerID uuid.UUID, folderID *uuid.UUID) (*models.Listing, error)
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	Name     string     `json:"name"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"` // null for root
}

// RegisterFileRequest carries the metadata of freshly stored content
type RegisterFileRequest struct {
	Filename     string
	FolderID     *uuid.UUID // nil = root
	ContentRef   string
	Size         int64
	LastModified time.Time
}
