package namespace

import (
	"context"

	"github.com/google/uuid"

	models "cirrus/internal/domain/models/namespace"
)

// FileRepository defines data access operations for file metadata
type FileRepository interface {
	// Create inserts file metadata. A file with the same name in the same folder yields a conflict.
	Create(ctx context.Context, file *models.File) error

	// GetByID retrieves a file by ID
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.File, error)

	// FindByName returns the file named filename in folderID, or nil when there is none
	FindByName(ctx context.Context, ownerID uuid.UUID, folderID *uuid.UUID, filename string) (*models.File, error)

	// ListByFolder lists files directly inside folderID ordered by filename
	ListByFolder(ctx context.Context, ownerID uuid.UUID, folderID *uuid.UUID) ([]models.File, error)

	// ContentRefsByFolders returns the content refs of every file inside the given folders
	ContentRefsByFolders(ctx context.Context, ownerID uuid.UUID, folderIDs []uuid.UUID) ([]string, error)

	// Delete deletes a single file
	Delete(ctx context.Context, ownerID, id uuid.UUID) error

	// DeleteByFolders deletes every file inside the given folders
	DeleteByFolders(ctx context.Context, ownerID uuid.UUID, folderIDs []uuid.UUID) (int64, error)
}
