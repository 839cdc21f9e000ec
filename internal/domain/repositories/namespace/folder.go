package namespace

import (
	"context"

	"github.com/google/uuid"

	models "cirrus/internal/domain/models/namespace"
)

// FolderRepository defines data access operations for folders.
// Every method is scoped to an owner; a folder of another owner is reported
// as not found.
type FolderRepository interface {
	// Create inserts a new folder. A sibling with the same name yields a conflict.
	Create(ctx context.Context, folder *models.Folder) error

	// GetByID retrieves a folder by ID
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Folder, error)

	// FindByName returns the child of parentID named name, or nil when there is none
	FindByName(ctx context.Context, ownerID uuid.UUID, parentID *uuid.UUID, name string) (*models.Folder, error)

	// Update persists name and parent_id of an existing folder
	Update(ctx context.Context, folder *models.Folder) error

	// ListChildren lists immediate child folders ordered by name
	ListChildren(ctx context.Context, ownerID uuid.UUID, parentID *uuid.UUID) ([]models.Folder, error)

	// Closure returns id plus every descendant of id (reflexive-transitive closure)
	Closure(ctx context.Context, ownerID, id uuid.UUID) ([]uuid.UUID, error)

	// Ancestors returns id and all of its ancestors, in no particular order
	Ancestors(ctx context.Context, ownerID, id uuid.UUID) ([]uuid.UUID, error)

	// Lock pins the given folder rows for the rest of the current transaction
	Lock(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) error

	// DeleteMany deletes the given folders and returns how many rows went away
	DeleteMany(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) (int64, error)
}
