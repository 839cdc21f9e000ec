package namespace

import (
	"context"

	"github.com/google/uuid"

	models "cirrus/internal/domain/models/namespace"
)

// ListEntries lists the direct child folders and files of folderID (nil is
// root). An empty folder yields empty collections.
func (s *manager) ListEntries(ctx context.Context, ownerID uuid.UUID, folderID *uuid.UUID) (*models.Listing, error) {
	folderID = models.Root(folderID)

	var folder *models.Folder
	if folderID != nil {
		var err error
		folder, err = s.folderRepo.GetByID(ctx, ownerID, *folderID)
		if err != nil {
			return nil, err
		}
	}

	folders, err := s.folderRepo.ListChildren(ctx, ownerID, folderID)
	if err != nil {
		return nil, err
	}

	files, err := s.fileRepo.ListByFolder(ctx, ownerID, folderID)
	if err != nil {
		return nil, err
	}

	if folders == nil {
		folders = []models.Folder{}
	}
	if files == nil {
		files = []models.File{}
	}

	return &models.Listing{
		Folder:  folder,
		Folders: folders,
		Files:   files,
	}, nil
}
