package namespace

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"cirrus/internal/domain"
	models "cirrus/internal/domain/models/namespace"
	nsSvc "cirrus/internal/domain/services/namespace"
)

var errCycle = &domain.InvalidOperationError{
	Message: "cannot move a folder into itself or one of its descendants",
}

// CreateFolder creates a new folder
func (s *manager) CreateFolder(ctx context.Context, ownerID uuid.UUID, req *nsSvc.CreateFolderRequest) (*models.Folder, error) {
	name, err := s.validateFolderName(req.Name)
	if err != nil {
		return nil, err
	}
	parentID := models.Root(req.ParentID)

	now := time.Now().UTC()
	folder := &models.Folder{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		ParentID:  parentID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if parentID != nil {
			if err := s.checkDepth(ctx, ownerID, *parentID); err != nil {
				return err
			}
		}
		if err := s.checkFolderNameFree(ctx, ownerID, parentID, name, uuid.Nil); err != nil {
			return err
		}
		// the unique index still catches a concurrent create of the same name
		return s.folderRepo.Create(ctx, folder)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"owner_id", ownerID,
		"parent_id", folder.ParentID,
	)

	return folder, nil
}

// GetFolder retrieves a folder
func (s *manager) GetFolder(ctx context.Context, ownerID, folderID uuid.UUID) (*models.Folder, error) {
	return s.folderRepo.GetByID(ctx, ownerID, folderID)
}

// RenameFolder renames a folder in place; id and parent stay the same
func (s *manager) RenameFolder(ctx context.Context, ownerID, folderID uuid.UUID, newName string) (*models.Folder, error) {
	name, err := s.validateFolderName(newName)
	if err != nil {
		return nil, err
	}

	var folder *models.Folder
	renamed := false
	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.folderRepo.Lock(ctx, ownerID, []uuid.UUID{folderID}); err != nil {
			return err
		}

		f, err := s.folderRepo.GetByID(ctx, ownerID, folderID)
		if err != nil {
			return err
		}
		folder = f
		if folder.Name == name {
			return nil
		}

		if err := s.checkFolderNameFree(ctx, ownerID, folder.ParentID, name, folder.ID); err != nil {
			return err
		}

		folder.Name = name
		folder.UpdatedAt = time.Now().UTC()
		renamed = true
		return s.folderRepo.Update(ctx, folder)
	})
	if err != nil {
		return nil, err
	}

	if renamed {
		s.logger.Info("folder renamed",
			"id", folder.ID,
			"name", folder.Name,
			"owner_id", ownerID,
		)
	}

	return folder, nil
}

// MoveFolder re-parents a folder. Moving a folder under itself or any of its
// descendants is rejected with InvalidOperation.
func (s *manager) MoveFolder(ctx context.Context, ownerID, folderID uuid.UUID, newParentID *uuid.UUID) (*models.Folder, error) {
	newParent := models.Root(newParentID)
	if newParent != nil && *newParent == folderID {
		return nil, errCycle
	}

	var folder *models.Folder
	moved := false
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		// pin the moved folder and the whole target chain so a concurrent
		// move cannot slip a cycle in between the check and the update
		var chain []uuid.UUID
		if newParent != nil {
			var err error
			chain, err = s.lockAncestors(ctx, ownerID, *newParent, folderID)
			if err != nil {
				return err
			}
		} else if err := s.folderRepo.Lock(ctx, ownerID, []uuid.UUID{folderID}); err != nil {
			return err
		}

		var err error
		folder, err = s.folderRepo.GetByID(ctx, ownerID, folderID)
		if err != nil {
			return err
		}

		if newParent != nil {
			if len(chain) == 0 {
				return fmt.Errorf("parent folder %s: %w", *newParent, domain.ErrNotFound)
			}
			if slices.Contains(chain, folderID) {
				return errCycle
			}
			if len(chain) >= s.limits.MaxTreeDepth {
				return &domain.InvalidOperationError{
					Message: fmt.Sprintf("folders cannot be nested deeper than %d levels", s.limits.MaxTreeDepth),
				}
			}
		}

		if models.SameParent(folder.ParentID, newParent) {
			return nil
		}

		if err := s.checkFolderNameFree(ctx, ownerID, newParent, folder.Name, folder.ID); err != nil {
			return err
		}

		folder.ParentID = newParent
		folder.UpdatedAt = time.Now().UTC()
		moved = true
		return s.folderRepo.Update(ctx, folder)
	})
	if err != nil {
		return nil, err
	}

	if moved {
		s.logger.Info("folder moved",
			"id", folder.ID,
			"name", folder.Name,
			"owner_id", ownerID,
			"parent_id", folder.ParentID,
		)
	}

	return folder, nil
}

// lockAncestors locks folderID together with parentID and all of its
// ancestors, repeating until the locked chain is stable. Returns the chain.
func (s *manager) lockAncestors(ctx context.Context, ownerID, parentID, folderID uuid.UUID) ([]uuid.UUID, error) {
	locked := map[uuid.UUID]bool{}
	pending := []uuid.UUID{folderID}

	for {
		chain, err := s.folderRepo.Ancestors(ctx, ownerID, parentID)
		if err != nil {
			return nil, err
		}
		for _, id := range chain {
			if !locked[id] && id != folderID {
				pending = append(pending, id)
			}
		}
		if len(pending) == 0 {
			return chain, nil
		}

		if err := s.folderRepo.Lock(ctx, ownerID, pending); err != nil {
			return nil, err
		}
		for _, id := range pending {
			locked[id] = true
		}
		pending = pending[:0]
	}
}

// DeleteFolder deletes a folder, all of its descendants and every file filed
// anywhere in that subtree, in one transaction. Content is released after
// commit.
func (s *manager) DeleteFolder(ctx context.Context, ownerID, folderID uuid.UUID) (uuid.UUID, error) {
	var refs []string
	var filesDeleted, foldersDeleted int64

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		ids, err := s.lockSubtree(ctx, ownerID, folderID)
		if err != nil {
			return err
		}

		refs, err = s.fileRepo.ContentRefsByFolders(ctx, ownerID, ids)
		if err != nil {
			return err
		}

		// files first, they reference the folders
		filesDeleted, err = s.fileRepo.DeleteByFolders(ctx, ownerID, ids)
		if err != nil {
			return err
		}

		foldersDeleted, err = s.folderRepo.DeleteMany(ctx, ownerID, ids)
		if err != nil {
			return err
		}
		if foldersDeleted != int64(len(ids)) {
			return domain.NewStorageError("delete folders",
				fmt.Errorf("deleted %d of %d folders", foldersDeleted, len(ids)))
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	s.logger.Info("folder deleted",
		"id", folderID,
		"owner_id", ownerID,
		"folders_deleted", foldersDeleted,
		"files_deleted", filesDeleted,
	)

	s.release(ctx, refs)

	return folderID, nil
}

// lockSubtree computes the closure of folderID and locks it, recomputing
// until no folder was added to or moved out of the subtree in between.
func (s *manager) lockSubtree(ctx context.Context, ownerID, folderID uuid.UUID) ([]uuid.UUID, error) {
	ids, err := s.folderRepo.Closure(ctx, ownerID, folderID)
	if err != nil {
		return nil, err
	}

	for {
		if len(ids) == 0 {
			return nil, fmt.Errorf("folder %s: %w", folderID, domain.ErrNotFound)
		}
		if err := s.folderRepo.Lock(ctx, ownerID, ids); err != nil {
			return nil, err
		}

		again, err := s.folderRepo.Closure(ctx, ownerID, folderID)
		if err != nil {
			return nil, err
		}
		if sameIDs(ids, again) {
			return ids, nil
		}
		s.logger.Debug("subtree changed while locking, retrying",
			"id", folderID,
			"before", len(ids),
			"after", len(again),
		)
		ids = again
	}
}

// checkDepth rejects creating a child of parentID when that would nest
// deeper than the configured limit. A missing parent is reported as not found.
func (s *manager) checkDepth(ctx context.Context, ownerID, parentID uuid.UUID) error {
	chain, err := s.folderRepo.Ancestors(ctx, ownerID, parentID)
	if err != nil {
		return err
	}
	if len(chain) == 0 {
		return fmt.Errorf("parent folder %s: %w", parentID, domain.ErrNotFound)
	}
	if len(chain) >= s.limits.MaxTreeDepth {
		return &domain.InvalidOperationError{
			Message: fmt.Sprintf("folders cannot be nested deeper than %d levels", s.limits.MaxTreeDepth),
		}
	}
	return nil
}

// checkFolderNameFree returns a ConflictError when a sibling other than self
// already uses name under parentID
func (s *manager) checkFolderNameFree(ctx context.Context, ownerID uuid.UUID, parentID *uuid.UUID, name string, self uuid.UUID) error {
	existing, err := s.folderRepo.FindByName(ctx, ownerID, parentID, name)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != self {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("a folder named %q already exists in this location", name),
			ResourceType: "folder",
			ResourceID:   existing.ID.String(),
		}
	}
	return nil
}

func sameIDs(a, b []uuid.UUID) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[uuid.UUID]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}
