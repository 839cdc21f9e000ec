package namespace

import (
	"context"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"cirrus/internal/domain"
	models "cirrus/internal/domain/models/namespace"
	nsSvc "cirrus/internal/domain/services/namespace"
)

// CheckFileName sanitizes filename and verifies that folderID exists and has
// no file of that name yet. Callers run it before storing any bytes.
func (s *manager) CheckFileName(ctx context.Context, ownerID uuid.UUID, folderID *uuid.UUID, filename string) (string, error) {
	name, err := s.sanitizeFileName(filename)
	if err != nil {
		return "", err
	}
	if err := s.checkFileNameFree(ctx, ownerID, models.Root(folderID), name); err != nil {
		return "", err
	}
	return name, nil
}

// RegisterFile records metadata for content that is already in the content store
func (s *manager) RegisterFile(ctx context.Context, ownerID uuid.UUID, req *nsSvc.RegisterFileRequest) (*models.File, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.ContentRef, validation.Required),
		validation.Field(&req.Size, validation.Min(int64(0))),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	name, err := s.sanitizeFileName(req.Filename)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	lastModified := req.LastModified
	if lastModified.IsZero() {
		lastModified = now
	}

	file := &models.File{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		Filename:     name,
		FolderID:     models.Root(req.FolderID),
		Size:         req.Size,
		LastModified: lastModified.UTC(),
		ContentRef:   req.ContentRef,
		CreatedAt:    now,
	}

	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.checkFileNameFree(ctx, ownerID, file.FolderID, name); err != nil {
			return err
		}
		return s.fileRepo.Create(ctx, file)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("file registered",
		"id", file.ID,
		"filename", file.Filename,
		"owner_id", ownerID,
		"folder_id", file.FolderID,
		"size", file.Size,
	)

	return file, nil
}

// GetFile retrieves file metadata
func (s *manager) GetFile(ctx context.Context, ownerID, fileID uuid.UUID) (*models.File, error) {
	return s.fileRepo.GetByID(ctx, ownerID, fileID)
}

// DeleteFile deletes a file and releases its content after commit
func (s *manager) DeleteFile(ctx context.Context, ownerID, fileID uuid.UUID) error {
	var file *models.File
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		f, err := s.fileRepo.GetByID(ctx, ownerID, fileID)
		if err != nil {
			return err
		}
		file = f
		return s.fileRepo.Delete(ctx, ownerID, fileID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("file deleted",
		"id", file.ID,
		"filename", file.Filename,
		"owner_id", ownerID,
	)

	s.release(ctx, []string{file.ContentRef})
	return nil
}

// checkFileNameFree verifies folderID exists (nil is root) and holds no file
// named name. Uniqueness is per folder, like folder names.
func (s *manager) checkFileNameFree(ctx context.Context, ownerID uuid.UUID, folderID *uuid.UUID, name string) error {
	if folderID != nil {
		if _, err := s.folderRepo.GetByID(ctx, ownerID, *folderID); err != nil {
			return fmt.Errorf("target folder: %w", err)
		}
	}

	existing, err := s.fileRepo.FindByName(ctx, ownerID, folderID, name)
	if err != nil {
		return err
	}
	if existing != nil {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("a file named %q already exists in this location", name),
			ResourceType: "file",
			ResourceID:   existing.ID.String(),
		}
	}
	return nil
}
