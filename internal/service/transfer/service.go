// Package transfer moves file bytes between clients and the content store
// and registers them with the namespace manager.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"cirrus/internal/config"
	"cirrus/internal/domain"
	models "cirrus/internal/domain/models/namespace"
	"cirrus/internal/domain/services"
	nsSvc "cirrus/internal/domain/services/namespace"
)

type transferService struct {
	manager nsSvc.Manager
	content services.ContentStore
	limits  *config.Limits
	logger  *slog.Logger
}

// NewService creates the transfer service
func NewService(
	manager nsSvc.Manager,
	content services.ContentStore,
	limits *config.Limits,
	logger *slog.Logger,
) nsSvc.TransferService {
	if limits == nil {
		limits = config.DefaultLimits()
	}
	return &transferService{
		manager: manager,
		content: content,
		limits:  limits,
		logger:  logger,
	}
}

// Upload checks the target name first, then stores the bytes, then registers
// them. Bytes that fail to register are deleted again.
func (s *transferService) Upload(ctx context.Context, ownerID uuid.UUID, folderID *uuid.UUID, filename string, r io.Reader) (*models.File, error) {
	name, err := s.manager.CheckFileName(ctx, ownerID, folderID, filename)
	if err != nil {
		return nil, err
	}

	ref, size, err := s.content.Store(ctx, &limitedReader{r: r, remaining: s.limits.MaxUploadSize})
	if err != nil {
		if errors.Is(err, domain.ErrTooLarge) {
			return nil, fmt.Errorf("%q exceeds %d bytes: %w", name, s.limits.MaxUploadSize, domain.ErrTooLarge)
		}
		return nil, err
	}

	file, err := s.manager.RegisterFile(ctx, ownerID, &nsSvc.RegisterFileRequest{
		Filename:     name,
		FolderID:     folderID,
		ContentRef:   ref,
		Size:         size,
		LastModified: time.Now().UTC(),
	})
	if err != nil {
		// lost a race on the name, or the folder went away meanwhile
		if delErr := s.content.Delete(context.WithoutCancel(ctx), ref); delErr != nil {
			s.logger.Warn("failed to delete unregistered content",
				"ref", ref,
				"error", delErr,
			)
		}
		return nil, err
	}

	s.logger.Debug("upload complete",
		"id", file.ID,
		"filename", file.Filename,
		"size", file.Size,
	)

	return file, nil
}

// Download resolves fileID and opens its content. The caller closes the reader.
func (s *transferService) Download(ctx context.Context, ownerID, fileID uuid.UUID) (*models.File, io.ReadCloser, error) {
	file, err := s.manager.GetFile(ctx, ownerID, fileID)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.content.Fetch(ctx, file.ContentRef)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// metadata without bytes: the store lost something
			s.logger.Error("content missing for registered file",
				"id", file.ID,
				"ref", file.ContentRef,
			)
			return nil, nil, domain.NewStorageError("fetch content", err)
		}
		return nil, nil, err
	}

	return file, rc, nil
}

// limitedReader fails with ErrTooLarge once more than remaining bytes are read
type limitedReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, domain.ErrTooLarge
	}
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, domain.ErrTooLarge
	}
	return n, err
}
