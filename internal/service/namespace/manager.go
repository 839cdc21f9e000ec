// Package namespace implements the folder/file namespace manager. It is the
// only writer of folder and file metadata and runs each mutation in its own
// transaction.
package namespace

import (
	"context"
	"log/slog"

	"cirrus/internal/config"
	"cirrus/internal/domain/repositories"
	nsRepo "cirrus/internal/domain/repositories/namespace"
	"cirrus/internal/domain/services"
	nsSvc "cirrus/internal/domain/services/namespace"
)

type manager struct {
	folderRepo nsRepo.FolderRepository
	fileRepo   nsRepo.FileRepository
	txManager  repositories.TransactionManager
	releaser   services.ContentReleaser // optional
	limits     *config.Limits
	logger     *slog.Logger
}

// NewManager creates the namespace manager. releaser may be nil, in which
// case content of deleted files is left to an external collector.
func NewManager(
	folderRepo nsRepo.FolderRepository,
	fileRepo nsRepo.FileRepository,
	txManager repositories.TransactionManager,
	releaser services.ContentReleaser,
	limits *config.Limits,
	logger *slog.Logger,
) nsSvc.Manager {
	if limits == nil {
		limits = config.DefaultLimits()
	}
	return &manager{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		txManager:  txManager,
		releaser:   releaser,
		limits:     limits,
		logger:     logger,
	}
}

// release frees content after the metadata delete committed. Metadata is
// authoritative, so failures only leave unreferenced bytes behind.
func (s *manager) release(ctx context.Context, refs []string) {
	if s.releaser == nil || len(refs) == 0 {
		return
	}
	if err := s.releaser.Release(context.WithoutCancel(ctx), refs); err != nil {
		s.logger.Warn("failed to release content",
			"refs", len(refs),
			"error", err,
		)
	}
}
