package namespace

import (
	"context"
	"io"

	"github.com/google/uuid"

	models "cirrus/internal/domain/models/namespace"
)

// TransferService moves bytes between clients and the content store and
// keeps namespace metadata in step with them.
type TransferService interface {
	// Upload stores the content of r and registers it as filename in folderID
	Upload(ctx context.Context, ownerID uuid.UUID, folderID *uuid.UUID, filename string, r io.Reader) (*models.File, error)

	// Download resolves a file and opens its content. The caller closes the reader.
	Download(ctx context.Context, ownerID, fileID uuid.UUID) (*models.File, io.ReadCloser, error)
}
