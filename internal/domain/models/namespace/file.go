package namespace

import (
	"time"

	"github.com/google/uuid"
)

// File is the metadata record of an uploaded file. The bytes live in the
// content store under ContentRef.
type File struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	OwnerID      uuid.UUID  `json:"-" db:"owner_id"`
	Filename     string     `json:"filename" db:"filename"`
	FolderID     *uuid.UUID `json:"folder_id" db:"folder_id"` // NULL = root level
	Size         int64      `json:"size" db:"size"`
	LastModified time.Time  `json:"last_modified" db:"last_modified"`
	ContentRef   string     `json:"-" db:"content_ref"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}
