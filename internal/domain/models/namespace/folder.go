package namespace

import (
	"time"

	"github.com/google/uuid"
)

type Folder struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	OwnerID   uuid.UUID  `json:"-" db:"owner_id"`
	ParentID  *uuid.UUID `json:"parent_id" db:"parent_id"` // NULL = root level
	Name      string     `json:"name" db:"name"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// Root normalizes a parent/folder reference: nil and the nil UUID both mean root
// and are returned as nil.
func Root(id *uuid.UUID) *uuid.UUID {
	if id == nil || *id == uuid.Nil {
		return nil
	}
	v := *id
	return &v
}

// SameParent reports whether two normalized parent references point at the same folder.
func SameParent(a, b *uuid.UUID) bool {
	a, b = Root(a), Root(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
