package services

import (
	"context"
	"io"
)

// ContentStore is durable byte storage addressed by an opaque content ref.
// The namespace layer stores refs and never looks at the bytes.
type ContentStore interface {
	// Store persists everything read from r and returns its ref and byte count
	Store(ctx context.Context, r io.Reader) (ref string, size int64, err error)

	// Fetch opens the content behind ref. Returns domain.ErrNotFound if absent.
	Fetch(ctx context.Context, ref string) (io.ReadCloser, error)

	// Delete removes the content behind ref. Deleting an absent ref is not an error.
	Delete(ctx context.Context, ref string) error
}

// ContentReleaser frees content that no metadata points at anymore.
// Called after a delete has committed.
type ContentReleaser interface {
	Release(ctx context.Context, refs []string) error
}
