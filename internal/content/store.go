// Package content stores file bytes on the local filesystem, addressed by
// random refs. Objects become visible only once fully written.
package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"cirrus/internal/domain"
)

const (
	tmpDirName  = ".tmp"
	blobDirName = "blobs"

	CompressionNone = "none"
	CompressionZstd = "zstd"
)

// FilesystemStore implements services.ContentStore and services.ContentReleaser
type FilesystemStore struct {
	root     string
	compress bool
	logger   *slog.Logger
}

// NewFilesystemStore prepares root for use. compression is "none" or "zstd".
func NewFilesystemStore(root, compression string, logger *slog.Logger) (*FilesystemStore, error) {
	switch compression {
	case "", CompressionNone, CompressionZstd:
	default:
		return nil, fmt.Errorf("unknown content compression %q", compression)
	}

	for _, dir := range []string{filepath.Join(root, tmpDirName), filepath.Join(root, blobDirName)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create content directory: %w", err)
		}
	}

	return &FilesystemStore{
		root:     root,
		compress: compression == CompressionZstd,
		logger:   logger,
	}, nil
}

// Store copies r into a temp file and renames it into place. size is the
// number of bytes read from r, regardless of compression.
func (s *FilesystemStore) Store(ctx context.Context, r io.Reader) (string, int64, error) {
	tmp, err := os.CreateTemp(filepath.Join(s.root, tmpDirName), "upload-*")
	if err != nil {
		return "", 0, domain.NewStorageError("create temp file", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	size, err := s.write(tmp, &contextReader{ctx: ctx, r: r})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", 0, ctxErr
		}
		return "", 0, domain.NewStorageError("write content", err)
	}
	if err := tmp.Sync(); err != nil {
		return "", 0, domain.NewStorageError("sync content", err)
	}
	if err := tmp.Close(); err != nil {
		return "", 0, domain.NewStorageError("close content", err)
	}

	ref := uuid.NewString()
	dst := s.path(ref)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", 0, domain.NewStorageError("create shard directory", err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return "", 0, domain.NewStorageError("commit content", err)
	}
	committed = true

	s.logger.Debug("content stored", "ref", ref, "size", size, "zstd", s.compress)
	return ref, size, nil
}

func (s *FilesystemStore) write(dst io.Writer, src io.Reader) (int64, error) {
	if !s.compress {
		return io.Copy(dst, src)
	}

	enc, err := zstd.NewWriter(dst)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(enc, src)
	if err != nil {
		enc.Close()
		return 0, err
	}
	if err := enc.Close(); err != nil {
		return 0, err
	}
	return n, nil
}

// Fetch opens the content behind ref
func (s *FilesystemStore) Fetch(ctx context.Context, ref string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !validRef(ref) {
		return nil, fmt.Errorf("content %q: %w", ref, domain.ErrNotFound)
	}

	f, err := os.Open(s.path(ref))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("content %s: %w", ref, domain.ErrNotFound)
		}
		return nil, domain.NewStorageError("open content", err)
	}
	if !s.compress {
		return f, nil
	}

	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, domain.NewStorageError("open content decoder", err)
	}
	return &decodingReader{dec: dec, file: f}, nil
}

// Delete removes the content behind ref; an absent ref is not an error
func (s *FilesystemStore) Delete(ctx context.Context, ref string) error {
	if !validRef(ref) {
		return nil
	}
	if err := os.Remove(s.path(ref)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return domain.NewStorageError("delete content", err)
	}
	return nil
}

// Release deletes every ref, continuing past failures
func (s *FilesystemStore) Release(ctx context.Context, refs []string) error {
	var errs []error
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := s.Delete(ctx, ref); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// path shards blobs by the first two characters of the ref
func (s *FilesystemStore) path(ref string) string {
	return filepath.Join(s.root, blobDirName, ref[:2], ref)
}

// refs are always canonical uuids; anything else could escape root
func validRef(ref string) bool {
	id, err := uuid.Parse(ref)
	return err == nil && id.String() == ref
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

type decodingReader struct {
	dec  *zstd.Decoder
	file *os.File
}

func (d *decodingReader) Read(p []byte) (int, error) { return d.dec.Read(p) }

func (d *decodingReader) Close() error {
	d.dec.Close()
	return d.file.Close()
}
